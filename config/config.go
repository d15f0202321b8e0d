package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the application configuration
type AppConfig struct {
	BackendURL     string        `yaml:"backend_url"`
	ListenAddr     string        `yaml:"listen_addr"`
	RedisURL       string        `yaml:"redis_url"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DashboardIdle  time.Duration `yaml:"dashboard_idle"`
	CurrencySymbol string        `yaml:"currency_symbol"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      RateLimit     `yaml:"rate_limit"`
	History        HistoryConfig `yaml:"history"`
	Charts         ChartsConfig  `yaml:"charts"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// HistoryConfig controls the re-read of history after a prediction. The
// backend persists predictions asynchronously, so the dashboard waits
// SettleDelay before reading history again. SettleAttempts above one keeps
// re-reading until the new record shows up.
type HistoryConfig struct {
	SettleDelay    time.Duration `yaml:"settle_delay"`
	SettleAttempts int           `yaml:"settle_attempts"`
}

type ChartsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *AppConfig {
	return &AppConfig{
		BackendURL:     "http://localhost:5000",
		ListenAddr:     ":8930",
		SessionTTL:     8 * time.Hour,
		RequestTimeout: 30 * time.Second,
		DashboardIdle:  2 * time.Hour,
		CurrencySymbol: "₹",
		AllowedOrigins: []string{"http://localhost:8930"},
		RateLimit:      RateLimit{RequestsPerSecond: 15, Burst: 30},
		History:        HistoryConfig{SettleDelay: time.Second, SettleAttempts: 1},
		Charts:         ChartsConfig{Width: 640, Height: 360},
	}
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and finally the process environment.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Config file %s not found, using defaults", path)
		default:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	c.BackendURL = getEnv("BACKEND_URL", c.BackendURL)
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.SessionTTL = getEnvAsDuration("SESSION_TTL", c.SessionTTL)
	c.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.DashboardIdle = getEnvAsDuration("DASHBOARD_IDLE_TIMEOUT", c.DashboardIdle)
	c.CurrencySymbol = getEnv("CURRENCY_SYMBOL", c.CurrencySymbol)
	c.RateLimit.RequestsPerSecond = getEnvAsFloat("RATE_LIMIT_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", c.RateLimit.Burst)
	c.History.SettleDelay = getEnvAsDuration("HISTORY_SETTLE_DELAY", c.History.SettleDelay)
	c.History.SettleAttempts = getEnvAsInt("HISTORY_SETTLE_ATTEMPTS", c.History.SettleAttempts)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// Validate rejects configurations the dashboard cannot start with.
func (c *AppConfig) Validate() error {
	if c.BackendURL == "" {
		return errors.New("missing BACKEND_URL")
	}
	if c.SessionSecret == "" {
		return errors.New("missing SESSION_SECRET")
	}
	if c.History.SettleAttempts < 1 {
		c.History.SettleAttempts = 1
	}
	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		c.Charts = Default().Charts
	}
	return nil
}

func getEnv(name, defaultValue string) string {
	if value, exists := os.LookupEnv(name); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s, using default: %d", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(name); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Printf("Warning: Invalid number for %s, using default: %g", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(name); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
		log.Printf("Warning: Invalid duration value for %s, using default: %s", name, defaultValue.String())
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
