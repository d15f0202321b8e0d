package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlConfig := `
backend_url: http://analytics:5000
session_secret: from-file
session_ttl: 1h
history:
  settle_delay: 2s
  settle_attempts: 3
charts:
  width: 800
  height: 400
`
	if err := os.WriteFile(path, []byte(yamlConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("DASHBOARD_IDLE_TIMEOUT", "30m")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("HISTORY_SETTLE_ATTEMPTS", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BackendURL != "http://analytics:5000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.SessionSecret != "from-env" {
		t.Errorf("SessionSecret = %q, want the environment to win", cfg.SessionSecret)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.History.SettleDelay != 2*time.Second || cfg.History.SettleAttempts != 3 {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.Charts.Width != 800 || cfg.Charts.Height != 400 {
		t.Errorf("Charts = %+v", cfg.Charts)
	}
	if cfg.RateLimit.Burst != 5 || cfg.RateLimit.RequestsPerSecond != 15 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.DashboardIdle != 30*time.Minute {
		t.Errorf("DashboardIdle = %v", cfg.DashboardIdle)
	}
	if want := []string{"http://a.example", "http://b.example"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddr != ":8930" || cfg.CurrencySymbol != "₹" || cfg.History.SettleAttempts != 1 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	if _, err := Load(""); err == nil {
		t.Fatal("Load() error = nil without a session secret")
	}
}

func TestValidateClampsValues(t *testing.T) {
	cfg := Default()
	cfg.SessionSecret = "secret"
	cfg.History.SettleAttempts = 0
	cfg.Charts = ChartsConfig{}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.History.SettleAttempts != 1 {
		t.Errorf("SettleAttempts = %d, want 1", cfg.History.SettleAttempts)
	}
	if cfg.Charts != Default().Charts {
		t.Errorf("Charts = %+v", cfg.Charts)
	}
}
