package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"InsureCost/cache"
	"InsureCost/config"
	"InsureCost/controllers"
	"InsureCost/database"
	"InsureCost/renderers"
	"InsureCost/repositories"
	"InsureCost/routes"
	"InsureCost/services"
	"InsureCost/utils"

	"github.com/pkg/errors"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	checks := map[string]controllers.HealthCheck{}

	// Session storage: Redis when configured, process memory otherwise
	var store cache.Store
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, database.DefaultRedisConfig(cfg.RedisURL))
		if err != nil {
			log.Fatalf("failed to initialize Redis client: %v", err)
		}
		defer client.Close()

		redisCache, err := cache.NewCache(client)
		if err != nil {
			log.Fatalf("failed to initialize cache: %v", err)
		}
		store = redisCache
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		wg.Add(1)
		go func() {
			defer wg.Done()
			database.MonitorRedisPool(ctx, client, 5*time.Minute)
		}()
	} else {
		log.Println("REDIS_URL not set, keeping sessions in memory")
		store = cache.NewMemoryCache()
	}

	sealer, err := utils.NewSessionSealer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to initialize session sealing: %v", err)
	}
	sessionRepo := repositories.NewSessionRepository(store, sealer)

	registry := services.NewRegistry(newDashboardFactory(cfg, sessionRepo))
	wg.Add(1)
	go func() {
		defer wg.Done()
		registry.RunJanitor(ctx, time.Minute, cfg.DashboardIdle)
	}()

	handler := routes.SetupRoutes(registry, cfg, checks)

	srv := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   cfg.RequestTimeout + 30*time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Starting server on %s (backend %s)", cfg.ListenAddr, cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %+v", err)
	}

	registry.Close()
	cancel()

	wg.Wait()
	log.Println("Server exited gracefully")
}

// newDashboardFactory builds the per-tab dashboard: its own backend client
// and cookie jar, its own chart renderer, shared session storage.
func newDashboardFactory(cfg *config.AppConfig, sessions repositories.SessionRepository) services.DashboardFactory {
	return func(tabID string) (*services.Dashboard, error) {
		client, err := repositories.NewAPIClient(cfg.BackendURL, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		return services.NewDashboard(services.DashboardOptions{
			TabID:          tabID,
			Backend:        repositories.NewBackend(client),
			Sessions:       sessions,
			Renderer:       renderers.NewSVGRenderer(cfg.Charts.Width, cfg.Charts.Height),
			Currency:       cfg.CurrencySymbol,
			SettleDelay:    cfg.History.SettleDelay,
			SettleAttempts: cfg.History.SettleAttempts,
		}), nil
	}
}
