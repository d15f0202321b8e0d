package routes

import (
	"net/http"

	"InsureCost/config"
	"InsureCost/controllers"
	"InsureCost/handlers"
	"InsureCost/middlewares"
	"InsureCost/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(registry *services.Registry, config *config.AppConfig, checks map[string]controllers.HealthCheck) http.Handler {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(config.AllowedOrigins)))

	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: config.RateLimit.RequestsPerSecond,
		Burst:             config.RateLimit.Burst,
	}))

	router.Use(middlewares.LoggingMiddleware())

	dashboardHandler := handlers.NewDashboardHandler(registry, config.AllowedOrigins)
	dashboardController := controllers.NewDashboardController(dashboardHandler, registry, config.SessionTTL)
	dashboardController.RegisterRoutes(router)

	controllers.SetupRootRoute(router, checks)

	return router
}
