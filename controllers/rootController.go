package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency of the dashboard is usable.
type HealthCheck func(ctx context.Context) error

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write([]byte("Insurance cost dashboard")); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Printf("Health check %s failed: %v", name, err)
				report[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": report})
	}
}

// SetupRootRoute sets up the root and health routes
func SetupRootRoute(router *gin.Engine, checks map[string]HealthCheck) {
	router.GET("/", rootHandler)
	router.GET("/health", healthHandler(checks))
}
