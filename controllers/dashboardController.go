package controllers

import (
	"time"

	"InsureCost/handlers"
	"InsureCost/middlewares"
	"InsureCost/models"
	"InsureCost/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Handler   *handlers.DashboardHandler
	Registry  *services.Registry
	CookieTTL time.Duration
}

// NewDashboardController creates a new DashboardController for the tabs in registry
func NewDashboardController(handler *handlers.DashboardHandler, registry *services.Registry, cookieTTL time.Duration) *DashboardController {
	return &DashboardController{
		Handler:   handler,
		Registry:  registry,
		CookieTTL: cookieTTL,
	}
}

// RegisterRoutes initializes the dashboard UI routes
func (dc *DashboardController) RegisterRoutes(router *gin.Engine) {
	ui := router.Group("/ui")
	ui.Use(middlewares.DashboardMiddleware(dc.Registry, dc.CookieTTL))

	// Routes usable before login
	ui.GET("/state", dc.Handler.State)
	ui.GET("/ws", dc.Handler.Stream)
	ui.POST("/login", dc.Handler.Login)
	ui.POST("/logout", dc.Handler.Logout)
	ui.POST("/alerts/ack", dc.Handler.AckAlert)

	// Routes that need a session
	session := ui.Group("")
	session.Use(middlewares.RequireSession())
	{
		session.POST("/tabs/:name", dc.Handler.SwitchTab)
		session.POST("/predict", dc.Handler.Predict)
		session.GET("/charts/:kind", dc.Handler.Chart)
	}

	admin := ui.Group("")
	admin.Use(middlewares.RequireSession(), middlewares.RequireRole(models.RoleAdmin))
	{
		admin.POST("/retrain", dc.Handler.Retrain)
	}
}
