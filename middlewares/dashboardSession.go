package middlewares

import (
	"net/http"
	"time"

	"InsureCost/models"
	"InsureCost/services"
	"InsureCost/utils"

	"github.com/gin-gonic/gin"
)

const dashboardKey = "dashboard"

// DashboardMiddleware attaches the dashboard of the calling browser tab to
// the request, issuing a tab id on the first visit.
func DashboardMiddleware(registry *services.Registry, cookieTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabID, ok := utils.TabID(c)
		if !ok {
			tabID = utils.NewTabID()
		}
		utils.SetTabCookie(c, tabID, cookieTTL)
		c.Header(utils.TabHeader, tabID)

		dashboard, err := registry.Get(c.Request.Context(), tabID)
		if err != nil {
			RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(dashboardKey, dashboard)
		c.Next()
	}
}

// RequireSession rejects requests from tabs that are not logged in.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		dashboard, ok := DashboardFromContext(c)
		if !ok || dashboard.Session() == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": models.ErrNotLoggedIn.Error()})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole restricts access to sessions with the given role.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		dashboard, ok := DashboardFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": models.ErrNotLoggedIn.Error()})
			c.Abort()
			return
		}
		session := dashboard.Session()
		if session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": models.ErrNotLoggedIn.Error()})
			c.Abort()
			return
		}
		if session.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// DashboardFromContext returns the dashboard DashboardMiddleware attached.
func DashboardFromContext(c *gin.Context) (*services.Dashboard, bool) {
	value, ok := c.Get(dashboardKey)
	if !ok {
		return nil, false
	}
	dashboard, ok := value.(*services.Dashboard)
	return dashboard, ok
}
