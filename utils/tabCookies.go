package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TabHeader carries the id the browser shell keeps in its per-tab storage.
	TabHeader     = "X-Dashboard-Tab"
	TabCookieName = "dashboardTab"
)

// TabID returns the dashboard tab id of a request, preferring the header.
func TabID(c *gin.Context) (string, bool) {
	if id := c.GetHeader(TabHeader); isTabID(id) {
		return id, true
	}
	if id, err := c.Cookie(TabCookieName); err == nil && isTabID(id) {
		return id, true
	}
	return "", false
}

// NewTabID issues a fresh dashboard tab id.
func NewTabID() string {
	return uuid.New().String()
}

func isTabID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func SetTabCookie(c *gin.Context, id string, expiry time.Duration) {
	c.SetCookie(TabCookieName, id, int(expiry.Seconds()), "/", "", secureCookies(), true)
}

func ClearTabCookie(c *gin.Context) {
	c.SetCookie(TabCookieName, "", -1, "/", "", secureCookies(), true)
}

func secureCookies() bool {
	return gin.Mode() != gin.DebugMode // plain http for local dev
}
