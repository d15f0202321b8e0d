package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"InsureCost/utils"

	"github.com/gin-gonic/gin"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestRateLimiterPerTab(t *testing.T) {
	router := newTestRouter(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 1}))

	get := func(tab string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if tab != "" {
			req.Header.Set(utils.TabHeader, tab)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	first := utils.NewTabID()
	second := utils.NewTabID()
	if code := get(first); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := get(first); code != http.StatusTooManyRequests {
		t.Errorf("second request from the same tab = %d, want 429", code)
	}
	if code := get(second); code != http.StatusOK {
		t.Errorf("request from another tab = %d, want 200", code)
	}
}

func TestCorsMiddleware(t *testing.T) {
	router := newTestRouter(CorsMiddleware(DefaultCorsConfig([]string{"http://dash.example"})))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"preflight", http.MethodOptions, "http://dash.example", http.StatusNoContent, "http://dash.example"},
		{"allowed origin", http.MethodGet, "http://dash.example", http.StatusOK, "http://dash.example"},
		{"foreign origin", http.MethodGet, "http://evil.example", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}
