package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"InsureCost/middlewares"
	"InsureCost/models"
	"InsureCost/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// ChartSource serves the drawn charts of a dashboard tab.
type ChartSource interface {
	SVG(kind models.ChartKind) ([]byte, bool)
	PlaceholderSVG(kind models.ChartKind) ([]byte, bool)
}

// TabKeeper finds the live dashboard of a tab and marks it as in use.
type TabKeeper interface {
	Lookup(tabID string) (*services.Dashboard, bool)
}

type DashboardHandler struct {
	tabs     TabKeeper
	upgrader websocket.Upgrader
}

func NewDashboardHandler(tabs TabKeeper, allowedOrigins []string) *DashboardHandler {
	return &DashboardHandler{
		tabs: tabs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
	}
}

func dashboard(c *gin.Context) (*services.Dashboard, bool) {
	d, ok := middlewares.DashboardFromContext(c)
	if !ok {
		middlewares.HttpError(c, "dashboard not available", http.StatusInternalServerError, nil)
	}
	return d, ok
}

// State returns the current view of the calling tab.
func (h *DashboardHandler) State(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}
	middlewares.RespondJSON(c, d.Snapshot(), http.StatusOK)
}

// Login authenticates the tab. Login failures are also shown inline in the view.
func (h *DashboardHandler) Login(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}

	var credentials models.LoginRequest
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session, err := d.Login(c.Request.Context(), credentials.Username, credentials.Password)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}

	middlewares.RespondJSON(c, gin.H{
		"session": session,
		"state":   d.Snapshot(),
	}, http.StatusOK)
}

// Logout always succeeds; a failed backend revoke is only logged.
func (h *DashboardHandler) Logout(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}
	if err := d.Logout(c.Request.Context()); err != nil {
		log.Printf("Backend logout failed, session cleared anyway: %v", err)
	}
	middlewares.RespondJSON(c, d.Snapshot(), http.StatusOK)
}

func (h *DashboardHandler) SwitchTab(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}
	if err := d.SwitchTab(c.Param("name")); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	middlewares.RespondJSON(c, d.Snapshot(), http.StatusOK)
}

// Predict submits the prediction form.
func (h *DashboardHandler) Predict(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}

	var form models.PredictionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := d.Submit(c.Request.Context(), form)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}

	middlewares.RespondJSON(c, gin.H{
		"result": result,
		"state":  d.Snapshot(),
	}, http.StatusOK)
}

type retrainRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *DashboardHandler) Retrain(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}

	var req retrainRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	result, err := d.Retrain(c.Request.Context(), req.Confirm)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}

	middlewares.RespondJSON(c, gin.H{
		"retrained": result != nil,
		"result":    result,
		"state":     d.Snapshot(),
	}, http.StatusOK)
}

type ackRequest struct {
	ID string `json:"id"`
}

// AckAlert dismisses the given alert, or the oldest one without an id.
func (h *DashboardHandler) AckAlert(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}

	var req ackRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	if !d.AckAlert(req.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such alert"})
		return
	}
	middlewares.RespondJSON(c, d.Snapshot(), http.StatusOK)
}

// Chart serves the SVG of a live chart. Canvases without one answer 404
// with their placeholder drawing, if any.
func (h *DashboardHandler) Chart(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}

	kind, ok := models.ParseChartKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart"})
		return
	}

	source, ok := d.Renderer().(ChartSource)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "charts are not drawn as SVG"})
		return
	}

	c.Header("Cache-Control", "no-store")
	if svg, ok := source.SVG(kind); ok {
		c.Data(http.StatusOK, "image/svg+xml", svg)
		return
	}
	if svg, ok := source.PlaceholderSVG(kind); ok {
		c.Data(http.StatusNotFound, "image/svg+xml", svg)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "chart not drawn"})
}

// Stream pushes every view change of the tab over a WebSocket.
func (h *DashboardHandler) Stream(c *gin.Context) {
	d, ok := dashboard(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := d.Subscribe()
	defer unsubscribe()

	// The reader only watches for the close; the shell sends nothing else.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case state, ok := <-updates:
			if !ok {
				h.release(conn, "dashboard released")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(state); err != nil {
				log.Printf("WebSocket write failed: %v", err)
				return
			}
		case <-ticker.C:
			// An open stream keeps its dashboard from being swept as idle.
			if current, ok := h.tabs.Lookup(d.TabID()); !ok || current != d {
				h.release(conn, "dashboard replaced")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// release tells the shell to reconnect; the next connection gets the tab's
// current dashboard.
func (h *DashboardHandler) release(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait)); err != nil {
		log.Printf("WebSocket close failed: %v", err)
	}
}
