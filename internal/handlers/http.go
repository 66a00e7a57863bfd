package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/api"
)

// HTTPHandler handles the unauthenticated service endpoints
type HTTPHandler struct {
	db      *gorm.DB
	started time.Time
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{db: db, started: time.Now()}
}

// SetupRoutes configures the service routes
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
}

// handleHealth returns service liveness plus database reachability
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	api.RespondJSON(w, code, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}
