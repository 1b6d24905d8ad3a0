package http

import (
	"context"
	"net/http"
	"time"

	"github.com/lorrc/ticket-relay/internal/core/presence"
)

// HealthChecker defines the interface for health check dependencies
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness plus the relay's presence gauges.
type HealthHandler struct {
	db        HealthChecker
	registry  *presence.Registry
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, registry *presence.Registry, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		registry:  registry,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status      string `json:"status"`
	ActiveUsers int    `json:"activeUsers"`
	AdminCount  int    `json:"adminCount"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version,omitempty"`
	Uptime      string `json:"uptime,omitempty"`
}

// HandleHealth handles GET /health. It always answers "ok" while the process
// is serving; the presence gauges are the interesting part.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		ActiveUsers: h.registry.Count(),
		AdminCount:  h.registry.AdminCount(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleLiveness handles liveness probe requests (is the service running?)
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles readiness probe requests (can the service accept traffic?)
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	statusCode := http.StatusOK

	if h.db == nil {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if err := h.db.Ping(ctx); err != nil {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, statusCode, map[string]string{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
