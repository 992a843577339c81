package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 2 * time.Second

// Pinger verifies a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports readiness of the service's dependencies.
type HealthHandler struct {
	db       Pinger
	sessions SessionCounter
}

// NewHealthHandler creates a readiness handler. sessions may be nil.
func NewHealthHandler(db Pinger, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions}
}

// RegisterHealth registers GET /api/health. Liveness is served by the
// heartbeat middleware on /health.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.Ready)
}

// Ready pings the database and reports open chat sessions.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := map[string]interface{}{"status": "ok", "database": "ok"}
	if h.sessions != nil {
		resp["chat_sessions"] = h.sessions.Count()
	}

	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "error", err)
		resp["status"] = "degraded"
		resp["database"] = "unreachable"
		JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	JSON(w, http.StatusOK, resp)
}
