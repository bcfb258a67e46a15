package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	backend string
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. backend names the active account
// store so operators can confirm configuration at a glance.
func NewHealthHandler(backend string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{backend: backend, logger: logger}
}

// HealthCheck responds with a simple JSON status indicating the server is alive.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"backend":   h.backend,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
