package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vaultshq/vaults-governance/internal/api/respond"
)

// HealthPinger is implemented by stores that can probe their backing database.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	pinger HealthPinger
}

// NewHealthHandler creates a new health handler probing the given dependency.
func NewHealthHandler(pinger HealthPinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// CheckHealth handles GET /api/health.
// Always returns 200; body reports healthy/unhealthy.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.HealthPing(ctx); err != nil {
			status = "unhealthy"
		}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
