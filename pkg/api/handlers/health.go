package handlers

import (
	"net/http"
	"time"

	"github.com/livepaste/livepaste/pkg/store"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	store     store.Store
	startTime time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{
		store:     st,
		startTime: time.Now(),
	}
}

// Health handles GET /health.
//
// Reports unhealthy with a 503 when the store fails its check; the
// process staying up with a dead database is not a state worth hiding
// from probes.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Healthcheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("store unavailable"))
		return
	}

	writeJSONOK(w, healthyResponse(map[string]any{
		"service":        "livepaste",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}))
}
