package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"licensegate/pkg/contracts"
)

// Pinger reports backing store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness, readiness and the version endpoint.
type HealthHandler struct {
	store     Pinger
	startedAt time.Time
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, startedAt: time.Now()}
}

// Routes returns the chi router for the health endpoints.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Live)
	r.Get("/ready", h.Ready)
	return r
}

// Live handles GET /api/health. It answers as long as the process runs.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready handles GET /api/health/ready. Readiness requires the database.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]any{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	render.JSON(w, r, map[string]any{"status": "ready"})
}

// Info handles GET /api/info.
func Info(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"service": "licensegate",
		"version": contracts.GetVersionInfo(),
	})
}
