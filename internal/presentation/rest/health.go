package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	pgutil "github.com/bibbank/credit-service/pkg/postgres"
)

// HealthHandler serves liveness, readiness and metrics over HTTP.
type HealthHandler struct {
	db      pgutil.Pinger
	metrics http.Handler
	service string
	logger  *slog.Logger
}

// NewHealthHandler creates a health check HTTP handler. metrics may be nil.
func NewHealthHandler(service string, db pgutil.Pinger, metrics http.Handler, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, metrics: metrics, service: service, logger: logger}
}

// RegisterRoutes attaches health-check routes to the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.check(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"service": h.service,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": h.service,
	})
}

func (h *HealthHandler) check(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	return pgutil.HealthCheck(ctx, h.db)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
