package api

import (
	"net/http"
	"time"

	"github.com/okian/mealmax/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves liveness and Prometheus scrapes.
type HealthHandler struct {
	startedAt time.Time
	metrics   http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now(),
		metrics:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

// HandleMetrics serves the custom metrics registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
