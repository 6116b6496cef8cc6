package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invsync/internal/core/metrics"
)

// MetricsHandler renders the process-wide counter/gauge registry as plain
// text. There is no Prometheus exposition format here (out of scope per
// SPEC_FULL.md) — this is a minimal operator-facing snapshot.
type MetricsHandler struct {
	registry *metrics.Registry
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(registry *metrics.Registry) *MetricsHandler {
	return &MetricsHandler{registry: registry}
}

// Render handles GET /metrics.
func (h *MetricsHandler) Render(c *gin.Context) {
	c.String(http.StatusOK, h.registry.Render())
}
