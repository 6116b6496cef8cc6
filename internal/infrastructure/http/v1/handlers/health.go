package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invsync/internal/infrastructure/storage/postgres"
)

// HealthHandler provides liveness/readiness probes against the local database.
type HealthHandler struct {
	pool *postgres.Pool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": gin.H{"database": "unhealthy: " + err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": gin.H{"database": "healthy"},
	})
}
