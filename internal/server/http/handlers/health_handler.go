package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler exposes a liveness probe over the backing store.
type HealthHandler struct {
	health HealthFacade
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(health HealthFacade) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.health.HealthCheck(c.Request.Context()); err != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.Status(http.StatusOK)
}
