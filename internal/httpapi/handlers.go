package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-gateway/internal/flows"
	"crm-gateway/pkg/logger"
)

// Handlers groups JSON handlers for dependency injection.
// Keep these thin: call internal services, return JSON.

type Handlers struct {
	Flows *flows.Service
}

// ListFlows returns the flow registry, sorted by key. A backing-store
// failure is 503 with a JSON error so callers can tell it apart from a
// legitimately empty registry.
func (h Handlers) ListFlows(c *gin.Context) {
	if h.Flows == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "flow registry not configured"})
		return
	}
	out, err := h.Flows.List(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("flow registry lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "flow registry unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flows": out})
}
