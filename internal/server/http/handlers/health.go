package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	cache HealthChecker
}

// NewHealthHandler constructs HealthHandler. A nil checker always reports ok.
func NewHealthHandler(cache HealthChecker) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(c *gin.Context) {
	if h.cache != nil {
		if err := h.cache.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "cache": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
