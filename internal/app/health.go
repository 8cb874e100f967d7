package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

// check pings the hosted auth service. An unconfigured backend is not a
// failure; the gateway still serves weather and static state.
func (h *HealthChecker) check(ctx context.Context) error {
	if !h.infra.Supabase().Configured() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	return h.infra.Supabase().Health(ctx)
}

func (h *HealthChecker) Handler(c *gin.Context) {
	if err := h.check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"error":  err.Error(),
		})
		return
	}

	status := gin.H{
		"status":  "pass",
		"backend": "configured",
	}
	if !h.infra.Supabase().Configured() {
		status["backend"] = "unconfigured"
	}

	c.JSON(http.StatusOK, status)
}
