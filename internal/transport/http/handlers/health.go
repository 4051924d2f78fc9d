package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck probes one backing dependency.
type ReadinessCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	checks    []ReadinessCheck
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{startedAt: time.Now().UTC(), checks: checks}
}

// Status reports liveness without touching any dependency.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Readiness probes every registered dependency and reports 503 when
// any of them fails.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))

	for _, check := range h.checks {
		if check.Probe == nil {
			continue
		}
		if err := check.Probe(ctx); err != nil {
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "not ready"
	}

	c.JSON(status, ReadinessResponse{Status: overall, Checks: results})
}
