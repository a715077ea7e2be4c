package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// GetHealth responds with service and dependency status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	checks := gin.H{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = gin.H{"status": "disconnected", "error": err.Error()}
			status = "degraded"
			continue
		}
		checks[name] = gin.H{"status": "connected"}
	}

	utils.Success(c, 200, "Service is "+status, gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": checks,
	})
}
