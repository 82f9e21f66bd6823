package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/assessment"
	"github.com/Vroy4298/land-tax-system/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "1.0.0"
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        Pinger
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(db Pinger, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version        string `json:"version"`
	Environment    string `json:"environment"`
	Uptime         string `json:"uptime"`
	FormulaVersion string `json:"formulaVersion"`
}

// Health handles GET /health.
// Liveness only; dependencies are not checked.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// Ready handles GET /health/ready.
// Returns 503 Service Unavailable when the database cannot be pinged.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "not_ready", Database: "disconnected"})
		return
	}
	if err := h.db.Ping(ctx); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Database health check failed", err, map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
			})
		}

		c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "not_ready", Database: "disconnected"})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{Status: "ready", Database: "connected"})
}

// Info handles GET /api/v1/info.
// Clients use formulaVersion to tell whether stored assessments are current.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:        APIVersion,
		Environment:    h.env,
		Uptime:         formatUptime(time.Since(h.startTime)),
		FormulaVersion: assessment.FormulaVersion,
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
