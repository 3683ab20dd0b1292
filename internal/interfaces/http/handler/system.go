package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ecom-auditor/backend/internal/infrastructure/persistence"
	"github.com/ecom-auditor/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system and health API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	version   string
	db        *persistence.Database
	redis     redis.UniversalClient
}

// NewSystemHandler creates a new SystemHandler. db and redis are optional;
// a nil dependency is skipped during health checks.
func NewSystemHandler(version string, db *persistence.Database, redisClient redis.UniversalClient) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		version:   version,
		db:        db,
		redis:     redisClient,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Marketplace Auditor API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a simple liveness endpoint
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// HealthCheck is the status of one dependency
type HealthCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse represents the aggregate health response
type HealthResponse struct {
	Status string                 `json:"status"`
	Uptime string                 `json:"uptime"`
	Checks map[string]HealthCheck `json:"checks"`
}

// Health reports the aggregate health of the service and its dependencies.
// Returns 503 when any configured dependency is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
		Checks: make(map[string]HealthCheck),
	}

	if h.db != nil {
		check := HealthCheck{Status: "ok"}
		if err := h.db.Ping(); err != nil {
			check.Status = "unavailable"
			check.Error = err.Error()
			resp.Status = "degraded"
		}
		resp.Checks["database"] = check
	}

	if h.redis != nil {
		check := HealthCheck{Status: "ok"}
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			check.Status = "unavailable"
			check.Error = err.Error()
			resp.Status = "degraded"
		}
		resp.Checks["redis"] = check
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// RegisterRoutes registers system routes on the given group.
// The health route is exempt from authentication via the JWT skip list.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)

	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/ping", h.Ping)
	}
}
