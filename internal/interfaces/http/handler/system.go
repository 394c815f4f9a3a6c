package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/persistence"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// poolReporter is implemented by *persistence.Database.
type poolReporter interface {
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler serves liveness and build information.
type SystemHandler struct {
	BaseHandler
	db      Pinger
	name    string
	version string
	started time.Time
}

func NewSystemHandler(db Pinger, name, version string) *SystemHandler {
	return &SystemHandler{db: db, name: name, version: version, started: time.Now()}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Time     string `json:"time"`
	Database string `json:"database" example:"ok"`
}

// InfoResponse describes the running build.
type InfoResponse struct {
	Name    string `json:"name" example:"settlement"`
	Version string `json:"version" example:"1.0.0"`
	Uptime  string `json:"uptime" example:"3h2m1s"`
	// Pool is omitted when the database handle cannot report pool stats.
	Pool *persistence.ConnectionStats `json:"pool,omitempty"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.db.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Time: now, Database: "error"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Time: now, Database: "ok"})
}

// Info godoc
// @ID           systemInfo
// @Summary      Build information
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[InfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	info := InfoResponse{
		Name:    h.name,
		Version: h.version,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
	}
	if pr, ok := h.db.(poolReporter); ok {
		if stats, err := pr.Stats(); err == nil {
			info.Pool = &stats
		}
	}
	h.Success(c, info)
}
