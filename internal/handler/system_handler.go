package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler reports process health and dependency reachability.
type SystemHandler struct {
	storage   Pinger
	cache     Pinger
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(storage, cache Pinger, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		storage:   storage,
		cache:     cache,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status     string `json:"status"`
	Storage    string `json:"storage"`
	Cache      string `json:"cache"`
	Uptime     string `json:"uptime"`
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
}

// Health godoc
// GET /health
// Storage being unreachable turns the response into a 503; a cache outage
// only degrades it, because reads fall back to storage.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Storage:    h.check(ctx, "storage", h.storage),
		Cache:      h.check(ctx, "cache", h.cache),
		Uptime:     formatDuration(time.Since(h.startTime)),
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}

	switch {
	case report.Storage != "ok":
		report.Status = "unavailable"
		response.FailWithData(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, report)
		return
	case report.Cache != "ok":
		report.Status = "degraded"
	}
	response.Success(c, http.StatusOK, report)
}

func (h *SystemHandler) check(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
		return "down"
	}
	return "ok"
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
