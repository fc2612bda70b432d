package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/response"
)

// Pinger is a dependency whose liveness is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SessionCounter reports the number of running exam sessions.
type SessionCounter interface {
	ActiveCount() int
}

// SystemHandler reports service health and Go runtime figures.
type SystemHandler struct {
	deps      map[string]Pinger
	sessions  SessionCounter
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(deps map[string]Pinger, sessions SessionCounter, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		deps:      deps,
		sessions:  sessions,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status         string            `json:"status"`
	Uptime         string            `json:"uptime"`
	Dependencies   map[string]string `json:"dependencies"`
	ActiveSessions int               `json:"active_sessions"`
	Goroutines     int               `json:"goroutines"`
	HeapAllocBytes uint64            `json:"heap_alloc_bytes"`
}

// Health godoc
// GET /health
// Returns 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{
		Status:       "ok",
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Dependencies: make(map[string]string, len(h.deps)),
		Goroutines:   runtime.NumGoroutine(),
	}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			report.Dependencies[name] = "down"
			report.Status = "degraded"
			continue
		}
		report.Dependencies[name] = "up"
	}
	if h.sessions != nil {
		report.ActiveSessions = h.sessions.ActiveCount()
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.HeapAllocBytes = mem.HeapAlloc

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}
