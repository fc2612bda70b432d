package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
)

const (
	refreshInterval   = 5 * time.Second
	keepAliveInterval = 30 * time.Second
	maxViolationLimit = 500
)

type MonitorHandler struct {
	monitorService *service.MonitorService
	subjectIDs     []string
	log            zerolog.Logger

	refreshInterval   time.Duration
	keepAliveInterval time.Duration
}

// NewMonitorHandler serves the proctoring views. subjectIDs are summarized
// when a violation summary request names no subject.
func NewMonitorHandler(monitorService *service.MonitorService, subjectIDs []string, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitorService:    monitorService,
		subjectIDs:        subjectIDs,
		log:               log.With().Str("component", "monitor_handler").Logger(),
		refreshInterval:   refreshInterval,
		keepAliveInterval: keepAliveInterval,
	}
}

// GetOverview godoc
// GET /api/v1/admin/monitor
func (h *MonitorHandler) GetOverview(c *gin.Context) {
	response.Success(c, http.StatusOK, h.monitorService.Overview())
}

// StreamOverview godoc
// GET /api/v1/admin/monitor/stream
// Server-sent events: a "snapshot" right away, then one every refresh
// interval, with "ping" keep-alives in between.
func (h *MonitorHandler) StreamOverview(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("snapshot", h.monitorService.Overview())
	c.Writer.Flush()

	refresh := time.NewTicker(h.refreshInterval)
	defer refresh.Stop()
	keepAlive := time.NewTicker(h.keepAliveInterval)
	defer keepAlive.Stop()

	h.log.Info().Msg("Admin attached to live monitor")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin detached from live monitor")
			return

		case <-refresh.C:
			c.SSEvent("snapshot", h.monitorService.Overview())
			c.Writer.Flush()

		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}

// ListViolations godoc
// GET /api/v1/admin/violations?student_id=&subject_id=&limit=
func (h *MonitorHandler) ListViolations(c *gin.Context) {
	filter := model.ViolationFilter{
		StudentID: c.Query("student_id"),
		SubjectID: c.Query("subject_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxViolationLimit {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"limit": "limit must be between 1 and " + strconv.Itoa(maxViolationLimit),
			})
			return
		}
		filter.Limit = limit
	}

	violations, err := h.monitorService.RecentViolations(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list violations")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"violations": violations})
}

// ViolationSummary godoc
// GET /api/v1/admin/violations/summary?subject_id=...
func (h *MonitorHandler) ViolationSummary(c *gin.Context) {
	ids := c.QueryArray("subject_id")
	if len(ids) == 0 {
		ids = h.subjectIDs
	}

	summary, err := h.monitorService.ViolationCounts(c.Request.Context(), ids)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to summarize violations")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": summary})
}
