package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves the administrator dashboard.
type AdminHandler struct {
	resultService *service.ResultService
	log           zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(resultService *service.ResultService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		resultService: resultService,
		log:           log.With().Str("component", "admin_handler").Logger(),
	}
}

// GetStatistics godoc
// GET /api/v1/admin/statistics
func (h *AdminHandler) GetStatistics(c *gin.Context) {
	stats, err := h.resultService.Statistics(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Statistics failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListResults godoc
// GET /api/v1/admin/results
func (h *AdminHandler) ListResults(c *gin.Context) {
	rows, err := h.resultService.AllResults(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List results failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": rows})
}

// ExportResults godoc
// GET /api/v1/admin/results/export
// Downloads every result as an Excel workbook.
func (h *AdminHandler) ExportResults(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.resultService.ExportXLSX(c.Request.Context(), &buf); err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("exam-results-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListStudents godoc
// GET /api/v1/admin/students
func (h *AdminHandler) ListStudents(c *gin.Context) {
	students, err := h.resultService.StudentSummaries(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ListSubjects godoc
// GET /api/v1/admin/subjects
func (h *AdminHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.resultService.SubjectSummaries(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// ListSchedules godoc
// GET /api/v1/admin/schedules
func (h *AdminHandler) ListSchedules(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"schedules": h.resultService.Schedules()})
}
