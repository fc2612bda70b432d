package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-online/internal/middleware"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
	"github.com/stemsi/exstem-online/internal/session"
	"github.com/stemsi/exstem-online/internal/validator"
)

// StudentPortalHandler handles student-facing endpoints (lobby, exam taking, results).
type StudentPortalHandler struct {
	examService   *service.ExamService
	resultService *service.ResultService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(examService *service.ExamService, resultService *service.ResultService) *StudentPortalHandler {
	return &StudentPortalHandler{
		examService:   examService,
		resultService: resultService,
	}
}

// GetLobby godoc
// GET /api/v1/student/lobby
// Returns the subjects of the student's year with their availability.
func (h *StudentPortalHandler) GetLobby(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	lobby, err := h.examService.Lobby(c.Request.Context(), identity)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": identity, "exams": lobby})
}

// StartExam godoc
// POST /api/v1/student/exams/:subject_id/start
// Opens an exam session (idempotent while one is running).
func (h *StudentPortalHandler) StartExam(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	ctrl, err := h.examService.Start(c.Request.Context(), identity, c.Param("subject_id"))
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// activeSession loads the running session for the :subject_id param, writing
// the error response itself when there is none.
func (h *StudentPortalHandler) activeSession(c *gin.Context) (*session.Controller, bool) {
	ctrl, err := h.examService.Active(middleware.GetIdentity(c), c.Param("subject_id"))
	if err != nil {
		failExam(c, err)
		return nil, false
	}
	return ctrl, true
}

// GetState godoc
// GET /api/v1/student/exams/:subject_id/state
func (h *StudentPortalHandler) GetState(c *gin.Context) {
	ctrl, ok := h.activeSession(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// SelectAnswer godoc
// PUT /api/v1/student/exams/:subject_id/answers
func (h *StudentPortalHandler) SelectAnswer(c *gin.Context) {
	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctrl, ok := h.activeSession(c)
	if !ok {
		return
	}
	if err := ctrl.SelectAnswer(req.QuestionID, *req.Option); err != nil {
		failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Navigate godoc
// PUT /api/v1/student/exams/:subject_id/cursor
func (h *StudentPortalHandler) Navigate(c *gin.Context) {
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctrl, ok := h.activeSession(c)
	if !ok {
		return
	}
	if err := navigate(ctrl, req.Index, req.Step); err != nil {
		failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

func navigate(ctrl *session.Controller, index *int, step int) error {
	switch {
	case index != nil:
		return ctrl.Navigate(*index)
	case step > 0:
		ctrl.Next()
	case step < 0:
		ctrl.Previous()
	}
	if ctrl.State() == session.StateTerminated || ctrl.State() == session.StateSubmitting {
		return session.ErrSessionClosed
	}
	return nil
}

// ReportViolation godoc
// POST /api/v1/student/exams/:subject_id/violations
// Records that the exam tab lost visibility.
func (h *StudentPortalHandler) ReportViolation(c *gin.Context) {
	ctrl, ok := h.activeSession(c)
	if !ok {
		return
	}
	if _, err := ctrl.RecordViolation(); err != nil {
		failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// SubmitExam godoc
// POST /api/v1/student/exams/:subject_id/submit
// Grades and records the attempt.
func (h *StudentPortalHandler) SubmitExam(c *gin.Context) {
	ctrl, ok := h.activeSession(c)
	if !ok {
		return
	}

	attempt, err := ctrl.Submit(c.Request.Context(), model.SubmitReasonManual)
	if err != nil {
		failExam(c, err)
		return
	}

	detail, err := h.resultService.ResultDetail(c.Request.Context(), attempt.StudentID, attempt.SubjectID)
	if err != nil {
		failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// GetResults godoc
// GET /api/v1/student/results
func (h *StudentPortalHandler) GetResults(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	results, err := h.resultService.StudentResults(c.Request.Context(), identity.ID)
	if err != nil {
		failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetResultDetail godoc
// GET /api/v1/student/results/:subject_id
func (h *StudentPortalHandler) GetResultDetail(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	detail, err := h.resultService.ResultDetail(c.Request.Context(), identity.ID, c.Param("subject_id"))
	if err != nil {
		failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}
