package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
	"github.com/stemsi/exstem-online/internal/session"
)

// examErrorCode maps exam errors onto an HTTP status and API code.
func examErrorCode(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, session.ErrNotStudent):
		return http.StatusForbidden, response.ErrStudentAccessOnly
	case errors.Is(err, session.ErrSubjectNotFound):
		return http.StatusNotFound, response.ErrSubjectNotFound
	case errors.Is(err, model.ErrAlreadyAttempted):
		return http.StatusConflict, response.ErrAlreadyAttempted
	case errors.Is(err, service.ErrExamNotAvailable):
		return http.StatusForbidden, response.ErrExamNotAvailable
	case errors.Is(err, service.ErrNoActiveSession):
		return http.StatusNotFound, response.ErrNoActiveSession
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict, response.ErrSessionClosed
	case errors.Is(err, session.ErrAlreadySubmitted):
		return http.StatusConflict, response.ErrAlreadySubmitted
	case errors.Is(err, session.ErrUnknownQuestion):
		return http.StatusBadRequest, response.ErrUnknownQuestion
	case errors.Is(err, session.ErrInvalidOption):
		return http.StatusBadRequest, response.ErrInvalidOption
	case errors.Is(err, session.ErrInvalidQuestionIndex):
		return http.StatusBadRequest, response.ErrInvalidQuestionIndex
	case errors.Is(err, session.ErrPersistFailed):
		return http.StatusInternalServerError, response.ErrSubmitFailed
	case errors.Is(err, service.ErrResultNotFound):
		return http.StatusNotFound, response.ErrResultNotFound
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

func failExam(c *gin.Context, err error) {
	status, code := examErrorCode(err)
	response.Fail(c, status, code)
}
