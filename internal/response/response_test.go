package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"n": 1}) })
	r.GET("/fail", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"name": "bad"})
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var ok Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Nil(t, ok.Error)
	assert.Equal(t, "req-1", ok.Metadata.RequestID)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, ok.Metadata.Timestamp)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var fail Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fail))
	require.NotNil(t, fail.Error)
	assert.Equal(t, ErrValidation, fail.Error.Code)
	assert.Equal(t, GetMessage(ErrValidation), fail.Error.Message)
	assert.Equal(t, "bad", fail.Error.Fields["name"])
	assert.NotEmpty(t, fail.Metadata.RequestID)
}

func TestEveryCodeHasMessage(t *testing.T) {
	codes := []ErrCode{
		ErrInvalidCredentials, ErrStudentNotFound, ErrUserNotFound, ErrSessionInvalidated,
		ErrTokenRequired, ErrTokenInvalid, ErrStudentAccessOnly, ErrAdminAccessOnly,
		ErrValidation, ErrInvalidPayload, ErrNotFound, ErrEmailTaken, ErrSubjectNotFound,
		ErrExamNotAvailable, ErrAlreadyAttempted, ErrNoActiveSession, ErrSessionClosed,
		ErrAlreadySubmitted, ErrUnknownQuestion, ErrInvalidOption, ErrInvalidQuestionIndex,
		ErrSubmitFailed, ErrResultNotFound, ErrRateLimitExceeded, ErrInternal,
	}
	fallback := GetMessage("SOMETHING_ELSE")
	for _, code := range codes {
		assert.NotEqual(t, fallback, GetMessage(code), code)
	}
}
