package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/grading"
	"github.com/stemsi/exstem-online/internal/middleware"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
	"github.com/stemsi/exstem-online/internal/session"
	ws "github.com/stemsi/exstem-online/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live exam session over WebSocket.
type WSHandler struct {
	examService  *service.ExamService
	log          zerolog.Logger
	upgrader     websocket.Upgrader
	pushInterval time.Duration
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService:  examService,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
		pushInterval: session.TickInterval,
	}
}

// ExamWebSocketStream godoc
// WS /ws/v1/student/exams/:subject_id/stream?token=
// Starts or resumes the student's session and streams its state. The session
// keeps running when the connection drops.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	ctrl, err := h.examService.Start(c.Request.Context(), identity, c.Param("subject_id"))
	if err != nil {
		failExam(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Str("student_id", identity.ID).
		Str("subject_id", c.Param("subject_id")).
		Logger()
	wsLog.Info().Msg("Student connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.watch(ctx, conn, ctrl, wsLog)

	h.writeState(conn, ctrl)

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = conn.WriteError(string(response.ErrInvalidPayload), response.GetMessage(response.ErrInvalidPayload))
			continue
		}

		switch env.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, ctrl, data)
		case ws.ActionNavigate:
			h.handleNavigate(conn, ctrl, data)
		case ws.ActionVisibilityLost:
			h.handleVisibilityLost(conn, ctrl)
		case ws.ActionSubmit:
			// The graded event is pushed by watch once the session terminates.
			if _, err := ctrl.Submit(ctx, model.SubmitReasonManual); err != nil {
				writeExamError(conn, err)
			}
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			_ = conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(env.Action))
		}
	}
}

func (h *WSHandler) handleAnswer(conn *ws.Conn, ctrl *session.Controller, data []byte) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(data, &req); err != nil || req.QuestionID == "" || req.Option == nil {
		_ = conn.WriteError(string(response.ErrInvalidPayload), "question_id and option are required")
		return
	}
	if err := ctrl.SelectAnswer(req.QuestionID, *req.Option); err != nil {
		writeExamError(conn, err)
		return
	}
	h.writeState(conn, ctrl)
}

func (h *WSHandler) handleNavigate(conn *ws.Conn, ctrl *session.Controller, data []byte) {
	var req ws.NavigateRequest
	if err := json.Unmarshal(data, &req); err != nil || (req.Index == nil && req.Step == 0) {
		_ = conn.WriteError(string(response.ErrInvalidPayload), "index or step is required")
		return
	}
	if err := navigate(ctrl, req.Index, req.Step); err != nil {
		writeExamError(conn, err)
		return
	}
	h.writeState(conn, ctrl)
}

func (h *WSHandler) handleVisibilityLost(conn *ws.Conn, ctrl *session.Controller) {
	state, err := ctrl.RecordViolation()
	if err != nil {
		writeExamError(conn, err)
		return
	}
	if state == session.StateWarning {
		snap := ctrl.Snapshot()
		_ = conn.WriteTyped(ws.WarningResponse{
			Event:          ws.EventWarning,
			Violations:     snap.Violations,
			GraceRemaining: snap.GraceRemaining,
			Message:        "Tab switching detected. Your exam will be submitted automatically.",
		})
		return
	}
	h.writeState(conn, ctrl)
}

// watch pushes the countdown and delivers the outcome once the session ends,
// whichever trigger ended it.
func (h *WSHandler) watch(ctx context.Context, conn *ws.Conn, ctrl *session.Controller, log zerolog.Logger) {
	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ctrl.Done():
			attempt, err := ctrl.Result()
			if err != nil {
				writeExamError(conn, err)
			} else {
				_ = conn.WriteTyped(gradedEvent(attempt))
				log.Info().Str("reason", string(attempt.Reason)).Msg("Graded result pushed")
			}
			_ = conn.Close()
			return
		case <-ticker.C:
			h.writeState(conn, ctrl)
		}
	}
}

func (h *WSHandler) writeState(conn *ws.Conn, ctrl *session.Controller) {
	_ = conn.WriteTyped(ws.StateResponse{Event: ws.EventState, State: ctrl.Snapshot()})
}

func gradedEvent(a *model.Attempt) ws.GradedResponse {
	pct := grading.Percentage(a.Score, a.TotalMarks)
	return ws.GradedResponse{
		Event:      ws.EventGraded,
		AttemptID:  a.ID,
		Reason:     string(a.Reason),
		Score:      a.Score,
		TotalMarks: a.TotalMarks,
		Percentage: pct,
		Grade:      grading.Letter(pct),
	}
}

func writeExamError(conn *ws.Conn, err error) {
	_, code := examErrorCode(err)
	_ = conn.WriteError(string(code), response.GetMessage(code))
}
