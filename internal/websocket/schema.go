package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer         Action = "answer"
	ActionNavigate       Action = "navigate"
	ActionVisibilityLost Action = "visibility_lost"
	ActionSubmit         Action = "submit"
	ActionPing           Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest selects an option for a question.
type AnswerRequest struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id"`
	Option     *int   `json:"option"`
}

// NavigateRequest moves the cursor. Index wins over Step when both are set;
// Step is +1 or -1.
type NavigateRequest struct {
	Action Action `json:"action"`
	Index  *int   `json:"index,omitempty"`
	Step   int    `json:"step,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState   Event = "state"
	EventWarning Event = "warning"
	EventGraded  Event = "graded"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// StateResponse carries a session snapshot.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}

// WarningResponse announces that the violation limit was reached.
type WarningResponse struct {
	Event          Event  `json:"event"`
	Violations     int    `json:"violations"`
	GraceRemaining int    `json:"grace_remaining"`
	Message        string `json:"message"`
}

// GradedResponse is sent once the attempt is recorded, whatever ended it.
type GradedResponse struct {
	Event      Event  `json:"event"`
	AttemptID  string `json:"attempt_id"`
	Reason     string `json:"reason"`
	Score      int    `json:"score"`
	TotalMarks int    `json:"total_marks"`
	Percentage int    `json:"percentage"`
	Grade      string `json:"grade"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
