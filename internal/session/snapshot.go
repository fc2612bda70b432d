package session

import (
	"time"

	"github.com/stemsi/exstem-online/internal/model"
)

// Snapshot is a point-in-time view of a session, safe to send to the student.
type Snapshot struct {
	SubjectID        string                   `json:"subject_id"`
	SubjectName      string                   `json:"subject_name"`
	State            State                    `json:"state"`
	Cursor           int                      `json:"cursor"`
	QuestionCount    int                      `json:"question_count"`
	Current          model.QuestionForStudent `json:"current_question"`
	Answers          map[string]int           `json:"answers"`
	Answered         int                      `json:"answered"`
	RemainingSeconds int                      `json:"remaining_seconds"`
	Violations       int                      `json:"violations"`
	ViolationLimit   int                      `json:"violation_limit"`
	GraceRemaining   int                      `json:"grace_remaining,omitempty"`
	SubmitReason     model.SubmitReason       `json:"submit_reason,omitempty"`
	StartedAt        time.Time                `json:"started_at"`
}

// Snapshot captures the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	answers := make(map[string]int, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}

	s := Snapshot{
		SubjectID:        c.subject.ID,
		SubjectName:      c.subject.Name,
		State:            c.state,
		Cursor:           c.cursor,
		QuestionCount:    len(c.subject.Questions),
		Answers:          answers,
		Answered:         len(answers),
		RemainingSeconds: int(time.Duration(c.remaining) * TickInterval / time.Second),
		Violations:       c.violations,
		ViolationLimit:   c.threshold,
		SubmitReason:     c.reason,
		StartedAt:        c.startedAt,
	}
	if c.cursor < len(c.subject.Questions) {
		s.Current = c.subject.Questions[c.cursor].ForStudent()
	}
	if c.state == StateWarning {
		s.GraceRemaining = c.graceLeft
	}
	return s
}
