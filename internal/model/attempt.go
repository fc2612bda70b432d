package model

import "time"

// SubmitReason records what ended an exam session.
type SubmitReason string

const (
	SubmitReasonManual         SubmitReason = "MANUAL"
	SubmitReasonTimeout        SubmitReason = "TIMEOUT"
	SubmitReasonViolationLimit SubmitReason = "VIOLATION_LIMIT"
)

// Attempt is one student's completed submission for one subject.
// At most one Attempt exists per (StudentID, SubjectID).
type Attempt struct {
	ID          string         `json:"id"`
	StudentID   string         `json:"student_id"`
	SubjectID   string         `json:"subject_id"`
	Answers     map[string]int `json:"answers"`
	Score       int            `json:"score"`
	TotalMarks  int            `json:"total_marks"`
	AttemptedAt time.Time      `json:"attempted_at"`
	TimeSpent   int            `json:"time_spent"`
	TabSwitches int            `json:"tab_switches"`
	Reason      SubmitReason   `json:"reason"`
}

// AttemptFilter narrows ListAttempts; empty fields match everything.
type AttemptFilter struct {
	StudentID string
	SubjectID string
}

// Match reports whether a satisfies the filter.
func (f AttemptFilter) Match(a *Attempt) bool {
	if f.StudentID != "" && a.StudentID != f.StudentID {
		return false
	}
	if f.SubjectID != "" && a.SubjectID != f.SubjectID {
		return false
	}
	return true
}
