package model

import "time"

// Violation is one loss of foreground visibility during an exam. Count is
// the session's running total including this one.
type Violation struct {
	StudentID  string    `json:"student_id"`
	SubjectID  string    `json:"subject_id"`
	Count      int       `json:"count"`
	Warning    bool      `json:"warning"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ViolationFilter narrows violation log queries; empty fields match everything.
type ViolationFilter struct {
	StudentID string
	SubjectID string
	Limit     int
}
