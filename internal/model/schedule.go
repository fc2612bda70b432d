package model

// Schedule is the attempt window of a subject. Date is "2006-01-02",
// StartTime and EndTime are "15:04" wall-clock values.
type Schedule struct {
	ID        string `json:"id" yaml:"id"`
	SubjectID string `json:"subject_id" yaml:"subject_id"`
	Date      string `json:"date" yaml:"date"`
	StartTime string `json:"start_time" yaml:"start_time"`
	EndTime   string `json:"end_time" yaml:"end_time"`
	IsActive  bool   `json:"is_active" yaml:"is_active"`
}
