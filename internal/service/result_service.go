package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/stemsi/exstem-online/internal/catalog"
	"github.com/stemsi/exstem-online/internal/grading"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/schedule"
	"github.com/xuri/excelize/v2"
)

// ErrResultNotFound is returned when a student has no attempt for a subject.
var ErrResultNotFound = errors.New("result not found")

// AttemptLister reads recorded attempts.
type AttemptLister interface {
	ListAttempts(ctx context.Context, filter model.AttemptFilter) ([]*model.Attempt, error)
}

// ResultView is an attempt decorated for display.
type ResultView struct {
	*model.Attempt
	SubjectName string `json:"subject_name"`
	Percentage  int    `json:"percentage"`
	Grade       string `json:"grade"`
	Passed      bool   `json:"passed"`
}

// QuestionReview is one question of a submitted attempt with the answer key revealed.
type QuestionReview struct {
	QuestionID    string   `json:"question_id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	Selected      *int     `json:"selected"`
	CorrectAnswer int      `json:"correct_answer"`
	Correct       bool     `json:"correct"`
	Marks         int      `json:"marks"`
}

// ResultDetail is a single result with its per-question review.
type ResultDetail struct {
	ResultView
	Answered  int              `json:"answered"`
	Correct   int              `json:"correct"`
	Questions []QuestionReview `json:"questions"`
}

// AdminResultRow is one line of the administrator's results table.
type AdminResultRow struct {
	ResultView
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
}

// Statistics is the administrator dashboard header.
type Statistics struct {
	TotalStudents int `json:"total_students"`
	TotalExams    int `json:"total_exams"`
	TotalAttempts int `json:"total_attempts"`
	AverageScore  int `json:"average_score"`
}

// StudentSummary is a roster entry with its attempt count.
type StudentSummary struct {
	model.Student
	ExamsAttempted int `json:"exams_attempted"`
}

// SubjectStats is a subject with its attempt count and average.
type SubjectStats struct {
	model.SubjectSummary
	Attempts          int `json:"attempts"`
	AveragePercentage int `json:"average_percentage"`
}

// ScheduleView is a schedule with its subject name and current status.
type ScheduleView struct {
	model.Schedule
	SubjectName string          `json:"subject_name"`
	Status      schedule.Status `json:"status"`
}

// ResultService presents attempts to students and administrators.
type ResultService struct {
	catalog  *catalog.Catalog
	attempts AttemptLister
	now      func() time.Time
}

// NewResultService creates a new ResultService.
func NewResultService(cat *catalog.Catalog, attempts AttemptLister) *ResultService {
	return &ResultService{catalog: cat, attempts: attempts, now: time.Now}
}

func (s *ResultService) view(a *model.Attempt) ResultView {
	v := ResultView{Attempt: a, SubjectName: "Unknown Subject"}
	if subj, ok := s.catalog.Subject(a.SubjectID); ok {
		v.SubjectName = subj.Name
	}
	v.Percentage = grading.Percentage(a.Score, a.TotalMarks)
	v.Grade = grading.Letter(v.Percentage)
	v.Passed = grading.Passed(v.Percentage)
	return v
}

// StudentResults lists a student's results, oldest first.
func (s *ResultService) StudentResults(ctx context.Context, studentID string) ([]ResultView, error) {
	attempts, err := s.attempts.ListAttempts(ctx, model.AttemptFilter{StudentID: studentID})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]ResultView, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, s.view(a))
	}
	return out, nil
}

// ResultDetail returns the review of one submitted subject.
func (s *ResultService) ResultDetail(ctx context.Context, studentID, subjectID string) (*ResultDetail, error) {
	attempts, err := s.attempts.ListAttempts(ctx, model.AttemptFilter{StudentID: studentID, SubjectID: subjectID})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil, ErrResultNotFound
	}
	a := attempts[0]

	detail := &ResultDetail{ResultView: s.view(a)}
	subj, ok := s.catalog.Subject(subjectID)
	if !ok {
		return detail, nil
	}

	graded := grading.Grade(subj, a.Answers)
	detail.Answered = graded.Answered
	detail.Correct = graded.Correct
	detail.Questions = make([]QuestionReview, 0, len(graded.PerQuestion))
	for i, qr := range graded.PerQuestion {
		q := subj.Questions[i]
		detail.Questions = append(detail.Questions, QuestionReview{
			QuestionID:    qr.QuestionID,
			Question:      q.Text,
			Options:       q.Options,
			Selected:      qr.Selected,
			CorrectAnswer: qr.CorrectAnswer,
			Correct:       qr.Correct,
			Marks:         qr.Marks,
		})
	}
	return detail, nil
}

// AllResults lists every attempt with the student's name, oldest first.
func (s *ResultService) AllResults(ctx context.Context) ([]AdminResultRow, error) {
	attempts, err := s.attempts.ListAttempts(ctx, model.AttemptFilter{})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	rows := make([]AdminResultRow, 0, len(attempts))
	for _, a := range attempts {
		row := AdminResultRow{ResultView: s.view(a), StudentName: "Unknown Student"}
		if st, ok := s.catalog.StudentByID(a.StudentID); ok {
			row.StudentName = st.Name
			row.RollNumber = st.RollNumber
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Statistics computes the dashboard totals. The average is the rounded mean
// of the attempts' unrounded percentages, 0 when nothing was attempted.
func (s *ResultService) Statistics(ctx context.Context) (*Statistics, error) {
	attempts, err := s.attempts.ListAttempts(ctx, model.AttemptFilter{})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return &Statistics{
		TotalStudents: len(s.catalog.Students),
		TotalExams:    len(s.catalog.Subjects),
		TotalAttempts: len(attempts),
		AverageScore:  averagePercentage(attempts),
	}, nil
}

func averagePercentage(attempts []*model.Attempt) int {
	if len(attempts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range attempts {
		if a.TotalMarks > 0 {
			sum += float64(a.Score) / float64(a.TotalMarks) * 100
		}
	}
	return int(math.Round(sum / float64(len(attempts))))
}

// StudentSummaries lists the roster with attempt counts.
func (s *ResultService) StudentSummaries(ctx context.Context) ([]StudentSummary, error) {
	attempts, err := s.attempts.ListAttempts(ctx, model.AttemptFilter{})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	counts := make(map[string]int)
	for _, a := range attempts {
		counts[a.StudentID]++
	}
	out := make([]StudentSummary, 0, len(s.catalog.Students))
	for _, st := range s.catalog.Students {
		out = append(out, StudentSummary{Student: st, ExamsAttempted: counts[st.ID]})
	}
	return out, nil
}

// SubjectSummaries lists subjects with attempt counts and averages.
func (s *ResultService) SubjectSummaries(ctx context.Context) ([]SubjectStats, error) {
	attempts, err := s.attempts.ListAttempts(ctx, model.AttemptFilter{})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	bySubject := make(map[string][]*model.Attempt)
	for _, a := range attempts {
		bySubject[a.SubjectID] = append(bySubject[a.SubjectID], a)
	}
	out := make([]SubjectStats, 0, len(s.catalog.Subjects))
	for i := range s.catalog.Subjects {
		subj := &s.catalog.Subjects[i]
		out = append(out, SubjectStats{
			SubjectSummary:    subj.Summary(),
			Attempts:          len(bySubject[subj.ID]),
			AveragePercentage: averagePercentage(bySubject[subj.ID]),
		})
	}
	return out, nil
}

// Schedules lists every schedule with its status now.
func (s *ResultService) Schedules() []ScheduleView {
	now := s.now()
	out := make([]ScheduleView, 0, len(s.catalog.Schedules))
	for _, sched := range s.catalog.Schedules {
		v := ScheduleView{Schedule: sched, Status: schedule.Evaluate(sched, now)}
		if subj, ok := s.catalog.Subject(sched.SubjectID); ok {
			v.SubjectName = subj.Name
		}
		out = append(out, v)
	}
	return out
}

const resultsSheet = "Results"

var resultsHeader = []interface{}{
	"Student", "Roll Number", "Subject", "Score", "Total Marks",
	"Percentage", "Grade", "Status", "Reason", "Tab Switches", "Time Spent (s)", "Attempted At",
}

// ExportXLSX writes the results table as an Excel workbook.
func (s *ResultService) ExportXLSX(ctx context.Context, w io.Writer) error {
	rows, err := s.AllResults(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		status := "Failed"
		if r.Passed {
			status = "Passed"
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.StudentName, r.RollNumber, r.SubjectName, r.Score, r.TotalMarks,
			r.Percentage, r.Grade, status, string(r.Reason), r.TabSwitches, r.TimeSpent,
			r.AttemptedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
