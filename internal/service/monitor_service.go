package service

import (
	"context"
	"sync"
	"time"

	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/session"
)

// LiveSessions lists the sessions currently running.
type LiveSessions interface {
	Sessions() []*session.Controller
}

// ViolationReader queries the violation log.
type ViolationReader interface {
	List(ctx context.Context, filter model.ViolationFilter) ([]*model.Violation, error)
	CountsBySubject(ctx context.Context, subjectID string) (map[string]int64, error)
}

// LiveSession is one running exam as seen by the proctor.
type LiveSession struct {
	StudentID        string             `json:"student_id"`
	StudentName      string             `json:"student_name"`
	RollNumber       string             `json:"roll_number"`
	SubjectID        string             `json:"subject_id"`
	SubjectName      string             `json:"subject_name"`
	State            session.State      `json:"state"`
	Answered         int                `json:"answered"`
	QuestionCount    int                `json:"question_count"`
	RemainingSeconds int                `json:"remaining_seconds"`
	Violations       int                `json:"violations"`
	GraceRemaining   int                `json:"grace_remaining,omitempty"`
	StartedAt        time.Time          `json:"started_at"`
	SubmitReason     model.SubmitReason `json:"submit_reason,omitempty"`
}

// MonitorOverview summarizes every running session.
type MonitorOverview struct {
	ActiveSessions  int           `json:"active_sessions"`
	InWarning       int           `json:"in_warning"`
	TotalViolations int           `json:"total_violations"`
	Sessions        []LiveSession `json:"sessions"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// SubjectViolations holds logged violation counts of one subject.
type SubjectViolations struct {
	SubjectID string           `json:"subject_id"`
	Counts    map[string]int64 `json:"counts"`
	Total     int64            `json:"total"`
}

// MonitorService orchestrates live exam monitoring.
type MonitorService struct {
	live       LiveSessions
	violations ViolationReader
	now        func() time.Time
}

// NewMonitorService creates a new MonitorService. violations may be nil when
// no violation log is configured.
func NewMonitorService(live LiveSessions, violations ViolationReader) *MonitorService {
	return &MonitorService{live: live, violations: violations, now: time.Now}
}

// Overview snapshots every running session.
func (s *MonitorService) Overview() *MonitorOverview {
	controllers := s.live.Sessions()
	out := &MonitorOverview{
		Sessions:    make([]LiveSession, 0, len(controllers)),
		GeneratedAt: s.now().UTC(),
	}

	for _, c := range controllers {
		snap := c.Snapshot()
		if snap.State == session.StateTerminated {
			continue
		}
		id := c.Identity()
		out.Sessions = append(out.Sessions, LiveSession{
			StudentID:        id.ID,
			StudentName:      id.Name,
			RollNumber:       id.RollNumber,
			SubjectID:        snap.SubjectID,
			SubjectName:      snap.SubjectName,
			State:            snap.State,
			Answered:         snap.Answered,
			QuestionCount:    snap.QuestionCount,
			RemainingSeconds: snap.RemainingSeconds,
			Violations:       snap.Violations,
			GraceRemaining:   snap.GraceRemaining,
			StartedAt:        snap.StartedAt,
			SubmitReason:     snap.SubmitReason,
		})
		out.TotalViolations += snap.Violations
		if snap.State == session.StateWarning {
			out.InWarning++
		}
	}
	out.ActiveSessions = len(out.Sessions)
	return out
}

// RecentViolations returns logged violations, newest first.
func (s *MonitorService) RecentViolations(ctx context.Context, filter model.ViolationFilter) ([]*model.Violation, error) {
	if s.violations == nil {
		return []*model.Violation{}, nil
	}
	return s.violations.List(ctx, filter)
}

// ViolationCounts returns the logged violation counts of each subject,
// querying the subjects concurrently.
func (s *MonitorService) ViolationCounts(ctx context.Context, subjectIDs []string) ([]SubjectViolations, error) {
	out := make([]SubjectViolations, len(subjectIDs))
	if s.violations == nil {
		for i, id := range subjectIDs {
			out[i] = SubjectViolations{SubjectID: id, Counts: map[string]int64{}}
		}
		return out, nil
	}

	errs := make([]error, len(subjectIDs))
	var wg sync.WaitGroup
	for i, id := range subjectIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			counts, err := s.violations.CountsBySubject(ctx, id)
			if err != nil {
				errs[i] = err
				return
			}
			sv := SubjectViolations{SubjectID: id, Counts: counts}
			for _, n := range counts {
				sv.Total += n
			}
			out[i] = sv
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
