package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/catalog"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/schedule"
	"github.com/stemsi/exstem-online/internal/session"
)

// Exam errors.
var (
	ErrExamNotAvailable = errors.New("exam is not available at this time")
	ErrNoActiveSession  = errors.New("no active exam session")
)

const violationLogTimeout = 2 * time.Second

// LobbyStatus represents the concrete state of an exam in the lobby.
type LobbyStatus string

const (
	LobbyStatusUpcoming   LobbyStatus = "UPCOMING"
	LobbyStatusAvailable  LobbyStatus = "AVAILABLE"
	LobbyStatusInProgress LobbyStatus = "IN_PROGRESS"
	LobbyStatusCompleted  LobbyStatus = "COMPLETED"
	LobbyStatusClosed     LobbyStatus = "CLOSED"
)

// LobbyExam represents a subject as displayed on the student dashboard.
type LobbyExam struct {
	model.SubjectSummary
	Schedule       *model.Schedule `json:"schedule,omitempty"`
	ScheduleStatus schedule.Status `json:"schedule_status"`
	HasAttempted   bool            `json:"has_attempted"`
	IsOpen         bool            `json:"is_open"`
	CanAttempt     bool            `json:"can_attempt"`
	LobbyStatus    LobbyStatus     `json:"lobby_status"`
}

type sessionKey struct {
	studentID string
	subjectID string
}

// ExamOption customizes an ExamService.
type ExamOption func(*ExamService)

// WithExamClock replaces time.Now for schedule checks.
func WithExamClock(now func() time.Time) ExamOption {
	return func(s *ExamService) { s.now = now }
}

// WithTickInterval changes how often running sessions are ticked.
func WithTickInterval(d time.Duration) ExamOption {
	return func(s *ExamService) { s.tickInterval = d }
}

// WithSessionOptions passes options to every session the service creates.
func WithSessionOptions(opts ...session.Option) ExamOption {
	return func(s *ExamService) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// ViolationLogger receives every violation recorded by a running session.
type ViolationLogger interface {
	LogViolation(ctx context.Context, v model.Violation) error
}

// WithViolationLog forwards violations of every session to l. Logging is
// best effort and never blocks the student.
func WithViolationLog(l ViolationLogger) ExamOption {
	return func(s *ExamService) { s.violations = l }
}

// ExamService builds the student lobby and owns the live exam sessions.
type ExamService struct {
	catalog      *catalog.Catalog
	recorder     session.Recorder
	log          zerolog.Logger
	now          func() time.Time
	tickInterval time.Duration
	sessionOpts  []session.Option
	violations   ViolationLogger

	runCtx context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[sessionKey]*session.Controller
}

// NewExamService creates a new ExamService.
func NewExamService(cat *catalog.Catalog, recorder session.Recorder, log zerolog.Logger, opts ...ExamOption) *ExamService {
	runCtx, stop := context.WithCancel(context.Background())
	s := &ExamService{
		catalog:      cat,
		recorder:     recorder,
		log:          log.With().Str("component", "exam").Logger(),
		now:          time.Now,
		tickInterval: session.TickInterval,
		runCtx:       runCtx,
		stop:         stop,
		active:       make(map[sessionKey]*session.Controller),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lobby returns the subjects of the student's year with their availability.
func (s *ExamService) Lobby(ctx context.Context, identity *model.Identity) ([]LobbyExam, error) {
	if !identity.IsStudent() {
		return nil, session.ErrNotStudent
	}

	attempts, err := s.recorderAttempts(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	subjects := s.catalog.SubjectsForYear(identity.Year)
	lobby := make([]LobbyExam, 0, len(subjects))
	for _, subj := range subjects {
		item := LobbyExam{
			SubjectSummary: subj.Summary(),
			ScheduleStatus: schedule.StatusInactive,
			HasAttempted:   attempts[subj.ID],
		}
		if sched, ok := s.catalog.ScheduleFor(subj.ID); ok {
			item.Schedule = sched
			item.ScheduleStatus = schedule.Evaluate(*sched, now)
			item.IsOpen = item.ScheduleStatus == schedule.StatusOpen
		}
		item.CanAttempt = !item.HasAttempted && item.IsOpen

		switch {
		case item.HasAttempted:
			item.LobbyStatus = LobbyStatusCompleted
		case s.live(sessionKey{identity.ID, subj.ID}) != nil:
			item.LobbyStatus = LobbyStatusInProgress
		case item.CanAttempt:
			item.LobbyStatus = LobbyStatusAvailable
		case item.ScheduleStatus == schedule.StatusUpcoming:
			item.LobbyStatus = LobbyStatusUpcoming
		default:
			item.LobbyStatus = LobbyStatusClosed
		}
		lobby = append(lobby, item)
	}
	return lobby, nil
}

// recorderAttempts returns the subjects studentID has attempted. It uses
// ListAttempts when the recorder offers it and falls back to HasAttempted.
func (s *ExamService) recorderAttempts(ctx context.Context, studentID string) (map[string]bool, error) {
	done := make(map[string]bool)
	if lister, ok := s.recorder.(interface {
		ListAttempts(context.Context, model.AttemptFilter) ([]*model.Attempt, error)
	}); ok {
		attempts, err := lister.ListAttempts(ctx, model.AttemptFilter{StudentID: studentID})
		if err != nil {
			return nil, fmt.Errorf("list attempts: %w", err)
		}
		for _, a := range attempts {
			done[a.SubjectID] = true
		}
		return done, nil
	}

	for _, subj := range s.catalog.Subjects {
		ok, err := s.recorder.HasAttempted(ctx, studentID, subj.ID)
		if err != nil {
			return nil, fmt.Errorf("check attempt: %w", err)
		}
		done[subj.ID] = ok
	}
	return done, nil
}

// Start opens an exam session for the student, or returns the one already running.
func (s *ExamService) Start(ctx context.Context, identity *model.Identity, subjectID string) (*session.Controller, error) {
	if !identity.IsStudent() {
		return nil, session.ErrNotStudent
	}
	subj, ok := s.catalog.Subject(subjectID)
	if !ok {
		return nil, session.ErrSubjectNotFound
	}

	key := sessionKey{identity.ID, subjectID}
	if c := s.live(key); c != nil {
		return c, nil
	}

	if subj.Year != identity.Year {
		return nil, ErrExamNotAvailable
	}
	sched, ok := s.catalog.ScheduleFor(subjectID)
	if !ok || !schedule.IsOpen(*sched, s.now()) {
		return nil, ErrExamNotAvailable
	}

	opts := []session.Option{session.WithLogger(s.log)}
	if s.violations != nil {
		opts = append(opts, session.WithViolationListener(s.logViolation))
	}
	c, err := session.New(ctx, identity, subj, s.recorder, append(opts, s.sessionOpts...)...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.active[key]; ok && existing.State() != session.StateTerminated {
		s.mu.Unlock()
		return existing, nil
	}
	s.active[key] = c
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		session.Run(s.runCtx, c, s.tickInterval)
		s.release(key, c)
	}()

	return c, nil
}

func (s *ExamService) logViolation(v model.Violation) {
	ctx, cancel := context.WithTimeout(context.Background(), violationLogTimeout)
	defer cancel()
	if err := s.violations.LogViolation(ctx, v); err != nil {
		s.log.Warn().Err(err).
			Str("student_id", v.StudentID).
			Str("subject_id", v.SubjectID).
			Msg("Failed to log violation")
	}
}

// Active returns the running session of the student for subjectID.
func (s *ExamService) Active(identity *model.Identity, subjectID string) (*session.Controller, error) {
	if !identity.IsStudent() {
		return nil, session.ErrNotStudent
	}
	c := s.live(sessionKey{identity.ID, subjectID})
	if c == nil {
		return nil, ErrNoActiveSession
	}
	return c, nil
}

func (s *ExamService) live(key sessionKey) *session.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.active[key]
	if !ok {
		return nil
	}
	if c.State() == session.StateTerminated {
		delete(s.active, key)
		return nil
	}
	return c
}

func (s *ExamService) release(key sessionKey, c *session.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[key] == c && c.State() == session.StateTerminated {
		delete(s.active, key)
	}
}

// Sessions returns the running sessions ordered by student and subject.
func (s *ExamService) Sessions() []*session.Controller {
	s.mu.Lock()
	keys := make([]sessionKey, 0, len(s.active))
	for k, c := range s.active {
		if c.State() != session.StateTerminated {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].studentID != keys[j].studentID {
			return keys[i].studentID < keys[j].studentID
		}
		return keys[i].subjectID < keys[j].subjectID
	})
	out := make([]*session.Controller, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.active[k])
	}
	s.mu.Unlock()
	return out
}

// ActiveCount returns the number of registered sessions.
func (s *ExamService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Shutdown stops ticking every running session. Sessions are left unsubmitted.
func (s *ExamService) Shutdown() {
	s.stop()
	s.wg.Wait()
	s.log.Info().Msg("Exam session runners stopped")
}
