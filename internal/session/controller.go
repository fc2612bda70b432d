// Package session runs a single student's timed attempt at a subject.
//
// A Controller moves through LOADING → ACTIVE → (WARNING) → SUBMITTING →
// TERMINATED. It is driven by discrete events: Tick from a clock and
// VisibilityLost from the student's client, plus the student's own answer,
// navigation and submit calls. All methods are safe for concurrent use;
// whichever submission trigger arrives first wins and later ones are no-ops.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/grading"
	"github.com/stemsi/exstem-online/internal/model"
)

// Recorder is the attempt bookkeeping a session needs.
type Recorder interface {
	HasAttempted(ctx context.Context, studentID, subjectID string) (bool, error)
	RecordAttempt(ctx context.Context, attempt *model.Attempt) error
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger attaches a logger; session fields are added to it.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithViolationThreshold overrides DefaultViolationThreshold.
func WithViolationThreshold(n int) Option {
	return func(c *Controller) { c.threshold = n }
}

// WithGraceTicks overrides DefaultGraceTicks.
func WithGraceTicks(n int) Option {
	return func(c *Controller) { c.graceTicks = n }
}

// WithIDGenerator replaces the attempt ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// WithPersistTimeout overrides DefaultPersistTimeout.
func WithPersistTimeout(d time.Duration) Option {
	return func(c *Controller) { c.persistTimeout = d }
}

// WithViolationListener registers fn to receive every recorded violation.
// It is called outside the session lock.
func WithViolationListener(fn func(model.Violation)) Option {
	return func(c *Controller) { c.onViolation = fn }
}

// Controller owns one in-progress attempt.
type Controller struct {
	identity       model.Identity
	subject        *model.Subject
	recorder       Recorder
	now            func() time.Time
	newID          func() string
	log            zerolog.Logger
	threshold      int
	graceTicks     int
	persistTimeout time.Duration
	onViolation    func(model.Violation)
	startedAt      time.Time
	done           chan struct{}

	mu         sync.Mutex
	state      State
	cursor     int
	answers    map[string]int
	remaining  int
	violations int
	graceLeft  int
	reason     model.SubmitReason
	attempt    *model.Attempt
	err        error
}

// New validates the preconditions of an attempt and starts the session.
// It fails without creating anything when the identity is not a student,
// the subject is missing or the student already has an attempt for it.
func New(ctx context.Context, identity *model.Identity, subject *model.Subject, recorder Recorder, opts ...Option) (*Controller, error) {
	if !identity.IsStudent() {
		return nil, ErrNotStudent
	}
	if subject == nil {
		return nil, ErrSubjectNotFound
	}

	c := &Controller{
		identity:   *identity,
		subject:    subject,
		recorder:   recorder,
		now:        time.Now,
		newID:      uuid.NewString,
		log:        zerolog.Nop(),
		threshold:  DefaultViolationThreshold,
		graceTicks: DefaultGraceTicks,
		done:       make(chan struct{}),
		state:      StateLoading,
		answers:    make(map[string]int),

		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().
		Str("student_id", identity.ID).
		Str("subject_id", subject.ID).
		Logger()

	attempted, err := recorder.HasAttempted(ctx, identity.ID, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("check previous attempt: %w", err)
	}
	if attempted {
		return nil, model.ErrAlreadyAttempted
	}

	c.startedAt = c.now()
	c.remaining = int(time.Duration(subject.DurationMinutes) * time.Minute / TickInterval)
	c.state = StateActive

	c.log.Info().Int("remaining", c.remaining).Msg("Exam session started")
	return c, nil
}

// acceptsInput reports whether the student can still act. Callers hold mu.
func (c *Controller) acceptsInput() bool {
	return c.state == StateActive || c.state == StateWarning
}

// SelectAnswer records option for a question, replacing any earlier choice.
func (c *Controller) SelectAnswer(questionID string, option int) error {
	q, ok := c.subject.Question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if option < 0 || option >= len(q.Options) {
		return ErrInvalidOption
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.acceptsInput() {
		return ErrSessionClosed
	}
	c.answers[questionID] = option
	return nil
}

// Navigate moves the cursor to index. Out-of-range indexes leave the cursor untouched.
func (c *Controller) Navigate(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.acceptsInput() {
		return ErrSessionClosed
	}
	if index < 0 || index >= len(c.subject.Questions) {
		return ErrInvalidQuestionIndex
	}
	c.cursor = index
	return nil
}

// Next advances the cursor, stopping at the last question.
func (c *Controller) Next() int {
	return c.step(1)
}

// Previous moves the cursor back, stopping at the first question.
func (c *Controller) Previous() int {
	return c.step(-1)
}

func (c *Controller) step(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.acceptsInput() {
		return c.cursor
	}
	next := c.cursor + delta
	if next >= 0 && next < len(c.subject.Questions) {
		c.cursor = next
	}
	return c.cursor
}

// RecordViolation counts a loss of foreground visibility. Reaching the
// threshold starts the warning phase; violations during the warning phase
// are still counted but do not shorten it.
func (c *Controller) RecordViolation() (State, error) {
	c.mu.Lock()
	if !c.acceptsInput() {
		state := c.state
		c.mu.Unlock()
		return state, ErrSessionClosed
	}

	c.violations++
	if c.state == StateActive && c.violations >= c.threshold {
		c.state = StateWarning
		c.graceLeft = c.graceTicks
		c.log.Warn().
			Int("violations", c.violations).
			Int("grace_ticks", c.graceTicks).
			Msg("Violation limit reached, auto-submit pending")
	} else {
		c.log.Info().Int("violations", c.violations).Msg("Violation recorded")
	}
	state := c.state
	v := model.Violation{
		StudentID:  c.identity.ID,
		SubjectID:  c.subject.ID,
		Count:      c.violations,
		Warning:    state == StateWarning,
		OccurredAt: c.now(),
	}
	c.mu.Unlock()

	if c.onViolation != nil {
		c.onViolation(v)
	}
	return state, nil
}

// Tick consumes one countdown unit. It returns the attempt when the tick
// ended the session, either because time ran out or because the warning
// phase elapsed. Ticks after the session closed are ignored.
func (c *Controller) Tick(ctx context.Context) (*model.Attempt, error) {
	c.mu.Lock()
	if !c.acceptsInput() {
		c.mu.Unlock()
		return nil, nil
	}

	var reason model.SubmitReason
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		reason = model.SubmitReasonTimeout
	} else if c.state == StateWarning {
		c.graceLeft--
		if c.graceLeft <= 0 {
			reason = model.SubmitReasonViolationLimit
		}
	}

	if reason == "" {
		c.mu.Unlock()
		return nil, nil
	}
	sub := c.beginSubmitLocked(reason)
	c.mu.Unlock()

	return c.finishSubmit(ctx, sub)
}

// Dispatch delivers an external event.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (*model.Attempt, error) {
	switch ev {
	case EventTick:
		return c.Tick(ctx)
	case EventVisibilityLost:
		_, err := c.RecordViolation()
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev)
	}
}

// Submit grades and records the attempt. Only the first call does any work;
// every later call returns ErrAlreadySubmitted. A failure to record the
// attempt still ends the session.
func (c *Controller) Submit(ctx context.Context, reason model.SubmitReason) (*model.Attempt, error) {
	c.mu.Lock()
	if !c.acceptsInput() {
		c.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	sub := c.beginSubmitLocked(reason)
	c.mu.Unlock()

	return c.finishSubmit(ctx, sub)
}

type submission struct {
	reason     model.SubmitReason
	answers    map[string]int
	violations int
}

// beginSubmitLocked latches the session into SUBMITTING. Callers hold mu.
func (c *Controller) beginSubmitLocked(reason model.SubmitReason) submission {
	c.state = StateSubmitting
	c.reason = reason

	answers := make(map[string]int, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	return submission{reason: reason, answers: answers, violations: c.violations}
}

// finishSubmit grades and saves outside the lock. The save ignores
// cancellation of ctx and is bounded by persistTimeout instead.
func (c *Controller) finishSubmit(ctx context.Context, sub submission) (*model.Attempt, error) {
	result := grading.Grade(c.subject, sub.answers)
	end := c.now()
	attempt := &model.Attempt{
		ID:          c.newID(),
		StudentID:   c.identity.ID,
		SubjectID:   c.subject.ID,
		Answers:     sub.answers,
		Score:       result.Score,
		TotalMarks:  c.subject.TotalMarks,
		AttemptedAt: end,
		TimeSpent:   int(end.Sub(c.startedAt) / time.Second),
		TabSwitches: sub.violations,
		Reason:      sub.reason,
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.persistTimeout)
	defer cancel()

	if err := c.recorder.RecordAttempt(persistCtx, attempt); err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistFailed, err)
		c.log.Error().Err(err).Str("reason", string(sub.reason)).Msg("Failed to record attempt")
		c.terminate(nil, err)
		return nil, err
	}

	c.log.Info().
		Str("attempt_id", attempt.ID).
		Str("reason", string(sub.reason)).
		Int("score", attempt.Score).
		Int("total", attempt.TotalMarks).
		Int("tab_switches", attempt.TabSwitches).
		Msg("Exam submitted and graded")

	c.terminate(attempt, nil)
	return attempt, nil
}

func (c *Controller) terminate(attempt *model.Attempt, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateTerminated
	c.attempt = attempt
	c.err = err
	close(c.done)
}

// Done is closed once the session is terminated.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Result returns the recorded attempt, or the error that ended the session.
// Both are nil while the session is still running.
func (c *Controller) Result() (*model.Attempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt, c.err
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the student taking the exam.
func (c *Controller) Identity() model.Identity {
	return c.identity
}

// Subject returns the subject under examination.
func (c *Controller) Subject() *model.Subject {
	return c.subject
}
