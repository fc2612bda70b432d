package session

import (
	"errors"
	"time"
)

// State is a phase of an exam session.
type State string

const (
	StateLoading    State = "LOADING"
	StateActive     State = "ACTIVE"
	StateWarning    State = "WARNING"
	StateSubmitting State = "SUBMITTING"
	StateTerminated State = "TERMINATED"
)

// Event is an external stimulus delivered to a running session.
type Event string

const (
	// EventTick is one unit of countdown.
	EventTick Event = "TICK"
	// EventVisibilityLost is a tab switch or the app going to the background.
	EventVisibilityLost Event = "VISIBILITY_LOST"
)

const (
	// TickInterval is the wall-clock length of one countdown unit.
	TickInterval = time.Second
	// DefaultViolationThreshold is the violation count that starts the warning phase.
	DefaultViolationThreshold = 2
	// DefaultGraceTicks is how many ticks the warning phase lasts before auto-submission.
	DefaultGraceTicks = 3
	// DefaultPersistTimeout bounds the save of a graded attempt.
	DefaultPersistTimeout = 10 * time.Second
)

var (
	ErrNotStudent           = errors.New("session: identity is not a student")
	ErrSubjectNotFound      = errors.New("session: subject not found")
	ErrSessionClosed        = errors.New("session: not accepting input")
	ErrUnknownQuestion      = errors.New("session: unknown question")
	ErrInvalidOption        = errors.New("session: option out of range")
	ErrInvalidQuestionIndex = errors.New("session: question index out of range")
	ErrAlreadySubmitted     = errors.New("session: already submitted")
	ErrPersistFailed        = errors.New("session: attempt could not be saved")
	ErrUnknownEvent         = errors.New("session: unknown event")
)
