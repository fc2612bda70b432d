// Package schedule decides whether a subject's exam window is open.
//
// Schedule dates and clock times are wall-clock values without a zone. They
// are interpreted in the location of the time they are compared against,
// which is the server's local time in production. No timezone normalization
// is performed: a server and a student in different zones see the same
// wall-clock window.
package schedule

import (
	"fmt"
	"time"

	"github.com/stemsi/exstem-online/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Status is the availability of a schedule at a point in time.
type Status string

const (
	StatusInactive Status = "INACTIVE"
	StatusUpcoming Status = "UPCOMING"
	StatusOpen     Status = "OPEN"
	StatusClosed   Status = "CLOSED"
)

// Window returns the start and end instants of a schedule in loc.
func Window(s model.Schedule, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, s.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", s.Date, err)
	}
	start, err := atClock(day, s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := atClock(day, s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// IsOpen reports whether now lies within [start, end], both bounds
// inclusive, and the schedule is active. Schedules that fail to parse are
// never open.
func IsOpen(s model.Schedule, now time.Time) bool {
	return Evaluate(s, now) == StatusOpen
}

// Evaluate classifies now against the schedule window.
func Evaluate(s model.Schedule, now time.Time) Status {
	if !s.IsActive {
		return StatusInactive
	}
	start, end, err := Window(s, now.Location())
	if err != nil {
		return StatusClosed
	}
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusClosed
	default:
		return StatusOpen
	}
}
