package schedule

import (
	"testing"
	"time"

	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var morning = model.Schedule{
	ID:        "schedule-1",
	SubjectID: "c-prog-1",
	Date:      "2025-09-01",
	StartTime: "09:00",
	EndTime:   "10:00",
	IsActive:  true,
}

func TestIsOpenBoundsAreInclusive(t *testing.T) {
	loc := time.FixedZone("campus", 5*3600+1800)
	start := time.Date(2025, 9, 1, 9, 0, 0, 0, loc)
	end := time.Date(2025, 9, 1, 10, 0, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one second before start", start.Add(-time.Second), false},
		{"at start", start, true},
		{"inside", start.Add(30 * time.Minute), true},
		{"at end", end, true},
		{"one second after end", end.Add(time.Second), false},
		{"other day", start.AddDate(0, 0, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpen(morning, tt.now))
		})
	}
}

func TestInactiveScheduleIsNeverOpen(t *testing.T) {
	s := morning
	s.IsActive = false
	now := time.Date(2025, 9, 1, 9, 30, 0, 0, time.Local)

	assert.False(t, IsOpen(s, now))
	assert.Equal(t, StatusInactive, Evaluate(s, now))
}

func TestEvaluate(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2025, 9, 1, h, m, 0, 0, time.UTC) }

	assert.Equal(t, StatusUpcoming, Evaluate(morning, day(8, 59)))
	assert.Equal(t, StatusOpen, Evaluate(morning, day(9, 0)))
	assert.Equal(t, StatusClosed, Evaluate(morning, day(10, 1)))
}

func TestWindowUsesWallClockOfLocation(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)

	start, end, err := Window(morning, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 9, 0, 0, 0, loc), start)
	assert.Equal(t, time.Hour, end.Sub(start))
	assert.Equal(t, loc, start.Location())
}

func TestUnparseableScheduleIsClosed(t *testing.T) {
	s := morning
	s.StartTime = "9am"

	_, _, err := Window(s, time.UTC)
	require.Error(t, err)
	assert.False(t, IsOpen(s, time.Date(2025, 9, 1, 9, 30, 0, 0, time.UTC)))
}
