package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memViolationLog struct {
	mu     sync.Mutex
	events []model.Violation
	err    error
}

func (l *memViolationLog) LogViolation(_ context.Context, v model.Violation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, v)
	return nil
}

func (l *memViolationLog) List(_ context.Context, filter model.ViolationFilter) ([]*model.Violation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*model.Violation, 0)
	for i := len(l.events) - 1; i >= 0; i-- {
		v := l.events[i]
		if filter.StudentID != "" && v.StudentID != filter.StudentID {
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

func (l *memViolationLog) CountsBySubject(_ context.Context, subjectID string) (map[string]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	counts := make(map[string]int64)
	for _, v := range l.events {
		if v.SubjectID == subjectID {
			counts[v.StudentID]++
		}
	}
	return counts, nil
}

func TestMonitorOverviewAndViolationLog(t *testing.T) {
	ctx := context.Background()
	vlog := &memViolationLog{}
	svc, _, john := newExamService(t, WithViolationLog(vlog), WithTickInterval(time.Hour))
	monitor := NewMonitorService(svc, vlog)

	overview := monitor.Overview()
	assert.Equal(t, 0, overview.ActiveSessions)
	assert.Empty(t, overview.Sessions)

	ctrl, err := svc.Start(ctx, john, "c-prog-1")
	require.NoError(t, err)
	require.NoError(t, ctrl.SelectAnswer("c1", 0))
	_, err = ctrl.RecordViolation()
	require.NoError(t, err)
	_, err = ctrl.RecordViolation()
	require.NoError(t, err)

	overview = monitor.Overview()
	require.Len(t, overview.Sessions, 1)
	live := overview.Sessions[0]
	assert.Equal(t, "1", live.StudentID)
	assert.Equal(t, "CSE2021001", live.RollNumber)
	assert.Equal(t, "c-prog-1", live.SubjectID)
	assert.Equal(t, session.StateWarning, live.State)
	assert.Equal(t, 1, live.Answered)
	assert.Equal(t, 10, live.QuestionCount)
	assert.Equal(t, 2, live.Violations)
	assert.Equal(t, 1, overview.InWarning)
	assert.Equal(t, 2, overview.TotalViolations)

	events, err := monitor.RecentViolations(ctx, model.ViolationFilter{StudentID: "1"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2, events[0].Count)
	assert.True(t, events[0].Warning)

	counts, err := monitor.ViolationCounts(ctx, []string{"c-prog-1", "math-1"})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, int64(2), counts[0].Total)
	assert.Equal(t, int64(2), counts[0].Counts["1"])
	assert.Equal(t, int64(0), counts[1].Total)

	_, err = ctrl.Submit(ctx, model.SubmitReasonManual)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(monitor.Overview().Sessions) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMonitorWithoutViolationLog(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newExamService(t)
	monitor := NewMonitorService(svc, nil)

	events, err := monitor.RecentViolations(ctx, model.ViolationFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)

	counts, err := monitor.ViolationCounts(ctx, []string{"c-prog-1"})
	require.NoError(t, err)
	assert.Equal(t, []SubjectViolations{{SubjectID: "c-prog-1", Counts: map[string]int64{}}}, counts)
}

func TestViolationCountsSurfaceErrors(t *testing.T) {
	svc, _, _ := newExamService(t)
	monitor := NewMonitorService(svc, &memViolationLog{err: errors.New("db down")})

	_, err := monitor.ViolationCounts(context.Background(), []string{"c-prog-1", "math-1"})
	assert.EqualError(t, err, "db down")
}
