package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// During schedule-1 (c-prog-1, 09:00-10:00) and before schedule-2 (math-1, 11:00).
var examDay = time.Date(2025, 9, 1, 9, 30, 0, 0, time.UTC)

func newExamService(t *testing.T, opts ...ExamOption) (*ExamService, *IdentityService, *model.Identity) {
	t.Helper()
	ids, cat := newIdentityService(t, nil)
	opts = append([]ExamOption{WithExamClock(func() time.Time { return examDay })}, opts...)
	svc := NewExamService(cat, ids, zerolog.Nop(), opts...)
	t.Cleanup(svc.Shutdown)
	return svc, ids, studentIdentity(t, cat, "CSE2021001")
}

func lobbyByID(lobby []LobbyExam) map[string]LobbyExam {
	out := make(map[string]LobbyExam, len(lobby))
	for _, e := range lobby {
		out[e.ID] = e
	}
	return out
}

func TestLobby(t *testing.T) {
	ctx := context.Background()
	svc, ids, john := newExamService(t)

	lobby, err := svc.Lobby(ctx, john)
	require.NoError(t, err)
	require.Len(t, lobby, 2)

	byID := lobbyByID(lobby)
	assert.True(t, byID["c-prog-1"].CanAttempt)
	assert.Equal(t, LobbyStatusAvailable, byID["c-prog-1"].LobbyStatus)
	assert.False(t, byID["math-1"].CanAttempt)
	assert.Equal(t, LobbyStatusUpcoming, byID["math-1"].LobbyStatus)

	_, err = svc.Start(ctx, john, "c-prog-1")
	require.NoError(t, err)
	lobby, err = svc.Lobby(ctx, john)
	require.NoError(t, err)
	assert.Equal(t, LobbyStatusInProgress, lobbyByID(lobby)["c-prog-1"].LobbyStatus)

	require.NoError(t, ids.RecordAttempt(ctx, attemptFor("1", "math-1", 10)))
	lobby, err = svc.Lobby(ctx, john)
	require.NoError(t, err)
	math := lobbyByID(lobby)["math-1"]
	assert.True(t, math.HasAttempted)
	assert.Equal(t, LobbyStatusCompleted, math.LobbyStatus)

	_, err = svc.Lobby(ctx, &model.Identity{Role: model.RoleAdmin})
	assert.ErrorIs(t, err, session.ErrNotStudent)
}

func TestStartGates(t *testing.T) {
	ctx := context.Background()
	svc, ids, john := newExamService(t)

	_, err := svc.Start(ctx, john, "nope")
	assert.ErrorIs(t, err, session.ErrSubjectNotFound)

	_, err = svc.Start(ctx, john, "math-1")
	assert.ErrorIs(t, err, ErrExamNotAvailable)

	_, err = svc.Start(ctx, john, "ds-2")
	assert.ErrorIs(t, err, ErrExamNotAvailable)

	_, err = svc.Start(ctx, &model.Identity{ID: "admin", Role: model.RoleAdmin}, "c-prog-1")
	assert.ErrorIs(t, err, session.ErrNotStudent)

	require.NoError(t, ids.RecordAttempt(ctx, attemptFor("1", "c-prog-1", 25)))
	_, err = svc.Start(ctx, john, "c-prog-1")
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
	assert.Equal(t, 0, svc.ActiveCount())
}

func TestStartIsIdempotentAndSubmitReleases(t *testing.T) {
	ctx := context.Background()
	svc, ids, john := newExamService(t)

	c1, err := svc.Start(ctx, john, "c-prog-1")
	require.NoError(t, err)
	c2, err := svc.Start(ctx, john, "c-prog-1")
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	active, err := svc.Active(john, "c-prog-1")
	require.NoError(t, err)
	assert.Same(t, c1, active)

	_, err = c1.Submit(ctx, model.SubmitReasonManual)
	require.NoError(t, err)

	_, err = svc.Active(john, "c-prog-1")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	require.Eventually(t, func() bool { return svc.ActiveCount() == 0 }, time.Second, time.Millisecond)

	ok, err := ids.HasAttempted(ctx, "1", "c-prog-1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Start(ctx, john, "c-prog-1")
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestRunnerAutoSubmitsOnViolationLimit(t *testing.T) {
	ctx := context.Background()
	svc, ids, john := newExamService(t,
		WithTickInterval(time.Millisecond),
		WithSessionOptions(session.WithViolationThreshold(1), session.WithGraceTicks(2)),
	)

	c, err := svc.Start(ctx, john, "c-prog-1")
	require.NoError(t, err)
	_, err = c.RecordViolation()
	require.NoError(t, err)

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session was not auto-submitted")
	}

	a, err := c.Result()
	require.NoError(t, err)
	assert.Equal(t, model.SubmitReasonViolationLimit, a.Reason)
	assert.Equal(t, 1, a.TabSwitches)

	attempts, err := ids.ListAttempts(ctx, model.AttemptFilter{StudentID: "1"})
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}
