package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateStudent(t *testing.T) {
	svc, _ := newIdentityService(t, nil)

	id, err := svc.AuthenticateStudent("CSE2021001")
	require.NoError(t, err)
	assert.Equal(t, "1", id.ID)
	assert.Equal(t, "John Doe", id.Name)
	assert.Equal(t, model.RoleStudent, id.Role)
	assert.Equal(t, 1, id.Year)

	_, err = svc.AuthenticateStudent("cse2021001")
	assert.ErrorIs(t, err, ErrStudentNotFound)
	_, err = svc.AuthenticateStudent("")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAuthenticateAdmin(t *testing.T) {
	svc, _ := newIdentityService(t, nil)

	id, err := svc.AuthenticateAdmin("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, id.Role)

	_, err = svc.AuthenticateAdmin("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.AuthenticateAdmin("Admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateAdminConfigOverride(t *testing.T) {
	cfg := testConfig()
	cfg.AdminUsername = "root"
	cfg.AdminPassword = "s3cret"
	_, cat := newIdentityService(t, nil)
	svc := NewIdentityService(cfg, cat, nil, nil, zerolog.Nop())

	_, err := svc.AuthenticateAdmin("admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.AuthenticateAdmin("root", "s3cret")
	assert.NoError(t, err)
}

func TestCurrentIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, cat := newIdentityService(t, nil)

	got, err := svc.GetCurrentIdentity(ctx, "scope-a")
	require.NoError(t, err)
	assert.Nil(t, got)

	id := studentIdentity(t, cat, "CSE2020001")
	require.NoError(t, svc.SetCurrentIdentity(ctx, "scope-a", id))

	got, err = svc.GetCurrentIdentity(ctx, "scope-a")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	other, err := svc.GetCurrentIdentity(ctx, "scope-b")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, svc.ClearCurrentIdentity(ctx, "scope-a"))
	got, err = svc.GetCurrentIdentity(ctx, "scope-a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCorruptIdentityIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentityService(t, nil)
	require.NoError(t, svc.kv.Set(ctx, config.CacheKey.CurrentIdentityKey("s"), []byte("{not json"), 0))

	got, err := svc.GetCurrentIdentity(ctx, "s")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordAttemptAndList(t *testing.T) {
	ctx := context.Background()
	archiver := &fakeArchiver{}
	svc, _ := newIdentityService(t, archiver)

	ok, err := svc.HasAttempted(ctx, "1", "c-prog-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.RecordAttempt(ctx, attemptFor("1", "c-prog-1", 25)))
	require.NoError(t, svc.RecordAttempt(ctx, attemptFor("1", "math-1", 40)))
	require.NoError(t, svc.RecordAttempt(ctx, attemptFor("2", "ds-2", 50)))

	ok, err = svc.HasAttempted(ctx, "1", "c-prog-1")
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := svc.ListAttempts(ctx, model.AttemptFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c-prog-1", all[0].SubjectID)
	assert.Equal(t, "ds-2", all[2].SubjectID)

	mine, err := svc.ListAttempts(ctx, model.AttemptFilter{StudentID: "1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assert.Len(t, archiver.attempts, 3)
}

func TestRecordAttemptRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentityService(t, nil)

	require.NoError(t, svc.RecordAttempt(ctx, attemptFor("1", "c-prog-1", 25)))
	err := svc.RecordAttempt(ctx, attemptFor("1", "c-prog-1", 50))
	assert.ErrorIs(t, err, ErrAlreadyAttempted)

	all, err := svc.ListAttempts(ctx, model.AttemptFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 25, all[0].Score)
}

func TestRecordAttemptConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIdentityService(t, nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		dups int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.RecordAttempt(ctx, attemptFor("3", "os-3", 30))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else if errors.Is(err, ErrAlreadyAttempted) {
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	assert.Equal(t, 9, dups)
}

func TestRecordAttemptWholeClassOnRedis(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRedisIdentityService(t)
	const students = 200

	var wg sync.WaitGroup
	errs := make([]error, students)
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.RecordAttempt(ctx, attemptFor(fmt.Sprintf("s%03d", i), "c-prog-1", i%50))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "student %d", i)
	}

	attempts, err := svc.ListAttempts(ctx, model.AttemptFilter{SubjectID: "c-prog-1"})
	require.NoError(t, err)
	assert.Len(t, attempts, students)

	ok, err := svc.HasAttempted(ctx, "s042", "c-prog-1")
	require.NoError(t, err)
	assert.True(t, ok)

	err = svc.RecordAttempt(ctx, attemptFor("s042", "c-prog-1", 0))
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestSubmitWithCancelledRequestIsStillRecorded(t *testing.T) {
	svc, cat := newRedisIdentityService(t)
	john := studentIdentity(t, cat, "CSE2021001")
	subj, ok := cat.Subject("c-prog-1")
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	ctrl, err := session.New(ctx, john, subj, svc)
	require.NoError(t, err)
	cancel()

	a, err := ctrl.Submit(ctx, model.SubmitReasonManual)
	require.NoError(t, err)
	require.NotNil(t, a)

	attempted, err := svc.HasAttempted(context.Background(), john.ID, subj.ID)
	require.NoError(t, err)
	assert.True(t, attempted)
}

func TestArchiverFailureDoesNotFailRecord(t *testing.T) {
	svc, _ := newIdentityService(t, &fakeArchiver{err: errors.New("queue down")})
	assert.NoError(t, svc.RecordAttempt(context.Background(), attemptFor("1", "c-prog-1", 10)))
}
