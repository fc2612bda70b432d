package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/catalog"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/store"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
}

type fakeArchiver struct {
	mu       sync.Mutex
	attempts []*model.Attempt
	err      error
}

func (a *fakeArchiver) Enqueue(_ context.Context, attempt *model.Attempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts = append(a.attempts, attempt)
	return a.err
}

func newIdentityService(t *testing.T, archiver AttemptArchiver) (*IdentityService, *catalog.Catalog) {
	t.Helper()
	cat := catalog.Default()
	require.NoError(t, cat.Validate())
	return NewIdentityService(testConfig(), cat, store.NewMemoryStore(), archiver, zerolog.Nop()), cat
}

// newRedisIdentityService backs the service with an in-process Redis.
func newRedisIdentityService(t *testing.T) (*IdentityService, *catalog.Catalog) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cat := catalog.Default()
	require.NoError(t, cat.Validate())
	return NewIdentityService(testConfig(), cat, store.NewRedisStore(rdb), nil, zerolog.Nop()), cat
}

func studentIdentity(t *testing.T, cat *catalog.Catalog, roll string) *model.Identity {
	t.Helper()
	st, ok := cat.StudentByRoll(roll)
	require.True(t, ok)
	id := model.StudentIdentity(st)
	return &id
}

func attemptFor(studentID, subjectID string, score int) *model.Attempt {
	return &model.Attempt{
		ID:          studentID + "-" + subjectID,
		StudentID:   studentID,
		SubjectID:   subjectID,
		Answers:     map[string]int{},
		Score:       score,
		TotalMarks:  50,
		AttemptedAt: time.Date(2025, 9, 1, 9, 30, 0, 0, time.UTC),
		Reason:      model.SubmitReasonManual,
	}
}
