package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	next  int64
	users map[string]*model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = make(map[string]*model.User)
	}
	key := strings.ToLower(u.Email)
	if _, ok := m.users[key]; ok {
		return repository.ErrDuplicateEmail
	}
	m.next++
	u.ID = m.next
	u.CreatedAt = time.Now()
	m.users[key] = u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(testConfig(), &memUsers{})

	u, err := svc.Register(ctx, &model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	_, err = svc.Register(ctx, &model.RegisterRequest{Name: "Ada", Email: "ADA@example.com", Password: "other1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
