package service

import (
	"testing"
	"time"

	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(testConfig())
	id := &model.Identity{ID: "2", Role: model.RoleStudent}

	token, claims, err := svc.GenerateToken(id)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.Scope())

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "2", parsed.Subject)
	assert.Equal(t, model.RoleStudent, parsed.Role)
	assert.Equal(t, claims.Scope(), parsed.Scope())

	_, second, err := svc.GenerateToken(id)
	require.NoError(t, err)
	assert.NotEqual(t, claims.Scope(), second.Scope())
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewAuthService(testConfig())
	token, _, err := svc.GenerateToken(&model.Identity{ID: "admin", Role: model.RoleAdmin})
	require.NoError(t, err)

	other := testConfig()
	other.JWTSecret = "another-secret"
	_, err = NewAuthService(other).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
