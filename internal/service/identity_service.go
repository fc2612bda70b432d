package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/catalog"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/store"
)

// Identity errors.
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyAttempted   = model.ErrAlreadyAttempted
)

// AttemptArchiver receives attempts after they are recorded, for durable storage.
type AttemptArchiver interface {
	Enqueue(ctx context.Context, attempt *model.Attempt) error
}

// IdentityService resolves who is logged in and keeps the attempt list.
type IdentityService struct {
	catalog     *catalog.Catalog
	admin       model.AdminCredentials
	kv          store.Store
	archiver    AttemptArchiver
	identityTTL time.Duration
	log         zerolog.Logger
}

// NewIdentityService creates a new IdentityService. archiver may be nil.
func NewIdentityService(cfg *config.Config, cat *catalog.Catalog, kv store.Store, archiver AttemptArchiver, log zerolog.Logger) *IdentityService {
	admin := cat.Admin
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		admin = model.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
	}
	return &IdentityService{
		catalog:     cat,
		admin:       admin,
		kv:          kv,
		archiver:    archiver,
		identityTTL: cfg.JWTExpiry,
		log:         log.With().Str("component", "identity").Logger(),
	}
}

// AuthenticateStudent looks up a roster entry by exact roll number.
func (s *IdentityService) AuthenticateStudent(rollNumber string) (*model.Identity, error) {
	st, ok := s.catalog.StudentByRoll(rollNumber)
	if !ok {
		return nil, ErrStudentNotFound
	}
	id := model.StudentIdentity(st)
	return &id, nil
}

// AuthenticateAdmin checks the static administrator credentials.
func (s *IdentityService) AuthenticateAdmin(username, password string) (*model.Identity, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	return &model.Identity{ID: "admin", Name: "Administrator", Role: model.RoleAdmin}, nil
}

// SetCurrentIdentity binds identity to a login scope, replacing any previous one.
func (s *IdentityService) SetCurrentIdentity(ctx context.Context, scope string, identity *model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.kv.Set(ctx, config.CacheKey.CurrentIdentityKey(scope), data, s.identityTTL); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}
	return nil
}

// GetCurrentIdentity returns the identity bound to scope, or nil when nobody is logged in.
func (s *IdentityService) GetCurrentIdentity(ctx context.Context, scope string) (*model.Identity, error) {
	data, err := s.kv.Get(ctx, config.CacheKey.CurrentIdentityKey(scope))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		// A corrupt entry is treated as logged out.
		s.log.Warn().Err(err).Str("scope", scope).Msg("Discarding unreadable identity")
		return nil, nil
	}
	return &identity, nil
}

// ClearCurrentIdentity logs the scope out.
func (s *IdentityService) ClearCurrentIdentity(ctx context.Context, scope string) error {
	return s.kv.Delete(ctx, config.CacheKey.CurrentIdentityKey(scope))
}

// ListAttempts returns the recorded attempts matching filter, oldest first.
func (s *IdentityService) ListAttempts(ctx context.Context, filter model.AttemptFilter) ([]*model.Attempt, error) {
	all, err := s.loadAttempts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Attempt, 0, len(all))
	for _, a := range all {
		if filter.Match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// HasAttempted reports whether studentID already submitted subjectID.
func (s *IdentityService) HasAttempted(ctx context.Context, studentID, subjectID string) (bool, error) {
	attempts, err := s.ListAttempts(ctx, model.AttemptFilter{StudentID: studentID, SubjectID: subjectID})
	if err != nil {
		return false, err
	}
	return len(attempts) > 0, nil
}

// RecordAttempt appends attempt to the attempt list. The store claims the
// (student, subject) pair and appends in one atomic step.
func (s *IdentityService) RecordAttempt(ctx context.Context, attempt *model.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	added, err := s.kv.AppendUnique(ctx, config.CacheKey.AttemptsKey(), attemptMember(attempt.StudentID, attempt.SubjectID), data)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if !added {
		return ErrAlreadyAttempted
	}

	if s.archiver != nil {
		if err := s.archiver.Enqueue(ctx, attempt); err != nil {
			s.log.Error().Err(err).Str("attempt_id", attempt.ID).Msg("Failed to enqueue attempt for archive")
		}
	}
	return nil
}

func (s *IdentityService) loadAttempts(ctx context.Context) ([]*model.Attempt, error) {
	entries, err := s.kv.List(ctx, config.CacheKey.AttemptsKey())
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}

	attempts := make([]*model.Attempt, 0, len(entries))
	for _, data := range entries {
		var a model.Attempt
		if err := json.Unmarshal(data, &a); err != nil {
			s.log.Warn().Err(err).Msg("Skipping unreadable attempt")
			continue
		}
		attempts = append(attempts, &a)
	}
	return attempts, nil
}

func attemptMember(studentID, subjectID string) string {
	return studentID + "/" + subjectID
}
