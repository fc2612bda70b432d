package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Account errors.
var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("invalid password")
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserService handles registration and login of auxiliary accounts.
type UserService struct {
	cfg   *config.Config
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(cfg *config.Config, users UserStore) *UserService {
	return &UserService{cfg: cfg, users: users}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *UserService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// Register creates an account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks an email and password pair.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}
	return u, nil
}
