package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/auth"
	"github.com/Vroy4298/land-tax-system/internal/logger"
	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/Vroy4298/land-tax-system/internal/repository"
	"github.com/google/uuid"
)

// Account errors
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthResult is an authenticated session.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService defines account operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    *logger.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, log *logger.Logger) AuthService {
	return &authService{users: users, tokens: tokens, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		s.log.Error("Failed to create user", err, nil)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.Info("User registered", map[string]interface{}{
		"user_id": u.ID.String(),
	})
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		s.log.Warn("Login rejected", map[string]interface{}{
			"user_id": u.ID.String(),
		})
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *authService) session(u *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}
