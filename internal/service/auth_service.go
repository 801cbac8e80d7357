package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dospalko/roomsplit/internal/auth"
	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

// AuthService wraps the authenticator and token manager, translating their
// errors into the service taxonomy.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// Register creates a new user account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, string, error) {
	v := validation{}
	if name == "" {
		v.add("name", "name is required")
	}
	if email == "" {
		v.add("email", "email is required")
	}
	if err := v.err(); err != nil {
		return nil, "", err
	}

	user, err := s.authenticator.Register(ctx, email, name, password)
	switch {
	// ErrDuplicate covers the insert losing a race with a concurrent
	// registration that passed the email pre-check.
	case errors.Is(err, auth.ErrEmailExists), errors.Is(err, storage.ErrDuplicate):
		return nil, "", conflict("email already registered")
	case errors.Is(err, auth.ErrWeakPassword):
		return nil, "", &ValidationError{FieldErrors: map[string]string{"password": err.Error()}}
	case errors.Is(err, auth.ErrInvalidEmail):
		return nil, "", &ValidationError{FieldErrors: map[string]string{"email": err.Error()}}
	case err != nil:
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns a session token. Failures come
// back as auth.ErrInvalidCredentials without distinguishing unknown email
// from wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "email", models.NormalizeEmail(email))
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}
