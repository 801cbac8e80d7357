package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dospalko/roomsplit/internal/auth"
	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	e := newEnv(t)
	authenticator := auth.NewPasswordAuthenticator(e.store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(authenticator, jwtManager)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Ana@Example.com", "Ana", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ana@example.com", user.Email)

	// Login is case-insensitive on email.
	logged, token, err := svc.Login(ctx, "ANA@example.COM", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ana@example.com", "Ana", "correct horse")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "ANA@example.com", "Ana Again", "correct horse")
	var cerr *ConflictError
	assert.ErrorAs(t, err, &cerr)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	var verr *ValidationError

	_, _, err := svc.Register(ctx, "not-an-email", "Ana", "correct horse")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldErrors, "email")

	_, _, err = svc.Register(ctx, "ana@example.com", "Ana", "short")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldErrors, "password")

	_, _, err = svc.Register(ctx, "", "", "correct horse")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldErrors, "name")
}

// duplicateInsertAuthenticator fails registration the way the store does
// when the unique email constraint fires after the pre-check passed.
type duplicateInsertAuthenticator struct{}

func (duplicateInsertAuthenticator) Register(context.Context, string, string, string) (*models.User, error) {
	return nil, fmt.Errorf("failed to create user: %w", storage.ErrDuplicate)
}

func (duplicateInsertAuthenticator) Authenticate(context.Context, string, string) (*models.User, error) {
	return nil, auth.ErrInvalidCredentials
}

func (duplicateInsertAuthenticator) ValidateCredential(string) error {
	return nil
}

func TestRegisterDuplicateInsertIsConflict(t *testing.T) {
	svc := NewAuthService(duplicateInsertAuthenticator{}, auth.NewJWTManager("test-secret", time.Hour))

	_, _, err := svc.Register(context.Background(), "ana@example.com", "Ana", "correct horse")
	var cerr *ConflictError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ana@example.com", "Ana", "correct horse")
	require.NoError(t, err)

	// Unknown email and wrong password yield the same error.
	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "correct horse")
	_, _, wrongErr := svc.Login(ctx, "ana@example.com", "wrong password")
	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
}
