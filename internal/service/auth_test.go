package service

import (
	"testing"
	"time"

	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, repository.TokenRepository) {
	t.Helper()

	database := newTestDB(t)
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	emailService := NewEmailService("", "test@example.com", "http://localhost:8090", "readcircle", true)

	authService := NewAuthService(
		userRepo,
		tokenRepo,
		emailService,
		"test-secret",
		false,
		time.Hour,
		time.Hour,
	)
	return authService, tokenRepo
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newAuthFixture(t)

	user, err := auth.Register("Reader@Example.com", "super-secret", strptr("Reader"))
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	require.NotNil(t, user.PasswordHash)
	assert.NotContains(t, *user.PasswordHash, "super-secret")

	loggedIn, err := auth.Login("reader@example.com", "super-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = auth.Login("reader@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _ := newAuthFixture(t)

	_, err := auth.Register("reader@example.com", "super-secret", nil)
	require.NoError(t, err)

	_, err = auth.Register("reader@example.com", "other-secret", nil)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegisterShortPassword(t *testing.T) {
	auth, _ := newAuthFixture(t)

	_, err := auth.Register("reader@example.com", "short", nil)
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 8 characters", err.Error())
}

func TestLoginUnknownUser(t *testing.T) {
	auth, _ := newAuthFixture(t)

	_, err := auth.Login("nobody@example.com", "whatever-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	auth, _ := newAuthFixture(t)

	// Account existence must never leak
	assert.NoError(t, auth.RequestPasswordReset("nobody@example.com"))
}

func TestResetPasswordFlow(t *testing.T) {
	auth, tokens := newAuthFixture(t)

	_, err := auth.Register("reader@example.com", "original-pass", nil)
	require.NoError(t, err)

	require.NoError(t, tokens.Create(&model.VerificationToken{
		Identifier: "reader@example.com",
		Token:      "reset-token",
		ExpiresAt:  time.Now().Add(time.Hour),
	}))

	require.NoError(t, auth.ResetPassword("reset-token", "brand-new-pass"))

	_, err = auth.Login("reader@example.com", "original-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login("reader@example.com", "brand-new-pass")
	assert.NoError(t, err)

	// The link is single use
	assert.ErrorIs(t, auth.ResetPassword("reset-token", "another-pass"), ErrInvalidResetToken)
}

func TestJWTRoundTrip(t *testing.T) {
	auth, _ := newAuthFixture(t)

	user, err := auth.Register("reader@example.com", "super-secret", nil)
	require.NoError(t, err)

	token, err := auth.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])

	_, err = auth.VerifyJWT("not-a-token")
	assert.Error(t, err)
}

func TestAuthenticateOAuthCreatesUser(t *testing.T) {
	auth, _ := newAuthFixture(t)

	user, err := auth.AuthenticateOAuth("oauth@example.com", strptr("OAuth Reader"), nil, "google")
	require.NoError(t, err)
	assert.False(t, user.HasPassword())

	// Second login resolves to the same account
	again, err := auth.AuthenticateOAuth("oauth@example.com", nil, nil, "google")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	// Password login is rejected for OAuth-only accounts
	_, err = auth.Login("oauth@example.com", "any-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
