package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
)

type denyLimiter struct{ calls int }

func (l *denyLimiter) Allow(string) bool {
	l.calls++
	return false
}

func TestAuthService_Enroll(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()

	res, err := f.auth.Enroll(ctx, "  Ada@Example.com ")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Contains(t, res.URI, "otpauth://totp/")
	assert.Contains(t, res.URI, "issuer=Brainiac")
	assert.NotEmpty(t, res.Secret)
	assert.Zero(t, res.RevokedSessions)

	stored, err := f.store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotContains(t, string(stored.SealedSecret), res.Secret)
}

func TestAuthService_Enroll_InvalidEmail(t *testing.T) {
	f := setupAuthTest(t, nil)

	_, err := f.auth.Enroll(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAuthService_Login_Success(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()

	enrolled, err := f.auth.Enroll(ctx, "ada@example.com")
	require.NoError(t, err)

	resp, err := f.auth.Login(ctx, LoginRequest{
		Email:  "ADA@example.com",
		Code:   f.currentCode(t, enrolled.Secret),
		Client: ClientInfo{IPAddress: "203.0.113.7", UserAgent: "test"},
	})
	require.NoError(t, err)

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, enrolled.User.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	session, err := f.store.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", session.IPAddress)

	claims, err := f.sessions.ValidateAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, enrolled.User.ID, claims.UserID)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()

	enrolled, err := f.auth.Enroll(ctx, "ada@example.com")
	require.NoError(t, err)

	attempts := map[string]LoginRequest{
		"wrong code":     {Email: "ada@example.com", Code: f.wrongCode(t, enrolled.Secret)},
		"unknown email":  {Email: "nobody@example.com", Code: f.currentCode(t, enrolled.Secret)},
		"malformed code": {Email: "ada@example.com", Code: "12a456"},
		"short code":     {Email: "ada@example.com", Code: "12345"},
		"empty email":    {Email: "", Code: "123456"},
	}

	for name, req := range attempts {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Login(ctx, req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
			assert.Equal(t, "Invalid or expired code", domainErr.Message)
			assert.Nil(t, domainErr.Details)
		})
	}
}

func TestAuthService_Verify(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()

	enrolled, err := f.auth.Enroll(ctx, "ada@example.com")
	require.NoError(t, err)

	user, ok := f.auth.Verify(ctx, "ada@example.com", f.currentCode(t, enrolled.Secret))
	assert.True(t, ok)
	assert.Equal(t, enrolled.User.ID, user.ID)

	user, ok = f.auth.Verify(ctx, "ada@example.com", f.wrongCode(t, enrolled.Secret))
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestAuthService_Login_RateLimited(t *testing.T) {
	limiter := &denyLimiter{}
	f := setupAuthTest(t, limiter)

	_, err := f.auth.Login(context.Background(), LoginRequest{
		Email:     "ada@example.com",
		Code:      "123456",
		RateLimit: "203.0.113.7",
	})
	assert.ErrorIs(t, err, domainerrors.ErrRateLimited)
	assert.Equal(t, 1, limiter.calls)
}

func TestAuthService_Reenroll_RotatesSecretAndRevokesSessions(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()

	first, err := f.auth.Enroll(ctx, "ada@example.com")
	require.NoError(t, err)

	login, err := f.auth.Login(ctx, LoginRequest{Email: "ada@example.com", Code: f.currentCode(t, first.Secret)})
	require.NoError(t, err)

	second, err := f.auth.Enroll(ctx, "ada@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.NotEqual(t, first.Secret, second.Secret)
	assert.Equal(t, 1, second.RevokedSessions)

	_, err = f.sessions.ValidateAccessToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, ok := f.auth.Verify(ctx, "ada@example.com", f.currentCode(t, second.Secret))
	assert.True(t, ok)
}
