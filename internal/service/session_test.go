package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
	"github.com/brainiac5/brainiac-server/internal/store"
)

func loginTestUser(t *testing.T, f *authFixture, email string) *LoginResponse {
	t.Helper()
	ctx := context.Background()

	enrolled, err := f.auth.Enroll(ctx, email)
	require.NoError(t, err)

	resp, err := f.auth.Login(ctx, LoginRequest{Email: email, Code: f.currentCode(t, enrolled.Secret)})
	require.NoError(t, err)
	return resp
}

func TestSessionService_RefreshRotatesToken(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()
	login := loginTestUser(t, f, "ada@example.com")

	refreshed, err := f.auth.RefreshTokens(ctx, login.RefreshToken, ClientInfo{UserAgent: "renewed"})
	require.NoError(t, err)

	assert.Equal(t, login.SessionID, refreshed.SessionID)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)

	// The old refresh token is gone after use.
	_, err = f.auth.RefreshTokens(ctx, login.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	session, err := f.store.GetSession(ctx, login.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "renewed", session.UserAgent)

	_, err = f.auth.RefreshTokens(ctx, refreshed.RefreshToken, ClientInfo{})
	assert.NoError(t, err)
}

func TestSessionService_RefreshRejectsExpiredSession(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()
	login := loginTestUser(t, f, "ada@example.com")

	f.sessions.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	_, err := f.auth.RefreshTokens(ctx, login.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = f.store.GetSession(ctx, login.SessionID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionService_RefreshRequiresToken(t *testing.T) {
	f := setupAuthTest(t, nil)

	_, err := f.auth.RefreshTokens(context.Background(), "", ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestSessionService_Logout(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()
	login := loginTestUser(t, f, "ada@example.com")

	require.NoError(t, f.auth.Logout(ctx, login.User.ID, login.SessionID))

	_, err := f.sessions.ValidateAccessToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = f.auth.RefreshTokens(ctx, login.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestSessionService_LogoutOtherUsersSession(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()
	ada := loginTestUser(t, f, "ada@example.com")
	bob := loginTestUser(t, f, "bob@example.com")

	err := f.auth.Logout(ctx, bob.User.ID, ada.SessionID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.sessions.ValidateAccessToken(ctx, ada.AccessToken)
	assert.NoError(t, err)
}

func TestSessionService_ValidateAccessToken_Garbage(t *testing.T) {
	f := setupAuthTest(t, nil)

	_, err := f.sessions.ValidateAccessToken(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestSessionService_DeleteExpiredSessions(t *testing.T) {
	f := setupAuthTest(t, nil)
	ctx := context.Background()
	login := loginTestUser(t, f, "ada@example.com")

	count, err := f.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	session, err := f.store.GetSession(ctx, login.SessionID)
	require.NoError(t, err)
	session.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, f.store.UpdateSession(ctx, session))

	count, err = f.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
