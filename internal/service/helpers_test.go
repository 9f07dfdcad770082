package service

import (
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brainiac5/brainiac-server/internal/auth"
	"github.com/brainiac5/brainiac-server/internal/search"
	"github.com/brainiac5/brainiac-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestStore opens a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// setupTestIndex opens a search index in a temporary directory.
func setupTestIndex(t *testing.T) *search.SearchIndex {
	t.Helper()

	index, _, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

type authFixture struct {
	store    *sqlite.Store
	auth     *AuthService
	sessions *SessionService
	tokens   *auth.TokenService
	totp     *auth.TOTPVerifier
}

// setupAuthTest wires the auth and session services over a temporary store.
func setupAuthTest(t *testing.T, limiter LoginLimiter) *authFixture {
	t.Helper()

	s := setupTestStore(t)

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	box, err := auth.NewSecretBox(key)
	require.NoError(t, err)

	verifier := auth.NewTOTPVerifier("Brainiac", 1)
	sessions := NewSessionService(s, tokens, testLogger())

	authService, err := NewAuthService(s, verifier, box, sessions, limiter, testLogger())
	require.NoError(t, err)

	return &authFixture{
		store:    s,
		auth:     authService,
		sessions: sessions,
		tokens:   tokens,
		totp:     verifier,
	}
}

// currentCode returns the code an authenticator app would show right now.
func (f *authFixture) currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := f.totp.CodeAt(secret, time.Now())
	require.NoError(t, err)
	return code
}

// wrongCode returns a well-formed code that differs from every code the
// verifier accepts right now.
func (f *authFixture) wrongCode(t *testing.T, secret string) string {
	t.Helper()
	now := time.Now()
	accepted := map[string]bool{}
	for _, d := range []time.Duration{-time.Minute, -30 * time.Second, 0, 30 * time.Second, time.Minute} {
		code, err := f.totp.CodeAt(secret, now.Add(d))
		require.NoError(t, err)
		accepted[code] = true
	}
	for _, candidate := range []string{"000000", "111111", "222222", "333333", "444444", "555555"} {
		if !accepted[candidate] {
			return candidate
		}
	}
	t.Fatal("no rejected code found")
	return ""
}
