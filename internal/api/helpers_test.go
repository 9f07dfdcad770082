package api

import (
	"context"
	"encoding/hex"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/brainiac5/brainiac-server/internal/auth"
	"github.com/brainiac5/brainiac-server/internal/config"
	"github.com/brainiac5/brainiac-server/internal/http/response"
	"github.com/brainiac5/brainiac-server/internal/search"
	"github.com/brainiac5/brainiac-server/internal/service"
	"github.com/brainiac5/brainiac-server/internal/store/sqlite"
)

// testEnvelope decodes the standard envelope with typed data.
type testEnvelope[T any] struct {
	V       int                 `json:"v"`
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

// testServer wraps the API server with the pieces tests reach into.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
	auth  *service.AuthService
	totp  *auth.TOTPVerifier
}

type testServerOptions struct {
	searchDisabled bool
	failurePolicy  string
}

// setupTestServer wires every service over a temporary store and index.
func setupTestServer(t *testing.T, opts ...testServerOptions) *testServer {
	t.Helper()

	var o testServerOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var (
		ideaIndex service.IdeaIndex
		stats     IndexStats
	)
	if !o.searchDisabled {
		index, _, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
		ideaIndex = index
		stats = index
	}

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	box, err := auth.NewSecretBox(key)
	require.NoError(t, err)

	verifier := auth.NewTOTPVerifier("Brainiac", 1)
	sessions := service.NewSessionService(st, tokens, logger)
	authService, err := service.NewAuthService(st, verifier, box, sessions, nil, logger)
	require.NoError(t, err)

	policy := o.failurePolicy
	if policy == "" {
		policy = config.FailurePolicyDegrade
	}

	services := &Services{
		Auth:      authService,
		Session:   sessions,
		Idea:      service.NewIdeaService(st, ideaIndex, logger),
		Tag:       service.NewTagService(st, ideaIndex, logger),
		Relation:  service.NewRelationService(st, ideaIndex, logger),
		Hierarchy: service.NewHierarchyService(st, service.HierarchyOptions{FailurePolicy: policy}, logger),
	}

	srv := NewServer(services, Options{
		Title:              "Brainiac API Test",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		Database:           st,
		Search:             stats,
	}, logger)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.API()),
		store:  st,
		auth:   authService,
		totp:   verifier,
	}
}

// enroll registers email and returns its TOTP secret.
func (ts *testServer) enroll(t *testing.T, email string) string {
	t.Helper()
	result, err := ts.auth.Enroll(context.Background(), email)
	require.NoError(t, err)
	return result.Secret
}

// code returns the current TOTP code for secret.
func (ts *testServer) code(t *testing.T, secret string) string {
	t.Helper()
	code, err := ts.totp.CodeAt(secret, time.Now())
	require.NoError(t, err)
	return code
}

// login enrolls email, logs in over HTTP and returns the auth data.
func (ts *testServer) login(t *testing.T, email string) AuthResponse {
	t.Helper()

	secret := ts.enroll(t, email)
	resp := ts.api.Post("/api/v1/auth/verify-otp", map[string]any{
		"email":    email,
		"otp_code": ts.code(t, secret),
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	envelope := decode[AuthResponse](t, resp.Body.Bytes())
	return envelope.Data
}

// bearer returns the Authorization header argument for humatest.
func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// decode unmarshals an envelope.
func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope), "body: %s", body)
	return envelope
}
