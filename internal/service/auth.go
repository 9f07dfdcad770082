package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainiac5/brainiac-server/internal/auth"
	"github.com/brainiac5/brainiac-server/internal/domain"
	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
	"github.com/brainiac5/brainiac-server/internal/id"
	"github.com/brainiac5/brainiac-server/internal/metrics"
	"github.com/brainiac5/brainiac-server/internal/normalize"
	"github.com/brainiac5/brainiac-server/internal/store"
	"github.com/brainiac5/brainiac-server/internal/validation"
)

// LoginLimiter throttles login attempts per key. A nil limiter disables
// throttling.
type LoginLimiter interface {
	Allow(key string) bool
}

// AuthService verifies one-time codes, issues sessions on success and
// enrolls users. Session bookkeeping is delegated to SessionService.
type AuthService struct {
	users          store.UserStore
	totp           *auth.TOTPVerifier
	secrets        *auth.SecretBox
	sessionService *SessionService
	limiter        LoginLimiter
	validator      *validation.Validator
	logger         *slog.Logger
	now            func() time.Time

	// Verified against for unknown emails so every attempt costs the same.
	dummySecret string
}

// NewAuthService creates a new authentication service. limiter may be nil.
func NewAuthService(
	users store.UserStore,
	totp *auth.TOTPVerifier,
	secrets *auth.SecretBox,
	sessionService *SessionService,
	limiter LoginLimiter,
	logger *slog.Logger,
) (*AuthService, error) {
	dummy, err := totp.Enroll("nobody")
	if err != nil {
		return nil, fmt.Errorf("generate dummy secret: %w", err)
	}

	return &AuthService{
		users:          users,
		totp:           totp,
		secrets:        secrets,
		sessionService: sessionService,
		limiter:        limiter,
		validator:      validation.New(),
		logger:         loggerOrDiscard(logger),
		now:            time.Now,
		dummySecret:    dummy.Secret,
	}, nil
}

// LoginRequest contains the one-time code login data.
type LoginRequest struct {
	Email     string     `json:"email"`
	Code      string     `json:"otp_code"`
	Client    ClientInfo `json:"-"`
	RateLimit string     `json:"-"` // Throttling key, normally the client IP
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	SessionResponse
}

// RefreshResponse contains rotated tokens and the session's user.
type RefreshResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// EnrollResult is returned by Enroll. The secret is shown once and never
// stored in the clear.
type EnrollResult struct {
	User            *domain.User
	Secret          string
	URI             string
	RevokedSessions int
}

// Verify reports whether code is currently valid for the user enrolled
// under email. Unknown emails, malformed codes and wrong codes are all
// plain false; the reason is only logged.
func (s *AuthService) Verify(ctx context.Context, email, code string) (*domain.User, bool) {
	email = normalize.Email(email)

	if email == "" || !validation.IsOTPCode(code) {
		s.totp.Verify(s.dummySecret, "000000")
		return nil, false
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("Failed to look up user for login", "error", err)
		}
		s.totp.Verify(s.dummySecret, code)
		return nil, false
	}

	secret, err := s.secrets.Open(user.SealedSecret, []byte(user.Email))
	if err != nil {
		s.logger.Error("Failed to open sealed secret", "user_id", user.ID, "error", err)
		s.totp.Verify(s.dummySecret, code)
		return nil, false
	}

	if !s.totp.Verify(string(secret), code) {
		return nil, false
	}
	return user, true
}

// Login verifies the code and creates a session. Every credential failure
// is reported as the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if s.limiter != nil && !s.limiter.Allow(req.RateLimit) {
		metrics.LoginAttempt(metrics.LoginRateLimited)
		s.logger.Warn("Login rate limited", "key", req.RateLimit)
		return nil, domainerrors.ErrRateLimited
	}

	user, ok := s.Verify(ctx, req.Email, req.Code)
	if !ok {
		metrics.LoginAttempt(metrics.LoginFailure)
		s.logger.Info("Login failed", "ip", req.Client.IPAddress)
		return nil, domainerrors.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TouchUserLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("Failed to update last login time", "user_id", user.ID, "error", err)
	} else {
		user.MarkLogin(now)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.Client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.LoginAttempt(metrics.LoginSuccess)
	s.logger.Info("User logged in", "user_id", user.ID, "session_id", sessionResp.SessionID)

	return &LoginResponse{
		Status:          "success",
		Message:         "Login successful",
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// RefreshTokens rotates the session's tokens.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string, client ClientInfo) (*RefreshResponse, error) {
	if err := s.validator.Var("refresh_token", refreshToken, "required"); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, refreshToken, client)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Logout ends sessionID on behalf of userID.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID string) error {
	if err := s.validator.Var("session_id", sessionID, "required"); err != nil {
		return err
	}
	return s.sessionService.DeleteSession(ctx, userID, sessionID)
}

// Enroll generates and seals a fresh TOTP secret for email. Enrolling an
// existing email rotates its secret and ends its sessions.
func (s *AuthService) Enroll(ctx context.Context, email string) (*EnrollResult, error) {
	email = normalize.Email(email)
	if err := s.validator.Var("email", email, "required,email"); err != nil {
		return nil, err
	}

	enrollment, err := s.totp.Enroll(email)
	if err != nil {
		return nil, err
	}

	sealed, err := s.secrets.Seal([]byte(enrollment.Secret), []byte(email))
	if err != nil {
		return nil, fmt.Errorf("seal secret: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           userID,
		Email:        email,
		SealedSecret: sealed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	revoked, err := s.sessionService.RevokeUserSessions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User enrolled", "user_id", user.ID, "email", user.Email, "revoked_sessions", revoked)

	return &EnrollResult{
		User:            user,
		Secret:          enrollment.Secret,
		URI:             enrollment.URI,
		RevokedSessions: revoked,
	}, nil
}
