package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "verifyOTP",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/verify-otp",
		Summary:     "Log in with a one-time code",
		Description: "Verifies a six-digit TOTP code for an enrolled email and opens a session",
		Tags:        []string{"Authentication"},
	}, s.handleVerifyOTP)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens. The old refresh token stops working.",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the specified session",
		Tags:        []string{"Authentication"},
		Security:    bearerSecurity,
	}, s.handleLogout)
}

// === DTOs ===

// VerifyOTPRequest is the request body for login. Both fields are optional
// in the schema so malformed input gets the same answer as a wrong code.
type VerifyOTPRequest struct {
	Email   string `json:"email,omitempty" doc:"Enrolled email address"`
	OTPCode string `json:"otp_code,omitempty" doc:"Six-digit code from the authenticator app"`
}

// VerifyOTPInput wraps the login request for Huma.
type VerifyOTPInput struct {
	Body VerifyOTPRequest
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	Body RefreshRequest
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	SessionID string `json:"session_id,omitempty" maxLength:"100" doc:"Session ID to revoke, defaults to the caller's session"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Authorization string `header:"Authorization"`
	Body          LogoutRequest
}

// UserResponse contains user information in auth responses.
type UserResponse struct {
	ID          string     `json:"id" doc:"User ID"`
	Email       string     `json:"email" doc:"User email"`
	CreatedAt   time.Time  `json:"created_at" doc:"Enrollment timestamp"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" doc:"Last login timestamp"`
}

// AuthResponse contains authentication tokens and user info.
type AuthResponse struct {
	Status       string       `json:"status,omitempty" doc:"Set to success after a login"`
	Message      string       `json:"message,omitempty" doc:"Human-readable status"`
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Refresh token"`
	SessionID    string       `json:"session_id" doc:"Session identifier"`
	TokenType    string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int          `json:"expires_in" doc:"Token expiry in seconds"`
	User         UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleVerifyOTP(ctx context.Context, input *VerifyOTPInput) (*AuthOutput, error) {
	client := clientFromContext(ctx)

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:     input.Body.Email,
		Code:      input.Body.OTPCode,
		Client:    client,
		RateLimit: client.IPAddress,
	})
	if err != nil {
		return nil, err
	}

	body := mapAuthResponse(resp.User, &resp.SessionResponse)
	body.Status = resp.Status
	body.Message = resp.Message
	return &AuthOutput{Body: body}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, input.Body.RefreshToken, clientFromContext(ctx))
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp.User, &resp.SessionResponse)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	sessionID := input.Body.SessionID
	if sessionID == "" {
		sessionID = claims.SessionID
	}

	if err := s.services.Auth.Logout(ctx, claims.UserID, sessionID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

// === Helpers ===

func mapAuthResponse(user *domain.User, session *service.SessionResponse) AuthResponse {
	return AuthResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		SessionID:    session.SessionID,
		TokenType:    session.TokenType,
		ExpiresIn:    session.ExpiresIn,
		User: UserResponse{
			ID:          user.ID,
			Email:       user.Email,
			CreatedAt:   user.CreatedAt,
			LastLoginAt: user.LastLoginAt,
		},
	}
}
