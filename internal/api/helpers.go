package api

import (
	"context"
	"strings"

	"github.com/brainiac5/brainiac-server/internal/auth"
	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the
// claims of a live session.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*auth.AccessClaims, error) {
	if authHeader == "" {
		return nil, domainerrors.Unauthorized("Missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, domainerrors.Unauthorized("Invalid authorization header format")
	}

	claims, err := s.services.Session.ValidateAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// bearerSecurity marks an operation as requiring a bearer token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}
