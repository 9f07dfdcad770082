package providers

import (
	"encoding/hex"

	"github.com/samber/do/v2"

	"github.com/brainiac5/brainiac-server/internal/auth"
	"github.com/brainiac5/brainiac-server/internal/config"
	"github.com/brainiac5/brainiac-server/internal/logger"
	"github.com/brainiac5/brainiac-server/internal/ratelimit"
)

// AuthKey wraps the server key bytes. It signs access tokens and, through
// HKDF, seals TOTP secrets.
type AuthKey []byte

// ProvideAuthKey loads or generates the server key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Metadata.BasePath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Auth.AccessTokenKey = key

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	keyHex := hex.EncodeToString([]byte(authKey))
	return auth.NewTokenService(keyHex, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}

// ProvideSecretBox provides the sealing box for TOTP secrets at rest.
func ProvideSecretBox(i do.Injector) (*auth.SecretBox, error) {
	authKey := do.MustInvoke[AuthKey](i)
	return auth.NewSecretBox([]byte(authKey))
}

// ProvideTOTPVerifier provides the one-time code verifier.
func ProvideTOTPVerifier(i do.Injector) (*auth.TOTPVerifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewTOTPVerifier(cfg.Auth.TOTPIssuer, cfg.Auth.TOTPSkew), nil
}

// LoginLimiterHandle wraps the optional login limiter. Limiter is nil when
// throttling is disabled.
type LoginLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideLoginLimiter provides the per-IP login limiter when
// AUTH_LOGIN_RATE_LIMIT is positive.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.LoginRateLimit <= 0 {
		log.Debug("Login rate limiting disabled")
		return &LoginLimiterHandle{}, nil
	}

	log.Info("Login rate limiting enabled", "per_minute", cfg.Auth.LoginRateLimit)
	return &LoginLimiterHandle{Limiter: ratelimit.PerMinute(cfg.Auth.LoginRateLimit)}, nil
}
