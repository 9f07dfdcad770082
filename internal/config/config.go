// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Aggregator failure policies.
const (
	FailurePolicyDegrade  = "degrade"
	FailurePolicyFailFast = "fail_fast"
)

// defaultCORSOrigins are the origins trusted when CORS_ALLOWED_ORIGINS is unset.
var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Metadata   MetadataConfig
	Database   DatabaseConfig
	Server     ServerConfig
	Auth       AuthConfig
	Aggregator AggregatorConfig
	Search     SearchConfig
	Snapshot   SnapshotConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds the data directory. The auth key, search index and
// hierarchy snapshots live under it.
type MetadataConfig struct {
	BasePath string
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string // default: {metadata}/brainiac.db
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name               string
	Port               string        // Server port (default: 8080)
	ReadTimeout        time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout       time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout        time.Duration // HTTP idle timeout (default: 60s)
	CORSAllowedOrigins []string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes). Also seals TOTP secrets.
	AccessTokenKey []byte
	// Session durations
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)

	TOTPIssuer string
	// TOTPSkew is the number of 30s steps accepted either side of now.
	TOTPSkew uint
	// LoginRateLimit is verify-otp requests per minute per client. 0 disables it.
	LoginRateLimit int
}

// AggregatorConfig controls hierarchy building.
type AggregatorConfig struct {
	FailurePolicy string // degrade or fail_fast
	Concurrency   int    // parallel per-tag fetches
}

// SnapshotConfig locates the hierarchy snapshot store.
type SnapshotConfig struct {
	Path string // default: {metadata}/snapshots
}

// SearchConfig controls the similarity index.
type SearchConfig struct {
	Enabled   bool
	IndexPath string // default: {metadata}/search
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("brainiac", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := fs.String("metadata-path", "", "Base path for data storage")
	databasePath := fs.String("database-path", "", "Path to the SQLite database")
	serverName := fs.String("server-name", "", "Name for the server")

	// Auth flags
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := fs.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	totpIssuer := fs.String("totp-issuer", "", "Issuer shown in authenticator apps")
	totpSkew := fs.String("totp-skew", "", "Accepted TOTP clock skew in 30s steps (default: 1)")
	loginRateLimit := fs.String("login-rate-limit", "", "Login attempts per minute per client, 0 disables (default: 0)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated list of allowed CORS origins")

	// Aggregator flags
	failurePolicy := fs.String("aggregator-failure-policy", "", "Per-tag failure policy: degrade or fail_fast")
	concurrency := fs.String("aggregator-concurrency", "", "Parallel per-tag fetches (default: 8)")

	searchEnabled := fs.String("search-enabled", "", "Enable the similarity index (default: true)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*databasePath, "DATABASE_PATH", ""),
		},
		Server: ServerConfig{
			Name:               getConfigValue(*serverName, "SERVER_NAME", "Brainiac"),
			Port:               getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSAllowedOrigins: getListConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		},
		Auth: AuthConfig{
			AccessTokenKey: nil, // Set by the auth key provider.
			TOTPIssuer:     getConfigValue(*totpIssuer, "AUTH_TOTP_ISSUER", "Brainiac"),
			LoginRateLimit: getIntConfigValue(*loginRateLimit, "AUTH_LOGIN_RATE_LIMIT", 0),
		},
		Aggregator: AggregatorConfig{
			FailurePolicy: getConfigValue(*failurePolicy, "AGGREGATOR_FAILURE_POLICY", FailurePolicyDegrade),
			Concurrency:   getIntConfigValue(*concurrency, "AGGREGATOR_CONCURRENCY", 8),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(*searchEnabled, "SEARCH_ENABLED", true),
		},
	}

	skew := getIntConfigValue(*totpSkew, "AUTH_TOTP_SKEW", 1)
	if skew < 0 {
		return nil, fmt.Errorf("invalid totp skew %d: must not be negative", skew)
	}
	cfg.Auth.TOTPSkew = uint(skew)

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", &cfg.Auth.AccessTokenDuration},
		{*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h", &cfg.Auth.RefreshTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	switch c.Aggregator.FailurePolicy {
	case FailurePolicyDegrade, FailurePolicyFailFast:
	default:
		return fmt.Errorf("invalid aggregator failure policy: %s (must be %s or %s)",
			c.Aggregator.FailurePolicy, FailurePolicyDegrade, FailurePolicyFailFast)
	}

	if c.Aggregator.Concurrency < 1 {
		return fmt.Errorf("invalid aggregator concurrency: %d (must be at least 1)", c.Aggregator.Concurrency)
	}

	if c.Auth.LoginRateLimit < 0 {
		return fmt.Errorf("invalid login rate limit: %d (must not be negative)", c.Auth.LoginRateLimit)
	}

	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}

	return nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Metadata.BasePath, filepath.Join(homeDir, ".brainiac"))
	if err != nil {
		return fmt.Errorf("invalid metadata path: %w", err)
	}
	c.Metadata.BasePath = base

	dbPath, err := expandPath(c.Database.Path, filepath.Join(base, "brainiac.db"))
	if err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	c.Database.Path = dbPath

	c.Search.IndexPath = filepath.Join(base, "search")
	c.Snapshot.Path = filepath.Join(base, "snapshots")
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getListConfigValue splits a comma-separated value, dropping blanks.
func getListConfigValue(flagValue, envKey string, defaultValue []string) []string {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for part := range strings.SplitSeq(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars already set win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
