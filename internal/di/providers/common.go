package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// sessionCleanupInterval is how often expired sessions are purged.
	sessionCleanupInterval = 1 * time.Hour
)

// Version is the API version reported in the OpenAPI document. Overridden at
// build time with -ldflags.
var Version = "1.0.0"
