// Package service implements the ideas server's use cases on top of the
// store, the search index and the auth primitives.
package service

import "log/slog"

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
