package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brainiac5/brainiac-server/internal/metrics"
	"github.com/brainiac5/brainiac-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// clientInfoKey is the context key for the caller's address and user agent.
const clientInfoKey ctxKey = "clientInfo"

// requestLogger logs one line per request and records request metrics under
// the matched route pattern.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			took := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			metrics.ObserveHTTPRequest(r.Method, route, status, took)

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", took,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// clientInfoMiddleware stores the caller's address and user agent for
// session bookkeeping and login throttling. It runs after RealIP.
func clientInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := service.ClientInfo{
			IPAddress: clientIP(r.RemoteAddr),
			UserAgent: r.UserAgent(),
		}
		ctx := context.WithValue(r.Context(), clientInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientFromContext returns the client info stored by clientInfoMiddleware.
func clientFromContext(ctx context.Context) service.ClientInfo {
	info, _ := ctx.Value(clientInfoKey).(service.ClientInfo)
	return info
}

// clientIP strips the port from a remote address, if it has one.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
