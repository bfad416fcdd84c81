// Package shield provides reusable HTTP security middleware for the tamis
// API: security headers, request correlation IDs, body size limits, per-IP
// rate limiting, and optional basic auth.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.Stack(50 << 20) {
//		r.Use(mw)
//	}
//	r.Use(shield.BasicAuth(user, hash, "/v1/health"))
package shield

import (
	"net/http"
)

type contextKey string

const (
	// LoggerKey is the context key for the per-request structured logger.
	LoggerKey contextKey = "shield_logger"

	// RequestIDKey is the context key for the request correlation ID.
	RequestIDKey contextKey = "shield_request_id"
)

// Stack returns the standard middleware stack for the tamis API, ordered:
// HeadToGet → SecurityHeaders → MaxBody → RequestID. Rate limiting and auth
// are attached separately by the caller since both depend on runtime
// configuration.
func Stack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxBody(maxBody),
		RequestID,
	}
}
