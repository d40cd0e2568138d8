// Package middleware provides the HTTP middleware chain: request IDs,
// request logging, panic recovery, security headers, CORS, body limits,
// JWT authentication and Redis-backed rate limits.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

// requestIDKey holds the request ID.
const requestIDKey contextKey = "request_id"

// RequestIDHeader carries the request ID in both directions. The mobile and
// web clients send one so a support report can be matched to the API log.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds an inbound ID before it reaches the logs.
const maxRequestIDLen = 64

// RequestID tags each request with an ID. A client ID is kept when it is
// short and made of [A-Za-z0-9._-]; anything else is replaced by a UUIDv7,
// so IDs sort by arrival time.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = newRequestID()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
