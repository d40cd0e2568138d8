package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/evansachie/lifeguard/internal/auth"
)

// TokenVerifier checks a bearer token and returns its principal.
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// UserSyncer mirrors an authenticated principal into local storage.
type UserSyncer interface {
	Sync(ctx context.Context, p *auth.Principal) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	// Users is optional. Sync failures are logged and never reject the request.
	Users UserSyncer
}

// Auth returns a middleware that verifies the bearer JWT and injects the
// principal into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r.Header.Get("Authorization"))
			principal, err := cfg.Verifier.Verify(token)
			if err != nil {
				reason, message := authFailure(err)
				logger.Warn("authentication_failed",
					slog.String("reason", reason),
					slog.String("ip", getClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, message)
				return
			}

			if cfg.Users != nil {
				if err := cfg.Users.Sync(r.Context(), principal); err != nil {
					logger.Error("user_sync_failed",
						slog.String("user_id", principal.UserID),
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
			}

			setLogUserID(r.Context(), principal.UserID)
			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authFailure(err error) (reason, message string) {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing_token", "No authentication token provided"
	case errors.Is(err, auth.ErrTokenExpired):
		return "token_expired", "Token expired"
	default:
		return "invalid_token", "Invalid token"
	}
}

// writeAuthError writes a 401 Unauthorized response.
func writeAuthError(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
