package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/cache"
)

// RateLimiter is the token bucket store behind the rate limit middleware.
// *cache.Cache implements it.
type RateLimiter interface {
	Take(ctx context.Context, b cache.Bucket, subject string) (*cache.Allowance, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Enabled bool
	// Per authenticated user
	UserPerMinute int
	UserBurst     int
	// Per client IP on public routes
	IPRPS   int
	IPBurst int
}

// UserBucket is the per-user bucket described by the config.
func (c RateLimitConfig) UserBucket() cache.Bucket {
	return cache.UserBucket(c.UserPerMinute, c.UserBurst)
}

// IPBucket is the per-address bucket described by the config.
func (c RateLimitConfig) IPBucket() cache.Bucket {
	return cache.IPBucket(c.IPRPS, c.IPBurst)
}

// RateLimitUser returns middleware that rate limits requests per user.
// Must be applied after Auth middleware. Requests without a user pass.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, cfg.UserBucket(), cfg.UserPerMinute, func(r *http.Request) string {
		return auth.UserIDFromContext(r.Context())
	})
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Used on the public routes, which carry no limit headers.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, cfg.IPBucket(), 0, getClientIP)
}

// rateLimit takes one token from b for the request's subject. headerLimit
// is advertised in X-RateLimit-Limit when positive. Limiter errors fail open.
func rateLimit(cfg RateLimitConfig, b cache.Bucket, headerLimit int, subjectOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := subjectOf(r)
			if !cfg.Enabled || cfg.Limiter == nil || subject == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := cfg.Limiter.Take(r.Context(), b, subject)
			if err != nil {
				cfg.Logger.Error("rate_limit_check_failed",
					slog.String("bucket", b.Name),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, headerLimit, res.Remaining, res.ResetAt)
			if !res.Allowed {
				attrs := []any{
					slog.String("bucket", b.Name),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_ms", res.RetryAfter.Milliseconds()),
					slog.String("request_id", GetRequestID(r.Context())),
				}
				if b.Name == "user" {
					attrs = append(attrs, slog.String("user_id", subject))
				}
				cfg.Logger.Warn("rate_limit_exceeded", attrs...)
				writeRateLimitError(w, res.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
// Retry-After is rounded up to whole seconds, at least 1.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", seconds))
}

// getClientIP returns the client IP without the port. chi's RealIP runs
// first in the chain and has already rewritten RemoteAddr from
// X-Forwarded-For or X-Real-IP.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
