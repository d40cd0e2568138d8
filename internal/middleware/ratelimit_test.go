package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/cache"
)

type fakeLimiter struct {
	allowed    bool
	err        error
	retryAfter time.Duration
	lastKey    string
	lastBucket cache.Bucket
}

func (f *fakeLimiter) Take(_ context.Context, b cache.Bucket, subject string) (*cache.Allowance, error) {
	f.lastKey, f.lastBucket = subject, b
	if f.err != nil {
		return nil, f.err
	}
	retry := f.retryAfter
	if retry == 0 {
		retry = 3 * time.Second
	}
	return &cache.Allowance{
		Allowed:    f.allowed,
		Remaining:  4,
		ResetAt:    time.Unix(1700000000, 0),
		RetryAfter: retry,
	}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitUser(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *fakeLimiter
		enabled    bool
		wantStatus int
	}{
		{"allowed", &fakeLimiter{allowed: true}, true, http.StatusOK},
		{"exceeded", &fakeLimiter{allowed: false}, true, http.StatusTooManyRequests},
		{"redis error fails open", &fakeLimiter{err: errors.New("redis down")}, true, http.StatusOK},
		{"disabled", &fakeLimiter{allowed: false}, false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := RateLimitUser(RateLimitConfig{
				Logger:        slog.Default(),
				Limiter:       tt.limiter,
				Enabled:       tt.enabled,
				UserPerMinute: 120,
				UserBurst:     30,
			})

			req := httptest.NewRequest(http.MethodGet, "/api/memos", nil)
			req = req.WithContext(auth.ContextWithPrincipal(req.Context(), &auth.Principal{UserID: "u1"}))
			rec := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusTooManyRequests {
				if got := rec.Header().Get("Retry-After"); got != "3" {
					t.Errorf("Retry-After = %q, want 3", got)
				}
				if got := rec.Header().Get("X-RateLimit-Limit"); got != "120" {
					t.Errorf("X-RateLimit-Limit = %q, want 120", got)
				}
			}
			if tt.enabled && tt.limiter.lastKey != "u1" {
				t.Errorf("limited on %q, want the user id", tt.limiter.lastKey)
			}
		})
	}
}

func TestRateLimitIP_UsesHostWithoutPort(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	mw := RateLimitIP(RateLimitConfig{Logger: slog.Default(), Limiter: limiter, Enabled: true, IPRPS: 10, IPBurst: 20})

	req := httptest.NewRequest(http.MethodGet, "/api/health-tips", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if limiter.lastKey != "203.0.113.7" {
		t.Errorf("ip = %q", limiter.lastKey)
	}
	if limiter.lastBucket != cache.IPBucket(10, 20) {
		t.Errorf("bucket = %+v, want the configured ip bucket", limiter.lastBucket)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Errorf("public routes should not advertise a limit, got %q", got)
	}
}

func TestRateLimitUser_BucketFromConfig(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	cfg := RateLimitConfig{Logger: slog.Default(), Limiter: limiter, Enabled: true, UserPerMinute: 120, UserBurst: 30}

	req := httptest.NewRequest(http.MethodGet, "/api/memos", nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), &auth.Principal{UserID: "u1"}))
	RateLimitUser(cfg)(okHandler()).ServeHTTP(httptest.NewRecorder(), req)

	if limiter.lastBucket != cache.UserBucket(120, 30) {
		t.Errorf("bucket = %+v, want the configured user bucket", limiter.lastBucket)
	}
}

func TestRateLimitUser_AnonymousPasses(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	mw := RateLimitUser(RateLimitConfig{Logger: slog.Default(), Limiter: limiter, Enabled: true, UserPerMinute: 1, UserBurst: 1})

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/memos", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if limiter.lastKey != "" {
		t.Errorf("limiter should not be consulted without a user")
	}
}

func TestRateLimit_RetryAfterRoundsUp(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want string
	}{
		{1500 * time.Millisecond, "2"},
		{100 * time.Millisecond, "1"},
		{4 * time.Second, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.wait.String(), func(t *testing.T) {
			limiter := &fakeLimiter{allowed: false, retryAfter: tt.wait}
			mw := RateLimitIP(RateLimitConfig{Logger: slog.Default(), Limiter: limiter, Enabled: true, IPRPS: 1, IPBurst: 1})

			rec := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health-tips", nil))

			if got := rec.Header().Get("Retry-After"); got != tt.want {
				t.Errorf("Retry-After = %q, want %s", got, tt.want)
			}
		})
	}
}
