package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/config"
	"github.com/evansachie/lifeguard/internal/handler"
	"github.com/evansachie/lifeguard/internal/metrics"
)

const testSecret = "router-test-secret"

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := handler.NewValidator()
	h := routeHandlers{
		root:        handler.New(),
		health:      handler.NewHealthHandler(nil, nil),
		metrics:     handler.NewMetricsHandler(metrics.NewInMemory()),
		memos:       handler.NewMemoHandler(nil, v, logger),
		calories:    handler.NewCalorieHandler(nil, v, logger),
		settings:    handler.NewSettingsHandler(nil, v, logger),
		contacts:    handler.NewContactHandler(nil, v, logger),
		preferences: handler.NewPreferenceHandler(nil, true, v, logger),
		sounds:      handler.NewSoundHandler(nil, v, logger),
		exercise:    handler.NewExerciseHandler(nil, v, logger),
		healthData:  handler.NewHealthDataHandler(nil, v, logger),
		medications: handler.NewMedicationHandler(nil, v, logger),
		tips:        handler.NewHealthTipsHandler(nil, logger),
		voice:       handler.NewVoiceHandler(nil, logger),
	}
	cfg := &config.Config{
		AppEnv:             "test",
		CORSAllowedOrigins: "http://localhost:3000",
		MaxRequestBodySize: 1 << 20,
	}
	return setupRouter(h, auth.NewVerifier(testSecret, "", ""), nil, nil, cfg, logger)
}

func TestRouter_PublicAndUnknownRoutes(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
	}{
		{"root", http.MethodGet, "/", http.StatusOK},
		{"liveness", http.MethodGet, "/healthz", http.StatusOK},
		{"readiness without dependencies", http.MethodGet, "/readyz", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"notifications health", http.MethodGet, "/api/notifications/health", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/does-not-exist", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/healthz", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRouter_AuthenticatedRoutesRequireToken(t *testing.T) {
	r := testRouter(t)

	for _, target := range []string{
		"/api/memos",
		"/api/settings",
		"/api/emergency-contacts",
		"/api/emergency-contacts/alerts",
		"/api/exercise/stats",
		"/api/medications",
		"/api/sensor-data/latest",
		"/api/favorite-sounds/user-1",
	} {
		t.Run(target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "No authentication token provided")
		})
	}
}

func TestRouter_FavoriteSoundsRejectOtherUsers(t *testing.T) {
	r := testRouter(t)
	token, err := auth.NewIssuer(testSecret, "", "").Issue(auth.Principal{UserID: "user-1", Email: "a@example.com"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/favorite-sounds/user-2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized access")
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://lifeguard:s3cret@db:5432/lifeguard", "postgres://lifeguard@db:5432/lifeguard"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, redactURL(tt.in))
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://lifeguard:s3cret@db:5432/lifeguard"
	err := errors.New("dial " + dsn + " failed: password=s3cret rejected")

	got := sanitizeError(err, dsn)
	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "password=redacted")
	assert.Empty(t, sanitizeError(nil))
}
