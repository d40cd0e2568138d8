package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/evansachie/lifeguard/internal/auth"
)

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name       string
		principal  *auth.Principal
		path       string
		wantStatus int
	}{
		{"owner allowed", &auth.Principal{UserID: "u1"}, "/favorite-sounds/u1", http.StatusOK},
		{"other user forbidden", &auth.Principal{UserID: "u1"}, "/favorite-sounds/u2", http.StatusForbidden},
		{"no principal", nil, "/favorite-sounds/u1", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.With(RequireOwner("userId")).Get("/favorite-sounds/{userId}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.principal != nil {
				req = req.WithContext(auth.ContextWithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
