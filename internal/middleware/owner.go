package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evansachie/lifeguard/internal/auth"
)

// RequireOwner returns middleware that rejects requests whose URL
// parameter param names a different user than the token.
// Must be applied after Auth middleware.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := auth.UserIDFromContext(r.Context())
			if userID == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "No authentication token provided")
				return
			}
			if chi.URLParam(r, param) != userID {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Unauthorized access")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSONError writes the {error, code} envelope.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
