// internal/server/handlers/auth.go

package handlers

import (
	"net/http"
	"strings"

	"huddle/internal/domain/identity"
)

// Authenticate verifies the bearer token and stores the caller's user ID in the request context
func Authenticate(tokens identity.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respondWithError(w, http.StatusUnauthorized, CodeUnauthenticated, "Missing bearer token", nil)
				return
			}

			userID, err := tokens.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, CodeUnauthenticated, "Invalid bearer token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), userID)))
		})
	}
}
