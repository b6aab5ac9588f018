package middleware

import (
	"net/http"
	"strings"

	"rngenius/pkg/domain"
	"rngenius/pkg/requestcontext"
)

// TokenValidator verifies an access token and returns the subject it was
// issued for.
type TokenValidator interface {
	ValidateToken(token string) (domain.UserID, error)
}

// RequireAuth rejects requests without a valid bearer token and stashes the
// authenticated user id in the request context.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}
			userID, err := validator.ValidateToken(token)
			if err != nil {
				unauthorized(w)
				return
			}
			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"field":"authorization","message":"missing or invalid bearer token"}`))
}
