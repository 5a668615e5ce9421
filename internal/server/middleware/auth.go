// Package middleware provides HTTP middleware for interviewer
// authentication.
package middleware

import (
	"net/http"
	"strings"
)

// TokenValidator validates a bearer token. The server runs a single
// operator account, so validation carries no identity beyond pass/fail.
type TokenValidator interface {
	ValidateToken(tokenString string) error
}

// Auth creates middleware that rejects requests without a valid bearer
// token.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if err := validator.ValidateToken(token); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header, or from
// the "token" query parameter for EventSource connections, which cannot
// set headers.
func bearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}
