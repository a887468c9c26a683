package controller

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
)

// RequireAdmin guards admin routes with a static bearer token.
// With an empty token the guard is disabled (local development).
func RequireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasAdminToken(r, token) {
				log.Printf("🔒 RequireAdmin: rejected %s %s", r.Method, r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasAdminToken(r *http.Request, token string) bool {
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}
