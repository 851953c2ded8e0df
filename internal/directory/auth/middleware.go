package auth

import (
	"errors"
	"net/http"
)

// ReloadPath is the HTTP route of the catalog reload.
const ReloadPath = "/v1/catalog/reload"

var errMissingHeader = errors.New("authorization header required")

// HTTPMiddleware requires a valid bearer token on POST ReloadPath and
// passes every other request through.
func HTTPMiddleware(next http.Handler, jwtSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ReloadPath {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, errMissingHeader.Error(), http.StatusUnauthorized)
			return
		}
		tokenString, err := bearer(header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		claims, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}
