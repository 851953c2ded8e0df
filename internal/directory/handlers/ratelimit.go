package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimitedPrefixes are the query endpoints that run the search index.
var rateLimitedPrefixes = []string{"/v1/directory", "/v1/search"}

// RateLimit rejects query requests beyond limiter's budget with 429. Other
// routes are not limited. A nil limiter disables limiting.
func RateLimit(next http.Handler, limiter *rate.Limiter, logger *zap.Logger) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limited(r.URL.Path) && !limiter.Allow() {
			logger.Debug("Rate limit exceeded", zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limited(path string) bool {
	for _, p := range rateLimitedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
