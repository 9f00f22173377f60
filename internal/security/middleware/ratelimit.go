package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/phonebook/internal/security/ratelimit"
)

// RateLimit throttles requests per caller. Authenticated requests are keyed
// by user id, anonymous ones by remote address. Health and metrics probes
// are exempt.
func RateLimit(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			key := r.RemoteAddr
			if user := IdentityFromContext(r.Context()); user != nil {
				key = "user:" + strconv.FormatInt(user.ID, 10)
			}

			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("key", key))
				http.Error(w, `{"error":{"kind":"rate_limited","message":"rate limit exceeded"}}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
