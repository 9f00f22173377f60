package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/security/auth"
)

type identityContextKey struct{}

// Identity resolves the Authorization header into a user and stores it in
// the request context. The header is optional: anonymous requests proceed
// and per-resource policy decides what they may do. A header that is present
// but invalid, or that names a user who no longer exists, is rejected with
// 401 so a stale token never silently degrades into anonymous access.
func Identity(tm *auth.TokenManager, users domain.UserRepository, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":{"kind":"unauthorized","message":"invalid authorization header"}}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":{"kind":"unauthorized","message":"invalid token"}}`, http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(claims.UserID)
			if err != nil {
				// A missing row is a credential problem (the account was
				// deleted); anything else is the store failing and must not
				// read as a bad token.
				if errors.Is(err, domain.ErrNotFound) {
					log.Warn("token references unknown user",
						slog.Int64("user_id", claims.UserID),
					)
					http.Error(w, `{"error":{"kind":"unauthorized","message":"invalid token"}}`, http.StatusUnauthorized)
					return
				}
				log.Error("failed to resolve identity",
					slog.Int64("user_id", claims.UserID),
					slog.String("error", err.Error()),
				)
				http.Error(w, `{"error":{"kind":"internal","message":"internal server error"}}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the authenticated user, or nil for anonymous
// requests.
func IdentityFromContext(ctx context.Context) *domain.User {
	if u := ctx.Value(identityContextKey{}); u != nil {
		return u.(*domain.User)
	}
	return nil
}
