package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/internal/api/presenter"
	"github.com/Yishiba/animeko/internal/core"
)

// Authenticator checks a presented session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*core.Claims, error)
}

type claimsKey struct{}

// ClaimsFromContext returns the claims of the session authenticated by RequireSession.
func ClaimsFromContext(ctx context.Context) (*core.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*core.Claims)
	return claims, ok && claims != nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < len("Bearer ") || !strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[len("Bearer "):])
}

// RequireSession rejects requests without a valid session token.
func RequireSession(auth Authenticator) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := BearerToken(r)
			if tokenStr == "" {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}

			claims, err := auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				presenter.Err(w, r, err, "invalid session token")
				return
			}

			log.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", claims.UserID.String())
			})

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
