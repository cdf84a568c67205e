package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
	jwtinfra "github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// Auth returns middleware that validates the Bearer access token and injects
// claims into context. An expired token is reported with TOKEN_EXPIRED so
// clients know to hit the refresh endpoint instead of re-authenticating.
func Auth(issuer *jwtinfra.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "NO_TOKEN_PROVIDED", "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := issuer.Verify(tokenStr, jwtinfra.TypeAccess)
			if err != nil {
				var de *domain.Error
				if errors.As(err, &de) {
					writeJSONError(w, de.Status, de.Code, de.Message)
					return
				}
				writeJSONError(w, http.StatusUnauthorized, domain.CodeTokenInvalid, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
