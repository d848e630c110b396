package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/response"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

// TokenParser is satisfied by *security.JWTManager.
type TokenParser interface {
	ParseAccessToken(token string) (*security.Claims, error)
}

// AuthMiddleware admits requests carrying a valid bearer token and attaches its claims.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing")
				response.Error(w, r, apperr.Unauthorized("Unauthorized"))
				return
			}
			claims, err := tokens.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				response.Error(w, r, apperr.Unauthorized("Unauthorized"))
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}
