package middleware

import (
	"context"
	"net/http"
	"strings"

	"fuel-backend/internal/auth"
	"fuel-backend/pkg/utils"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// WithClaims returns ctx carrying claims.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the validated claims of the request.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// Actor names who made the request, for created_by and confirmed_by fields.
func Actor(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok {
		if c.Subject != "" {
			return c.Subject
		}
		return c.Role
	}
	return ""
}

func bearer(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireRole authenticates the bearer token and admits only the listed
// roles.
func (m *AuthMiddleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				utils.Error(w, http.StatusUnauthorized, "Authorization header required")
				return
			}
			token, ok := bearer(r)
			if !ok {
				utils.Error(w, http.StatusUnauthorized, "Invalid authorization format")
				return
			}
			claims, err := m.tokens.ValidateToken(token)
			if err != nil {
				utils.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			allowed := false
			for _, role := range allowedRoles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				utils.Error(w, http.StatusForbidden, "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
