package users

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type contextKey string

const authContextKey contextKey = "users:auth"

// AuthLocalsKey is the fiber locals key under which the request's
// AuthContext is installed.
const AuthLocalsKey = "users_auth"

// AuthContext is the per request authentication record installed by the
// authorization filter once a bearer token verifies. It lives for the
// request only; nothing is written to any server side session.
type AuthContext struct {
	Subject     string
	Authorities []string
	RemoteAddr  string
}

// HasAuthority reports whether the authenticated principal carries the
// given authority string.
func (a *AuthContext) HasAuthority(authority string) bool {
	if a == nil {
		return false
	}
	for _, have := range a.Authorities {
		if have == authority {
			return true
		}
	}
	return false
}

// WithAuthContext returns a new context carrying the auth record.
func WithAuthContext(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

// AuthContextFrom retrieves the auth record from a context, or nil.
func AuthContextFrom(ctx context.Context) *AuthContext {
	if ctx == nil {
		return nil
	}
	auth, _ := ctx.Value(authContextKey).(*AuthContext)
	return auth
}

// GetAuthContext retrieves the auth record installed on a fiber request,
// or nil when the request is unauthenticated.
func GetAuthContext(c *fiber.Ctx) *AuthContext {
	if auth, ok := c.Locals(AuthLocalsKey).(*AuthContext); ok {
		return auth
	}
	return AuthContextFrom(c.UserContext())
}
