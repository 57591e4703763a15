package users

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// TokenPrefix is the Authorization header scheme we accept.
	TokenPrefix = "Bearer "
	// JWTTokenHeader is the response header carrying a freshly minted token.
	JWTTokenHeader = "Jwt-Token"
	// ForbiddenMessage is sent when a protected route is hit without an
	// authenticated principal.
	ForbiddenMessage = "You need to log in to access this page"
	// AccessDeniedMessage is sent when the principal lacks the required
	// authority.
	AccessDeniedMessage = "you do not have permission to access this page"
)

// AuthorizationFilter returns the per request middleware that resolves a
// bearer token into an AuthContext. It never rejects an authenticated
// route: requests without a usable token simply continue unauthenticated
// and the route level guards decide what that means. OPTIONS requests are
// answered with 200 right here so CORS preflights never pay for token
// verification and never hit the route guards.
func AuthorizationFilter(tokens *TokenService, logger Logger) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}

		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, TokenPrefix) {
			return c.Next()
		}

		token := strings.TrimPrefix(header, TokenPrefix)

		subject, err := tokens.Subject(token)
		if err != nil {
			logger.Debug("authorization filter rejecting token: %v", err)
			clearAuthContext(c)
			return c.Next()
		}

		if tokens.IsValid(subject, token) && GetAuthContext(c) == nil {
			authorities, err := tokens.Authorities(token)
			if err != nil {
				clearAuthContext(c)
				return c.Next()
			}
			installAuthContext(c, &AuthContext{
				Subject:     subject,
				Authorities: authorities,
				RemoteAddr:  c.IP(),
			})
		} else {
			clearAuthContext(c)
		}

		return c.Next()
	}
}

// RequireAuthority guards a route behind a specific authority string.
// Unauthenticated requests get 401, authenticated ones lacking the
// authority get 403.
func RequireAuthority(authority string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := GetAuthContext(c)
		if auth == nil {
			return WriteHTTPResponse(c, fiber.StatusUnauthorized, ForbiddenMessage)
		}

		if !auth.HasAuthority(authority) {
			return WriteHTTPResponse(c, fiber.StatusForbidden, AccessDeniedMessage)
		}

		return c.Next()
	}
}

// RequireAuthenticated guards a route behind any authenticated principal.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetAuthContext(c) == nil {
			return WriteHTTPResponse(c, fiber.StatusUnauthorized, ForbiddenMessage)
		}
		return c.Next()
	}
}

func installAuthContext(c *fiber.Ctx, auth *AuthContext) {
	c.Locals(AuthLocalsKey, auth)
	c.SetUserContext(WithAuthContext(c.UserContext(), auth))
}

func clearAuthContext(c *fiber.Ctx) {
	c.Locals(AuthLocalsKey, nil)
	c.SetUserContext(WithAuthContext(c.UserContext(), nil))
}
