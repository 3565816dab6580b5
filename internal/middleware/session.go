package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/token"
	"github.com/talenttune/talenttune-api/internal/utils"
)

// Locals keys populated by the session middleware.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
	LocalUserMail = "user_email"
	LocalUserName = "user_name"
)

// SessionConfig wires the session middleware to the token service.
type SessionConfig struct {
	Tokens     *token.Service
	CookieName string
	Secure     bool
}

// APIProtected validates the session cookie on API routes. A missing token
// yields 401; an invalid token additionally clears the stale cookie so the
// client falls back to the unauthenticated path.
func APIProtected(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(cfg.CookieName)
		if raw == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		}

		claims, ok := verifySession(cfg.Tokens, raw)
		if !ok {
			clearSessionCookie(c, cfg)
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// RequireRole ensures the authenticated session carries one of the allowed
// roles. It must run after APIProtected.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := SessionRole(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// SessionUserID returns the authenticated user id bound to the request.
func SessionUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok
}

// SessionRole returns the authenticated role bound to the request.
func SessionRole(c *fiber.Ctx) (models.Role, bool) {
	role, ok := c.Locals(LocalUserRole).(models.Role)
	return role, ok
}

// SessionClaims rebuilds the token claims from request locals.
func SessionClaims(c *fiber.Ctx) (token.Claims, bool) {
	id, ok := SessionUserID(c)
	if !ok {
		return token.Claims{}, false
	}
	role, ok := SessionRole(c)
	if !ok {
		return token.Claims{}, false
	}

	email, _ := c.Locals(LocalUserMail).(string)
	name, _ := c.Locals(LocalUserName).(string)

	return token.Claims{UserID: id, Email: email, Name: name, Role: role}, true
}

func storeClaims(c *fiber.Ctx, claims token.Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalUserRole, claims.Role)
	c.Locals(LocalUserMail, claims.Email)
	c.Locals(LocalUserName, claims.Name)
}

// verifySession treats any panic out of the verifier as an invalid token so
// an ambiguous verification outcome never lets a request through.
func verifySession(tokens *token.Service, raw string) (claims token.Claims, ok bool) {
	defer func() {
		if recover() != nil {
			claims, ok = token.Claims{}, false
		}
	}()

	return tokens.Verify(raw)
}

func clearSessionCookie(c *fiber.Ctx, cfg SessionConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
