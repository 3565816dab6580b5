package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/talenttune/talenttune-api/internal/models"
)

// Navigation targets used by the page guard.
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

// routePermission maps a navigation prefix to the roles allowed past it.
// Evaluated in order, most specific prefix first.
type routePermission struct {
	prefix  string
	allowed []models.Role
}

var routePermissions = []routePermission{
	{"/dashboard/admin", []models.Role{models.RoleAdministrator}},
	{"/dashboard/evaluator", []models.Role{models.RoleAdministrator, models.RoleEvaluator}},
	{"/dashboard", []models.Role{models.RoleAdministrator, models.RoleUser, models.RoleEvaluator}},
}

// PageGuard gates every navigational request. API routes, the metrics and
// health endpoints and static assets are passed through untouched; anything
// else requires a valid session, auth pages flip to the dashboard when a
// session already exists, and a role mismatch soft-denies back to the
// dashboard root instead of an error page.
func PageGuard(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if skipNavigation(path) {
			return c.Next()
		}

		isAuthPage := strings.HasPrefix(path, "/auth")

		raw := c.Cookies(cfg.CookieName)
		if raw == "" {
			if isAuthPage {
				return c.Next()
			}
			return c.Redirect(LoginPath, fiber.StatusFound)
		}

		claims, ok := verifySession(cfg.Tokens, raw)
		if !ok {
			clearSessionCookie(c, cfg)
			return c.Redirect(LoginPath, fiber.StatusFound)
		}

		// A valid session takes precedence over any auth form.
		if isAuthPage {
			return c.Redirect(DashboardPath, fiber.StatusFound)
		}

		for _, permission := range routePermissions {
			if !strings.HasPrefix(path, permission.prefix) {
				continue
			}
			if !roleAllowed(claims.Role, permission.allowed) {
				return c.Redirect(DashboardPath, fiber.StatusFound)
			}
			break
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// RouteAllowed reports whether the role may navigate to the given path.
// Exposed for the navigation tests and sidebar rendering.
func RouteAllowed(role models.Role, path string) bool {
	for _, permission := range routePermissions {
		if strings.HasPrefix(path, permission.prefix) {
			return roleAllowed(role, permission.allowed)
		}
	}
	return true
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

func skipNavigation(path string) bool {
	if strings.HasPrefix(path, "/api/") || path == "/healthz" || path == "/metrics" {
		return true
	}

	// Static assets carry a file extension in the last segment.
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return strings.ContainsRune(path[idx:], '.')
	}
	return false
}
