package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/talenttune/talenttune-api/internal/middleware"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/token"
)

func newGuardedApp(tokens *token.Service) *fiber.App {
	app := fiber.New()
	app.Use(middleware.PageGuard(middleware.SessionConfig{Tokens: tokens, CookieName: "auth-token"}))

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/auth/login", ok)
	app.Get("/dashboard", ok)
	app.Get("/dashboard/admin", ok)
	app.Get("/dashboard/evaluator", ok)
	app.Get("/healthz", ok)
	app.Get("/assets/app.css", ok)

	return app
}

func TestPageGuardRedirectsAnonymousToLogin(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGuardedApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	require.Equal(t, middleware.LoginPath, resp.Header.Get("Location"))
}

func TestPageGuardAllowsAnonymousAuthPage(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGuardedApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPageGuardSkipsInfrastructurePaths(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGuardedApp(tokens)

	for _, path := range []string{"/healthz", "/assets/app.css"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestPageGuardClearsExpiredSession(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGuardedApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: "stale"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	require.Equal(t, middleware.LoginPath, resp.Header.Get("Location"))

	var cleared bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "auth-token" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}

func TestPageGuardBouncesAuthenticatedOffAuthPages(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGuardedApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.AddCookie(signedCookie(t, tokens, models.RoleUser))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	require.Equal(t, middleware.DashboardPath, resp.Header.Get("Location"))
}

func TestPageGuardRoleRouting(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGuardedApp(tokens)

	cases := []struct {
		name       string
		role       models.Role
		path       string
		statusCode int
		location   string
	}{
		{name: "user on dashboard", role: models.RoleUser, path: "/dashboard", statusCode: fiber.StatusOK},
		{name: "user denied admin area", role: models.RoleUser, path: "/dashboard/admin", statusCode: fiber.StatusFound, location: middleware.DashboardPath},
		{name: "evaluator denied admin area", role: models.RoleEvaluator, path: "/dashboard/admin", statusCode: fiber.StatusFound, location: middleware.DashboardPath},
		{name: "evaluator area open to evaluator", role: models.RoleEvaluator, path: "/dashboard/evaluator", statusCode: fiber.StatusOK},
		{name: "evaluator area open to admin", role: models.RoleAdministrator, path: "/dashboard/evaluator", statusCode: fiber.StatusOK},
		{name: "admin area open to admin", role: models.RoleAdministrator, path: "/dashboard/admin", statusCode: fiber.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.AddCookie(signedCookie(t, tokens, tc.role))

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
			if tc.location != "" {
				require.Equal(t, tc.location, resp.Header.Get("Location"))
			}
		})
	}
}

func TestRouteAllowed(t *testing.T) {
	require.True(t, middleware.RouteAllowed(models.RoleUser, "/dashboard"))
	require.False(t, middleware.RouteAllowed(models.RoleUser, "/dashboard/admin"))
	require.True(t, middleware.RouteAllowed(models.RoleAdministrator, "/dashboard/admin"))
	require.False(t, middleware.RouteAllowed(models.RoleUser, "/dashboard/evaluator"))
	require.True(t, middleware.RouteAllowed(models.RoleEvaluator, "/dashboard/evaluator"))
	require.True(t, middleware.RouteAllowed(models.RoleUser, "/profile"))
}
