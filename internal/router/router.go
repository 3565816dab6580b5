package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/talenttune/talenttune-api/internal/config"
	"github.com/talenttune/talenttune-api/internal/handler"
	"github.com/talenttune/talenttune-api/internal/middleware"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	AssessmentHandler *handler.AssessmentHandler
	ScheduleHandler   *handler.ScheduleHandler
	RoomHandler       *handler.RoomHandler
	Session           middleware.SessionConfig
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/healthz", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	protected := middleware.APIProtected(deps.Session)
	adminOnly := middleware.RequireRole(models.RoleAdministrator)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", protected))
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", protected)
		deps.UserHandler.RegisterAdmin(users.Group("", adminOnly))
		deps.UserHandler.Register(users)
	}

	if deps.AssessmentHandler != nil {
		assessments := api.Group("/assessments", protected)
		deps.AssessmentHandler.RegisterAdmin(assessments.Group("", adminOnly))
		deps.AssessmentHandler.Register(assessments)
	}

	if deps.ScheduleHandler != nil {
		schedules := api.Group("/schedules", protected)
		deps.ScheduleHandler.Register(schedules)
	}

	if deps.RoomHandler != nil {
		rooms := api.Group("/rooms", protected)
		deps.RoomHandler.Register(rooms)
	}
}
