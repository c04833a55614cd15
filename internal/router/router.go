package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gradient-edu/gradient-api/internal/config"
	"github.com/gradient-edu/gradient-api/internal/handler"
	"github.com/gradient-edu/gradient-api/internal/middleware"
	"github.com/gradient-edu/gradient-api/internal/models"
)

// Dependencies groups router dependencies for registration. Nil handlers are
// skipped so partial wiring in tests stays cheap.
type Dependencies struct {
	HealthHandler     *handler.HealthHandler
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	SearchHandler     *handler.SearchHandler
	ChatHandler       *handler.ChatHandler
	DashboardHandler  *handler.DashboardHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	if deps.HealthHandler != nil {
		deps.HealthHandler.Register(api)
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGuard := middleware.JWTProtected(cfg.JWTSecret)
	refreshGuard := middleware.JWTProtected(cfg.JWTRefreshSecret)
	teachingGuard := middleware.RequireRole(models.RoleProfessor, models.RoleAdmin)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", refreshGuard))
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", authGuard)
		deps.UserHandler.Register(users)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", authGuard)
		deps.CourseHandler.Register(courses)
		deps.CourseHandler.RegisterTeaching(courses.Group("", teachingGuard))
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", authGuard)
		deps.AssignmentHandler.Register(assignments)
		deps.AssignmentHandler.RegisterTeaching(assignments.Group("", teachingGuard))
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", authGuard)
		deps.SubmissionHandler.Register(submissions)
		deps.SubmissionHandler.RegisterGrading(submissions.Group("", teachingGuard))
	}

	if deps.SearchHandler != nil {
		search := api.Group("/search", authGuard)
		deps.SearchHandler.Register(search)
	}

	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterGuest(api.Group("/chat/guest"))
		deps.ChatHandler.Register(api.Group("/chat", authGuard))
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", authGuard, middleware.RequireRole(models.RoleStudent))
		deps.DashboardHandler.Register(dashboard)
	}
}
