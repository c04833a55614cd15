package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gradient-edu/gradient-api/internal/utils"
)

// HealthHandler reports process liveness.
type HealthHandler struct {
	appName string
}

// NewHealthHandler builds a health handler instance.
func NewHealthHandler(appName string) *HealthHandler {
	return &HealthHandler{appName: appName}
}

// Register attaches the route to the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.check)
}

func (h *HealthHandler) check(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "ok", fiber.Map{
		"app":    h.appName,
		"status": "healthy",
	})
}
