package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/service"
	"github.com/gradient-edu/gradient-api/internal/utils"
)

// SearchHandler exposes catalog search endpoints.
type SearchHandler struct {
	service service.SearchService
	logger  zerolog.Logger
}

// NewSearchHandler builds a search handler instance.
func NewSearchHandler(service service.SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger.With().Str("component", "search_handler").Logger(),
	}
}

// Register attaches the search routes.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Get("/basic", h.basic)
	router.Post("/advanced", h.advanced)
}

func (h *SearchHandler) basic(c *fiber.Ctx) error {
	var params dto.BasicSearchParams
	if err := c.QueryParser(&params); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.Basic(c.Context(), params)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "search results retrieved", response)
}

func (h *SearchHandler) advanced(c *fiber.Ctx) error {
	var params dto.AdvancedSearchParams
	if err := c.BodyParser(&params); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Advanced(c.Context(), params)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "search results retrieved", response)
}

func (h *SearchHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	h.logger.Error().Err(err).Msg("search failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
