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

// ChatHandler manages the study assistant endpoints.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler builds a chat handler instance.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register attaches the authenticated chat route.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("", h.ask)
}

// RegisterGuest attaches the unauthenticated chat route.
func (h *ChatHandler) RegisterGuest(router fiber.Router) {
	router.Post("", h.askGuest)
}

func (h *ChatHandler) ask(c *fiber.Ctx) error {
	return h.handle(c, false)
}

func (h *ChatHandler) askGuest(c *fiber.Ctx) error {
	return h.handle(c, true)
}

func (h *ChatHandler) handle(c *fiber.Ctx, guest bool) error {
	var payload dto.ChatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Ask(c.Context(), payload, guest)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reply generated", response)
}

func (h *ChatHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssistantUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "assistant unavailable")
	case errors.Is(err, service.ErrEmptyPrompt):
		return utils.SendError(c, fiber.StatusBadRequest, "message is empty")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("chat operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
