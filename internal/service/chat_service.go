package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/pkg/ai"
)

// ErrAssistantUnavailable indicates no chat assistant is configured.
var ErrAssistantUnavailable = errors.New("chat assistant unavailable")

// ErrEmptyPrompt indicates the message had no content left after sanitizing.
var ErrEmptyPrompt = errors.New("message is empty after sanitizing")

// ChatService answers single-turn study questions. Guests get a restricted
// persona that steers them toward registering.
type ChatService interface {
	Ask(ctx context.Context, payload dto.ChatRequest, guest bool) (dto.ChatResponse, error)
}

type chatService struct {
	assistant ai.Assistant
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewChatService constructs a ChatService instance.
func NewChatService(assistant ai.Assistant, validate *validator.Validate, logger zerolog.Logger) ChatService {
	return &chatService{
		assistant: assistant,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "chat_service").Logger(),
	}
}

func (s *chatService) Ask(ctx context.Context, payload dto.ChatRequest, guest bool) (dto.ChatResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChatResponse{}, err
	}

	if s.assistant == nil {
		return dto.ChatResponse{}, ErrAssistantUnavailable
	}

	prompt := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if prompt == "" {
		return dto.ChatResponse{}, ErrEmptyPrompt
	}

	reply, err := s.assistant.Reply(ctx, prompt, guest)
	if err != nil {
		s.logger.Error().Err(err).Bool("guest", guest).Msg("assistant reply failed")
		return dto.ChatResponse{}, ErrAssistantUnavailable
	}

	return dto.ChatResponse{Reply: reply}, nil
}
