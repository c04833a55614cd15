package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAssistant implements Assistant over the OpenAI chat completion API.
type OpenAIAssistant struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIAssistant builds a chat assistant client.
func NewOpenAIAssistant(apiKey, model string, logger zerolog.Logger) (*OpenAIAssistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIAssistant{
		client: openai.NewClientWithConfig(openai.DefaultConfig(apiKey)),
		model:  model,
		logger: logger.With().Str("component", "ai_assistant").Logger(),
	}, nil
}

// Reply answers a single-turn prompt. Guest sessions get a shorter persona and
// no study-planning guidance.
func (a *OpenAIAssistant) Reply(ctx context.Context, prompt string, guest bool) (string, error) {
	system := "You are the GRADiEnt study assistant. Help students understand coursework, " +
		"assignment requirements, and feedback they received. Be concise and encouraging. " +
		"Never reveal reference solutions or write complete assignment answers."
	if guest {
		system = "You are the GRADiEnt assistant. Answer general questions about the platform briefly. " +
			"Do not discuss specific courses or grades."
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
