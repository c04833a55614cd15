package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gradeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradient",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of AI grading requests",
	}, []string{"model"})

	gradeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradient",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of AI grading failures",
	}, []string{"model"})
)

const gradingResultSchema = `{
  "type": "object",
  "required": ["overall_assessment", "improvement_suggestions", "score"],
  "properties": {
    "overall_assessment": {"type": "string"},
    "improvement_suggestions": {"type": "array", "items": {"type": "string"}},
    "score": {"type": "number", "minimum": 0},
    "similarity_score": {"type": ["number", "null"]}
  }
}`

var resultSchema = jsonschema.MustCompileString("grading_result.json", gradingResultSchema)

// OpenAIConfig defines configuration options for the OpenAI grader.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGrader implements Grader against the OpenAI chat completion API.
type OpenAIGrader struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGrader builds a new grader using the provided configuration.
func NewOpenAIGrader(cfg OpenAIConfig) (*OpenAIGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/gradient-edu/gradient-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	client := openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey))

	return &OpenAIGrader{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Grade sends the grading request to OpenAI and parses the response.
func (g *OpenAIGrader) Grade(parent context.Context, input GradingInput) (GradingResult, error) {
	ctx, span := g.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("grading.strictness", input.Strictness),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGradingPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	gradeDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		gradeFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, fmt.Errorf("openai grade: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		gradeFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseGradingResponse(content, input.TotalPoints)
	if err != nil {
		gradeFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return result, nil
}

func graderSystemPrompt() string {
	return "You are GradingAssistant, an AI that evaluates student assignment submissions. " +
		"Evaluate functional correctness, logic, syntax, and edge case handling. " +
		"When a reference solution is supplied, compare the submission against it rather than against production standards, " +
		"but never mention the reference solution in your feedback. " +
		"Respond with a JSON object containing overall_assessment (one paragraph), " +
		"improvement_suggestions (3-5 actionable bullet strings with line references where applicable), " +
		"score (a plain number out of the stated total, never X/Y form), and " +
		"similarity_score (0-100 similarity against the reference solution, or null when none was supplied). " +
		"Strictness guidelines: Easy is lenient and output-focused with generous partial credit; " +
		"Medium balances correctness with good practice; " +
		"Strict expects comprehensive edge case handling with limited partial credit. " +
		"Maintain a constructive, educational tone."
}

func buildGradingPrompt(input GradingInput) string {
	payload := map[string]interface{}{
		"student_submission":    input.SubmissionText,
		"total_points_possible": input.TotalPoints,
		"grading_strictness":    input.Strictness,
	}
	if input.ReferenceSolution != "" {
		payload["reference_solution"] = input.ReferenceSolution
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("student_submission: %s", input.SubmissionText)
	}
	return string(encoded)
}

// parseGradingResponse validates the oracle reply against the result schema and
// clamps the score into [0, totalPoints].
func parseGradingResponse(content string, totalPoints int) (GradingResult, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return GradingResult{}, fmt.Errorf("parse grading json: %w", err)
	}

	if err := resultSchema.Validate(raw); err != nil {
		return GradingResult{}, fmt.Errorf("grading response schema: %w", err)
	}

	var result GradingResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return GradingResult{}, fmt.Errorf("decode grading json: %w", err)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if totalPoints > 0 && result.Score > float64(totalPoints) {
		result.Score = float64(totalPoints)
	}
	if result.SimilarityScore != nil {
		if *result.SimilarityScore < 0 {
			*result.SimilarityScore = 0
		}
		if *result.SimilarityScore > 100 {
			*result.SimilarityScore = 100
		}
	}

	return result, nil
}
