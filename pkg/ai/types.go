package ai

import "context"

// Strictness values accepted by the grading oracle.
const (
	StrictnessEasy   = "Easy"
	StrictnessMedium = "Medium"
	StrictnessStrict = "Strict"
)

// ValidStrictness reports whether the value belongs to the closed strictness set.
func ValidStrictness(value string) bool {
	switch value {
	case StrictnessEasy, StrictnessMedium, StrictnessStrict:
		return true
	}
	return false
}

// GradingInput contains the artefacts needed to grade a submission.
type GradingInput struct {
	SubmissionText    string
	ReferenceSolution string
	TotalPoints       int
	Strictness        string
}

// GradingResult is the structured assessment returned by the grading oracle.
type GradingResult struct {
	OverallAssessment      string                 `json:"overall_assessment"`
	ImprovementSuggestions []string               `json:"improvement_suggestions"`
	Score                  float64                `json:"score"`
	SimilarityScore        *float64               `json:"similarity_score"`
	Raw                    map[string]interface{} `json:"raw,omitempty"`
}

// Grader describes an AI model capable of scoring a submission. Any transport
// or parsing failure surfaces as an error; callers treat that as a full-pass
// failure and persist nothing.
type Grader interface {
	Grade(ctx context.Context, input GradingInput) (GradingResult, error)
}

// Assistant answers single-turn chat prompts.
type Assistant interface {
	Reply(ctx context.Context, prompt string, guest bool) (string, error)
}
