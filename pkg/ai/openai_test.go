package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGradingResponseValid(t *testing.T) {
	content := `{
		"overall_assessment": "Good effort with a clear structure.",
		"improvement_suggestions": ["add error handling", "test edge cases"],
		"score": 82.5,
		"similarity_score": 40
	}`

	result, err := parseGradingResponse(content, 100)
	require.NoError(t, err)
	require.Equal(t, "Good effort with a clear structure.", result.OverallAssessment)
	require.Len(t, result.ImprovementSuggestions, 2)
	require.Equal(t, 82.5, result.Score)
	require.NotNil(t, result.SimilarityScore)
	require.Equal(t, float64(40), *result.SimilarityScore)
}

func TestParseGradingResponseNullSimilarity(t *testing.T) {
	content := `{
		"overall_assessment": "No reference supplied.",
		"improvement_suggestions": [],
		"score": 60,
		"similarity_score": null
	}`

	result, err := parseGradingResponse(content, 100)
	require.NoError(t, err)
	require.Nil(t, result.SimilarityScore)
}

func TestParseGradingResponseClampsScore(t *testing.T) {
	content := `{
		"overall_assessment": "Overenthusiastic model.",
		"improvement_suggestions": ["none"],
		"score": 150,
		"similarity_score": 180
	}`

	result, err := parseGradingResponse(content, 100)
	require.NoError(t, err)
	require.Equal(t, float64(100), result.Score)
	require.Equal(t, float64(100), *result.SimilarityScore)
}

func TestParseGradingResponseRejectsMissingFields(t *testing.T) {
	content := `{"overall_assessment": "missing the rest"}`

	_, err := parseGradingResponse(content, 100)
	require.Error(t, err)
}

func TestParseGradingResponseRejectsWrongTypes(t *testing.T) {
	content := `{
		"overall_assessment": "types are off",
		"improvement_suggestions": "not an array",
		"score": "ninety"
	}`

	_, err := parseGradingResponse(content, 100)
	require.Error(t, err)
}

func TestParseGradingResponseRejectsNonJSON(t *testing.T) {
	_, err := parseGradingResponse("I would give this a B+", 100)
	require.Error(t, err)
}

func TestValidStrictness(t *testing.T) {
	require.True(t, ValidStrictness(StrictnessEasy))
	require.True(t, ValidStrictness(StrictnessMedium))
	require.True(t, ValidStrictness(StrictnessStrict))
	require.False(t, ValidStrictness("ruthless"))
	require.False(t, ValidStrictness(""))
}

func TestBuildGradingPromptOmitsEmptyReference(t *testing.T) {
	withRef := buildGradingPrompt(GradingInput{
		SubmissionText:    "code",
		ReferenceSolution: "solution",
		TotalPoints:       50,
		Strictness:        StrictnessStrict,
	})
	require.Contains(t, withRef, "reference_solution")

	withoutRef := buildGradingPrompt(GradingInput{
		SubmissionText: "code",
		TotalPoints:    50,
		Strictness:     StrictnessEasy,
	})
	require.NotContains(t, withoutRef, "reference_solution")
}
