package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/pkg/ai"
)

func seedGradableSubmission(t *testing.T, repo *memorySubmissionRepo, text, filePath string) models.Submission {
	t.Helper()

	submission := models.Submission{
		AssignmentID:   1,
		UserID:         10,
		SubmissionTime: time.Now().UTC(),
		SubmissionText: text,
		FilePath:       filePath,
		Status:         models.SubmissionStatusSubmitted,
		GradingRound:   1,
		Assignment: models.Assignment{
			ID:                1,
			CourseID:          1,
			Title:             "Distributed Systems Essay",
			PointsPossible:    100,
			ReferenceSolution: "consensus requires a quorum",
		},
	}
	require.NoError(t, repo.CreateAttempt(context.Background(), &submission))
	return submission
}

func TestGradingServiceCompletesPass(t *testing.T) {
	repo := newMemorySubmissionRepo()
	files := newStubFileStore()
	similarity := 0.12
	grader := &stubGrader{result: ai.GradingResult{
		OverallAssessment:      "Well structured argument.",
		ImprovementSuggestions: []string{"cite sources", "tighten the conclusion"},
		Score:                  87,
		SimilarityScore:        &similarity,
	}}

	svc := NewGradingService(repo, files, grader, testLogger())
	submission := seedGradableSubmission(t, repo, "raft and paxos compared", "")

	svc.Process(context.Background(), GradingTask{SubmissionID: submission.ID, Round: 1, Strictness: ai.StrictnessMedium})

	graded, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.NotNil(t, graded.Feedback)
	require.Equal(t, "Well structured argument.", graded.Feedback.FeedbackText)
	require.Equal(t, float64(87), graded.Feedback.SuggestedGrade)
	require.Equal(t, models.GradedByOracle, graded.Feedback.GradedBy)
	require.Len(t, graded.Feedback.Details, 2)
	require.Equal(t, models.IssueTypeContent, graded.Feedback.Details[0].IssueType)

	require.Len(t, grader.inputs, 1)
	require.Equal(t, "raft and paxos compared", grader.inputs[0].SubmissionText)
	require.Equal(t, "consensus requires a quorum", grader.inputs[0].ReferenceSolution)
	require.Equal(t, 100, grader.inputs[0].TotalPoints)
}

func TestGradingServiceReadsTextFromFile(t *testing.T) {
	repo := newMemorySubmissionRepo()
	files := newStubFileStore()
	files.texts["submissions/essay.txt"] = "file-backed essay"
	grader := &stubGrader{result: ai.GradingResult{OverallAssessment: "ok", Score: 50}}

	svc := NewGradingService(repo, files, grader, testLogger())
	submission := seedGradableSubmission(t, repo, "", "submissions/essay.txt")

	svc.Process(context.Background(), GradingTask{SubmissionID: submission.ID, Round: 1, Strictness: ai.StrictnessEasy})

	require.Len(t, grader.inputs, 1)
	require.Equal(t, "file-backed essay", grader.inputs[0].SubmissionText)

	graded, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
}

func TestGradingServiceDropsPassOnOracleFailure(t *testing.T) {
	repo := newMemorySubmissionRepo()
	grader := &stubGrader{err: errors.New("model overloaded")}

	svc := NewGradingService(repo, newStubFileStore(), grader, testLogger())
	submission := seedGradableSubmission(t, repo, "essay", "")

	svc.Process(context.Background(), GradingTask{SubmissionID: submission.ID, Round: 1, Strictness: ai.StrictnessMedium})

	current, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, current.Status)
	require.Nil(t, current.Feedback)
}

func TestGradingServiceDiscardsStaleRound(t *testing.T) {
	repo := newMemorySubmissionRepo()
	grader := &stubGrader{result: ai.GradingResult{OverallAssessment: "stale", Score: 10}}

	svc := NewGradingService(repo, newStubFileStore(), grader, testLogger())
	submission := seedGradableSubmission(t, repo, "essay", "")

	// A re-grade arrives before the first pass commits.
	_, err := repo.RequestRegrade(context.Background(), submission.ID)
	require.NoError(t, err)

	svc.Process(context.Background(), GradingTask{SubmissionID: submission.ID, Round: 1, Strictness: ai.StrictnessMedium})

	current, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, current.Status)
	require.Nil(t, current.Feedback)
	require.Equal(t, 2, current.GradingRound)
}

func TestGradingServiceDropsPassWhenAssignmentMissing(t *testing.T) {
	repo := newMemorySubmissionRepo()
	grader := &stubGrader{result: ai.GradingResult{OverallAssessment: "ok", Score: 50}}

	svc := NewGradingService(repo, newStubFileStore(), grader, testLogger())

	orphan := models.Submission{
		AssignmentID:   77,
		UserID:         10,
		SubmissionTime: time.Now().UTC(),
		SubmissionText: "essay without a parent assignment",
		Status:         models.SubmissionStatusSubmitted,
		GradingRound:   1,
	}
	require.NoError(t, repo.CreateAttempt(context.Background(), &orphan))

	svc.Process(context.Background(), GradingTask{SubmissionID: orphan.ID, Round: 1, Strictness: ai.StrictnessMedium})

	require.Empty(t, grader.inputs)
	current, err := repo.GetByID(context.Background(), orphan.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, current.Status)
	require.Nil(t, current.Feedback)
}

func TestGradingServiceDropsMissingSubmission(t *testing.T) {
	repo := newMemorySubmissionRepo()
	grader := &stubGrader{}

	svc := NewGradingService(repo, newStubFileStore(), grader, testLogger())
	svc.Process(context.Background(), GradingTask{SubmissionID: 404, Round: 1})

	require.Empty(t, grader.inputs)
}

func TestGradingServiceWithoutOracleDropsPass(t *testing.T) {
	repo := newMemorySubmissionRepo()
	svc := NewGradingService(repo, newStubFileStore(), nil, testLogger())
	submission := seedGradableSubmission(t, repo, "essay", "")

	svc.Process(context.Background(), GradingTask{SubmissionID: submission.ID, Round: 1})

	current, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, current.Status)
}
