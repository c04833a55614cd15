package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/observability"
	"github.com/gradient-edu/gradient-api/internal/repository"
	"github.com/gradient-edu/gradient-api/internal/storage"
	"github.com/gradient-edu/gradient-api/pkg/ai"
)

// GradingService executes grading passes scheduled by the dispatcher. Every
// failure inside a pass is logged and swallowed: the submission simply stays
// in submitted until a professor requests another pass.
type GradingService interface {
	GradingProcessor
}

type gradingService struct {
	submissions repository.SubmissionRepository
	files       storage.FileStore
	grader      ai.Grader
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the background grading worker. A nil grader is
// tolerated so the API can run without oracle credentials; passes are then
// dropped with a warning.
func NewGradingService(submissions repository.SubmissionRepository, files storage.FileStore, grader ai.Grader, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		files:       files,
		grader:      grader,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("grading-service"),
		now:         time.Now,
	}
}

func (s *gradingService) Process(ctx context.Context, task GradingTask) {
	ctx, span := s.tracer.Start(ctx, "grading.pass", trace.WithAttributes(
		attribute.Int("submission.id", int(task.SubmissionID)),
		attribute.Int("grading.round", task.Round),
	))
	defer span.End()

	started := s.now()
	log := s.logger.With().Uint("submission_id", task.SubmissionID).Int("round", task.Round).Logger()

	if s.grader == nil {
		log.Warn().Msg("no grading oracle configured, pass dropped")
		observability.GradingPasses().WithLabelValues("dropped").Inc()
		return
	}

	submission, err := s.submissions.GetByID(ctx, task.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Msg("submission vanished before grading, pass dropped")
		} else {
			log.Error().Err(err).Msg("failed to load submission for grading")
		}
		observability.GradingPasses().WithLabelValues("dropped").Inc()
		return
	}

	if submission.Assignment.ID == 0 {
		log.Warn().Msg("parent assignment vanished before grading, pass dropped")
		observability.GradingPasses().WithLabelValues("dropped").Inc()
		return
	}

	text, ok := s.resolveSubmissionText(ctx, log, submission)
	if !ok {
		observability.GradingPasses().WithLabelValues("dropped").Inc()
		return
	}

	strictness := task.Strictness
	if !ai.ValidStrictness(strictness) {
		strictness = ai.StrictnessMedium
	}

	input := ai.GradingInput{
		SubmissionText:    text,
		ReferenceSolution: s.resolveReference(ctx, log, submission.Assignment),
		TotalPoints:       submission.Assignment.PointsPossible,
		Strictness:        strictness,
	}

	result, err := s.grader.Grade(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("grading oracle failed, pass dropped")
		observability.GradingPasses().WithLabelValues("oracle_error").Inc()
		return
	}

	feedback := s.buildFeedback(result)
	if err := s.submissions.CompleteGradingPass(ctx, task.SubmissionID, task.Round, feedback); err != nil {
		if errors.Is(err, repository.ErrStaleGradingRound) {
			log.Info().Msg("grading pass superseded by a newer round, result discarded")
			observability.GradingPasses().WithLabelValues("stale").Inc()
			return
		}
		log.Error().Err(err).Msg("failed to persist grading pass")
		observability.GradingPasses().WithLabelValues("persist_error").Inc()
		return
	}

	observability.GradingPasses().WithLabelValues("completed").Inc()
	observability.GradingPassDuration().WithLabelValues(strictness).Observe(s.now().Sub(started).Seconds())

	log.Info().Float64("score", result.Score).Msg("grading pass completed")
}

// resolveSubmissionText prefers inline text and falls back to reading the
// uploaded file. A submission with no recoverable text cannot be graded.
func (s *gradingService) resolveSubmissionText(ctx context.Context, log zerolog.Logger, submission models.Submission) (string, bool) {
	if submission.SubmissionText != "" {
		return submission.SubmissionText, true
	}

	if submission.FilePath == "" {
		log.Warn().Msg("submission has no gradable content, pass dropped")
		return "", false
	}

	text, err := s.files.ReadText(ctx, submission.FilePath)
	if err != nil {
		log.Error().Err(err).Str("file_path", submission.FilePath).Msg("submission file unreadable, pass dropped")
		return "", false
	}
	return text, true
}

// resolveReference is tolerant: a missing or unreadable reference solution
// degrades the pass to reference-free grading instead of failing it.
func (s *gradingService) resolveReference(ctx context.Context, log zerolog.Logger, assignment models.Assignment) string {
	if assignment.ReferenceSolution != "" {
		return assignment.ReferenceSolution
	}
	if assignment.ReferenceSolutionFilePath == "" {
		return ""
	}

	text, err := s.files.ReadText(ctx, assignment.ReferenceSolutionFilePath)
	if err != nil {
		log.Warn().Err(err).Msg("reference solution unreadable, grading without it")
		return ""
	}
	return text
}

func (s *gradingService) buildFeedback(result ai.GradingResult) *models.Feedback {
	details := make([]models.FeedbackDetail, 0, len(result.ImprovementSuggestions))
	for _, suggestion := range result.ImprovementSuggestions {
		details = append(details, models.FeedbackDetail{
			IssueType:   models.IssueTypeContent,
			Description: suggestion,
			Severity:    models.SeverityMedium,
		})
	}

	return &models.Feedback{
		FeedbackText:    result.OverallAssessment,
		SuggestedGrade:  result.Score,
		SimilarityScore: result.SimilarityScore,
		GradedBy:        models.GradedByOracle,
		GeneratedAt:     s.now().UTC(),
		Raw:             datatypes.JSONMap(result.Raw),
		Details:         details,
	}
}
