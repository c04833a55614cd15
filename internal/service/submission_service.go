package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/repository"
	"github.com/gradient-edu/gradient-api/internal/storage"
	"github.com/gradient-edu/gradient-api/pkg/ai"
)

// ErrSubmissionNotFound indicates a submission could not be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrNotEnrolled indicates the actor is not a member of the target course.
var ErrNotEnrolled = errors.New("user is not enrolled in this course")

// ErrEmptySubmission indicates neither text nor a file was provided.
var ErrEmptySubmission = errors.New("submission requires text or a file")

// ErrSubmissionForbidden indicates the actor may not view this submission.
var ErrSubmissionForbidden = errors.New("submission access denied")

// ErrSubmissionNotGraded indicates acceptance was requested before any
// grading pass completed.
var ErrSubmissionNotGraded = errors.New("submission has no completed grading pass")

// SubmissionService exposes the submission lifecycle: intake, role-scoped
// reads, professor acceptance and manual re-grades.
type SubmissionService interface {
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	List(ctx context.Context, actor Actor, filter dto.SubmissionFilter) (dto.SubmissionListResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	Accept(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	Regrade(ctx context.Context, actor Actor, id uint, payload dto.RegradeRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	files       storage.FileStore
	dispatcher  GradingDispatcher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, files storage.FileStore, dispatcher GradingDispatcher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		files:       files,
		dispatcher:  dispatcher,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Create performs submission intake. Lateness is derived once at intake from
// the assignment due date, the attempt number from prior rows, and a grading
// task is dispatched only after the row is committed.
func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// Only students are gated on enrollment; professors and admins may submit
	// to any assignment.
	if actor.Role == models.RoleStudent {
		if _, err := s.enrollments.Get(ctx, assignment.CourseID, actor.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SubmissionResponse{}, ErrNotEnrolled
			}
			return dto.SubmissionResponse{}, err
		}
	}

	text := strings.TrimSpace(payload.SubmissionText)
	if text == "" && file == nil {
		return dto.SubmissionResponse{}, ErrEmptySubmission
	}

	submittedAt := s.now().UTC()
	submission := models.Submission{
		AssignmentID:   assignment.ID,
		UserID:         actor.ID,
		SubmissionTime: submittedAt,
		IsLate:         assignment.DueBefore(submittedAt),
		SubmissionText: text,
		Status:         models.SubmissionStatusSubmitted,
		GradingRound:   1,
		Assignment:     assignment,
	}

	if file != nil {
		saved, err := s.storeSubmissionFile(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.FileName = file.Filename
		submission.FilePath = saved.Path
		submission.FileType = saved.Type
	}

	if err := s.submissions.CreateAttempt(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Uint("user_id", actor.ID).
		Int("attempt", submission.AttemptNumber).
		Bool("is_late", submission.IsLate).
		Msg("submission received")

	s.dispatch(ctx, GradingTask{
		SubmissionID: submission.ID,
		Round:        submission.GradingRound,
		Strictness:   ai.StrictnessMedium,
	})

	response := dto.NewSubmissionResponse(submission)
	if actor.Role == models.RoleStudent {
		response.RedactStudent()
	}
	return response, nil
}

// List returns submissions scoped by role: students see their own, professors
// see submissions in courses they teach, admins see everything.
func (s *submissionService) List(ctx context.Context, actor Actor, filter dto.SubmissionFilter) (dto.SubmissionListResponse, error) {
	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		UserID:       filter.UserID,
	}

	switch actor.Role {
	case models.RoleStudent:
		userID := actor.ID
		repoFilter.UserID = &userID
	case models.RoleProfessor:
		taught, err := s.taughtCourseIDs(ctx, actor.ID)
		if err != nil {
			return dto.SubmissionListResponse{}, err
		}
		if len(taught) == 0 {
			return dto.SubmissionListResponse{Submissions: []dto.SubmissionResponse{}}, nil
		}
		repoFilter.CourseIDs = taught
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return dto.SubmissionListResponse{}, err
	}

	responses := dto.NewSubmissionResponseSlice(submissions)
	if actor.Role == models.RoleStudent {
		for i := range responses {
			responses[i].RedactStudent()
		}
	}
	return dto.SubmissionListResponse{Submissions: responses, Total: len(responses)}, nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.authorizeRead(ctx, actor, submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(submission)
	if actor.Role == models.RoleStudent {
		response.RedactStudent()
	}
	return response, nil
}

// Accept records the professor's confirmation of a graded submission. The
// operation is idempotent: accepting an already accepted submission is a no-op.
func (s *submissionService) Accept(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.requireTeaches(ctx, actor, submission.Assignment.CourseID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status == models.SubmissionStatusAccepted {
		return dto.NewSubmissionResponse(submission), nil
	}
	if submission.Status != models.SubmissionStatusGraded {
		return dto.SubmissionResponse{}, ErrSubmissionNotGraded
	}

	if err := s.submissions.Accept(ctx, id); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", id).Uint("professor_id", actor.ID).Msg("submission accepted")

	submission, err = s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

// Regrade bumps the submission's grading round and schedules a fresh pass with
// the requested strictness. Any in-flight pass from an older round will fail
// its round check at commit time and be discarded.
func (s *submissionService) Regrade(ctx context.Context, actor Actor, id uint, payload dto.RegradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.requireTeaches(ctx, actor, submission.Assignment.CourseID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	round, err := s.submissions.RequestRegrade(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", id).
		Int("round", round).
		Str("strictness", payload.Strictness).
		Msg("re-grade requested")

	s.dispatch(ctx, GradingTask{
		SubmissionID: id,
		Round:        round,
		Strictness:   payload.Strictness,
	})

	submission, err = s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) load(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *submissionService) authorizeRead(ctx context.Context, actor Actor, submission models.Submission) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent:
		if submission.UserID != actor.ID {
			return ErrSubmissionForbidden
		}
		return nil
	case models.RoleProfessor:
		if err := s.requireTeaches(ctx, actor, submission.Assignment.CourseID); err != nil {
			if errors.Is(err, ErrNotCourseProfessor) {
				return ErrSubmissionForbidden
			}
			return err
		}
		return nil
	}
	return ErrSubmissionForbidden
}

// requireTeaches mirrors the assignment-side authority check: admins pass,
// professors need a professor-role enrollment in the course.
func (s *submissionService) requireTeaches(ctx context.Context, actor Actor, courseID uint) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role != models.RoleProfessor {
		return ErrNotCourseProfessor
	}

	if _, err := s.enrollments.GetWithRole(ctx, courseID, actor.ID, models.CourseRoleProfessor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotCourseProfessor
		}
		return err
	}
	return nil
}

func (s *submissionService) taughtCourseIDs(ctx context.Context, userID uint) ([]uint, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.Role == models.CourseRoleProfessor || enrollment.Role == models.CourseRoleTeachingAssistant {
			ids = append(ids, enrollment.CourseID)
		}
	}
	return ids, nil
}

// dispatch hands the task to the background queue. A failed dispatch never
// fails the request that triggered it; the submission stays in submitted and
// a professor can request a manual re-grade later.
func (s *submissionService) dispatch(ctx context.Context, task GradingTask) {
	if s.dispatcher == nil {
		s.logger.Warn().Uint("submission_id", task.SubmissionID).Msg("no grading dispatcher configured, submission left ungraded")
		return
	}
	if err := s.dispatcher.Dispatch(ctx, task); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", task.SubmissionID).Int("round", task.Round).Msg("failed to dispatch grading task")
	}
}

func (s *submissionService) storeSubmissionFile(ctx context.Context, file *multipart.FileHeader) (storage.SavedFile, error) {
	reader, err := file.Open()
	if err != nil {
		return storage.SavedFile{}, fmt.Errorf("open submission file: %w", err)
	}
	defer reader.Close()

	saved, err := s.files.Save(ctx, "submissions", file.Filename, reader)
	if err != nil {
		return storage.SavedFile{}, fmt.Errorf("store submission file: %w", err)
	}
	return saved, nil
}
