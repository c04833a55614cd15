package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/repository"
	"github.com/gradient-edu/gradient-api/internal/storage"
)

// ErrAssignmentNotFound indicates an assignment could not be located.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrNotCourseProfessor indicates the actor does not teach the target course.
var ErrNotCourseProfessor = errors.New("actor does not teach this course")

// AssignmentService exposes assignment lifecycle operations.
type AssignmentService interface {
	List(ctx context.Context, courseID *uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest, referenceFile *multipart.FileHeader) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	files       storage.FileStore
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments repository.AssignmentRepository, courses repository.CourseRepository, enrollments repository.EnrollmentRepository, files storage.FileStore, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		courses:     courses,
		enrollments: enrollments,
		files:       files,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, courseID *uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{CourseID: courseID})
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest, referenceFile *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.requireTeaches(ctx, actor, payload.CourseID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		CourseID:          payload.CourseID,
		Title:             payload.Title,
		Description:       payload.Description,
		AssignmentType:    models.AssignmentType(payload.AssignmentType),
		DueDate:           payload.DueDate,
		PointsPossible:    payload.PointsPossible,
		ReferenceSolution: payload.ReferenceSolution,
		CreatedBy:         actor.ID,
	}

	if referenceFile != nil {
		saved, err := s.storeReferenceFile(ctx, referenceFile)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.ReferenceSolutionFilePath = saved.Path
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", assignment.CourseID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.requireTeaches(ctx, actor, assignment.CourseID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.DueDate != nil {
		assignment.DueDate = *payload.DueDate
	}
	if payload.PointsPossible != nil {
		assignment.PointsPossible = *payload.PointsPossible
	}
	if payload.ReferenceSolution != nil {
		assignment.ReferenceSolution = *payload.ReferenceSolution
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if err := s.requireTeaches(ctx, actor, assignment.CourseID); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

// requireTeaches enforces grading authority: admins pass unconditionally,
// professors must hold a professor-role enrollment in the course.
func (s *assignmentService) requireTeaches(ctx context.Context, actor Actor, courseID uint) error {
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

func (s *assignmentService) storeReferenceFile(ctx context.Context, file *multipart.FileHeader) (storage.SavedFile, error) {
	reader, err := file.Open()
	if err != nil {
		return storage.SavedFile{}, fmt.Errorf("open reference file: %w", err)
	}
	defer reader.Close()

	saved, err := s.files.Save(ctx, "references", file.Filename, reader)
	if err != nil {
		return storage.SavedFile{}, fmt.Errorf("store reference file: %w", err)
	}
	return saved, nil
}
