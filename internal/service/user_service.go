package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/repository"
)

// ErrUserNotFound indicates a user could not be located.
var ErrUserNotFound = errors.New("user not found")

// ErrCourseCapExceeded indicates a student tried to enroll beyond the cap.
var ErrCourseCapExceeded = errors.New("student course cap exceeded")

// UserService exposes profile and enrollment operations.
type UserService interface {
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Courses(ctx context.Context, userID uint) ([]dto.CourseResponse, error)
	SelectCourses(ctx context.Context, actor Actor, payload dto.CourseSelectionRequest) ([]dto.CourseResponse, error)
}

type userService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	courseCap   int
	logger      zerolog.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(users repository.UserRepository, courses repository.CourseRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, courseCap int, logger zerolog.Logger) UserService {
	return &userService{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		validator:   validate,
		courseCap:   courseCap,
		logger:      logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.FirstName != nil {
		user.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		user.LastName = *payload.LastName
	}
	if payload.PhoneNumber != nil {
		user.PhoneNumber = *payload.PhoneNumber
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Courses(ctx context.Context, userID uint) ([]dto.CourseResponse, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		ids = append(ids, enrollment.CourseID)
	}

	if len(ids) == 0 {
		return []dto.CourseResponse{}, nil
	}

	courses, err := s.courses.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

// SelectCourses enrolls the actor into the requested courses. Existing
// enrollments are kept as-is; students may not exceed the configured cap.
func (s *userService) SelectCourses(ctx context.Context, actor Actor, payload dto.CourseSelectionRequest) ([]dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	courses, err := s.courses.GetByIDs(ctx, payload.CourseIDs)
	if err != nil {
		return nil, err
	}
	if len(courses) != len(payload.CourseIDs) {
		return nil, ErrCourseNotFound
	}

	existing, err := s.enrollments.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	enrolled := make(map[uint]struct{}, len(existing))
	for _, enrollment := range existing {
		enrolled[enrollment.CourseID] = struct{}{}
	}

	newIDs := make([]uint, 0, len(payload.CourseIDs))
	for _, id := range payload.CourseIDs {
		if _, ok := enrolled[id]; !ok {
			newIDs = append(newIDs, id)
		}
	}

	if actor.Role == models.RoleStudent && len(existing)+len(newIDs) > s.courseCap {
		return nil, ErrCourseCapExceeded
	}

	courseRole := models.CourseRoleStudent
	if actor.Role != models.RoleStudent {
		courseRole = models.CourseRoleProfessor
	}

	for _, id := range newIDs {
		enrollment := models.Enrollment{
			CourseID: id,
			UserID:   actor.ID,
			Role:     courseRole,
		}
		if err := s.enrollments.Create(ctx, &enrollment); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Uint("user_id", actor.ID).Int("added", len(newIDs)).Msg("course selection updated")

	return s.Courses(ctx, actor.ID)
}
