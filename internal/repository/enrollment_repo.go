package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// EnrollmentRepository defines data operations for course membership.
type EnrollmentRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error)
	Get(ctx context.Context, courseID, userID uint) (models.Enrollment, error)
	GetWithRole(ctx context.Context, courseID, userID uint, role models.CourseRole) (models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates the repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) Get(ctx context.Context, courseID, userID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("user_id = ?", userID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) GetWithRole(ctx context.Context, courseID, userID uint, role models.CourseRole) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("user_id = ?", userID).
		Where("role = ?", role).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}
