package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// CourseQuery narrows course listings.
type CourseQuery struct {
	Term   *string
	Offset int
	Limit  int
}

// CourseRepository defines data operations for courses.
type CourseRepository interface {
	List(ctx context.Context, query CourseQuery) ([]models.Course, int64, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetByCodeAndTerm(ctx context.Context, code, term string) (models.Course, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, query CourseQuery) ([]models.Course, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Course{})
	if query.Term != nil {
		q = q.Where("term = ?", *query.Term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if query.Offset > 0 {
		q = q.Offset(query.Offset)
	}

	var courses []models.Course
	if err := q.Order("code ASC").Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetByCodeAndTerm(ctx context.Context, code, term string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Where("term = ?", term).
		First(&course).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}
