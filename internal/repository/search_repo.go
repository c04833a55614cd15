package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// CourseSearchQuery narrows and orders a course search.
type CourseSearchQuery struct {
	Query    string
	Term     string
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

// AssignmentSearchQuery narrows and orders an assignment search.
type AssignmentSearchQuery struct {
	Query          string
	CourseID       *uint
	AssignmentType string
	PointsMin      *int
	PointsMax      *int
	SortBy         string
	SortDesc       bool
	Offset         int
	Limit          int
}

// UserSearchQuery narrows and orders a user search.
type UserSearchQuery struct {
	Query    string
	Role     string
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

// SearchRepository runs substring searches per entity, returning the page of
// rows plus the unpaginated match count.
type SearchRepository interface {
	Courses(ctx context.Context, query CourseSearchQuery) ([]models.Course, int64, error)
	Assignments(ctx context.Context, query AssignmentSearchQuery) ([]models.Assignment, int64, error)
	Users(ctx context.Context, query UserSearchQuery) ([]models.User, int64, error)
}

type searchRepository struct {
	db *gorm.DB
}

// NewSearchRepository instantiates the repository.
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

// Sortable columns are whitelisted per entity so sort_by never reaches the
// query builder as raw input.
var (
	courseSortColumns     = map[string]string{"name": "name", "code": "code", "term": "term", "created_at": "created_at"}
	assignmentSortColumns = map[string]string{"title": "title", "due_date": "due_date", "points_possible": "points_possible", "created_at": "created_at"}
	userSortColumns       = map[string]string{"name": "first_name", "email": "email", "role": "role", "created_at": "created_at"}
)

// likePattern lowercases the query so matching is case-insensitive on both
// postgres and the sqlite databases the tests run against.
func likePattern(query string) string {
	return "%" + strings.ToLower(query) + "%"
}

func applyOrder(db *gorm.DB, columns map[string]string, sortBy string, desc bool) *gorm.DB {
	column, ok := columns[sortBy]
	if !ok {
		return db
	}
	if desc {
		return db.Order(column + " DESC")
	}
	return db.Order(column + " ASC")
}

func (r *searchRepository) Courses(ctx context.Context, query CourseSearchQuery) ([]models.Course, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Course{})

	if query.Query != "" {
		pattern := likePattern(query.Query)
		db = db.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern)
	}
	if query.Term != "" {
		db = db.Where("term = ?", query.Term)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applyOrder(db, courseSortColumns, query.SortBy, query.SortDesc)

	var courses []models.Course
	if err := db.Offset(query.Offset).Limit(query.Limit).Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *searchRepository) Assignments(ctx context.Context, query AssignmentSearchQuery) ([]models.Assignment, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Assignment{})

	if query.Query != "" {
		pattern := likePattern(query.Query)
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if query.CourseID != nil {
		db = db.Where("course_id = ?", *query.CourseID)
	}
	if query.AssignmentType != "" {
		db = db.Where("assignment_type = ?", query.AssignmentType)
	}
	if query.PointsMin != nil {
		db = db.Where("points_possible >= ?", *query.PointsMin)
	}
	if query.PointsMax != nil {
		db = db.Where("points_possible <= ?", *query.PointsMax)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applyOrder(db, assignmentSortColumns, query.SortBy, query.SortDesc)

	var assignments []models.Assignment
	if err := db.Offset(query.Offset).Limit(query.Limit).Find(&assignments).Error; err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

func (r *searchRepository) Users(ctx context.Context, query UserSearchQuery) ([]models.User, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.User{})

	if query.Query != "" {
		pattern := likePattern(query.Query)
		db = db.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}
	if query.Role != "" {
		db = db.Where("role = ?", query.Role)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applyOrder(db, userSortColumns, query.SortBy, query.SortDesc)

	var users []models.User
	if err := db.Offset(query.Offset).Limit(query.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
