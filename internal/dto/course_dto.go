package dto

import (
	"time"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// CourseCreateRequest is the payload for creating a course.
type CourseCreateRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Term        string `json:"term" validate:"required,max=50"`
}

// CourseUpdateRequest updates mutable course fields.
type CourseUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Term        *string `json:"term" validate:"omitempty,max=50"`
}

// CourseResponse is the public representation of a course.
type CourseResponse struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Term        string    `json:"term"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseListResponse wraps a paginated course listing.
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
	Total   int64            `json:"total"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Code:        model.Code,
		Name:        model.Name,
		Description: model.Description,
		Term:        model.Term,
		CreatedAt:   model.CreatedAt,
	}
}

// NewCourseResponseSlice converts a slice of Course models.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
