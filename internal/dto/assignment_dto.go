package dto

import (
	"time"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// AssignmentCreateRequest is the multipart payload for creating an assignment.
// A reference solution may be supplied inline or as an uploaded file.
type AssignmentCreateRequest struct {
	CourseID          uint      `form:"course_id" validate:"required,gt=0"`
	Title             string    `form:"title" validate:"required,max=255"`
	Description       string    `form:"description"`
	AssignmentType    string    `form:"assignment_type" validate:"required,oneof=essay code presentation quiz other"`
	DueDate           time.Time `form:"due_date" validate:"required"`
	PointsPossible    int       `form:"points_possible" validate:"required,gt=0"`
	ReferenceSolution string    `form:"reference_solution"`
}

// AssignmentUpdateRequest updates mutable assignment fields.
type AssignmentUpdateRequest struct {
	Title             *string    `json:"title" validate:"omitempty,max=255"`
	Description       *string    `json:"description"`
	DueDate           *time.Time `json:"due_date"`
	PointsPossible    *int       `json:"points_possible" validate:"omitempty,gt=0"`
	ReferenceSolution *string    `json:"reference_solution"`
}

// AssignmentResponse is the public representation of an assignment.
type AssignmentResponse struct {
	ID             uint      `json:"id"`
	CourseID       uint      `json:"course_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	AssignmentType string    `json:"assignment_type"`
	DueDate        time.Time `json:"due_date"`
	PointsPossible int       `json:"points_possible"`
	CreatedBy      uint      `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO. The reference
// solution never leaves the server.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:             model.ID,
		CourseID:       model.CourseID,
		Title:          model.Title,
		Description:    model.Description,
		AssignmentType: string(model.AssignmentType),
		DueDate:        model.DueDate,
		PointsPossible: model.PointsPossible,
		CreatedBy:      model.CreatedBy,
		CreatedAt:      model.CreatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of Assignment models.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
