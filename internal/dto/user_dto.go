package dto

import (
	"time"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	PhoneNumber string     `json:"phone_number"`
	IsActive    bool       `json:"is_active"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserUpdateRequest updates mutable profile fields.
type UserUpdateRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
}

// CourseSelectionRequest enrolls the current user into courses.
type CourseSelectionRequest struct {
	CourseIDs []uint `json:"course_ids" validate:"required,min=1,dive,gt=0"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:          model.ID,
		Email:       model.Email,
		FirstName:   model.FirstName,
		LastName:    model.LastName,
		Role:        string(model.Role),
		PhoneNumber: model.PhoneNumber,
		IsActive:    model.IsActive,
		LastLogin:   model.LastLogin,
		CreatedAt:   model.CreatedAt,
	}
}
