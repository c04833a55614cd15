package models

import "time"

// UserRole identifies the platform-wide role of a user account.
type UserRole string

const (
	// RoleStudent marks accounts that enroll in courses and submit work.
	RoleStudent UserRole = "student"
	// RoleProfessor marks accounts that create assignments and review grades.
	RoleProfessor UserRole = "professor"
	// RoleAdmin marks accounts with unrestricted access.
	RoleAdmin UserRole = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform account.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:100;not null" json:"first_name"`
	LastName     string     `gorm:"size:100;not null" json:"last_name"`
	Role         UserRole   `gorm:"size:32;not null" json:"role"`
	PhoneNumber  string     `gorm:"size:20" json:"phone_number"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName joins the first and last name for display.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
