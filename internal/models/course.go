package models

import "time"

// CourseRole identifies the role a user holds within a single course.
type CourseRole string

const (
	// CourseRoleStudent marks an enrollment created for coursework.
	CourseRoleStudent CourseRole = "student"
	// CourseRoleProfessor marks the teaching link used for grading authority.
	CourseRoleProfessor CourseRole = "professor"
	// CourseRoleTeachingAssistant marks assistant enrollments.
	CourseRoleTeachingAssistant CourseRole = "teaching_assistant"
)

// Course represents an offered course for a given term.
type Course struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"size:20;not null;uniqueIndex:idx_course_code_term" json:"code"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Term        string       `gorm:"size:50;not null;uniqueIndex:idx_course_code_term" json:"term"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Enrollments []Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Assignments []Assignment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Enrollment links a user to a course with a course-scoped role.
type Enrollment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CourseID  uint       `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"course_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"user_id"`
	Role      CourseRole `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	User      User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
