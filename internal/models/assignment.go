package models

import "time"

// AssignmentType categorizes the kind of work an assignment expects.
type AssignmentType string

const (
	AssignmentTypeEssay        AssignmentType = "essay"
	AssignmentTypeCode         AssignmentType = "code"
	AssignmentTypePresentation AssignmentType = "presentation"
	AssignmentTypeQuiz         AssignmentType = "quiz"
	AssignmentTypeOther        AssignmentType = "other"
)

// Assignment represents gradable coursework with a deadline and point total.
type Assignment struct {
	ID                        uint           `gorm:"primaryKey" json:"id"`
	CourseID                  uint           `gorm:"not null" json:"course_id"`
	Title                     string         `gorm:"size:255;not null" json:"title"`
	Description               string         `gorm:"type:text" json:"description"`
	AssignmentType            AssignmentType `gorm:"size:32;not null" json:"assignment_type"`
	DueDate                   time.Time      `gorm:"not null" json:"due_date"`
	PointsPossible            int            `gorm:"not null;check:points_possible > 0" json:"points_possible"`
	ReferenceSolution         string         `gorm:"type:text" json:"-"`
	ReferenceSolutionFilePath string         `gorm:"size:512" json:"-"`
	CreatedBy                 uint           `gorm:"not null" json:"created_by"`
	CreatedAt                 time.Time      `json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
	Course                    Course         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions               []Submission   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// DueBefore reports whether the reference instant falls past the due date.
// A due date stored without zone information is interpreted as UTC.
func (a Assignment) DueBefore(reference time.Time) bool {
	return reference.UTC().After(a.DueDate.UTC())
}
