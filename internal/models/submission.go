package models

import "time"

// SubmissionStatus tracks where a submission sits in the grading lifecycle.
type SubmissionStatus string

const (
	// SubmissionStatusSubmitted indicates intake completed and grading is pending.
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	// SubmissionStatusGraded indicates a grading pass wrote feedback.
	SubmissionStatusGraded SubmissionStatus = "graded"
	// SubmissionStatusAccepted indicates a professor confirmed the grade.
	SubmissionStatusAccepted SubmissionStatus = "accepted"
	// SubmissionStatusResubmitted marks attempts superseded by a newer one.
	SubmissionStatusResubmitted SubmissionStatus = "resubmitted"
)

// Submission is a student's attempt at an assignment, carrying text and/or a file.
//
// AttemptNumber is computed at creation as prior-count+1 per (assignment, user)
// and never mutated afterward. GradingRound stamps each requested grading pass;
// a pass only commits when the stored round still matches the one it was
// scheduled with, so stale passes superseded by a re-grade are discarded.
type Submission struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	AssignmentID   uint             `gorm:"not null;index:idx_submission_assignment_user" json:"assignment_id"`
	UserID         uint             `gorm:"not null;index:idx_submission_assignment_user" json:"user_id"`
	SubmissionTime time.Time        `gorm:"not null" json:"submission_time"`
	IsLate         bool             `gorm:"not null;default:false" json:"is_late"`
	FileName       string           `gorm:"size:255" json:"file_name"`
	FilePath       string           `gorm:"size:512" json:"file_path"`
	FileType       string           `gorm:"size:50" json:"file_type"`
	SubmissionText string           `gorm:"type:text" json:"submission_text"`
	AttemptNumber  int              `gorm:"not null;default:1" json:"attempt_number"`
	Status         SubmissionStatus `gorm:"size:32;not null;default:submitted" json:"status"`
	GradingRound   int              `gorm:"not null;default:1" json:"-"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Assignment     Assignment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student        User             `gorm:"foreignKey:UserID" json:"-"`
	Feedback       *Feedback        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// HasContent reports whether the submission carries text or a file reference.
func (s Submission) HasContent() bool {
	return s.SubmissionText != "" || s.FilePath != ""
}
