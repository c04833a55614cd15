package models

import (
	"time"

	"gorm.io/datatypes"
)

// IssueType classifies a single feedback finding.
type IssueType string

const (
	IssueTypeGrammar     IssueType = "grammar"
	IssueTypeReadability IssueType = "readability"
	IssueTypeStructure   IssueType = "structure"
	IssueTypeLogic       IssueType = "logic"
	IssueTypeContent     IssueType = "content"
)

// Severity ranks how pressing a feedback finding is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// GradedByOracle tags feedback rows produced by the AI grading oracle.
const GradedByOracle = "GRADiEnt AI"

// Feedback is the graded assessment attached 1:1 to a submission. Its presence
// is the authoritative signal that at least one grading pass completed.
type Feedback struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	SubmissionID    uint              `gorm:"not null;uniqueIndex" json:"submission_id"`
	FeedbackText    string            `gorm:"type:text" json:"feedback_text"`
	SuggestedGrade  float64           `gorm:"not null" json:"suggested_grade"`
	FinalGrade      *float64          `json:"final_grade"`
	SimilarityScore *float64          `json:"similarity_score"`
	GradedBy        string            `gorm:"size:100" json:"graded_by"`
	ProfessorReview bool              `gorm:"not null;default:false" json:"professor_review"`
	ProfessorNotes  string            `gorm:"type:text" json:"professor_notes"`
	Raw             datatypes.JSONMap `json:"-"`
	GeneratedAt     time.Time         `json:"generated_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Details         []FeedbackDetail  `gorm:"constraint:OnDelete:CASCADE" json:"details"`
}

// FeedbackDetail is one itemized finding under a feedback row. Details are
// additive only and never mutated after creation.
type FeedbackDetail struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FeedbackID  uint      `gorm:"not null;index" json:"feedback_id"`
	IssueType   IssueType `gorm:"size:32;not null" json:"issue_type"`
	Location    string    `gorm:"size:255" json:"location"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Suggestion  string    `gorm:"type:text" json:"suggestion"`
	Severity    Severity  `gorm:"size:32;not null" json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}
