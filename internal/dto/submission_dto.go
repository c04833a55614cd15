package dto

import (
	"time"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for submission intake.
// Text and file are individually optional; at least one must be present.
type SubmissionCreateRequest struct {
	AssignmentID   uint   `form:"assignment_id" validate:"required,gt=0"`
	SubmissionText string `form:"submission_text"`
}

// RegradeRequest triggers a manual re-grade with a strictness override.
type RegradeRequest struct {
	Strictness string `json:"strictness" validate:"required,oneof=Easy Medium Strict"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint `query:"assignment_id"`
	UserID       *uint `query:"user_id"`
}

// GradingFeedbackView is the caller-facing projection of a feedback row with
// its details flattened into suggestion strings.
type GradingFeedbackView struct {
	OverallAssessment      string   `json:"overall_assessment"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	Score                  float64  `json:"score"`
	SimilarityScore        *float64 `json:"similarity_score"`
	ProfessorReview        bool     `json:"professor_review"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
// Feedback is nil until a grading pass has completed. StudentName and
// StudentEmail are shown to professor and admin viewers only.
type SubmissionResponse struct {
	ID              uint                 `json:"id"`
	AssignmentID    uint                 `json:"assignment_id"`
	AssignmentTitle string               `json:"assignment_title"`
	UserID          uint                 `json:"user_id"`
	StudentName     string               `json:"student_name,omitempty"`
	StudentEmail    string               `json:"student_email,omitempty"`
	SubmissionTime  time.Time            `json:"submission_time"`
	IsLate          bool                 `json:"is_late"`
	FileName        string               `json:"file_name,omitempty"`
	FileType        string               `json:"file_type,omitempty"`
	SubmissionText  string               `json:"submission_text,omitempty"`
	AttemptNumber   int                  `json:"attempt_number"`
	Status          string               `json:"status"`
	Feedback        *GradingFeedbackView `json:"feedback"`
}

// SubmissionListResponse wraps a submission listing.
type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Total       int                  `json:"total"`
}

// NewGradingFeedbackView projects a feedback row; a nil input projects to nil,
// the expected state right after intake and during a re-grade window.
func NewGradingFeedbackView(feedback *models.Feedback) *GradingFeedbackView {
	if feedback == nil {
		return nil
	}

	suggestions := make([]string, 0, len(feedback.Details))
	for _, detail := range feedback.Details {
		suggestions = append(suggestions, detail.Description)
	}

	return &GradingFeedbackView{
		OverallAssessment:      feedback.FeedbackText,
		ImprovementSuggestions: suggestions,
		Score:                  feedback.SuggestedGrade,
		SimilarityScore:        feedback.SimilarityScore,
		ProfessorReview:        feedback.ProfessorReview,
	}
}

// RedactStudent clears the author's identity fields for student viewers.
func (r *SubmissionResponse) RedactStudent() {
	r.StudentName = ""
	r.StudentEmail = ""
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		AssignmentID:    model.AssignmentID,
		AssignmentTitle: model.Assignment.Title,
		UserID:          model.UserID,
		SubmissionTime:  model.SubmissionTime,
		IsLate:          model.IsLate,
		FileName:        model.FileName,
		FileType:        model.FileType,
		SubmissionText:  model.SubmissionText,
		AttemptNumber:   model.AttemptNumber,
		Status:          string(model.Status),
		Feedback:        NewGradingFeedbackView(model.Feedback),
	}

	if model.Student.ID != 0 {
		response.StudentName = model.Student.FullName()
		response.StudentEmail = model.Student.Email
	}

	return response
}

// NewSubmissionResponseSlice converts a slice of Submission models.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
