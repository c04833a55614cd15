package dto

import "time"

// UpcomingAssignment lists an assignment still open for the student.
type UpcomingAssignment struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"due_date"`
	Submitted    bool      `json:"submitted"`
}

// DashboardResponse aggregates a student's standing across courses.
type DashboardResponse struct {
	TotalSubmissions      int                  `json:"total_submissions"`
	GradedSubmissions     int                  `json:"graded_submissions"`
	AcceptedSubmissions   int                  `json:"accepted_submissions"`
	AverageSuggestedGrade *float64             `json:"average_suggested_grade"`
	UpcomingAssignments   []UpcomingAssignment `json:"upcoming_assignments"`
}
