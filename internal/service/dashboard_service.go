package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/repository"
)

const dashboardCacheKey = "dashboard:student:%d"

// DashboardService aggregates a student's standing across their courses.
type DashboardService interface {
	StudentDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
}

type dashboardService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService constructs a DashboardService. The redis client may be
// nil; aggregation then runs uncached on every request.
func NewDashboardService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) StudentDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	key := fmt.Sprintf(dashboardCacheKey, userID)

	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	response, err := s.aggregate(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	s.toCache(ctx, key, response)
	return response, nil
}

func (s *dashboardService) aggregate(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{UserID: &userID})
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		TotalSubmissions:    len(submissions),
		UpcomingAssignments: []dto.UpcomingAssignment{},
	}

	var gradeSum float64
	var gradeCount int
	submittedAssignments := make(map[uint]struct{}, len(submissions))
	for _, submission := range submissions {
		submittedAssignments[submission.AssignmentID] = struct{}{}

		switch submission.Status {
		case models.SubmissionStatusGraded:
			response.GradedSubmissions++
		case models.SubmissionStatusAccepted:
			response.AcceptedSubmissions++
		}

		if submission.Feedback != nil {
			gradeSum += submission.Feedback.SuggestedGrade
			gradeCount++
		}
	}

	if gradeCount > 0 {
		average := gradeSum / float64(gradeCount)
		response.AverageSuggestedGrade = &average
	}

	upcoming, err := s.upcomingAssignments(ctx, userID, submittedAssignments)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.UpcomingAssignments = upcoming

	return response, nil
}

// upcomingAssignments lists assignments in the student's courses whose due
// date has not passed yet, soonest first.
func (s *dashboardService) upcomingAssignments(ctx context.Context, userID uint, submitted map[uint]struct{}) ([]dto.UpcomingAssignment, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	reference := s.now().UTC()
	upcoming := make([]dto.UpcomingAssignment, 0)
	for _, enrollment := range enrollments {
		courseID := enrollment.CourseID
		assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{CourseID: &courseID})
		if err != nil {
			return nil, err
		}

		for _, assignment := range assignments {
			if assignment.DueBefore(reference) {
				continue
			}
			_, hasSubmission := submitted[assignment.ID]
			upcoming = append(upcoming, dto.UpcomingAssignment{
				AssignmentID: assignment.ID,
				Title:        assignment.Title,
				DueDate:      assignment.DueDate,
				Submitted:    hasSubmission,
			})
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})

	return upcoming, nil
}

func (s *dashboardService) fromCache(ctx context.Context, key string) (dto.DashboardResponse, bool) {
	if s.cache == nil {
		return dto.DashboardResponse{}, false
	}

	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
		}
		return dto.DashboardResponse{}, false
	}

	var response dto.DashboardResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache entry corrupt, ignoring")
		return dto.DashboardResponse{}, false
	}
	return response, true
}

func (s *dashboardService) toCache(ctx context.Context, key string, response dto.DashboardResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
}
