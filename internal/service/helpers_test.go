package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/repository"
	"github.com/gradient-edu/gradient-api/internal/storage"
	"github.com/gradient-edu/gradient-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[m.nextID] = *user
	m.nextID++
	return nil
}

func (m *memoryUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = *user
	return nil
}

type memoryCourseRepo struct {
	courses map[uint]models.Course
	nextID  uint
}

func newMemoryCourseRepo() *memoryCourseRepo {
	return &memoryCourseRepo{courses: make(map[uint]models.Course), nextID: 1}
}

func (m *memoryCourseRepo) List(_ context.Context, query repository.CourseQuery) ([]models.Course, int64, error) {
	results := make([]models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		if query.Term != nil && course.Term != *query.Term {
			continue
		}
		results = append(results, course)
	}
	return results, int64(len(results)), nil
}

func (m *memoryCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) GetByCodeAndTerm(_ context.Context, code, term string) (models.Course, error) {
	for _, course := range m.courses {
		if course.Code == code && course.Term == term {
			return course, nil
		}
	}
	return models.Course{}, gorm.ErrRecordNotFound
}

func (m *memoryCourseRepo) GetByIDs(_ context.Context, ids []uint) ([]models.Course, error) {
	results := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		if course, ok := m.courses[id]; ok {
			results = append(results, course)
		}
	}
	return results, nil
}

func (m *memoryCourseRepo) Create(_ context.Context, course *models.Course) error {
	course.ID = m.nextID
	m.courses[m.nextID] = *course
	m.nextID++
	return nil
}

func (m *memoryCourseRepo) Update(_ context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.courses[course.ID] = *course
	return nil
}

type memoryEnrollmentRepo struct {
	enrollments []models.Enrollment
}

func newMemoryEnrollmentRepo() *memoryEnrollmentRepo {
	return &memoryEnrollmentRepo{}
}

func (m *memoryEnrollmentRepo) ListByUser(_ context.Context, userID uint) ([]models.Enrollment, error) {
	results := make([]models.Enrollment, 0)
	for _, enrollment := range m.enrollments {
		if enrollment.UserID == userID {
			results = append(results, enrollment)
		}
	}
	return results, nil
}

func (m *memoryEnrollmentRepo) Get(_ context.Context, courseID, userID uint) (models.Enrollment, error) {
	for _, enrollment := range m.enrollments {
		if enrollment.CourseID == courseID && enrollment.UserID == userID {
			return enrollment, nil
		}
	}
	return models.Enrollment{}, gorm.ErrRecordNotFound
}

func (m *memoryEnrollmentRepo) GetWithRole(_ context.Context, courseID, userID uint, role models.CourseRole) (models.Enrollment, error) {
	for _, enrollment := range m.enrollments {
		if enrollment.CourseID == courseID && enrollment.UserID == userID && enrollment.Role == role {
			return enrollment, nil
		}
	}
	return models.Enrollment{}, gorm.ErrRecordNotFound
}

func (m *memoryEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = uint(len(m.enrollments) + 1)
	m.enrollments = append(m.enrollments, *enrollment)
	return nil
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1}
}

func (m *memoryAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0, len(m.assignments))
	for _, assignment := range m.assignments {
		if filter.CourseID != nil && assignment.CourseID != *filter.CourseID {
			continue
		}
		results = append(results, assignment)
	}
	return results, nil
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

func (m *memorySubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	results := make([]models.Submission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.UserID != nil && submission.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		if len(filter.CourseIDs) > 0 {
			found := false
			for _, courseID := range filter.CourseIDs {
				if submission.Assignment.CourseID == courseID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		results = append(results, submission)
	}
	return results, nil
}

func (m *memorySubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) CreateAttempt(_ context.Context, submission *models.Submission) error {
	attempt := 1
	for id, prior := range m.submissions {
		if prior.AssignmentID == submission.AssignmentID && prior.UserID == submission.UserID {
			attempt++
			prior.Status = models.SubmissionStatusResubmitted
			m.submissions[id] = prior
		}
	}

	submission.ID = m.nextID
	submission.AttemptNumber = attempt
	submission.CreatedAt = time.Now()
	m.submissions[m.nextID] = *submission
	m.nextID++
	return nil
}

func (m *memorySubmissionRepo) CompleteGradingPass(_ context.Context, submissionID uint, round int, feedback *models.Feedback) error {
	submission, ok := m.submissions[submissionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if submission.GradingRound != round {
		return repository.ErrStaleGradingRound
	}

	feedback.SubmissionID = submissionID
	submission.Feedback = feedback
	submission.Status = models.SubmissionStatusGraded
	m.submissions[submissionID] = submission
	return nil
}

func (m *memorySubmissionRepo) RequestRegrade(_ context.Context, submissionID uint) (int, error) {
	submission, ok := m.submissions[submissionID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}

	submission.GradingRound++
	submission.Status = models.SubmissionStatusSubmitted
	m.submissions[submissionID] = submission
	return submission.GradingRound, nil
}

func (m *memorySubmissionRepo) Accept(_ context.Context, submissionID uint) error {
	submission, ok := m.submissions[submissionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	submission.Status = models.SubmissionStatusAccepted
	if submission.Feedback != nil {
		submission.Feedback.ProfessorReview = true
	}
	m.submissions[submissionID] = submission
	return nil
}

type stubFileStore struct {
	saves int
	texts map[string]string
	err   error
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{texts: make(map[string]string)}
}

func (s *stubFileStore) Save(_ context.Context, category, originalName string, r io.Reader) (storage.SavedFile, error) {
	if s.err != nil {
		return storage.SavedFile{}, s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.SavedFile{}, err
	}
	s.saves++
	path := category + "/" + originalName
	s.texts[path] = string(data)
	return storage.SavedFile{Name: originalName, Path: path, Type: "txt"}, nil
}

func (s *stubFileStore) ReadText(_ context.Context, path string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	text, ok := s.texts[path]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return text, nil
}

type recordingDispatcher struct {
	tasks []GradingTask
	err   error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, task GradingTask) error {
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

type stubGrader struct {
	result ai.GradingResult
	err    error
	inputs []ai.GradingInput
}

func (g *stubGrader) Grade(_ context.Context, input ai.GradingInput) (ai.GradingResult, error) {
	g.inputs = append(g.inputs, input)
	if g.err != nil {
		return ai.GradingResult{}, g.err
	}
	return g.result, nil
}
