package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/pkg/ai"
)

type submissionFixture struct {
	submissions *memorySubmissionRepo
	assignments *memoryAssignmentRepo
	enrollments *memoryEnrollmentRepo
	files       *stubFileStore
	dispatcher  *recordingDispatcher
	service     SubmissionService
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	fixture := &submissionFixture{
		submissions: newMemorySubmissionRepo(),
		assignments: newMemoryAssignmentRepo(),
		enrollments: newMemoryEnrollmentRepo(),
		files:       newStubFileStore(),
		dispatcher:  &recordingDispatcher{},
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	fixture.service = NewSubmissionService(fixture.submissions, fixture.assignments, fixture.enrollments, fixture.files, fixture.dispatcher, validate, testLogger())
	return fixture
}

func (f *submissionFixture) addAssignment(t *testing.T, courseID uint, due time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		CourseID:       courseID,
		Title:          "Essay on Concurrency",
		AssignmentType: models.AssignmentTypeEssay,
		DueDate:        due,
		PointsPossible: 100,
		CreatedBy:      99,
	}
	require.NoError(t, f.assignments.Create(context.Background(), &assignment))
	return assignment
}

func (f *submissionFixture) enroll(t *testing.T, courseID, userID uint, role models.CourseRole) {
	t.Helper()
	require.NoError(t, f.enrollments.Create(context.Background(), &models.Enrollment{
		CourseID: courseID,
		UserID:   userID,
		Role:     role,
	}))
}

func TestSubmissionServiceCreateDispatchesGradingTask(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)

	student := Actor{ID: 10, Role: models.RoleStudent}
	result, err := fixture.service.Create(context.Background(), student, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "My essay about goroutines.",
	}, nil)
	require.NoError(t, err)

	require.Equal(t, string(models.SubmissionStatusSubmitted), result.Status)
	require.Equal(t, 1, result.AttemptNumber)
	require.False(t, result.IsLate)
	require.Nil(t, result.Feedback)

	require.Len(t, fixture.dispatcher.tasks, 1)
	task := fixture.dispatcher.tasks[0]
	require.Equal(t, result.ID, task.SubmissionID)
	require.Equal(t, 1, task.Round)
	require.Equal(t, ai.StrictnessMedium, task.Strictness)
}

func TestSubmissionServiceCreateMarksLate(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(-1*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)

	student := Actor{ID: 10, Role: models.RoleStudent}
	result, err := fixture.service.Create(context.Background(), student, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "better late than never",
	}, nil)
	require.NoError(t, err)
	require.True(t, result.IsLate)
}

func TestSubmissionServiceCreateNumbersAttemptsAndSupersedes(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)

	student := Actor{ID: 10, Role: models.RoleStudent}
	payload := dto.SubmissionCreateRequest{AssignmentID: assignment.ID, SubmissionText: "first try"}

	first, err := fixture.service.Create(context.Background(), student, payload, nil)
	require.NoError(t, err)

	payload.SubmissionText = "second try"
	second, err := fixture.service.Create(context.Background(), student, payload, nil)
	require.NoError(t, err)
	require.Equal(t, 2, second.AttemptNumber)

	prior, err := fixture.submissions.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusResubmitted, prior.Status)
}

func TestSubmissionServiceCreateRejectsEmptyContent(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)

	student := Actor{ID: 10, Role: models.RoleStudent}
	_, err := fixture.service.Create(context.Background(), student, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "   ",
	}, nil)
	require.ErrorIs(t, err, ErrEmptySubmission)
	require.Empty(t, fixture.dispatcher.tasks)
}

func TestSubmissionServiceCreateRequiresEnrollment(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))

	student := Actor{ID: 10, Role: models.RoleStudent}
	_, err := fixture.service.Create(context.Background(), student, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "outsider essay",
	}, nil)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestSubmissionServiceCreateAllowsUnenrolledProfessor(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))

	// Only students are gated on enrollment at intake.
	professor := Actor{ID: 30, Role: models.RoleProfessor}
	result, err := fixture.service.Create(context.Background(), professor, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "sample solution walkthrough",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusSubmitted), result.Status)
}

func TestSubmissionServiceShowsStudentIdentityToTeachingStaff(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)
	fixture.enroll(t, 1, 20, models.CourseRoleProfessor)

	owner := Actor{ID: 10, Role: models.RoleStudent}
	created, err := fixture.service.Create(context.Background(), owner, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "essay",
	}, nil)
	require.NoError(t, err)

	stored := fixture.submissions.submissions[created.ID]
	stored.Student = models.User{ID: 10, FirstName: "Sam", LastName: "Lee", Email: "sam@example.edu"}
	fixture.submissions.submissions[created.ID] = stored

	professorView, err := fixture.service.Get(context.Background(), Actor{ID: 20, Role: models.RoleProfessor}, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Sam Lee", professorView.StudentName)
	require.Equal(t, "sam@example.edu", professorView.StudentEmail)

	studentView, err := fixture.service.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	require.Empty(t, studentView.StudentName)
	require.Empty(t, studentView.StudentEmail)
}

func TestSubmissionServiceCreateSurvivesDispatchFailure(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.dispatcher.err = context.DeadlineExceeded
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)

	student := Actor{ID: 10, Role: models.RoleStudent}
	result, err := fixture.service.Create(context.Background(), student, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "queued later",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusSubmitted), result.Status)
}

func TestSubmissionServiceGetScopesByRole(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)
	fixture.enroll(t, 1, 20, models.CourseRoleProfessor)

	owner := Actor{ID: 10, Role: models.RoleStudent}
	created, err := fixture.service.Create(context.Background(), owner, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "mine",
	}, nil)
	require.NoError(t, err)

	_, err = fixture.service.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)

	otherStudent := Actor{ID: 11, Role: models.RoleStudent}
	_, err = fixture.service.Get(context.Background(), otherStudent, created.ID)
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	professor := Actor{ID: 20, Role: models.RoleProfessor}
	_, err = fixture.service.Get(context.Background(), professor, created.ID)
	require.NoError(t, err)

	outsideProfessor := Actor{ID: 21, Role: models.RoleProfessor}
	_, err = fixture.service.Get(context.Background(), outsideProfessor, created.ID)
	require.ErrorIs(t, err, ErrSubmissionForbidden)
}

func TestSubmissionServiceListForcesStudentScope(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)
	fixture.enroll(t, 1, 11, models.CourseRoleStudent)

	for _, id := range []uint{10, 11} {
		_, err := fixture.service.Create(context.Background(), Actor{ID: id, Role: models.RoleStudent}, dto.SubmissionCreateRequest{
			AssignmentID:   assignment.ID,
			SubmissionText: "essay",
		}, nil)
		require.NoError(t, err)
	}

	otherID := uint(11)
	listing, err := fixture.service.List(context.Background(), Actor{ID: 10, Role: models.RoleStudent}, dto.SubmissionFilter{UserID: &otherID})
	require.NoError(t, err)
	require.Equal(t, 1, listing.Total)
	require.Equal(t, uint(10), listing.Submissions[0].UserID)
}

func TestSubmissionServiceAcceptRequiresGradedState(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)
	fixture.enroll(t, 1, 20, models.CourseRoleProfessor)

	created, err := fixture.service.Create(context.Background(), Actor{ID: 10, Role: models.RoleStudent}, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "pending",
	}, nil)
	require.NoError(t, err)

	professor := Actor{ID: 20, Role: models.RoleProfessor}
	_, err = fixture.service.Accept(context.Background(), professor, created.ID)
	require.ErrorIs(t, err, ErrSubmissionNotGraded)

	require.NoError(t, fixture.submissions.CompleteGradingPass(context.Background(), created.ID, 1, &models.Feedback{
		FeedbackText:   "solid work",
		SuggestedGrade: 88,
		GradedBy:       models.GradedByOracle,
	}))

	accepted, err := fixture.service.Accept(context.Background(), professor, created.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusAccepted), accepted.Status)
	require.NotNil(t, accepted.Feedback)
	require.True(t, accepted.Feedback.ProfessorReview)

	// Accepting twice is a no-op.
	again, err := fixture.service.Accept(context.Background(), professor, created.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusAccepted), again.Status)
}

func TestSubmissionServiceAcceptRejectsNonTeachingProfessor(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)

	created, err := fixture.service.Create(context.Background(), Actor{ID: 10, Role: models.RoleStudent}, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "essay",
	}, nil)
	require.NoError(t, err)

	_, err = fixture.service.Accept(context.Background(), Actor{ID: 30, Role: models.RoleProfessor}, created.ID)
	require.ErrorIs(t, err, ErrNotCourseProfessor)
}

func TestSubmissionServiceRegradeBumpsRoundAndDispatches(t *testing.T) {
	fixture := newSubmissionFixture(t)
	assignment := fixture.addAssignment(t, 1, time.Now().Add(24*time.Hour))
	fixture.enroll(t, 1, 10, models.CourseRoleStudent)
	fixture.enroll(t, 1, 20, models.CourseRoleProfessor)

	created, err := fixture.service.Create(context.Background(), Actor{ID: 10, Role: models.RoleStudent}, dto.SubmissionCreateRequest{
		AssignmentID:   assignment.ID,
		SubmissionText: "essay",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, fixture.submissions.CompleteGradingPass(context.Background(), created.ID, 1, &models.Feedback{
		FeedbackText:   "first pass",
		SuggestedGrade: 70,
	}))

	professor := Actor{ID: 20, Role: models.RoleProfessor}
	result, err := fixture.service.Regrade(context.Background(), professor, created.ID, dto.RegradeRequest{Strictness: ai.StrictnessStrict})
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusSubmitted), result.Status)

	require.Len(t, fixture.dispatcher.tasks, 2)
	regradeTask := fixture.dispatcher.tasks[1]
	require.Equal(t, created.ID, regradeTask.SubmissionID)
	require.Equal(t, 2, regradeTask.Round)
	require.Equal(t, ai.StrictnessStrict, regradeTask.Strictness)

	// The original round can no longer commit.
	err = fixture.submissions.CompleteGradingPass(context.Background(), created.ID, 1, &models.Feedback{})
	require.Error(t, err)
}
