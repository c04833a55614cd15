package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
)

type assignmentFixture struct {
	assignments *memoryAssignmentRepo
	courses     *memoryCourseRepo
	enrollments *memoryEnrollmentRepo
	files       *stubFileStore
	service     AssignmentService
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	fixture := &assignmentFixture{
		assignments: newMemoryAssignmentRepo(),
		courses:     newMemoryCourseRepo(),
		enrollments: newMemoryEnrollmentRepo(),
		files:       newStubFileStore(),
	}

	course := models.Course{Code: "CS200", Name: "Databases", Term: "2026F"}
	require.NoError(t, fixture.courses.Create(context.Background(), &course))
	require.NoError(t, fixture.enrollments.Create(context.Background(), &models.Enrollment{
		CourseID: course.ID, UserID: 20, Role: models.CourseRoleProfessor,
	}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	fixture.service = NewAssignmentService(fixture.assignments, fixture.courses, fixture.enrollments, fixture.files, validate, testLogger())
	return fixture
}

func validAssignmentPayload() dto.AssignmentCreateRequest {
	return dto.AssignmentCreateRequest{
		CourseID:       1,
		Title:          "Normalization Exercise",
		AssignmentType: "essay",
		DueDate:        time.Now().Add(72 * time.Hour),
		PointsPossible: 100,
	}
}

func TestAssignmentServiceCreateByCourseProfessor(t *testing.T) {
	fixture := newAssignmentFixture(t)

	professor := Actor{ID: 20, Role: models.RoleProfessor}
	result, err := fixture.service.Create(context.Background(), professor, validAssignmentPayload(), nil)
	require.NoError(t, err)
	require.Equal(t, "Normalization Exercise", result.Title)
	require.Equal(t, professor.ID, result.CreatedBy)
}

func TestAssignmentServiceCreateRejectsOutsideProfessor(t *testing.T) {
	fixture := newAssignmentFixture(t)

	outsider := Actor{ID: 21, Role: models.RoleProfessor}
	_, err := fixture.service.Create(context.Background(), outsider, validAssignmentPayload(), nil)
	require.ErrorIs(t, err, ErrNotCourseProfessor)
}

func TestAssignmentServiceCreateAllowsAdminAnywhere(t *testing.T) {
	fixture := newAssignmentFixture(t)

	admin := Actor{ID: 1, Role: models.RoleAdmin}
	_, err := fixture.service.Create(context.Background(), admin, validAssignmentPayload(), nil)
	require.NoError(t, err)
}

func TestAssignmentServiceCreateUnknownCourse(t *testing.T) {
	fixture := newAssignmentFixture(t)

	payload := validAssignmentPayload()
	payload.CourseID = 404

	_, err := fixture.service.Create(context.Background(), Actor{ID: 1, Role: models.RoleAdmin}, payload, nil)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAssignmentServiceUpdateGuardsAuthority(t *testing.T) {
	fixture := newAssignmentFixture(t)

	professor := Actor{ID: 20, Role: models.RoleProfessor}
	created, err := fixture.service.Create(context.Background(), professor, validAssignmentPayload(), nil)
	require.NoError(t, err)

	title := "Updated Title"
	_, err = fixture.service.Update(context.Background(), Actor{ID: 21, Role: models.RoleProfessor}, created.ID, dto.AssignmentUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrNotCourseProfessor)

	updated, err := fixture.service.Update(context.Background(), professor, created.ID, dto.AssignmentUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)
}

func TestAssignmentServiceDelete(t *testing.T) {
	fixture := newAssignmentFixture(t)

	professor := Actor{ID: 20, Role: models.RoleProfessor}
	created, err := fixture.service.Create(context.Background(), professor, validAssignmentPayload(), nil)
	require.NoError(t, err)

	require.NoError(t, fixture.service.Delete(context.Background(), professor, created.ID))

	_, err = fixture.service.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
