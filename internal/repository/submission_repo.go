package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gradient-edu/gradient-api/internal/models"
)

// ErrStaleGradingRound indicates a grading pass was superseded by a newer
// re-grade request before it could commit; its result must be discarded.
var ErrStaleGradingRound = errors.New("grading round superseded")

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	UserID       *uint
	Status       *models.SubmissionStatus
	CourseIDs    []uint
}

// SubmissionRepository defines data operations for submissions and their feedback.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)

	// CreateAttempt inserts a new attempt in one transaction: it numbers the
	// attempt from the count of prior rows for the (assignment, user) pair and
	// marks those prior rows resubmitted before inserting the new one.
	CreateAttempt(ctx context.Context, submission *models.Submission) error

	// CompleteGradingPass persists the outcome of one grading pass as a single
	// transaction: it verifies the submission's grading round still matches the
	// round the pass was scheduled for, replaces any prior feedback row, and
	// flips the status to graded. A round mismatch returns ErrStaleGradingRound
	// without writing anything.
	CompleteGradingPass(ctx context.Context, submissionID uint, round int, feedback *models.Feedback) error

	// RequestRegrade resets the submission to submitted and bumps its grading
	// round, returning the new round for the pass about to be scheduled.
	RequestRegrade(ctx context.Context, submissionID uint) (int, error)

	// Accept marks the submission accepted and flags its feedback as
	// professor-reviewed in one transaction.
	Accept(ctx context.Context, submissionID uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student").
		Preload("Feedback").
		Preload("Feedback.Details")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if len(filter.CourseIDs) > 0 {
		query = query.
			Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
			Where("assignments.course_id IN ?", filter.CourseIDs)
	}

	var submissions []models.Submission
	if err := query.Order("submissions.created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) CreateAttempt(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior int64
		if err := tx.Model(&models.Submission{}).
			Where("assignment_id = ?", submission.AssignmentID).
			Where("user_id = ?", submission.UserID).
			Count(&prior).Error; err != nil {
			return err
		}

		if prior > 0 {
			if err := tx.Model(&models.Submission{}).
				Where("assignment_id = ?", submission.AssignmentID).
				Where("user_id = ?", submission.UserID).
				Update("status", models.SubmissionStatusResubmitted).Error; err != nil {
				return err
			}
		}

		submission.AttemptNumber = int(prior) + 1
		// Associations are read via Preload; creating them here would upsert
		// the parent assignment row.
		return tx.Omit(clause.Associations).Create(submission).Error
	})
}

func (r *submissionRepository) CompleteGradingPass(ctx context.Context, submissionID uint, round int, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.First(&submission, submissionID).Error; err != nil {
			return err
		}

		if submission.GradingRound != round {
			return ErrStaleGradingRound
		}

		var existing models.Feedback
		err := tx.Where("submission_id = ?", submissionID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("feedback_id = ?", existing.ID).Delete(&models.FeedbackDetail{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		feedback.SubmissionID = submissionID
		if err := tx.Create(feedback).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).
			Where("id = ?", submissionID).
			Update("status", models.SubmissionStatusGraded).Error
	})
}

func (r *submissionRepository) RequestRegrade(ctx context.Context, submissionID uint) (int, error) {
	var round int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.First(&submission, submissionID).Error; err != nil {
			return err
		}

		round = submission.GradingRound + 1
		return tx.Model(&models.Submission{}).
			Where("id = ?", submissionID).
			Updates(map[string]interface{}{
				"status":        models.SubmissionStatusSubmitted,
				"grading_round": round,
			}).Error
	})
	return round, err
}

func (r *submissionRepository) Accept(ctx context.Context, submissionID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Submission{}).
			Where("id = ?", submissionID).
			Update("status", models.SubmissionStatusAccepted).Error; err != nil {
			return err
		}

		return tx.Model(&models.Feedback{}).
			Where("submission_id = ?", submissionID).
			Update("professor_review", true).Error
	})
}
