package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// ContestRepository defines the interface for contest data operations
type ContestRepository interface {
	GetContest(ctx context.Context, id uint) (*models.Contest, error)
	GetContestBySlug(ctx context.Context, slug string) (*models.Contest, error)
	ListContests(ctx context.Context, limit, offset int) ([]*models.Contest, error)

	CreateSubmission(ctx context.Context, s *models.ContestSubmission) error
	GetSubmission(ctx context.Context, id uint) (*models.ContestSubmission, error)
	ListSubmissions(ctx context.Context, contestID uint, status string, limit, offset int) ([]*models.ContestSubmission, error)
	UpdateSubmissionStatus(ctx context.Context, id uint, status, reason string) error

	GetVote(ctx context.Context, submissionID, userID uint) (*models.ContestVote, error)
	CastVote(ctx context.Context, submissionID, userID uint) error
	RetractVote(ctx context.Context, vote *models.ContestVote) error
	InvalidateVotes(ctx context.Context, submissionID uint) error
	ContestTally(ctx context.Context, contestID uint) (int64, error)
}

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository creates a new ContestRepository
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) GetContest(ctx context.Context, id uint) (*models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).First(&contest, id).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func (r *contestRepository) GetContestBySlug(ctx context.Context, slug string) (*models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&contest).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func (r *contestRepository) ListContests(ctx context.Context, limit, offset int) ([]*models.Contest, error) {
	var contests []*models.Contest
	err := r.db.WithContext(ctx).
		Order("starts_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contests).Error
	return contests, err
}

func (r *contestRepository) CreateSubmission(ctx context.Context, s *models.ContestSubmission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *contestRepository) GetSubmission(ctx context.Context, id uint) (*models.ContestSubmission, error) {
	var s models.ContestSubmission
	if err := r.db.WithContext(ctx).Preload("User").Preload("Contest").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *contestRepository) ListSubmissions(ctx context.Context, contestID uint, status string, limit, offset int) ([]*models.ContestSubmission, error) {
	var rows []*models.ContestSubmission
	q := r.db.WithContext(ctx).Preload("User").Where("contest_id = ?", contestID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("votes_count DESC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *contestRepository) UpdateSubmissionStatus(ctx context.Context, id uint, status, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.ContestSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"status_reason": reason,
		}).Error
}

func (r *contestRepository) GetVote(ctx context.Context, submissionID, userID uint) (*models.ContestVote, error) {
	var vote models.ContestVote
	err := r.db.WithContext(ctx).
		Where("submission_id = ? AND user_id = ?", submissionID, userID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *contestRepository) CastVote(ctx context.Context, submissionID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := &models.ContestVote{SubmissionID: submissionID, UserID: userID}
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		return tx.Model(&models.ContestSubmission{}).
			Where("id = ?", submissionID).
			UpdateColumn("votes_count", gorm.Expr("votes_count + 1")).Error
	})
}

func (r *contestRepository) RetractVote(ctx context.Context, vote *models.ContestVote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ContestVote{}, vote.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.ContestSubmission{}).
			Where("id = ? AND votes_count > 0", vote.SubmissionID).
			UpdateColumn("votes_count", gorm.Expr("votes_count - 1")).Error
	})
}

// InvalidateVotes wipes a removed submission's votes and zeroes its tally
// in one transaction.
func (r *contestRepository) InvalidateVotes(ctx context.Context, submissionID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submissionID).
			Delete(&models.ContestVote{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.ContestSubmission{}).
			Where("id = ?", submissionID).
			UpdateColumn("votes_count", 0).Error
	})
}

// ContestTally recomputes the live vote total across a contest's approved
// submissions.
func (r *contestRepository) ContestTally(ctx context.Context, contestID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ContestVote{}).
		Joins("JOIN contest_submissions ON contest_submissions.id = contest_votes.submission_id").
		Where("contest_submissions.contest_id = ? AND contest_submissions.status = ?", contestID, models.SubmissionStatusApproved).
		Count(&total).Error
	return total, err
}
