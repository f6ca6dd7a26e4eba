package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	ListBySubject(ctx context.Context, subjectType string, subjectID uint, approvedOnly bool, limit, offset int) ([]*models.Review, error)
	SetApproved(ctx context.Context, id uint, approved bool) error
	Delete(ctx context.Context, id uint) error
	IncrementHelpful(ctx context.Context, id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListBySubject(ctx context.Context, subjectType string, subjectID uint, approvedOnly bool, limit, offset int) ([]*models.Review, error) {
	var reviews []*models.Review
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID)
	if approvedOnly {
		q = q.Where("approved = ?", true)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) SetApproved(ctx context.Context, id uint, approved bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("approved", approved).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Review{}, id).Error
}

// IncrementHelpful bumps the review's helpful counter and mirrors it onto
// the author's reputation counter, atomically.
func (r *reviewRepository) IncrementHelpful(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Review{}).
			Where("id = ?", id).
			UpdateColumn("helpful_count", gorm.Expr("helpful_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", review.UserID).
			UpdateColumn("helpful_count", gorm.Expr("helpful_count + 1")).Error
	})
}
