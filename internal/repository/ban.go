package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// BanRepository stores the append-only ban history. Rows are never
// deleted; lifting a ban flips is_active off.
type BanRepository interface {
	Create(ctx context.Context, ban *models.UserBan) error
	GetByID(ctx context.Context, id uint) (*models.UserBan, error)
	LatestActive(ctx context.Context, userID uint) (*models.UserBan, error)
	HistoryFor(ctx context.Context, userID uint) ([]*models.UserBan, error)
	Deactivate(ctx context.Context, id uint) error
}

type banRepository struct {
	db *gorm.DB
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *gorm.DB) BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) Create(ctx context.Context, ban *models.UserBan) error {
	return r.db.WithContext(ctx).Create(ban).Error
}

func (r *banRepository) GetByID(ctx context.Context, id uint) (*models.UserBan, error) {
	var ban models.UserBan
	if err := r.db.WithContext(ctx).First(&ban, id).Error; err != nil {
		return nil, err
	}
	return &ban, nil
}

// LatestActive returns the most recent active ban row for the user, or
// gorm.ErrRecordNotFound when none exists. Expiry is not evaluated here;
// the service computes effective status lazily against "now".
func (r *banRepository) LatestActive(ctx context.Context, userID uint) (*models.UserBan, error) {
	var ban models.UserBan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("banned_at DESC").
		First(&ban).Error
	if err != nil {
		return nil, err
	}
	return &ban, nil
}

func (r *banRepository) HistoryFor(ctx context.Context, userID uint) ([]*models.UserBan, error) {
	var bans []*models.UserBan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("banned_at DESC").
		Find(&bans).Error
	return bans, err
}

func (r *banRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.UserBan{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
