package service

import (
	"context"
	"errors"
	"time"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

// BanService is the ban/suspension authority: an append-only status
// overlay on user identities. Effective status is always computed lazily
// at read time; nothing sweeps expired suspensions.
type BanService struct {
	banRepo  repository.BanRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// ApplyBanInput carries one ban or suspension action.
type ApplyBanInput struct {
	UserID    uint
	BanType   string
	Reason    string
	Notes     string
	ExpiresAt *time.Time
}

// NewBanService returns a new BanService.
func NewBanService(banRepo repository.BanRepository, userRepo repository.UserRepository) *BanService {
	return &BanService{
		banRepo:  banRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// ApplyBan records a new active ban row. Prior rows are left untouched so
// the history is preserved; effective status always reads the most recent
// active row.
func (s *BanService) ApplyBan(ctx context.Context, actor models.Actor, in ApplyBanInput) (*models.UserBan, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Only admins can ban or suspend users")
	}
	if actor.ID == in.UserID {
		return nil, models.NewUnauthorizedError("You cannot ban or suspend yourself")
	}
	if in.Reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}

	now := s.now()
	switch in.BanType {
	case models.BanTypePermanent:
		// Permanent bans carry no expiry.
		in.ExpiresAt = nil
	case models.BanTypeSuspend:
		if in.ExpiresAt == nil {
			return nil, models.NewValidationError("expires_at is required for suspensions")
		}
		if !in.ExpiresAt.After(now) {
			return nil, models.NewValidationError("expires_at must be in the future")
		}
	default:
		return nil, models.NewValidationError("ban_type must be ban or suspend")
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", in.UserID)
		}
		return nil, err
	}

	ban := &models.UserBan{
		UserID:    in.UserID,
		BannedBy:  actor.ID,
		BanType:   in.BanType,
		Reason:    in.Reason,
		Notes:     in.Notes,
		BannedAt:  now,
		ExpiresAt: in.ExpiresAt,
		IsActive:  true,
	}
	if err := s.banRepo.Create(ctx, ban); err != nil {
		return nil, err
	}
	return ban, nil
}

// LiftBan deactivates a ban row. Idempotent: lifting an already-inactive
// ban is a no-op, not an error. Rows are never deleted.
func (s *BanService) LiftBan(ctx context.Context, actor models.Actor, banID uint) error {
	if !actor.IsAdmin() {
		return models.NewUnauthorizedError("Only admins can lift bans")
	}
	ban, err := s.banRepo.GetByID(ctx, banID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Ban", banID)
		}
		return err
	}
	if !ban.IsActive {
		return nil
	}
	return s.banRepo.Deactivate(ctx, banID)
}

// EffectiveStatus computes the user's current access state from the most
// recent active ban row, compared against "now". A suspension past its
// expiry reads as active without any expire action having run.
func (s *BanService) EffectiveStatus(ctx context.Context, userID uint) (string, error) {
	ban, err := s.banRepo.LatestActive(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AccessActive, nil
	}
	if err != nil {
		return "", err
	}
	return ban.EffectiveStatus(s.now()), nil
}

// HistoryFor returns the full ban history of a user, newest first.
func (s *BanService) HistoryFor(ctx context.Context, actor models.Actor, userID uint) ([]*models.UserBan, error) {
	if !actor.IsModerator() {
		return nil, models.NewUnauthorizedError("Only moderators can view ban history")
	}
	return s.banRepo.HistoryFor(ctx, userID)
}
