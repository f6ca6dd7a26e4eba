package repository

import (
	"context"
	"time"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// InboxPatch carries the admin-side fields of an inbox status transition.
type InboxPatch struct {
	Status     string
	AdminNotes *string
	ReadAt     *time.Time
	RepliedAt  *time.Time
}

// ContactRepository stores public contact artifacts: contact messages,
// objective inquiries and guide bookings. Rows are created by anonymous
// visitors and only ever mutated by admin status transitions.
type ContactRepository interface {
	CreateMessage(ctx context.Context, m *models.ContactMessage) error
	GetMessage(ctx context.Context, id uint) (*models.ContactMessage, error)
	ListMessages(ctx context.Context, status string, limit, offset int) ([]*models.ContactMessage, error)
	PatchMessage(ctx context.Context, id uint, patch InboxPatch) error

	CreateInquiry(ctx context.Context, q *models.ObjectiveInquiry) error
	GetInquiry(ctx context.Context, id uint) (*models.ObjectiveInquiry, error)
	ListInquiries(ctx context.Context, status string, limit, offset int) ([]*models.ObjectiveInquiry, error)
	PatchInquiry(ctx context.Context, id uint, patch InboxPatch) error

	CreateBooking(ctx context.Context, b *models.GuideBooking) error
	GetBooking(ctx context.Context, id uint) (*models.GuideBooking, error)
	ListBookings(ctx context.Context, status string, limit, offset int) ([]*models.GuideBooking, error)
	PatchBooking(ctx context.Context, id uint, patch InboxPatch) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (p InboxPatch) updates() map[string]interface{} {
	updates := map[string]interface{}{"status": p.Status}
	if p.AdminNotes != nil {
		updates["admin_notes"] = *p.AdminNotes
	}
	if p.ReadAt != nil {
		updates["read_at"] = *p.ReadAt
	}
	if p.RepliedAt != nil {
		updates["replied_at"] = *p.RepliedAt
	}
	return updates
}

func (r *contactRepository) CreateMessage(ctx context.Context, m *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *contactRepository) GetMessage(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var m models.ContactMessage
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *contactRepository) ListMessages(ctx context.Context, status string, limit, offset int) ([]*models.ContactMessage, error) {
	var rows []*models.ContactMessage
	q := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

func (r *contactRepository) PatchMessage(ctx context.Context, id uint, patch InboxPatch) error {
	return r.db.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Updates(patch.updates()).Error
}

func (r *contactRepository) CreateInquiry(ctx context.Context, q *models.ObjectiveInquiry) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *contactRepository) GetInquiry(ctx context.Context, id uint) (*models.ObjectiveInquiry, error) {
	var q models.ObjectiveInquiry
	if err := r.db.WithContext(ctx).Preload("Objective").First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *contactRepository) ListInquiries(ctx context.Context, status string, limit, offset int) ([]*models.ObjectiveInquiry, error) {
	var rows []*models.ObjectiveInquiry
	q := r.db.WithContext(ctx).Model(&models.ObjectiveInquiry{}).Preload("Objective")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

func (r *contactRepository) PatchInquiry(ctx context.Context, id uint, patch InboxPatch) error {
	return r.db.WithContext(ctx).
		Model(&models.ObjectiveInquiry{}).
		Where("id = ?", id).
		Updates(patch.updates()).Error
}

func (r *contactRepository) CreateBooking(ctx context.Context, b *models.GuideBooking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *contactRepository) GetBooking(ctx context.Context, id uint) (*models.GuideBooking, error) {
	var b models.GuideBooking
	if err := r.db.WithContext(ctx).Preload("Guide").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *contactRepository) ListBookings(ctx context.Context, status string, limit, offset int) ([]*models.GuideBooking, error) {
	var rows []*models.GuideBooking
	q := r.db.WithContext(ctx).Model(&models.GuideBooking{}).Preload("Guide")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

func (r *contactRepository) PatchBooking(ctx context.Context, id uint, patch InboxPatch) error {
	return r.db.WithContext(ctx).
		Model(&models.GuideBooking{}).
		Where("id = ?", id).
		Updates(patch.updates()).Error
}
