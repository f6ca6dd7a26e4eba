package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// DirectoryRepository stores the tourism directory entries reviews and
// inquiries hang off: objectives and guides.
type DirectoryRepository interface {
	CreateObjective(ctx context.Context, o *models.Objective) error
	GetObjective(ctx context.Context, id uint) (*models.Objective, error)
	GetObjectiveBySlug(ctx context.Context, slug string) (*models.Objective, error)
	ListObjectives(ctx context.Context, region string, limit, offset int) ([]*models.Objective, error)

	CreateGuide(ctx context.Context, g *models.Guide) error
	GetGuide(ctx context.Context, id uint) (*models.Guide, error)
	GetGuideBySlug(ctx context.Context, slug string) (*models.Guide, error)
	ListGuides(ctx context.Context, region string, limit, offset int) ([]*models.Guide, error)
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new DirectoryRepository
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) CreateObjective(ctx context.Context, o *models.Objective) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *directoryRepository) GetObjective(ctx context.Context, id uint) (*models.Objective, error) {
	var o models.Objective
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *directoryRepository) GetObjectiveBySlug(ctx context.Context, slug string) (*models.Objective, error) {
	var o models.Objective
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *directoryRepository) ListObjectives(ctx context.Context, region string, limit, offset int) ([]*models.Objective, error) {
	var rows []*models.Objective
	q := r.db.WithContext(ctx).Model(&models.Objective{})
	if region != "" {
		q = q.Where("region = ?", region)
	}
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

func (r *directoryRepository) CreateGuide(ctx context.Context, g *models.Guide) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *directoryRepository) GetGuide(ctx context.Context, id uint) (*models.Guide, error) {
	var g models.Guide
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *directoryRepository) GetGuideBySlug(ctx context.Context, slug string) (*models.Guide, error) {
	var g models.Guide
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *directoryRepository) ListGuides(ctx context.Context, region string, limit, offset int) ([]*models.Guide, error) {
	var rows []*models.Guide
	q := r.db.WithContext(ctx).Model(&models.Guide{})
	if region != "" {
		q = q.Where("region = ?", region)
	}
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}
