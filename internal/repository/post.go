package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for forum post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, category string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	SetFlags(ctx context.Context, id uint, pinned, locked *bool) error
	IncrementViews(ctx context.Context, id uint) error
	DeleteCascade(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, category string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", models.PostStatusActive)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("pinned DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SetFlags toggles pinned/locked independently of status. Nil means leave
// the flag alone.
func (r *postRepository) SetFlags(ctx context.Context, id uint, pinned, locked *bool) error {
	updates := map[string]interface{}{}
	if pinned != nil {
		updates["pinned"] = *pinned
	}
	if locked != nil {
		updates["locked"] = *locked
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// DeleteCascade hard-deletes a post together with its replies, their votes
// and any reports targeting them, in one transaction. Dependents go first
// so a midway failure leaves replies orphaned-but-harmless rather than a
// post pointing at missing children; the whole transaction still rolls
// back as a unit.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.Reply{}).
			Where("post_id = ?", id).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}

		if len(replyIDs) > 0 {
			if err := tx.Where("reply_id IN ?", replyIDs).
				Delete(&models.ReplyVote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("target_type = ? AND target_id IN ?", models.ReportTargetReply, replyIDs).
				Delete(&models.Report{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", id).
				Delete(&models.Reply{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("target_type = ? AND target_id = ?", models.ReportTargetPost, id).
			Delete(&models.Report{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Post{}, id).Error
	})
}
