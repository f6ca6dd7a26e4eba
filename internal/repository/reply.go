package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository defines the interface for reply data operations
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id uint) (*models.Reply, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error)
	Update(ctx context.Context, reply *models.Reply) error
	Delete(ctx context.Context, id uint) error
}

type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository creates a new ReplyRepository
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("id = ?", reply.PostID).
			UpdateColumn("replies_count", gorm.Expr("replies_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", reply.UserID).
			UpdateColumn("replies_count", gorm.Expr("replies_count + 1")).Error
	})
}

func (r *replyRepository) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("User").First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListByPost returns the flat reply set for a post, oldest first. Thread
// shape is assembled in the service layer, not in SQL.
func (r *replyRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error) {
	var replies []*models.Reply
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&replies).Error
	return replies, err
}

func (r *replyRepository) Update(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Save(reply).Error
}

func (r *replyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply models.Reply
		if err := tx.First(&reply, id).Error; err != nil {
			return err
		}
		if err := tx.Where("reply_id = ?", id).Delete(&models.ReplyVote{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Reply{}, id).Error; err != nil {
			return err
		}
		if reply.Upvotes > 0 {
			if err := tx.Model(&models.Post{}).
				Where("id = ? AND upvotes_count >= ?", reply.PostID, reply.Upvotes).
				UpdateColumn("upvotes_count", gorm.Expr("upvotes_count - ?", reply.Upvotes)).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND replies_count > 0", reply.PostID).
			UpdateColumn("replies_count", gorm.Expr("replies_count - 1")).Error
	})
}
