package service

import (
	"context"
	"errors"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

// ReplyService owns the threaded reply lifecycle under forum posts.
type ReplyService struct {
	replyRepo repository.ReplyRepository
	postRepo  repository.PostRepository
}

type CreateReplyInput struct {
	Actor         models.Actor
	PostID        uint
	ParentReplyID *uint
	Content       string
}

type UpdateReplyInput struct {
	Actor   models.Actor
	ReplyID uint
	Content string
}

// NewReplyService returns a new ReplyService.
func NewReplyService(replyRepo repository.ReplyRepository, postRepo repository.PostRepository) *ReplyService {
	return &ReplyService{replyRepo: replyRepo, postRepo: postRepo}
}

const maxReplyLen = 10000

func (s *ReplyService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	if in.Actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Sign in to reply")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxReplyLen {
		return nil, models.NewValidationError("Reply too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}
	if !post.Visible() {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}
	if post.Locked {
		return nil, models.NewValidationError("This topic is locked")
	}

	depth := 0
	if in.ParentReplyID != nil {
		parent, err := s.replyRepo.GetByID(ctx, *in.ParentReplyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Reply", *in.ParentReplyID)
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent reply belongs to a different post")
		}
		if parent.Depth >= models.MaxReplyDepth {
			return nil, models.NewValidationError("Maximum thread depth reached")
		}
		depth = parent.Depth + 1
	}

	reply := &models.Reply{
		PostID:        in.PostID,
		ParentReplyID: in.ParentReplyID,
		UserID:        in.Actor.ID,
		Content:       in.Content,
		Depth:         depth,
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	return s.replyRepo.GetByID(ctx, reply.ID)
}

// Thread returns the assembled reply forest for a post.
func (s *ReplyService) Thread(ctx context.Context, actor models.Actor, postID uint) ([]*ThreadNode, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	if !post.Visible() && !actor.IsModerator() && actor.ID != post.UserID {
		return nil, models.NewNotFoundError("Post", postID)
	}

	replies, err := s.replyRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return AssembleThread(replies), nil
}

func (s *ReplyService) UpdateReply(ctx context.Context, in UpdateReplyInput) (*models.Reply, error) {
	reply, err := s.replyRepo.GetByID(ctx, in.ReplyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reply", in.ReplyID)
		}
		return nil, err
	}
	if reply.UserID != in.Actor.ID {
		return nil, models.NewUnauthorizedError("You can only edit your own replies")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxReplyLen {
		return nil, models.NewValidationError("Reply too long (max 10000 characters)")
	}

	reply.Content = in.Content
	if err := s.replyRepo.Update(ctx, reply); err != nil {
		return nil, err
	}
	return s.replyRepo.GetByID(ctx, reply.ID)
}

// DeleteReply removes a reply. Owners may delete their own; moderators
// may delete anyone's.
func (s *ReplyService) DeleteReply(ctx context.Context, actor models.Actor, replyID uint) error {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Reply", replyID)
		}
		return err
	}
	if reply.UserID != actor.ID && !actor.IsModerator() {
		return models.NewUnauthorizedError("You can only delete your own replies")
	}
	return s.replyRepo.Delete(ctx, replyID)
}
