package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostService owns forum post lifecycle: creation and owner edits on one
// authority track, moderator status transitions on the other.
type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	Actor    models.Actor
	Title    string
	Category string
	Content  string
}

type UpdatePostInput struct {
	Actor   models.Actor
	PostID  uint
	Title   string
	Content string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Sign in to post")
	}

	const maxTitleLen = 300
	const maxContentLen = 50000

	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Category == "" {
		return nil, models.NewValidationError("Category is required")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post := &models.Post{
		Title:    in.Title,
		Slug:     newSlug(in.Title),
		Category: in.Category,
		Content:  in.Content,
		UserID:   in.Actor.ID,
		Status:   models.PostStatusActive,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost fetches a post for viewing. Hidden and spam posts stay visible
// to moderators and the owner; everyone else gets NotFound rather than a
// hint that the post exists. Views are counted best-effort.
func (s *PostService) GetPost(ctx context.Context, actor models.Actor, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	if !post.Visible() && !actor.IsModerator() && actor.ID != post.UserID {
		return nil, models.NewNotFoundError("Post", id)
	}

	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		slog.WarnContext(ctx, "view counter update failed", "post_id", id, "err", err)
	}
	return post, nil
}

func (s *PostService) GetPostBySlug(ctx context.Context, actor models.Actor, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		return nil, err
	}
	return s.GetPost(ctx, actor, post.ID)
}

func (s *PostService) ListPosts(ctx context.Context, category string, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, category, limit, offset)
}

// UpdatePost applies an owner content edit. Moderators do not get edit
// rights through this path; content ownership and status authority are
// separate tracks.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}
	if post.UserID != in.Actor.ID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}
	if in.Title != "" {
		post.Title = in.Title
	}
	if in.Content != "" {
		post.Content = in.Content
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// Moderate runs an admin status transition on a post (hide, restore,
// mark_spam, unmark_spam).
func (s *PostService) Moderate(ctx context.Context, actor models.Actor, postID uint, action string) (*models.Post, error) {
	if !actor.IsModerator() {
		return nil, models.NewUnauthorizedError("Only moderators can change post status")
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}

	next, err := NextStatus(KindForumPost, post.Status, action)
	if err != nil {
		middleware.ModerationTransitions.WithLabelValues(string(KindForumPost), "rejected").Inc()
		return nil, err
	}
	if err := s.postRepo.UpdateStatus(ctx, postID, next); err != nil {
		return nil, err
	}

	middleware.ModerationTransitions.WithLabelValues(string(KindForumPost), "applied").Inc()
	slog.InfoContext(ctx, "post status transition",
		"post_id", postID, "from", post.Status, "to", next, "action", action, "moderator_id", actor.ID)

	return s.postRepo.GetByID(ctx, postID)
}

// SetFlags toggles pinned/locked. Flags are orthogonal to status and can
// be flipped regardless of it.
func (s *PostService) SetFlags(ctx context.Context, actor models.Actor, postID uint, pinned, locked *bool) (*models.Post, error) {
	if !actor.IsModerator() {
		return nil, models.NewUnauthorizedError("Only moderators can pin or lock posts")
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	if err := s.postRepo.SetFlags(ctx, postID, pinned, locked); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// DeletePost hard-deletes a post and cascades to its replies, votes and
// reports as one transaction. Admin only; regular moderation uses the
// hide transition instead.
func (s *PostService) DeletePost(ctx context.Context, actor models.Actor, postID uint) error {
	if !actor.IsAdmin() {
		return models.NewUnauthorizedError("Only admins can hard-delete posts")
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return err
	}
	if err := s.postRepo.DeleteCascade(ctx, postID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "post hard-deleted with replies", "post_id", postID, "admin_id", actor.ID)
	return nil
}

// newSlug derives a URL slug from the title with a short random suffix so
// equal titles never collide.
func newSlug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 80 {
		slug = slug[:80]
	}
	if slug == "" {
		slug = "post"
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
}
