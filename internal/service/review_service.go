package service

import (
	"context"
	"errors"
	"log/slog"

	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

// ReviewService owns reviews of objectives and guides: user-created,
// publicly visible only once a moderator approves them.
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	directoryRepo repository.DirectoryRepository
}

type CreateReviewInput struct {
	Actor       models.Actor
	SubjectType string
	SubjectID   uint
	Rating      int
	Title       string
	Comment     string
}

// NewReviewService returns a new ReviewService.
func NewReviewService(reviewRepo repository.ReviewRepository, directoryRepo repository.DirectoryRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, directoryRepo: directoryRepo}
}

func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	if in.Actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Sign in to review")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}

	switch in.SubjectType {
	case models.ReviewSubjectObjective:
		if _, err := s.directoryRepo.GetObjective(ctx, in.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Objective", in.SubjectID)
			}
			return nil, err
		}
	case models.ReviewSubjectGuide:
		if _, err := s.directoryRepo.GetGuide(ctx, in.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Guide", in.SubjectID)
			}
			return nil, err
		}
	default:
		return nil, models.NewValidationError("subject_type must be objective or guide")
	}

	review := &models.Review{
		SubjectType: in.SubjectType,
		SubjectID:   in.SubjectID,
		UserID:      in.Actor.ID,
		Rating:      in.Rating,
		Title:       in.Title,
		Comment:     in.Comment,
		Approved:    false,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, review.ID)
}

// ListReviews returns reviews for a subject. Non-moderators only ever see
// approved reviews.
func (s *ReviewService) ListReviews(ctx context.Context, actor models.Actor, subjectType string, subjectID uint, limit, offset int) ([]*models.Review, error) {
	approvedOnly := !actor.IsModerator()
	return s.reviewRepo.ListBySubject(ctx, subjectType, subjectID, approvedOnly, limit, offset)
}

// reviewStatus maps the boolean approval column onto the state machine's
// synthetic statuses.
func reviewStatus(r *models.Review) string {
	if r.Approved {
		return reviewStatusApproved
	}
	return reviewStatusUnapproved
}

// Moderate publishes or unpublishes a review (approve/unapprove).
func (s *ReviewService) Moderate(ctx context.Context, actor models.Actor, reviewID uint, action string) (*models.Review, error) {
	if !actor.IsModerator() {
		return nil, models.NewUnauthorizedError("Only moderators can approve reviews")
	}
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Review", reviewID)
		}
		return nil, err
	}

	next, err := NextStatus(KindReview, reviewStatus(review), action)
	if err != nil {
		middleware.ModerationTransitions.WithLabelValues(string(KindReview), "rejected").Inc()
		return nil, err
	}

	if err := s.reviewRepo.SetApproved(ctx, reviewID, next == reviewStatusApproved); err != nil {
		return nil, err
	}

	middleware.ModerationTransitions.WithLabelValues(string(KindReview), "applied").Inc()
	slog.InfoContext(ctx, "review moderation",
		"review_id", reviewID, "action", action, "moderator_id", actor.ID)

	return s.reviewRepo.GetByID(ctx, reviewID)
}

// DeleteReview is the hard remove path, moderator only.
func (s *ReviewService) DeleteReview(ctx context.Context, actor models.Actor, reviewID uint) error {
	if !actor.IsModerator() {
		return models.NewUnauthorizedError("Only moderators can delete reviews")
	}
	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Review", reviewID)
		}
		return err
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

// MarkHelpful bumps a review's helpful counter, which also feeds the
// author's reputation.
func (s *ReviewService) MarkHelpful(ctx context.Context, actor models.Actor, reviewID uint) error {
	if actor.Anonymous() {
		return models.NewUnauthorizedError("Sign in to rate reviews")
	}
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Review", reviewID)
		}
		return err
	}
	if !review.Approved {
		return models.NewNotFoundError("Review", reviewID)
	}
	return s.reviewRepo.IncrementHelpful(ctx, reviewID)
}
