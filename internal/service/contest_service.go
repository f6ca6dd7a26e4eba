package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

// ContestService runs the photo contests: public entry submission through
// the image pipeline, one vote per user per approved entry, and moderation
// with fraud handling that wipes a removed entry's votes.
type ContestService struct {
	contestRepo repository.ContestRepository
	images      *ImageService
	now         func() time.Time
}

// NewContestService returns a new ContestService.
func NewContestService(contestRepo repository.ContestRepository, images *ImageService) *ContestService {
	return &ContestService{contestRepo: contestRepo, images: images, now: time.Now}
}

type SubmitEntryInput struct {
	Actor       models.Actor
	ContestID   uint
	Title       string
	Image       []byte
	ContentType string
}

// GetContest returns a contest by id.
func (s *ContestService) GetContest(ctx context.Context, contestID uint) (*models.Contest, error) {
	contest, err := s.contestRepo.GetContest(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Contest", contestID)
		}
		return nil, err
	}
	return contest, nil
}

// GetContestBySlug returns a contest by its slug.
func (s *ContestService) GetContestBySlug(ctx context.Context, slug string) (*models.Contest, error) {
	contest, err := s.contestRepo.GetContestBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Contest", slug)
		}
		return nil, err
	}
	return contest, nil
}

// ListContests returns contests, newest first.
func (s *ContestService) ListContests(ctx context.Context, limit, offset int) ([]*models.Contest, error) {
	return s.contestRepo.ListContests(ctx, limit, offset)
}

// SubmitEntry accepts a photo entry into an open contest. The image goes
// through the normalization pipeline before anything is persisted.
func (s *ContestService) SubmitEntry(ctx context.Context, in SubmitEntryInput) (*models.ContestSubmission, error) {
	if in.Actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Sign in to enter the contest")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}

	contest, err := s.GetContest(ctx, in.ContestID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if now.Before(contest.StartsAt) || now.After(contest.EndsAt) {
		return nil, models.NewValidationError("Contest is not accepting entries")
	}

	imageKey, err := s.images.Store(in.Image, in.ContentType)
	if err != nil {
		return nil, err
	}

	submission := &models.ContestSubmission{
		ContestID: in.ContestID,
		UserID:    in.Actor.ID,
		Title:     strings.TrimSpace(in.Title),
		ImageKey:  imageKey,
		Status:    models.SubmissionStatusPending,
	}
	if err := s.contestRepo.CreateSubmission(ctx, submission); err != nil {
		if rmErr := s.images.Remove(imageKey); rmErr != nil {
			slog.WarnContext(ctx, "orphaned contest image", "image_key", imageKey, "error", rmErr)
		}
		return nil, err
	}
	return s.contestRepo.GetSubmission(ctx, submission.ID)
}

// ListEntries returns a contest's entries, top-voted first. Non-moderators
// see only approved entries.
func (s *ContestService) ListEntries(ctx context.Context, actor models.Actor, contestID uint, status string, limit, offset int) ([]*models.ContestSubmission, error) {
	if !actor.IsModerator() {
		status = models.SubmissionStatusApproved
	}
	return s.contestRepo.ListSubmissions(ctx, contestID, status, limit, offset)
}

// VoteEntry toggles the actor's vote on an approved entry. A second vote on
// the same entry retracts the first. Returns the refreshed submission.
func (s *ContestService) VoteEntry(ctx context.Context, actor models.Actor, submissionID uint) (*models.ContestSubmission, string, error) {
	if actor.Anonymous() {
		return nil, "", models.NewUnauthorizedError("Sign in to vote")
	}
	submission, err := s.contestRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.NewNotFoundError("Submission", submissionID)
		}
		return nil, "", err
	}
	if submission.Status != models.SubmissionStatusApproved {
		return nil, "", models.NewNotFoundError("Submission", submissionID)
	}

	contest, err := s.GetContest(ctx, submission.ContestID)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	if now.Before(contest.StartsAt) || now.After(contest.EndsAt) {
		return nil, "", models.NewValidationError("Voting is closed for this contest")
	}

	var result string
	existing, err := s.contestRepo.GetVote(ctx, submissionID, actor.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.contestRepo.CastVote(ctx, submissionID, actor.ID); err != nil {
			return nil, "", err
		}
		result = VoteResultCast
	case err != nil:
		return nil, "", err
	default:
		if err := s.contestRepo.RetractVote(ctx, existing); err != nil {
			return nil, "", err
		}
		result = VoteResultRetracted
	}

	middleware.VotesCast.WithLabelValues(result).Inc()

	refreshed, err := s.contestRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, "", err
	}
	return refreshed, result, nil
}

// ModerateEntry applies approve, reject or remove to a submission. Reject and
// remove require a reason; remove additionally requires fraud confirmation,
// wipes the entry's votes and recomputes the contest tally before returning.
func (s *ContestService) ModerateEntry(ctx context.Context, actor models.Actor, submissionID uint, action, reason string, fraudConfirmed bool) (*models.ContestSubmission, error) {
	if !actor.IsModerator() {
		return nil, models.NewUnauthorizedError("Only moderators can judge entries")
	}
	submission, err := s.contestRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Submission", submissionID)
		}
		return nil, err
	}

	switch action {
	case ActionReject:
		if strings.TrimSpace(reason) == "" {
			return nil, models.NewValidationError("A reason is required to reject an entry")
		}
	case ActionRemove:
		if strings.TrimSpace(reason) == "" {
			return nil, models.NewValidationError("A reason is required to remove an entry")
		}
		if !fraudConfirmed {
			return nil, models.NewValidationError("Removal requires fraud confirmation")
		}
	}

	next, err := NextStatus(KindSubmission, submission.Status, action)
	if err != nil {
		middleware.ModerationTransitions.WithLabelValues(string(KindSubmission), "rejected").Inc()
		return nil, err
	}

	if err := s.contestRepo.UpdateSubmissionStatus(ctx, submissionID, next, strings.TrimSpace(reason)); err != nil {
		return nil, err
	}

	if next == models.SubmissionStatusRemoved {
		if err := s.contestRepo.InvalidateVotes(ctx, submissionID); err != nil {
			return nil, err
		}
		tally, err := s.contestRepo.ContestTally(ctx, submission.ContestID)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "contest tally recomputed",
			"contest_id", submission.ContestID, "submission_id", submissionID, "tally", tally)
	}

	middleware.ModerationTransitions.WithLabelValues(string(KindSubmission), "applied").Inc()
	slog.InfoContext(ctx, "contest moderation",
		"submission_id", submissionID, "action", action,
		"from", submission.Status, "to", next, "moderator_id", actor.ID)

	return s.contestRepo.GetSubmission(ctx, submissionID)
}

// Tally returns the live vote total across a contest's approved entries.
func (s *ContestService) Tally(ctx context.Context, contestID uint) (int64, error) {
	if _, err := s.GetContest(ctx, contestID); err != nil {
		return 0, err
	}
	return s.contestRepo.ContestTally(ctx, contestID)
}
