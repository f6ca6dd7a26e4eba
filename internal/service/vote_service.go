package service

import (
	"context"
	"errors"

	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

// VoteService applies reply votes with toggle semantics: at most one
// active vote per (reply, voter); repeating a vote retracts it, casting
// the opposite type replaces it.
type VoteService struct {
	voteRepo  repository.VoteRepository
	replyRepo repository.ReplyRepository
}

// Vote outcomes, reported back to the handler and to metrics.
const (
	VoteResultCast      = "cast"
	VoteResultRetracted = "retracted"
	VoteResultSwitched  = "switched"
)

// NewVoteService returns a new VoteService.
func NewVoteService(voteRepo repository.VoteRepository, replyRepo repository.ReplyRepository) *VoteService {
	return &VoteService{voteRepo: voteRepo, replyRepo: replyRepo}
}

// CastVote records actor's vote on a reply and returns the refreshed reply
// together with the outcome.
func (s *VoteService) CastVote(ctx context.Context, actor models.Actor, replyID uint, voteType string) (*models.Reply, string, error) {
	if actor.Anonymous() {
		return nil, "", models.NewUnauthorizedError("Sign in to vote")
	}
	if voteType != models.VoteUpvote && voteType != models.VoteDownvote {
		return nil, "", models.NewValidationError("vote_type must be upvote or downvote")
	}

	if _, err := s.replyRepo.GetByID(ctx, replyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.NewNotFoundError("Reply", replyID)
		}
		return nil, "", err
	}

	result := VoteResultCast
	existing, err := s.voteRepo.Get(ctx, replyID, actor.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.voteRepo.Cast(ctx, replyID, actor.ID, voteType)
	case err != nil:
		return nil, "", err
	case existing.VoteType == voteType:
		// Toggle off.
		result = VoteResultRetracted
		err = s.voteRepo.Retract(ctx, existing)
	default:
		result = VoteResultSwitched
		err = s.voteRepo.Switch(ctx, existing, voteType)
	}
	if err != nil {
		return nil, "", err
	}

	middleware.VotesCast.WithLabelValues(result).Inc()

	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		return nil, "", err
	}
	return reply, result, nil
}

// VoteState reports the actor's current vote on a reply: upvote, downvote
// or "" for none.
func (s *VoteService) VoteState(ctx context.Context, actor models.Actor, replyID uint) (string, error) {
	if actor.Anonymous() {
		return "", nil
	}
	vote, err := s.voteRepo.Get(ctx, replyID, actor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return vote.VoteType, nil
}
