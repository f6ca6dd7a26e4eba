package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wayfarer/internal/cache"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

// Tier is a named reputation bracket.
type Tier struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	Threshold int    `json:"points_threshold"`
}

// Reputation is the derived reputation view of a user.
type Reputation struct {
	UserID uint `json:"user_id"`
	Points int  `json:"points"`
	Tier   Tier `json:"tier"`
}

// tiers is ordered by ascending threshold; selection picks the highest
// threshold not exceeding the user's points.
var tiers = []Tier{
	{Name: "Wanderer", Icon: "footprints", Color: "#8d99ae", Threshold: 0},
	{Name: "Explorer", Icon: "compass", Color: "#2a9d8f", Threshold: 50},
	{Name: "Pathfinder", Icon: "map", Color: "#457b9d", Threshold: 150},
	{Name: "Trailblazer", Icon: "mountain", Color: "#e76f51", Threshold: 400},
	{Name: "Voyager", Icon: "globe", Color: "#b5179e", Threshold: 1000},
}

// Weighting of the activity counters into reputation points.
const (
	pointsPerPost    = 5
	pointsPerReply   = 2
	pointsPerHelpful = 3
)

// reputationTTL bounds staleness of the cached value. Reputation is
// derived, not authoritative, so a short window is fine.
const reputationTTL = 5 * time.Minute

// Points computes a user's reputation points from their activity counters.
func Points(u *models.User) int {
	return u.PostsCount*pointsPerPost + u.RepliesCount*pointsPerReply + u.HelpfulCount*pointsPerHelpful
}

// TierForPoints picks the highest tier whose threshold does not exceed the
// given points. Pure function; negative points clamp to the base tier.
func TierForPoints(points int) Tier {
	selected := tiers[0]
	for _, t := range tiers {
		if points >= t.Threshold {
			selected = t
		}
	}
	return selected
}

// ReputationService derives tiered reputation from user activity counters.
type ReputationService struct {
	userRepo repository.UserRepository
}

// NewReputationService returns a new ReputationService.
func NewReputationService(userRepo repository.UserRepository) *ReputationService {
	return &ReputationService{userRepo: userRepo}
}

// ReputationFor resolves a user's reputation, served from cache for up to
// five minutes.
func (s *ReputationService) ReputationFor(ctx context.Context, userID uint) (*Reputation, error) {
	var rep Reputation
	key := fmt.Sprintf("reputation:%d", userID)
	err := cache.CacheAside(ctx, key, &rep, reputationTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", userID)
			}
			return err
		}
		points := Points(user)
		rep = Reputation{
			UserID: userID,
			Points: points,
			Tier:   TierForPoints(points),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
