package service

import (
	"context"
	"testing"

	"wayfarer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// voteRepoFake is an in-memory repository.VoteRepository keeping the tallies
// alongside the vote rows, so toggle sequences can be asserted end to end.
type voteRepoFake struct {
	votes   map[[2]uint]*models.ReplyVote
	replies map[uint]*models.Reply
	nextID  uint
}

func newVoteRepoFake(replies ...*models.Reply) *voteRepoFake {
	f := &voteRepoFake{
		votes:   make(map[[2]uint]*models.ReplyVote),
		replies: make(map[uint]*models.Reply),
		nextID:  1,
	}
	for _, r := range replies {
		f.replies[r.ID] = r
	}
	return f
}

func (f *voteRepoFake) Get(_ context.Context, replyID, userID uint) (*models.ReplyVote, error) {
	v, ok := f.votes[[2]uint{replyID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *voteRepoFake) Cast(_ context.Context, replyID, userID uint, voteType string) error {
	f.votes[[2]uint{replyID, userID}] = &models.ReplyVote{
		ID: f.nextID, ReplyID: replyID, UserID: userID, VoteType: voteType,
	}
	f.nextID++
	f.bump(replyID, voteType, 1)
	return nil
}

func (f *voteRepoFake) Retract(_ context.Context, vote *models.ReplyVote) error {
	delete(f.votes, [2]uint{vote.ReplyID, vote.UserID})
	f.bump(vote.ReplyID, vote.VoteType, -1)
	return nil
}

func (f *voteRepoFake) Switch(_ context.Context, vote *models.ReplyVote, newType string) error {
	f.bump(vote.ReplyID, vote.VoteType, -1)
	f.bump(vote.ReplyID, newType, 1)
	vote.VoteType = newType
	return nil
}

func (f *voteRepoFake) bump(replyID uint, voteType string, delta int) {
	r := f.replies[replyID]
	if voteType == models.VoteUpvote {
		r.Upvotes += delta
	} else {
		r.Downvotes += delta
	}
}

// replyRepoFromVoteFake exposes the fake's replies through ReplyRepository.
type replyRepoFromVoteFake struct {
	*voteRepoFake
}

func (f replyRepoFromVoteFake) Create(_ context.Context, _ *models.Reply) error { return nil }
func (f replyRepoFromVoteFake) GetByID(_ context.Context, id uint) (*models.Reply, error) {
	r, ok := f.replies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}
func (f replyRepoFromVoteFake) ListByPost(_ context.Context, _ uint) ([]*models.Reply, error) {
	return nil, nil
}
func (f replyRepoFromVoteFake) Update(_ context.Context, _ *models.Reply) error { return nil }
func (f replyRepoFromVoteFake) Delete(_ context.Context, _ uint) error          { return nil }

func newTestVoteService(replies ...*models.Reply) (*VoteService, *voteRepoFake) {
	fake := newVoteRepoFake(replies...)
	return NewVoteService(fake, replyRepoFromVoteFake{fake}), fake
}

func TestVoteService_CastVote_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestVoteService(&models.Reply{ID: 1})
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		_, _, err := svc.CastVote(ctx, anonymous, 1, models.VoteUpvote)
		assertUnauthorizedError(t, err)
	})

	t.Run("bad vote type", func(t *testing.T) {
		t.Parallel()
		_, _, err := svc.CastVote(ctx, member, 1, "sideways")
		assertValidationError(t, err)
	})

	t.Run("missing reply", func(t *testing.T) {
		t.Parallel()
		_, _, err := svc.CastVote(ctx, member, 404, models.VoteUpvote)
		assertNotFoundError(t, err)
	})
}

func TestVoteService_CastVote_ToggleSequence(t *testing.T) {
	t.Parallel()

	svc, _ := newTestVoteService(&models.Reply{ID: 1})
	ctx := context.Background()

	// First upvote lands.
	reply, result, err := svc.CastVote(ctx, member, 1, models.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResultCast, result)
	assert.Equal(t, 1, reply.Upvotes)
	assert.Equal(t, 0, reply.Downvotes)

	// Repeating the same vote toggles it off.
	reply, result, err = svc.CastVote(ctx, member, 1, models.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResultRetracted, result)
	assert.Equal(t, 0, reply.Upvotes)

	// The sequence is idempotent: upvote again and we are back where the
	// first vote left us.
	reply, result, err = svc.CastVote(ctx, member, 1, models.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResultCast, result)
	assert.Equal(t, 1, reply.Upvotes)

	// Opposite vote switches instead of stacking.
	reply, result, err = svc.CastVote(ctx, member, 1, models.VoteDownvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResultSwitched, result)
	assert.Equal(t, 0, reply.Upvotes)
	assert.Equal(t, 1, reply.Downvotes)

	state, err := svc.VoteState(ctx, member, 1)
	require.NoError(t, err)
	assert.Equal(t, models.VoteDownvote, state)
}

func TestVoteService_CastVote_IndependentVoters(t *testing.T) {
	t.Parallel()

	svc, _ := newTestVoteService(&models.Reply{ID: 1})
	ctx := context.Background()

	_, _, err := svc.CastVote(ctx, member, 1, models.VoteUpvote)
	require.NoError(t, err)
	reply, _, err := svc.CastVote(ctx, otherUser, 1, models.VoteUpvote)
	require.NoError(t, err)

	assert.Equal(t, 2, reply.Upvotes)

	// One voter retracting leaves the other's vote in place.
	reply, result, err := svc.CastVote(ctx, member, 1, models.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResultRetracted, result)
	assert.Equal(t, 1, reply.Upvotes)
}

func TestVoteService_VoteState_Anonymous(t *testing.T) {
	t.Parallel()

	svc, _ := newTestVoteService(&models.Reply{ID: 1})
	state, err := svc.VoteState(context.Background(), anonymous, 1)
	require.NoError(t, err)
	assert.Empty(t, state)
}
