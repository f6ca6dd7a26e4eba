package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// contestRepoFake is an in-memory repository.ContestRepository.
type contestRepoFake struct {
	contests    map[uint]*models.Contest
	submissions map[uint]*models.ContestSubmission
	votes       map[[2]uint]*models.ContestVote
	nextID      uint
	voteID      uint
}

func newContestRepoFake(contests ...*models.Contest) *contestRepoFake {
	f := &contestRepoFake{
		contests:    make(map[uint]*models.Contest),
		submissions: make(map[uint]*models.ContestSubmission),
		votes:       make(map[[2]uint]*models.ContestVote),
		nextID:      1,
		voteID:      1,
	}
	for _, c := range contests {
		f.contests[c.ID] = c
	}
	return f
}

func (f *contestRepoFake) GetContest(_ context.Context, id uint) (*models.Contest, error) {
	c, ok := f.contests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *contestRepoFake) GetContestBySlug(_ context.Context, slug string) (*models.Contest, error) {
	for _, c := range f.contests {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *contestRepoFake) ListContests(_ context.Context, _, _ int) ([]*models.Contest, error) {
	var out []*models.Contest
	for _, c := range f.contests {
		out = append(out, c)
	}
	return out, nil
}

func (f *contestRepoFake) CreateSubmission(_ context.Context, s *models.ContestSubmission) error {
	s.ID = f.nextID
	f.nextID++
	f.submissions[s.ID] = s
	return nil
}

func (f *contestRepoFake) GetSubmission(_ context.Context, id uint) (*models.ContestSubmission, error) {
	s, ok := f.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *contestRepoFake) ListSubmissions(_ context.Context, contestID uint, status string, _, _ int) ([]*models.ContestSubmission, error) {
	var out []*models.ContestSubmission
	for _, s := range f.submissions {
		if s.ContestID == contestID && (status == "" || s.Status == status) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *contestRepoFake) UpdateSubmissionStatus(_ context.Context, id uint, status, reason string) error {
	s, ok := f.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	s.StatusReason = reason
	return nil
}

func (f *contestRepoFake) GetVote(_ context.Context, submissionID, userID uint) (*models.ContestVote, error) {
	v, ok := f.votes[[2]uint{submissionID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *contestRepoFake) CastVote(_ context.Context, submissionID, userID uint) error {
	f.votes[[2]uint{submissionID, userID}] = &models.ContestVote{
		ID: f.voteID, SubmissionID: submissionID, UserID: userID,
	}
	f.voteID++
	f.submissions[submissionID].VotesCount++
	return nil
}

func (f *contestRepoFake) RetractVote(_ context.Context, vote *models.ContestVote) error {
	delete(f.votes, [2]uint{vote.SubmissionID, vote.UserID})
	f.submissions[vote.SubmissionID].VotesCount--
	return nil
}

func (f *contestRepoFake) InvalidateVotes(_ context.Context, submissionID uint) error {
	for key, v := range f.votes {
		if v.SubmissionID == submissionID {
			delete(f.votes, key)
		}
	}
	f.submissions[submissionID].VotesCount = 0
	return nil
}

func (f *contestRepoFake) ContestTally(_ context.Context, contestID uint) (int64, error) {
	var tally int64
	for _, s := range f.submissions {
		if s.ContestID == contestID && s.Status == models.SubmissionStatusApproved {
			tally += int64(s.VotesCount)
		}
	}
	return tally, nil
}

func openContest(id uint, now time.Time) *models.Contest {
	return &models.Contest{
		ID:       id,
		Title:    "Autumn in the Apuseni",
		Slug:     "autumn-apuseni",
		StartsAt: now.Add(-24 * time.Hour),
		EndsAt:   now.Add(24 * time.Hour),
	}
}

func newTestContestService(t *testing.T, contests ...*models.Contest) (*ContestService, *contestRepoFake) {
	t.Helper()
	fake := newContestRepoFake(contests...)
	images := NewImageService(&config.Config{ImageUploadDir: t.TempDir(), ImageMaxUploadSizeMB: 5})
	return NewContestService(fake, images), fake
}

func testPhotoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 480, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 480; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestContestService_SubmitEntry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, _ := newTestContestService(t, openContest(1, now))
	ctx := context.Background()
	photo := testPhotoPNG(t)

	t.Run("anonymous", func(t *testing.T) {
		_, err := svc.SubmitEntry(ctx, SubmitEntryInput{Actor: anonymous, ContestID: 1, Title: "Sunrise", Image: photo})
		assertUnauthorizedError(t, err)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.SubmitEntry(ctx, SubmitEntryInput{Actor: member, ContestID: 1, Image: photo})
		assertValidationError(t, err)
	})

	t.Run("non-image payload", func(t *testing.T) {
		_, err := svc.SubmitEntry(ctx, SubmitEntryInput{Actor: member, ContestID: 1, Title: "Sunrise", Image: []byte("just text")})
		assertValidationError(t, err)
	})

	t.Run("accepted entry starts pending", func(t *testing.T) {
		sub, err := svc.SubmitEntry(ctx, SubmitEntryInput{Actor: member, ContestID: 1, Title: "Sunrise", Image: photo})
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionStatusPending, sub.Status)
		assert.NotEmpty(t, sub.ImageKey)
		assert.Contains(t, sub.ImageKey, ".webp")
	})
}

func TestContestService_SubmitEntry_ClosedContest(t *testing.T) {
	t.Parallel()

	now := time.Now()
	closed := &models.Contest{
		ID:       2,
		Title:    "Winter Trails",
		Slug:     "winter-trails",
		StartsAt: now.Add(-48 * time.Hour),
		EndsAt:   now.Add(-24 * time.Hour),
	}
	svc, _ := newTestContestService(t, closed)

	_, err := svc.SubmitEntry(context.Background(), SubmitEntryInput{
		Actor: member, ContestID: 2, Title: "Late entry", Image: testPhotoPNG(t),
	})
	assertValidationError(t, err)
}

func TestContestService_VoteEntry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, fake := newTestContestService(t, openContest(1, now))
	ctx := context.Background()

	approved := &models.ContestSubmission{ContestID: 1, UserID: 3, Title: "Peaks", Status: models.SubmissionStatusApproved}
	require.NoError(t, fake.CreateSubmission(ctx, approved))
	pending := &models.ContestSubmission{ContestID: 1, UserID: 3, Title: "Lakes", Status: models.SubmissionStatusPending}
	require.NoError(t, fake.CreateSubmission(ctx, pending))

	t.Run("pending entry looks missing", func(t *testing.T) {
		_, _, err := svc.VoteEntry(ctx, member, pending.ID)
		assertNotFoundError(t, err)
	})

	t.Run("vote toggles", func(t *testing.T) {
		sub, result, err := svc.VoteEntry(ctx, member, approved.ID)
		require.NoError(t, err)
		assert.Equal(t, VoteResultCast, result)
		assert.Equal(t, 1, sub.VotesCount)

		sub, result, err = svc.VoteEntry(ctx, member, approved.ID)
		require.NoError(t, err)
		assert.Equal(t, VoteResultRetracted, result)
		assert.Equal(t, 0, sub.VotesCount)
	})
}

func TestContestService_ModerateEntry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, fake := newTestContestService(t, openContest(1, now))
	ctx := context.Background()

	newPending := func(title string) *models.ContestSubmission {
		s := &models.ContestSubmission{ContestID: 1, UserID: 3, Title: title, Status: models.SubmissionStatusPending}
		require.NoError(t, fake.CreateSubmission(ctx, s))
		return s
	}

	t.Run("non-moderator", func(t *testing.T) {
		s := newPending("a")
		_, err := svc.ModerateEntry(ctx, member, s.ID, ActionApprove, "", false)
		assertUnauthorizedError(t, err)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		s := newPending("b")
		_, err := svc.ModerateEntry(ctx, editor, s.ID, ActionReject, "  ", false)
		assertValidationError(t, err)
	})

	t.Run("remove requires fraud confirmation", func(t *testing.T) {
		s := newPending("c")
		_, err := svc.ModerateEntry(ctx, editor, s.ID, ActionApprove, "", false)
		require.NoError(t, err)
		_, err = svc.ModerateEntry(ctx, editor, s.ID, ActionRemove, "vote ring", false)
		assertValidationError(t, err)
	})

	t.Run("removing a pending entry is invalid", func(t *testing.T) {
		s := newPending("d")
		_, err := svc.ModerateEntry(ctx, editor, s.ID, ActionRemove, "vote ring", true)
		require.Error(t, err)
		assert.True(t, models.IsCode(err, "INVALID_TRANSITION"))
	})
}

func TestContestService_RemoveWipesVotesAndTally(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, fake := newTestContestService(t, openContest(1, now))
	ctx := context.Background()

	honest := &models.ContestSubmission{ContestID: 1, UserID: 3, Title: "Honest", Status: models.SubmissionStatusApproved}
	require.NoError(t, fake.CreateSubmission(ctx, honest))
	fraud := &models.ContestSubmission{ContestID: 1, UserID: 4, Title: "Fraud", Status: models.SubmissionStatusApproved}
	require.NoError(t, fake.CreateSubmission(ctx, fraud))

	_, _, err := svc.VoteEntry(ctx, member, honest.ID)
	require.NoError(t, err)
	_, _, err = svc.VoteEntry(ctx, member, fraud.ID)
	require.NoError(t, err)
	_, _, err = svc.VoteEntry(ctx, otherUser, fraud.ID)
	require.NoError(t, err)

	tally, err := svc.Tally(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tally)

	removed, err := svc.ModerateEntry(ctx, editor, fraud.ID, ActionRemove, "coordinated voting", true)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusRemoved, removed.Status)
	assert.Equal(t, "coordinated voting", removed.StatusReason)
	assert.Equal(t, 0, removed.VotesCount)

	// Only the honest entry's vote survives, and the tally reflects that
	// before ModerateEntry ever returned.
	tally, err = svc.Tally(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tally)
}
