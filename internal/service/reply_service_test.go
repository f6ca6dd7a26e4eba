package service

import (
	"context"
	"strings"
	"testing"

	"wayfarer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// replyRepoStub is a stub for repository.ReplyRepository.
type replyRepoStub struct {
	createFn     func(context.Context, *models.Reply) error
	getByIDFn    func(context.Context, uint) (*models.Reply, error)
	listByPostFn func(context.Context, uint) ([]*models.Reply, error)
	updateFn     func(context.Context, *models.Reply) error
	deleteFn     func(context.Context, uint) error
}

func (s *replyRepoStub) Create(ctx context.Context, reply *models.Reply) error {
	return s.createFn(ctx, reply)
}
func (s *replyRepoStub) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	return s.getByIDFn(ctx, id)
}
func (s *replyRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *replyRepoStub) Update(ctx context.Context, reply *models.Reply) error {
	return s.updateFn(ctx, reply)
}
func (s *replyRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopReplyRepo() *replyRepoStub {
	return &replyRepoStub{
		createFn: func(_ context.Context, _ *models.Reply) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Reply, error) {
			return &models.Reply{ID: id, PostID: 1, UserID: member.ID}, nil
		},
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Reply, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Reply) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

func TestReplyService_CreateReply_Validation(t *testing.T) {
	t.Parallel()

	svc := NewReplyService(noopReplyRepo(), noopPostRepo())
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateReply(ctx, CreateReplyInput{Actor: anonymous, PostID: 1, Content: "hi"})
		assertUnauthorizedError(t, err)
	})

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateReply(ctx, CreateReplyInput{Actor: member, PostID: 1})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateReply(ctx, CreateReplyInput{
			Actor: member, PostID: 1, Content: strings.Repeat("x", 10001),
		})
		assertValidationError(t, err)
	})
}

func TestReplyService_CreateReply_LockedTopic(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Status: models.PostStatusActive, Locked: true}, nil
	}
	svc := NewReplyService(noopReplyRepo(), postRepo)

	_, err := svc.CreateReply(context.Background(), CreateReplyInput{Actor: member, PostID: 1, Content: "hi"})
	assertValidationError(t, err)
}

func TestReplyService_CreateReply_HiddenPost(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Status: models.PostStatusSpam}, nil
	}
	svc := NewReplyService(noopReplyRepo(), postRepo)

	_, err := svc.CreateReply(context.Background(), CreateReplyInput{Actor: member, PostID: 1, Content: "hi"})
	assertNotFoundError(t, err)
}

func TestReplyService_CreateReply_Depth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("child gets parent depth plus one", func(t *testing.T) {
		t.Parallel()
		replyRepo := noopReplyRepo()
		replyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Reply, error) {
			return &models.Reply{ID: id, PostID: 1, Depth: 1}, nil
		}
		var created *models.Reply
		replyRepo.createFn = func(_ context.Context, r *models.Reply) error {
			r.ID = 50
			created = r
			return nil
		}
		svc := NewReplyService(replyRepo, noopPostRepo())

		parentID := uint(9)
		_, err := svc.CreateReply(ctx, CreateReplyInput{
			Actor: member, PostID: 1, ParentReplyID: &parentID, Content: "nested",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, 2, created.Depth)
	})

	t.Run("replying at the depth limit is refused", func(t *testing.T) {
		t.Parallel()
		replyRepo := noopReplyRepo()
		replyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Reply, error) {
			return &models.Reply{ID: id, PostID: 1, Depth: models.MaxReplyDepth}, nil
		}
		svc := NewReplyService(replyRepo, noopPostRepo())

		parentID := uint(9)
		_, err := svc.CreateReply(ctx, CreateReplyInput{
			Actor: member, PostID: 1, ParentReplyID: &parentID, Content: "too deep",
		})
		assertValidationError(t, err)
	})

	t.Run("parent from another post is refused", func(t *testing.T) {
		t.Parallel()
		replyRepo := noopReplyRepo()
		replyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Reply, error) {
			return &models.Reply{ID: id, PostID: 2, Depth: 0}, nil
		}
		svc := NewReplyService(replyRepo, noopPostRepo())

		parentID := uint(9)
		_, err := svc.CreateReply(ctx, CreateReplyInput{
			Actor: member, PostID: 1, ParentReplyID: &parentID, Content: "crosspost",
		})
		assertValidationError(t, err)
	})
}

func TestReplyService_Thread(t *testing.T) {
	t.Parallel()

	replyRepo := noopReplyRepo()
	parentID := uint(1)
	replyRepo.listByPostFn = func(_ context.Context, _ uint) ([]*models.Reply, error) {
		return []*models.Reply{
			{ID: 1, PostID: 1, Content: "root"},
			{ID: 2, PostID: 1, ParentReplyID: &parentID, Content: "child"},
		}, nil
	}
	svc := NewReplyService(replyRepo, noopPostRepo())

	forest, err := svc.Thread(context.Background(), member, 1)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "child", forest[0].Children[0].Reply.Content)
}

func TestReplyService_UpdateReply_Ownership(t *testing.T) {
	t.Parallel()

	svc := NewReplyService(noopReplyRepo(), noopPostRepo())
	_, err := svc.UpdateReply(context.Background(), UpdateReplyInput{
		Actor: otherUser, ReplyID: 5, Content: "edited",
	})
	assertUnauthorizedError(t, err)
}

func TestReplyService_DeleteReply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stranger rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewReplyService(noopReplyRepo(), noopPostRepo())
		err := svc.DeleteReply(ctx, otherUser, 5)
		assertUnauthorizedError(t, err)
	})

	t.Run("moderator allowed", func(t *testing.T) {
		t.Parallel()
		repo := noopReplyRepo()
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewReplyService(repo, noopPostRepo())
		require.NoError(t, svc.DeleteReply(ctx, editor, 5))
		assert.True(t, deleted)
	})

	t.Run("missing reply", func(t *testing.T) {
		t.Parallel()
		repo := noopReplyRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Reply, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewReplyService(repo, noopPostRepo())
		err := svc.DeleteReply(ctx, member, 404)
		assertNotFoundError(t, err)
	})
}
