package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wayfarer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	getBySlugFn      func(context.Context, string) (*models.Post, error)
	listFn           func(context.Context, string, int, int) ([]*models.Post, error)
	updateFn         func(context.Context, *models.Post) error
	updateStatusFn   func(context.Context, uint, string) error
	setFlagsFn       func(context.Context, uint, *bool, *bool) error
	incrementViewsFn func(context.Context, uint) error
	deleteCascadeFn  func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) List(ctx context.Context, category string, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, category, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateStatus(ctx context.Context, id uint, status string) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *postRepoStub) SetFlags(ctx context.Context, id uint, pinned, locked *bool) error {
	return s.setFlagsFn(ctx, id, pinned, locked)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Status: models.PostStatusActive}, nil
		},
		getBySlugFn: func(_ context.Context, _ string) (*models.Post, error) {
			return &models.Post{ID: 1, Status: models.PostStatusActive}, nil
		},
		listFn:           func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Post) error { return nil },
		updateStatusFn:   func(_ context.Context, _ uint, _ string) error { return nil },
		setFlagsFn:       func(_ context.Context, _ uint, _, _ *bool) error { return nil },
		incrementViewsFn: func(_ context.Context, _ uint) error { return nil },
		deleteCascadeFn:  func(_ context.Context, _ uint) error { return nil },
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

var (
	member    = models.Actor{ID: 1, Role: models.RoleUser}
	otherUser = models.Actor{ID: 2, Role: models.RoleUser}
	editor    = models.Actor{ID: 10, Role: models.RoleEditor}
	admin     = models.Actor{ID: 11, Role: models.RoleAdmin}
	anonymous = models.Actor{}
)

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{
			name:  "empty title",
			input: CreatePostInput{Actor: member, Category: "trails", Content: "some content"},
		},
		{
			name: "title too long",
			input: CreatePostInput{
				Actor:    member,
				Title:    strings.Repeat("x", 301),
				Category: "trails",
				Content:  "some content",
			},
		},
		{
			name:  "empty category",
			input: CreatePostInput{Actor: member, Title: "A title", Content: "some content"},
		},
		{
			name:  "empty content",
			input: CreatePostInput{Actor: member, Title: "A title", Category: "trails"},
		},
		{
			name: "content too long",
			input: CreatePostInput{
				Actor:    member,
				Title:    "A title",
				Category: "trails",
				Content:  strings.Repeat("x", 50001),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, tt.input)
			assertValidationError(t, err)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{
			Actor: anonymous, Title: "A title", Category: "trails", Content: "hi",
		})
		assertUnauthorizedError(t, err)
	})
}

func TestPostService_CreatePost_SlugIsUnique(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var slugs []string
	repo.createFn = func(_ context.Context, p *models.Post) error {
		slugs = append(slugs, p.Slug)
		p.ID = uint(len(slugs))
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Slug: slugs[id-1], Status: models.PostStatusActive}, nil
	}

	svc := NewPostService(repo)
	ctx := context.Background()
	in := CreatePostInput{Actor: member, Title: "Hiking the Fagaras Ridge!", Category: "trails", Content: "notes"}

	first, err := svc.CreatePost(ctx, in)
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, in)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.Slug, "hiking-the-fagaras-ridge-"))
	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestPostService_GetPost_HiddenVisibility(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: member.ID, Status: models.PostStatusDeleted}, nil
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	t.Run("stranger gets not found", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetPost(ctx, otherUser, 7)
		assertNotFoundError(t, err)
	})

	t.Run("owner still sees it", func(t *testing.T) {
		t.Parallel()
		post, err := svc.GetPost(ctx, member, 7)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusDeleted, post.Status)
	})

	t.Run("moderator still sees it", func(t *testing.T) {
		t.Parallel()
		post, err := svc.GetPost(ctx, editor, 7)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusDeleted, post.Status)
	})
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: member.ID, Status: models.PostStatusActive}, nil
	}
	svc := NewPostService(repo)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		Actor: otherUser, PostID: 3, Title: "Edited", Content: "edited",
	})
	assertUnauthorizedError(t, err)
}

func TestPostService_Moderate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("non-moderator rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo())
		_, err := svc.Moderate(ctx, member, 1, ActionHide)
		assertUnauthorizedError(t, err)
	})

	t.Run("hide active post", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		var gotStatus string
		repo.updateStatusFn = func(_ context.Context, _ uint, status string) error {
			gotStatus = status
			return nil
		}
		svc := NewPostService(repo)
		_, err := svc.Moderate(ctx, editor, 1, ActionHide)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusDeleted, gotStatus)
	})

	t.Run("restore active post is invalid", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo())
		_, err := svc.Moderate(ctx, editor, 1, ActionRestore)
		require.Error(t, err)
		assert.True(t, models.IsCode(err, "INVALID_TRANSITION"))
	})
}

func TestPostService_DeletePost_AdminOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("editor rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo())
		err := svc.DeletePost(ctx, editor, 1)
		assertUnauthorizedError(t, err)
	})

	t.Run("admin cascades", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		deleted := false
		repo.deleteCascadeFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewPostService(repo)
		require.NoError(t, svc.DeletePost(ctx, admin, 1))
		assert.True(t, deleted)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewPostService(repo)
		err := svc.DeletePost(ctx, admin, 404)
		assertNotFoundError(t, err)
	})
}

func TestNewSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		title  string
		prefix string
	}{
		{"basic", "Best views in Brasov", "best-views-in-brasov-"},
		{"punctuation stripped", "What?! Where... & how", "what-where-how-"},
		{"symbols only falls back", "!!!", "post-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			slug := newSlug(tt.title)
			assert.True(t, strings.HasPrefix(slug, tt.prefix), "got %q", slug)
			assert.LessOrEqual(t, len(slug), 89)
		})
	}
}
