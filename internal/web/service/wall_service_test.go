package service_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/internal/web/cache"
	"github.com/central-university-dev/go-wallpost/internal/web/service"
	"github.com/central-university-dev/go-wallpost/pkg"
)

type fakeWallReader struct {
	posts   []*models.WallPost
	authors []*models.User
	calls   int
}

func (f *fakeWallReader) ListPublished(_ context.Context, _, _ string) ([]*models.WallPost, []*models.User, error) {
	f.calls++
	return f.posts, f.authors, nil
}

func (f *fakeWallReader) GetPublished(_ context.Context, _ int64) (*models.WallPost, *models.User, error) {
	f.calls++

	if len(f.posts) == 0 {
		return nil, nil, assert.AnError
	}

	return f.posts[0], f.authors[0], nil
}

type fakeWallCache struct {
	feeds       map[string][]*models.WallPost
	invalidated bool
}

func newFakeWallCache() *fakeWallCache {
	return &fakeWallCache{feeds: make(map[string][]*models.WallPost)}
}

func (f *fakeWallCache) GetFeed(_ context.Context, key string) ([]*models.WallPost, error) {
	return f.feeds[key], nil
}

func (f *fakeWallCache) SetFeed(_ context.Context, key string, posts []*models.WallPost) error {
	f.feeds[key] = posts
	return nil
}

func (f *fakeWallCache) Invalidate(_ context.Context) error {
	f.invalidated = true
	f.feeds = make(map[string][]*models.WallPost)

	return nil
}

func TestListPosts_DecoratesAuthor(t *testing.T) {
	repo := &fakeWallReader{
		posts: []*models.WallPost{{ID: 1, Content: "привет"}},
		authors: []*models.User{
			{TelegramID: "7", FirstName: "Вася", PostCount: 20, AvatarURL: "https://files.example/a.jpg"},
		},
	}

	svc := service.NewWallService(repo, nil, "100", pkg.NewLogger(io.Discard))

	posts, err := svc.ListPosts(context.Background(), "", "")

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Вася", posts[0].AuthorName)
	assert.Equal(t, models.RankForCount(20), posts[0].AuthorRank)
	assert.Equal(t, "https://files.example/a.jpg", posts[0].AuthorAvatarURL)
}

func TestListPosts_HidesAnonymousAuthor(t *testing.T) {
	repo := &fakeWallReader{
		posts:   []*models.WallPost{{ID: 1, Content: "секрет", IsAnonymous: true}},
		authors: []*models.User{{TelegramID: "7", FirstName: "Вася"}},
	}

	svc := service.NewWallService(repo, nil, "100", pkg.NewLogger(io.Discard))

	posts, err := svc.ListPosts(context.Background(), "", "")

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].AuthorName)
	assert.Empty(t, posts[0].AuthorRank)
	assert.Empty(t, posts[0].AuthorAvatarURL)
	assert.True(t, posts[0].IsAnonymous)
}

func TestListPosts_ServesFromCache(t *testing.T) {
	repo := &fakeWallReader{
		posts:   []*models.WallPost{{ID: 1, Content: "привет"}},
		authors: []*models.User{{TelegramID: "7", FirstName: "Вася"}},
	}
	wallCache := newFakeWallCache()

	svc := service.NewWallService(repo, wallCache, "100", pkg.NewLogger(io.Discard))

	_, err := svc.ListPosts(context.Background(), "", "")
	require.NoError(t, err)

	_, err = svc.ListPosts(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls, "повторный запрос должен идти из кэша")
}

func TestListPosts_SeparateCacheKeysPerFilter(t *testing.T) {
	repo := &fakeWallReader{}
	wallCache := newFakeWallCache()

	svc := service.NewWallService(repo, wallCache, "100", pkg.NewLogger(io.Discard))

	_, err := svc.ListPosts(context.Background(), "", "")
	require.NoError(t, err)

	_, err = svc.ListPosts(context.Background(), "привет", "")
	require.NoError(t, err)

	_, err = svc.ListPosts(context.Background(), "", "pinned")
	require.NoError(t, err)

	assert.Equal(t, 3, repo.calls)
	assert.NotEqual(t, cache.FeedKey("", ""), cache.FeedKey("привет", ""))
	assert.NotEqual(t, cache.FeedKey("привет", ""), cache.FeedKey("", "pinned"))
}

func TestListPosts_EmptyFeedIsNotNil(t *testing.T) {
	svc := service.NewWallService(&fakeWallReader{}, nil, "100", pkg.NewLogger(io.Discard))

	posts, err := svc.ListPosts(context.Background(), "", "")

	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestInvalidateCache(t *testing.T) {
	wallCache := newFakeWallCache()
	svc := service.NewWallService(&fakeWallReader{}, wallCache, "100", pkg.NewLogger(io.Discard))

	_, err := svc.ListPosts(context.Background(), "", "")
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateCache(context.Background()))
	assert.True(t, wallCache.invalidated)
}
