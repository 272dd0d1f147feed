package service

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/internal/web/cache"
)

type WallReader interface {
	ListPublished(ctx context.Context, search, tag string) ([]*models.WallPost, []*models.User, error)
	GetPublished(ctx context.Context, id int64) (*models.WallPost, *models.User, error)
}

// WallService собирает публичную ленту: кэш поверх базы, авторы анонимных
// постов скрываются до выдачи наружу.
type WallService struct {
	repo            WallReader
	cache           cache.WallCache
	adminTelegramID string
	logger          *slog.Logger
}

func NewWallService(repo WallReader, wallCache cache.WallCache, adminTelegramID string, logger *slog.Logger) *WallService {
	return &WallService{
		repo:            repo,
		cache:           wallCache,
		adminTelegramID: adminTelegramID,
		logger:          logger,
	}
}

func (s *WallService) ListPosts(ctx context.Context, search, tag string) ([]*models.WallPost, error) {
	key := cache.FeedKey(search, tag)

	if s.cache != nil {
		cached, err := s.cache.GetFeed(ctx, key)
		if err != nil {
			s.logger.Warn("Ошибка чтения кэша ленты", "error", err, "key", key)
		} else if cached != nil {
			return cached, nil
		}
	}

	posts, authors, err := s.repo.ListPublished(ctx, search, tag)
	if err != nil {
		return nil, err
	}

	for i, post := range posts {
		s.decorate(post, authors[i])
	}

	if posts == nil {
		posts = []*models.WallPost{}
	}

	if s.cache != nil {
		if err := s.cache.SetFeed(ctx, key, posts); err != nil {
			s.logger.Warn("Ошибка записи кэша ленты", "error", err, "key", key)
		}
	}

	return posts, nil
}

func (s *WallService) GetPost(ctx context.Context, id int64) (*models.WallPost, error) {
	post, author, err := s.repo.GetPublished(ctx, id)
	if err != nil {
		return nil, err
	}

	s.decorate(post, author)

	return post, nil
}

// InvalidateCache сбрасывает кэш ленты по событию из конвейера модерации.
func (s *WallService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Invalidate(ctx)
}

func (s *WallService) decorate(post *models.WallPost, author *models.User) {
	if post.IsAnonymous {
		return
	}

	post.AuthorName = author.DisplayName()
	post.AuthorRank = author.Rank(s.adminTelegramID)
	post.AuthorAvatarURL = author.AvatarURL
}
