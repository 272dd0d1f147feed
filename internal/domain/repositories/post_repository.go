package repositories

import (
	"context"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error

	// FindByID возвращает пост вместе с автором.
	FindByID(ctx context.Context, id int64) (*models.Post, error)

	// FindByAuthorAndStatuses возвращает посты автора в указанных статусах,
	// новые первыми.
	FindByAuthorAndStatuses(ctx context.Context, authorID int64, statuses []models.PostStatus) ([]*models.Post, error)

	// FindByStatus возвращает посты в статусе, старые первыми.
	FindByStatus(ctx context.Context, status models.PostStatus) ([]*models.Post, error)

	Update(ctx context.Context, post *models.Post) error

	Delete(ctx context.Context, id int64) error

	CountByStatus(ctx context.Context, status models.PostStatus) (int, error)
}
