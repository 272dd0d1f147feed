package repositories

import (
	"context"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

type UserRepository interface {
	// GetOrCreate идемпотентно регистрирует пользователя по его telegram id.
	GetOrCreate(ctx context.Context, telegramID, username, firstName string) (*models.User, error)

	FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error)

	FindByID(ctx context.Context, id int64) (*models.User, error)

	FindApproved(ctx context.Context) ([]*models.User, error)

	FindAll(ctx context.Context) ([]*models.User, error)

	Update(ctx context.Context, user *models.User) error

	// IncrementPostCount атомарно увеличивает счётчик и возвращает новое значение.
	IncrementPostCount(ctx context.Context, id int64) (int, error)
}
