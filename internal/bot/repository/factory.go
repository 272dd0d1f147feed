package repository

import (
	"log/slog"

	"github.com/central-university-dev/go-wallpost/internal/bot/repository/orm"
	sqlrepo "github.com/central-university-dev/go-wallpost/internal/bot/repository/sql"
	"github.com/central-university-dev/go-wallpost/internal/config"
	"github.com/central-university-dev/go-wallpost/internal/database"
	"github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/repositories"
)

type Factory struct {
	db     *database.PostgresDB
	config *config.Config
	logger *slog.Logger
}

func NewFactory(db *database.PostgresDB, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (f *Factory) CreateUserRepository() (repositories.UserRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория пользователей")
		return orm.NewUserRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория пользователей")
		return sqlrepo.NewUserRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

func (f *Factory) CreatePostRepository() (repositories.PostRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория постов")
		return orm.NewPostRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория постов")
		return sqlrepo.NewPostRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}
