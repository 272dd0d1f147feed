package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/central-university-dev/go-wallpost/internal/database"
	customerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, telegram_id, username, first_name, is_approved, is_vip, is_moderator,
		is_anonymous_mode, avatar_url, post_count, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User

	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.IsApproved,
		&user.IsVIP,
		&user.IsModerator,
		&user.IsAnonymousMode,
		&user.AvatarURL,
		&user.PostCount,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID, username, firstName string) (*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	row := querier.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username, first_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			updated_at = EXCLUDED.updated_at
		RETURNING `+userColumns,
		telegramID, username, firstName, now)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при регистрации пользователя: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	row := querier.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrUserNotFound{TelegramID: telegramID}
		}

		return nil, fmt.Errorf("ошибка при поиске пользователя: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	row := querier.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrUserNotFound{TelegramID: fmt.Sprintf("id=%d", id)}
		}

		return nil, fmt.Errorf("ошибка при поиске пользователя: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindApproved(ctx context.Context) ([]*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_approved ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске одобренных пользователей: %w", err)
	}

	return collectUsers(rows)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске пользователей: %w", err)
	}

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании пользователя: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при чтении пользователей: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	user.UpdatedAt = time.Now()

	result, err := querier.Exec(ctx, `
		UPDATE users SET username = $1, first_name = $2, is_approved = $3, is_vip = $4,
			is_moderator = $5, is_anonymous_mode = $6, avatar_url = $7, updated_at = $8
		WHERE id = $9`,
		user.Username, user.FirstName, user.IsApproved, user.IsVIP,
		user.IsModerator, user.IsAnonymousMode, user.AvatarURL, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении пользователя: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrUserNotFound{TelegramID: user.TelegramID}
	}

	return nil
}

func (r *UserRepository) IncrementPostCount(ctx context.Context, id int64) (int, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	var count int

	err := querier.QueryRow(ctx,
		`UPDATE users SET post_count = post_count + 1, updated_at = $1 WHERE id = $2 RETURNING post_count`,
		time.Now(), id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &customerrors.ErrUserNotFound{TelegramID: fmt.Sprintf("id=%d", id)}
		}

		return 0, fmt.Errorf("ошибка при увеличении счётчика публикаций: %w", err)
	}

	return count, nil
}
