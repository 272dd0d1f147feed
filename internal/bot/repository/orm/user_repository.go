package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-wallpost/internal/database"
	customerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewUserRepository(db *database.PostgresDB) *UserRepository {
	return &UserRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var userColumns = []string{
	"id", "telegram_id", "username", "first_name", "is_approved", "is_vip",
	"is_moderator", "is_anonymous_mode", "avatar_url", "post_count", "created_at", "updated_at",
}

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
	insertQuery := r.sq.Insert("users").
		Columns("telegram_id", "username", "first_name", "created_at", "updated_at").
		Values(telegramID, username, firstName, now, now).
		Suffix(`ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + columnList())

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "регистрация пользователя", Cause: err}
	}

	user, err := scanUser(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "регистрация пользователя", Cause: err}
	}

	return user, nil
}

func columnList() string {
	list := ""
	for i, c := range userColumns {
		if i > 0 {
			list += ", "
		}

		list += c
	}

	return list
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	return r.findOne(ctx, sq.Eq{"telegram_id": telegramID}, &customerrors.ErrUserNotFound{TelegramID: telegramID})
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, &customerrors.ErrUserNotFound{TelegramID: fmt.Sprintf("id=%d", id)})
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Eq, notFound error) (*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(userColumns...).
		From("users").
		Where(where)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск пользователя", Cause: err}
	}

	user, err := scanUser(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск пользователя", Cause: err}
	}

	return user, nil
}

func (r *UserRepository) FindApproved(ctx context.Context) ([]*models.User, error) {
	selectQuery := r.sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"is_approved": true}).
		OrderBy("created_at")

	return r.queryUsers(ctx, selectQuery, "поиск одобренных пользователей")
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	selectQuery := r.sq.Select(userColumns...).
		From("users").
		OrderBy("created_at")

	return r.queryUsers(ctx, selectQuery, "поиск пользователей")
}

func (r *UserRepository) queryUsers(ctx context.Context, selectQuery sq.SelectBuilder, operation string) ([]*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: operation, Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "пользователь", Cause: err}
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	user.UpdatedAt = time.Now()

	updateQuery := r.sq.Update("users").
		Set("username", user.Username).
		Set("first_name", user.FirstName).
		Set("is_approved", user.IsApproved).
		Set("is_vip", user.IsVIP).
		Set("is_moderator", user.IsModerator).
		Set("is_anonymous_mode", user.IsAnonymousMode).
		Set("avatar_url", user.AvatarURL).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление пользователя", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление пользователя", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrUserNotFound{TelegramID: user.TelegramID}
	}

	return nil
}

func (r *UserRepository) IncrementPostCount(ctx context.Context, id int64) (int, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("users").
		Set("post_count", sq.Expr("post_count + 1")).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING post_count")

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "увеличение счётчика публикаций", Cause: err}
	}

	var count int

	err = querier.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &customerrors.ErrUserNotFound{TelegramID: fmt.Sprintf("id=%d", id)}
		}

		return 0, &customerrors.ErrSQLExecution{Operation: "увеличение счётчика публикаций", Cause: err}
	}

	return count, nil
}
