package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-wallpost/internal/common/metrics"
	"github.com/central-university-dev/go-wallpost/internal/database"
	customerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/jackc/pgx/v5"
)

// WallRepository - читающая сторона стены: только опубликованные посты.
// Фильтры собираются динамически, поэтому здесь squirrel вне зависимости
// от выбранного типа доступа для бота.
type WallRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewWallRepository(db *database.PostgresDB) *WallRepository {
	return &WallRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var wallColumns = []string{
	"p.id", "p.content", "p.image_url", "p.is_anonymous",
	"p.is_pinned", "p.is_announcement", "p.updated_at",
	"u.telegram_id", "u.first_name", "u.username", "u.avatar_url", "u.post_count",
}

type wallRow struct {
	post   models.WallPost
	author models.User
}

func scanWallRow(row pgx.Row) (*wallRow, error) {
	var r wallRow

	err := row.Scan(
		&r.post.ID,
		&r.post.Content,
		&r.post.ImageURL,
		&r.post.IsAnonymous,
		&r.post.IsPinned,
		&r.post.IsAnnouncement,
		&r.post.PublishedAt,
		&r.author.TelegramID,
		&r.author.FirstName,
		&r.author.Username,
		&r.author.AvatarURL,
		&r.author.PostCount,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// ListPublished возвращает опубликованные посты: закреплённые первыми,
// дальше - новые сверху. Поиск и фильтр по тегу необязательны.
func (r *WallRepository) ListPublished(ctx context.Context, search, tag string) ([]*models.WallPost, []*models.User, error) {
	selectQuery := r.sq.Select(wallColumns...).
		From("posts p").
		Join("users u ON u.id = p.author_id").
		Where(sq.Eq{"p.status": string(models.StatusPublished)}).
		OrderBy("p.is_pinned DESC", "p.created_at DESC")

	if search != "" {
		pattern := "%" + search + "%"
		// Авторы анонимных постов по имени не ищутся.
		selectQuery = selectQuery.Where(sq.Or{
			sq.ILike{"p.content": pattern},
			sq.And{
				sq.Eq{"p.is_anonymous": false},
				sq.Or{
					sq.ILike{"u.first_name": pattern},
					sq.ILike{"u.username": pattern},
				},
			},
		})
	}

	if tag != "" {
		selectQuery = selectQuery.Where(sq.ILike{"p.content": "%#" + tag + "%"})
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, nil, &customerrors.ErrBuildSQLQuery{Operation: "список публикаций", Cause: err}
	}

	started := time.Now()

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDatabaseQuery("list_published", "error", time.Since(started))

		return nil, nil, &customerrors.ErrSQLExecution{Operation: "список публикаций", Cause: err}
	}
	defer rows.Close()

	var posts []*models.WallPost

	var authors []*models.User

	for rows.Next() {
		wr, err := scanWallRow(rows)
		if err != nil {
			return nil, nil, &customerrors.ErrSQLScan{Entity: "публикация", Cause: err}
		}

		posts = append(posts, &wr.post)
		authors = append(authors, &wr.author)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, &customerrors.ErrSQLExecution{Operation: "чтение публикаций", Cause: err}
	}

	metrics.RecordDatabaseQuery("list_published", "success", time.Since(started))

	return posts, authors, nil
}

// GetPublished возвращает один опубликованный пост.
func (r *WallRepository) GetPublished(ctx context.Context, id int64) (*models.WallPost, *models.User, error) {
	selectQuery := r.sq.Select(wallColumns...).
		From("posts p").
		Join("users u ON u.id = p.author_id").
		Where(sq.Eq{"p.id": id, "p.status": string(models.StatusPublished)})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, nil, &customerrors.ErrBuildSQLQuery{Operation: "публикация", Cause: err}
	}

	started := time.Now()

	wr, err := scanWallRow(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.RecordDatabaseQuery("get_published", "success", time.Since(started))

			return nil, nil, &customerrors.ErrPostNotFound{PostID: id}
		}

		metrics.RecordDatabaseQuery("get_published", "error", time.Since(started))

		return nil, nil, &customerrors.ErrSQLExecution{Operation: "публикация", Cause: err}
	}

	metrics.RecordDatabaseQuery("get_published", "success", time.Since(started))

	return &wr.post, &wr.author, nil
}
