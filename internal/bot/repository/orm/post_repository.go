package orm

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-wallpost/internal/database"
	customerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type PostRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewPostRepository(db *database.PostgresDB) *PostRepository {
	return &PostRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var postWithAuthorColumns = []string{
	"p.id", "p.author_id", "p.content", "p.image_url", "p.is_anonymous", "p.status",
	"p.admin_remark", "p.is_pinned", "p.is_announcement", "p.created_at", "p.updated_at",
	"u.id", "u.telegram_id", "u.username", "u.first_name", "u.is_approved", "u.is_vip",
	"u.is_moderator", "u.is_anonymous_mode", "u.avatar_url", "u.post_count", "u.created_at", "u.updated_at",
}

func scanPostWithAuthor(row pgx.Row) (*models.Post, error) {
	var post models.Post

	var author models.User

	var status string

	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Content,
		&post.ImageURL,
		&post.IsAnonymous,
		&status,
		&post.AdminRemark,
		&post.IsPinned,
		&post.IsAnnouncement,
		&post.CreatedAt,
		&post.UpdatedAt,
		&author.ID,
		&author.TelegramID,
		&author.Username,
		&author.FirstName,
		&author.IsApproved,
		&author.IsVIP,
		&author.IsModerator,
		&author.IsAnonymousMode,
		&author.AvatarURL,
		&author.PostCount,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Status = models.PostStatus(status)
	post.Author = &author

	return &post, nil
}

func (r *PostRepository) selectPosts() sq.SelectBuilder {
	return r.sq.Select(postWithAuthorColumns...).
		From("posts p").
		Join("users u ON u.id = p.author_id")
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}

	post.UpdatedAt = now

	if post.Status == "" {
		post.Status = models.StatusDraft
	}

	insertQuery := r.sq.Insert("posts").
		Columns("author_id", "content", "image_url", "is_anonymous", "status", "admin_remark",
			"is_pinned", "is_announcement", "created_at", "updated_at").
		Values(post.AuthorID, post.Content, post.ImageURL, post.IsAnonymous, string(post.Status),
			post.AdminRemark, post.IsPinned, post.IsAnnouncement, post.CreatedAt, post.UpdatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание поста", Cause: err}
	}

	if err := querier.QueryRow(ctx, query, args...).Scan(&post.ID); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание поста", Cause: err}
	}

	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.selectPosts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск поста", Cause: err}
	}

	post, err := scanPostWithAuthor(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrPostNotFound{PostID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск поста", Cause: err}
	}

	return post, nil
}

func (r *PostRepository) FindByAuthorAndStatuses(
	ctx context.Context,
	authorID int64,
	statuses []models.PostStatus,
) ([]*models.Post, error) {
	statusStrs := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrs = append(statusStrs, string(s))
	}

	query, args, err := r.selectPosts().
		Where(sq.And{
			sq.Eq{"p.author_id": authorID},
			sq.Eq{"p.status": statusStrs},
		}).
		OrderBy("p.created_at DESC").
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск постов автора", Cause: err}
	}

	return r.queryPosts(ctx, query, args, "поиск постов автора")
}

func (r *PostRepository) FindByStatus(ctx context.Context, status models.PostStatus) ([]*models.Post, error) {
	query, args, err := r.selectPosts().
		Where(sq.Eq{"p.status": string(status)}).
		OrderBy("p.created_at").
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск постов по статусу", Cause: err}
	}

	return r.queryPosts(ctx, query, args, "поиск постов по статусу")
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args []any, operation string) ([]*models.Post, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	var posts []*models.Post

	for rows.Next() {
		post, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "пост", Cause: err}
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	post.UpdatedAt = time.Now()

	updateQuery := r.sq.Update("posts").
		Set("content", post.Content).
		Set("image_url", post.ImageURL).
		Set("status", string(post.Status)).
		Set("admin_remark", post.AdminRemark).
		Set("is_pinned", post.IsPinned).
		Set("is_announcement", post.IsAnnouncement).
		Set("updated_at", post.UpdatedAt).
		Where(sq.Eq{"id": post.ID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление поста", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление поста", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrPostNotFound{PostID: post.ID}
	}

	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Delete("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление поста", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление поста", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrPostNotFound{PostID: id}
	}

	return nil
}

func (r *PostRepository) CountByStatus(ctx context.Context, status models.PostStatus) (int, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select("COUNT(*)").
		From("posts").
		Where(sq.Eq{"status": string(status)}).
		ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "подсчёт постов", Cause: err}
	}

	var count int

	if err := querier.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "подсчёт постов", Cause: err}
	}

	return count, nil
}
