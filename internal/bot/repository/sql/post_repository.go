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

type PostRepository struct {
	db *database.PostgresDB
}

func NewPostRepository(db *database.PostgresDB) *PostRepository {
	return &PostRepository{db: db}
}

const postWithAuthorQuery = `
	SELECT p.id, p.author_id, p.content, p.image_url, p.is_anonymous, p.status,
		p.admin_remark, p.is_pinned, p.is_announcement, p.created_at, p.updated_at,
		u.id, u.telegram_id, u.username, u.first_name, u.is_approved, u.is_vip,
		u.is_moderator, u.is_anonymous_mode, u.avatar_url, u.post_count, u.created_at, u.updated_at
	FROM posts p
	JOIN users u ON u.id = p.author_id`

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

	err := querier.QueryRow(ctx, `
		INSERT INTO posts (author_id, content, image_url, is_anonymous, status, admin_remark,
			is_pinned, is_announcement, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		post.AuthorID, post.Content, post.ImageURL, post.IsAnonymous, string(post.Status),
		post.AdminRemark, post.IsPinned, post.IsAnnouncement, post.CreatedAt, post.UpdatedAt).
		Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	row := querier.QueryRow(ctx, postWithAuthorQuery+` WHERE p.id = $1`, id)

	post, err := scanPostWithAuthor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrPostNotFound{PostID: id}
		}

		return nil, fmt.Errorf("ошибка при поиске поста: %w", err)
	}

	return post, nil
}

func (r *PostRepository) FindByAuthorAndStatuses(
	ctx context.Context,
	authorID int64,
	statuses []models.PostStatus,
) ([]*models.Post, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	statusStrs := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrs = append(statusStrs, string(s))
	}

	rows, err := querier.Query(ctx,
		postWithAuthorQuery+` WHERE p.author_id = $1 AND p.status = ANY($2) ORDER BY p.created_at DESC`,
		authorID, statusStrs)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске постов автора: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepository) FindByStatus(ctx context.Context, status models.PostStatus) ([]*models.Post, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx,
		postWithAuthorQuery+` WHERE p.status = $1 ORDER BY p.created_at`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске постов по статусу: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows pgx.Rows) ([]*models.Post, error) {
	var posts []*models.Post

	for rows.Next() {
		post, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании поста: %w", err)
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при чтении постов: %w", err)
	}

	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	post.UpdatedAt = time.Now()

	result, err := querier.Exec(ctx, `
		UPDATE posts SET content = $1, image_url = $2, status = $3, admin_remark = $4,
			is_pinned = $5, is_announcement = $6, updated_at = $7
		WHERE id = $8`,
		post.Content, post.ImageURL, string(post.Status), post.AdminRemark,
		post.IsPinned, post.IsAnnouncement, post.UpdatedAt, post.ID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении поста: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrPostNotFound{PostID: post.ID}
	}

	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	result, err := querier.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrPostNotFound{PostID: id}
	}

	return nil
}

func (r *PostRepository) CountByStatus(ctx context.Context, status models.PostStatus) (int, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	var count int

	err := querier.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчёте постов: %w", err)
	}

	return count, nil
}
