package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/meta-bridge/internal/domain/publication/entity"
)

// PgPostRepository implements PostRepository using PostgreSQL
type PgPostRepository struct {
	pool *pgxpool.Pool
}

// NewPgPostRepository creates a new PostgreSQL post repository
func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

func (r *PgPostRepository) Create(ctx context.Context, post *entity.Post) error {
	query := `
		INSERT INTO posts (
			id, user_id, text, comment_link, link_url,
			business_manager_id, business_manager_name,
			status, scheduled_at, published_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.UserID,
		post.Text,
		post.CommentLink,
		post.LinkURL,
		post.BusinessManagerID,
		post.BusinessManagerName,
		post.Status,
		post.ScheduledAt,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	query := `
		SELECT id, user_id, text, comment_link, link_url,
		       business_manager_id, business_manager_name,
		       status, scheduled_at, published_at, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	var post entity.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.UserID,
		&post.Text,
		&post.CommentLink,
		&post.LinkURL,
		&post.BusinessManagerID,
		&post.BusinessManagerName,
		&post.Status,
		&post.ScheduledAt,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PgPostRepository) UpdateStatus(ctx context.Context, id string, status entity.PostStatus, publishedAt *time.Time) error {
	query := `
		UPDATE posts
		SET status = $2, published_at = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, publishedAt)
	if err != nil {
		return fmt.Errorf("failed to update post status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrPostNotFound
	}

	return nil
}

func (r *PgPostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrPostNotFound
	}

	return nil
}

func (r *PgPostRepository) List(ctx context.Context, filter PostFilter, opts ListOptions) ([]entity.Post, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, text, comment_link, link_url,
		       business_manager_id, business_manager_name,
		       status, scheduled_at, published_at, created_at, updated_at
		FROM posts
		WHERE 1=1
	`)

	args := []any{}
	argNum := 1

	if filter.UserID != "" {
		sb.WriteString(fmt.Sprintf(" AND user_id = $%d", argNum))
		args = append(args, filter.UserID)
		argNum++
	}
	if filter.Status != nil {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	sortBy := "created_at"
	switch opts.SortBy {
	case "scheduled_at", "published_at", "created_at":
		sortBy = opts.SortBy
	}
	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s", sortBy, direction))

	if opts.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argNum))
		args = append(args, opts.Limit)
		argNum++
	}
	if opts.Offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", argNum))
		args = append(args, opts.Offset)
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (r *PgPostRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*) FROM posts WHERE 1=1`)

	args := []any{}
	argNum := 1

	if filter.UserID != "" {
		sb.WriteString(fmt.Sprintf(" AND user_id = $%d", argNum))
		args = append(args, filter.UserID)
		argNum++
	}
	if filter.Status != nil {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, *filter.Status)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, sb.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

func (r *PgPostRepository) GetScheduledForPublishing(ctx context.Context, now time.Time) ([]entity.Post, error) {
	query := `
		SELECT id, user_id, text, comment_link, link_url,
		       business_manager_id, business_manager_name,
		       status, scheduled_at, published_at, created_at, updated_at
		FROM posts
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
	`

	rows, err := r.pool.Query(ctx, query, entity.PostStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows pgx.Rows) ([]entity.Post, error) {
	var posts []entity.Post
	for rows.Next() {
		var post entity.Post
		err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Text,
			&post.CommentLink,
			&post.LinkURL,
			&post.BusinessManagerID,
			&post.BusinessManagerName,
			&post.Status,
			&post.ScheduledAt,
			&post.PublishedAt,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return posts, nil
}
