package dao

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/meta-bridge/internal/domain/publication/entity"
)

// PgMediaRepository implements MediaRepository using PostgreSQL
type PgMediaRepository struct {
	pool *pgxpool.Pool
}

// NewPgMediaRepository creates a new PostgreSQL media repository
func NewPgMediaRepository(pool *pgxpool.Pool) *PgMediaRepository {
	return &PgMediaRepository{pool: pool}
}

func (r *PgMediaRepository) Create(ctx context.Context, postID string, media *entity.MediaItem) error {
	query := `
		INSERT INTO post_media (
			id, post_id, url, content_type, is_video,
			position, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		media.ID,
		postID,
		media.URL,
		media.ContentType,
		media.IsVideo,
		media.Position,
		media.Status,
		media.ErrorMessage,
		media.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create media item: %w", err)
	}

	return nil
}

func (r *PgMediaRepository) UpdateStatus(ctx context.Context, id string, status entity.MediaStatus, errorMsg string) error {
	query := `
		UPDATE post_media
		SET status = $2, error_message = $3
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, status, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to update media status: %w", err)
	}

	return nil
}

func (r *PgMediaRepository) GetByPostID(ctx context.Context, postID string) ([]entity.MediaItem, error) {
	query := `
		SELECT id, url, content_type, is_video, position, status, error_message, created_at
		FROM post_media
		WHERE post_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get media items: %w", err)
	}
	defer rows.Close()

	var items []entity.MediaItem
	for rows.Next() {
		var item entity.MediaItem
		err := rows.Scan(
			&item.ID,
			&item.URL,
			&item.ContentType,
			&item.IsVideo,
			&item.Position,
			&item.Status,
			&item.ErrorMessage,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

func (r *PgMediaRepository) DeleteByPostID(ctx context.Context, postID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM post_media WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete media items: %w", err)
	}

	return nil
}
