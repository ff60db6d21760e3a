package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/meta-bridge/internal/domain/links/entity"
)

// PreviewRepository defines the interface for the link-preview cache
type PreviewRepository interface {
	// Get retrieves a cached preview by URL, nil when absent
	Get(ctx context.Context, url string) (*entity.LinkPreview, error)

	// Put stores or refreshes a preview
	Put(ctx context.Context, preview *entity.LinkPreview) error

	// DeleteOlderThan removes previews fetched before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PreviewPostgres implements PreviewRepository for PostgreSQL
type PreviewPostgres struct {
	pool *pgxpool.Pool
}

// NewPreviewPostgres creates a new PostgreSQL preview cache
func NewPreviewPostgres(pool *pgxpool.Pool) *PreviewPostgres {
	return &PreviewPostgres{pool: pool}
}

// Get retrieves a cached preview by URL
func (r *PreviewPostgres) Get(ctx context.Context, url string) (*entity.LinkPreview, error) {
	query := `
		SELECT url, title, description, image, site_name, fetched_at
		FROM link_previews
		WHERE url = $1
	`

	var p entity.LinkPreview
	err := r.pool.QueryRow(ctx, query, url).Scan(
		&p.URL,
		&p.Title,
		&p.Description,
		&p.Image,
		&p.SiteName,
		&p.FetchedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning link preview: %w", err)
	}

	return &p, nil
}

// Put stores or refreshes a preview
func (r *PreviewPostgres) Put(ctx context.Context, preview *entity.LinkPreview) error {
	query := `
		INSERT INTO link_previews (url, title, description, image, site_name, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url) DO UPDATE
		SET title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    image = EXCLUDED.image,
		    site_name = EXCLUDED.site_name,
		    fetched_at = EXCLUDED.fetched_at
	`

	_, err := r.pool.Exec(ctx, query,
		preview.URL,
		preview.Title,
		preview.Description,
		preview.Image,
		preview.SiteName,
		preview.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting link preview: %w", err)
	}

	return nil
}

// DeleteOlderThan removes previews fetched before the cutoff
func (r *PreviewPostgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM link_previews WHERE fetched_at < $1",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning link previews: %w", err)
	}
	return tag.RowsAffected(), nil
}
