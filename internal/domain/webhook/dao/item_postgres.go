package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/meta-bridge/internal/domain/webhook/entity"
)

// ItemFilter contains filters for listing ingested items
type ItemFilter struct {
	Shop   string
	Status *entity.IngestStatus
}

// ListOptions contains pagination options
type ListOptions struct {
	Limit  int
	Offset int
}

// ItemRepository defines the interface for ingested item storage
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	UpdateStatus(ctx context.Context, id string, status entity.IngestStatus, postID, errorMsg string) error
	SetMediaURL(ctx context.Context, id, url string) error
	List(ctx context.Context, filter ItemFilter, opts ListOptions) ([]entity.Item, error)
	Count(ctx context.Context, filter ItemFilter) (int64, error)
}

// ItemPostgres implements ItemRepository using PostgreSQL
type ItemPostgres struct {
	pool *pgxpool.Pool
}

// NewItemPostgres creates a new PostgreSQL item repository
func NewItemPostgres(pool *pgxpool.Pool) *ItemPostgres {
	return &ItemPostgres{pool: pool}
}

func (r *ItemPostgres) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO webhook_items (
			id, shop, title, url, description, media_url, media_type,
			status, post_id, error_message, received_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Shop,
		item.Title,
		item.URL,
		item.Description,
		item.MediaURL,
		item.MediaType,
		item.Status,
		item.PostID,
		item.ErrorMessage,
		item.ReceivedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

func (r *ItemPostgres) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	query := `
		SELECT id, shop, title, url, description, media_url, media_type,
		       status, post_id, error_message, received_at, updated_at
		FROM webhook_items
		WHERE id = $1
	`

	var item entity.Item
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Shop,
		&item.Title,
		&item.URL,
		&item.Description,
		&item.MediaURL,
		&item.MediaType,
		&item.Status,
		&item.PostID,
		&item.ErrorMessage,
		&item.ReceivedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

func (r *ItemPostgres) UpdateStatus(ctx context.Context, id string, status entity.IngestStatus, postID, errorMsg string) error {
	query := `
		UPDATE webhook_items
		SET status = $2, post_id = $3, error_message = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, postID, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrItemNotFound
	}

	return nil
}

func (r *ItemPostgres) SetMediaURL(ctx context.Context, id, url string) error {
	query := `
		UPDATE webhook_items
		SET media_url = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to set item media url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrItemNotFound
	}

	return nil
}

func (r *ItemPostgres) List(ctx context.Context, filter ItemFilter, opts ListOptions) ([]entity.Item, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, shop, title, url, description, media_url, media_type,
		       status, post_id, error_message, received_at, updated_at
		FROM webhook_items
		WHERE 1=1
	`)

	args := []any{}
	argNum := 1

	if filter.Shop != "" {
		sb.WriteString(fmt.Sprintf(" AND shop = $%d", argNum))
		args = append(args, filter.Shop)
		argNum++
	}
	if filter.Status != nil {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	sb.WriteString(" ORDER BY received_at DESC")

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
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []entity.Item
	for rows.Next() {
		var item entity.Item
		err := rows.Scan(
			&item.ID,
			&item.Shop,
			&item.Title,
			&item.URL,
			&item.Description,
			&item.MediaURL,
			&item.MediaType,
			&item.Status,
			&item.PostID,
			&item.ErrorMessage,
			&item.ReceivedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

func (r *ItemPostgres) Count(ctx context.Context, filter ItemFilter) (int64, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*) FROM webhook_items WHERE 1=1`)

	args := []any{}
	argNum := 1

	if filter.Shop != "" {
		sb.WriteString(fmt.Sprintf(" AND shop = $%d", argNum))
		args = append(args, filter.Shop)
		argNum++
	}
	if filter.Status != nil {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, *filter.Status)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, sb.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}

	return count, nil
}
