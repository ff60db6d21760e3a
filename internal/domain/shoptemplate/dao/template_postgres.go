package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/meta-bridge/internal/domain/shoptemplate/entity"
)

// TemplatePostgres implements shop template storage for PostgreSQL
type TemplatePostgres struct {
	pool *pgxpool.Pool
}

// NewTemplatePostgres creates a new PostgreSQL shop template repository
func NewTemplatePostgres(pool *pgxpool.Pool) *TemplatePostgres {
	return &TemplatePostgres{pool: pool}
}

// Create inserts a new shop template
func (r *TemplatePostgres) Create(ctx context.Context, tmpl *entity.ShopTemplate) error {
	targets, err := json.Marshal(tmpl.Targets)
	if err != nil {
		return fmt.Errorf("encoding targets: %w", err)
	}

	query := `
		INSERT INTO shop_templates (id, shop, caption, targets, enabled, usage_count, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, 0, $5, $5)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	err = r.pool.QueryRow(ctx, query,
		tmpl.Shop,
		tmpl.Caption,
		targets,
		tmpl.Enabled,
		now,
	).Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating shop template: %w", err)
	}

	return nil
}

// GetByID retrieves a shop template by id, nil when absent
func (r *TemplatePostgres) GetByID(ctx context.Context, id string) (*entity.ShopTemplate, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByShop retrieves the template for a shop name, nil when absent
func (r *TemplatePostgres) GetByShop(ctx context.Context, shop string) (*entity.ShopTemplate, error) {
	return r.getOne(ctx, `WHERE shop = $1`, shop)
}

func (r *TemplatePostgres) getOne(ctx context.Context, where string, arg any) (*entity.ShopTemplate, error) {
	query := `
		SELECT id, shop, caption, targets, enabled, usage_count, created_at, updated_at
		FROM shop_templates
	` + where

	var (
		tmpl    entity.ShopTemplate
		targets []byte
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&tmpl.ID,
		&tmpl.Shop,
		&tmpl.Caption,
		&targets,
		&tmpl.Enabled,
		&tmpl.UsageCount,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting shop template: %w", err)
	}

	if err := json.Unmarshal(targets, &tmpl.Targets); err != nil {
		return nil, fmt.Errorf("decoding targets: %w", err)
	}

	return &tmpl, nil
}

// Update saves the mutable fields of a shop template
func (r *TemplatePostgres) Update(ctx context.Context, tmpl *entity.ShopTemplate) error {
	targets, err := json.Marshal(tmpl.Targets)
	if err != nil {
		return fmt.Errorf("encoding targets: %w", err)
	}

	query := `
		UPDATE shop_templates
		SET shop = $2, caption = $3, targets = $4, enabled = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.pool.QueryRow(ctx, query,
		tmpl.ID,
		tmpl.Shop,
		tmpl.Caption,
		targets,
		tmpl.Enabled,
	).Scan(&tmpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ErrTemplateNotFound
		}
		return fmt.Errorf("updating shop template: %w", err)
	}

	return nil
}

// Delete removes a shop template
func (r *TemplatePostgres) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shop_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting shop template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTemplateNotFound
	}

	return nil
}

// List retrieves all shop templates ordered by shop name
func (r *TemplatePostgres) List(ctx context.Context) ([]entity.ShopTemplate, error) {
	query := `
		SELECT id, shop, caption, targets, enabled, usage_count, created_at, updated_at
		FROM shop_templates
		ORDER BY shop ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing shop templates: %w", err)
	}
	defer rows.Close()

	var templates []entity.ShopTemplate
	for rows.Next() {
		var (
			tmpl    entity.ShopTemplate
			targets []byte
		)
		err := rows.Scan(
			&tmpl.ID,
			&tmpl.Shop,
			&tmpl.Caption,
			&targets,
			&tmpl.Enabled,
			&tmpl.UsageCount,
			&tmpl.CreatedAt,
			&tmpl.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning shop template: %w", err)
		}
		if err := json.Unmarshal(targets, &tmpl.Targets); err != nil {
			return nil, fmt.Errorf("decoding targets: %w", err)
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return templates, nil
}

// IncrementUsageCount bumps the usage counter of a template
func (r *TemplatePostgres) IncrementUsageCount(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE shop_templates SET usage_count = usage_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incrementing usage count: %w", err)
	}

	return nil
}
