package dao

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/meta-bridge/internal/domain/publication/entity"
)

// PgOutcomeRepository implements OutcomeRepository using PostgreSQL
type PgOutcomeRepository struct {
	pool *pgxpool.Pool
}

// NewPgOutcomeRepository creates a new PostgreSQL outcome repository
func NewPgOutcomeRepository(pool *pgxpool.Pool) *PgOutcomeRepository {
	return &PgOutcomeRepository{pool: pool}
}

func (r *PgOutcomeRepository) SaveResult(ctx context.Context, postID string, result *entity.PublicationResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO post_outcomes (
			id, post_id, target_id, target_name, target_kind, target_origin,
			is_main, status, platform_post_id, comment_id, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	insert := func(o entity.TargetOutcome, isMain bool) error {
		_, err := tx.Exec(ctx, query,
			uuid.New().String(),
			postID,
			o.Target.ID,
			o.Target.DisplayName,
			o.Target.Kind,
			o.Target.Origin,
			isMain,
			o.Status,
			o.PostID,
			o.CommentID,
			o.ErrorMessage,
		)
		return err
	}

	if result.MainTarget != nil {
		if err := insert(*result.MainTarget, true); err != nil {
			return fmt.Errorf("failed to save main outcome: %w", err)
		}
	}
	for _, group := range [][]entity.TargetOutcome{
		result.AdditionalPages, result.Groups, result.InstagramAccounts,
	} {
		for _, o := range group {
			if err := insert(o, false); err != nil {
				return fmt.Errorf("failed to save outcome: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit outcomes: %w", err)
	}

	return nil
}

func (r *PgOutcomeRepository) DeleteByPostID(ctx context.Context, postID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM post_outcomes WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete outcomes: %w", err)
	}

	return nil
}

func (r *PgOutcomeRepository) GetByPostID(ctx context.Context, postID string) (*entity.PublicationResult, error) {
	query := `
		SELECT target_id, target_name, target_kind, target_origin,
		       is_main, status, platform_post_id, comment_id, error_message
		FROM post_outcomes
		WHERE post_id = $1
		ORDER BY is_main DESC, target_name ASC
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}
	defer rows.Close()

	var result *entity.PublicationResult
	for rows.Next() {
		var (
			o      entity.TargetOutcome
			isMain bool
		)
		err := rows.Scan(
			&o.Target.ID,
			&o.Target.DisplayName,
			&o.Target.Kind,
			&o.Target.Origin,
			&isMain,
			&o.Status,
			&o.PostID,
			&o.CommentID,
			&o.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		if result == nil {
			result = &entity.PublicationResult{}
		}
		if isMain {
			result.SetMain(o)
		} else {
			result.AddAdditional(o)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
