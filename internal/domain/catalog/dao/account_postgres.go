package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountPostgres implements AccountRepository for PostgreSQL
type AccountPostgres struct {
	pool *pgxpool.Pool
}

// NewAccountPostgres creates a new PostgreSQL account repository
func NewAccountPostgres(pool *pgxpool.Pool) *AccountPostgres {
	return &AccountPostgres{pool: pool}
}

// Upsert stores or refreshes a connected account
func (r *AccountPostgres) Upsert(ctx context.Context, acc *Account) error {
	query := `
		INSERT INTO accounts (user_id, name, email, access_token, connected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    access_token = EXCLUDED.access_token,
		    updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if acc.ConnectedAt.IsZero() {
		acc.ConnectedAt = now
	}
	acc.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		acc.UserID,
		acc.Name,
		acc.Email,
		acc.AccessToken,
		acc.ConnectedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting account: %w", err)
	}

	return nil
}

// GetByUserID retrieves a connected account by its Meta user id
func (r *AccountPostgres) GetByUserID(ctx context.Context, userID string) (*Account, error) {
	query := `
		SELECT user_id, name, email, access_token, connected_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var acc Account
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&acc.UserID,
		&acc.Name,
		&acc.Email,
		&acc.AccessToken,
		&acc.ConnectedAt,
		&acc.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	return &acc, nil
}

// GetAccessToken retrieves the stored access token for a user
func (r *AccountPostgres) GetAccessToken(ctx context.Context, userID string) (string, error) {
	query := `SELECT access_token FROM accounts WHERE user_id = $1`

	var token string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&token)
	if err == pgx.ErrNoRows {
		return "", fmt.Errorf("no access token found for user %s", userID)
	}
	if err != nil {
		return "", fmt.Errorf("querying access token: %w", err)
	}

	return token, nil
}

// List returns all connected accounts
func (r *AccountPostgres) List(ctx context.Context) ([]Account, error) {
	query := `
		SELECT user_id, name, email, access_token, connected_at, updated_at
		FROM accounts
		ORDER BY connected_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var acc Account
		if err := rows.Scan(
			&acc.UserID,
			&acc.Name,
			&acc.Email,
			&acc.AccessToken,
			&acc.ConnectedAt,
			&acc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	return accounts, nil
}

// Delete removes a connected account
func (r *AccountPostgres) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM accounts WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}
