package dao

import (
	"context"
	"time"
)

// Account represents a connected Meta user and its long-lived token
type Account struct {
	UserID      string
	Name        string
	Email       string
	AccessToken string
	ConnectedAt time.Time
	UpdatedAt   time.Time
}

// AccountRepository defines the interface for connected-account data access
type AccountRepository interface {
	// Upsert stores or refreshes a connected account
	Upsert(ctx context.Context, acc *Account) error

	// GetByUserID retrieves a connected account by its Meta user id
	GetByUserID(ctx context.Context, userID string) (*Account, error)

	// GetAccessToken retrieves the stored access token for a user
	GetAccessToken(ctx context.Context, userID string) (string, error)

	// List returns all connected accounts
	List(ctx context.Context) ([]Account, error)

	// Delete removes a connected account
	Delete(ctx context.Context, userID string) error
}
