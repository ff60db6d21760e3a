package dao

import (
	"context"
	"time"

	"github.com/vadim/meta-bridge/internal/domain/publication/entity"
)

// PostFilter contains filters for listing posts
type PostFilter struct {
	UserID string
	Status *entity.PostStatus
}

// ListOptions contains pagination and sorting options
type ListOptions struct {
	Limit  int
	Offset int
	SortBy string // "created_at", "scheduled_at", "published_at"
	Desc   bool
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create inserts a new post
	Create(ctx context.Context, post *entity.Post) error

	// GetByID retrieves a post by its id, nil when absent
	GetByID(ctx context.Context, id string) (*entity.Post, error)

	// UpdateStatus updates the post status and published timestamp
	UpdateStatus(ctx context.Context, id string, status entity.PostStatus, publishedAt *time.Time) error

	// Delete removes a post
	Delete(ctx context.Context, id string) error

	// List retrieves posts with filtering and pagination
	List(ctx context.Context, filter PostFilter, opts ListOptions) ([]entity.Post, error)

	// Count returns the number of posts matching the filter
	Count(ctx context.Context, filter PostFilter) (int64, error)

	// GetScheduledForPublishing retrieves scheduled posts that are due
	GetScheduledForPublishing(ctx context.Context, now time.Time) ([]entity.Post, error)
}

// MediaRepository defines the interface for post media data access
type MediaRepository interface {
	// Create inserts a media item for a post
	Create(ctx context.Context, postID string, media *entity.MediaItem) error

	// UpdateStatus records the upload outcome of one media item
	UpdateStatus(ctx context.Context, id string, status entity.MediaStatus, errorMsg string) error

	// GetByPostID retrieves all media items for a post, ordered by position
	GetByPostID(ctx context.Context, postID string) ([]entity.MediaItem, error)

	// DeleteByPostID removes all media items for a post
	DeleteByPostID(ctx context.Context, postID string) error
}

// OutcomeRepository defines the interface for per-target outcome data access
type OutcomeRepository interface {
	// SaveResult persists every outcome of one submission
	SaveResult(ctx context.Context, postID string, result *entity.PublicationResult) error

	// GetByPostID reconstructs the publication result for a post, nil when
	// no outcomes were recorded
	GetByPostID(ctx context.Context, postID string) (*entity.PublicationResult, error)

	// DeleteByPostID removes all outcomes for a post
	DeleteByPostID(ctx context.Context, postID string) error
}
