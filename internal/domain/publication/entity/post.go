package entity

import (
	"time"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

// PostStatus represents the lifecycle state of a stored post
type PostStatus string

const (
	// Pending: created for immediate dispatch, outcome not yet recorded
	PostStatusPending   PostStatus = "pending"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	// Partial: the submission went through but some targets failed
	PostStatusPartial PostStatus = "partial"
	PostStatusFailed  PostStatus = "failed"
)

// MediaStatus represents the upload state of one media file
type MediaStatus string

const (
	MediaStatusPending  MediaStatus = "pending"
	MediaStatusUploaded MediaStatus = "uploaded"
	MediaStatusFailed   MediaStatus = "failed"
)

// MediaItem is one media file attached to a stored post
type MediaItem struct {
	ID           string      `json:"id"`
	URL          string      `json:"url"`
	ContentType  string      `json:"content_type"`
	IsVideo      bool        `json:"is_video"`
	Position     int         `json:"position"`
	Status       MediaStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// TargetRef is the persisted identity of a publication destination
type TargetRef struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"display_name"`
	Kind        catalog.TargetKind   `json:"kind"`
	Origin      catalog.TargetOrigin `json:"origin"`
}

// Post is one stored publication: the authored content plus the per-target
// outcome of its submission
type Post struct {
	ID                  string      `json:"id"`
	UserID              string      `json:"user_id"`
	Text                string      `json:"text"`
	CommentLink         string      `json:"comment_link,omitempty"`
	LinkURL             string      `json:"link_url,omitempty"`
	BusinessManagerID   string      `json:"business_manager_id,omitempty"`
	BusinessManagerName string      `json:"business_manager_name,omitempty"`
	Status              PostStatus  `json:"status"`
	Media               []MediaItem `json:"media"`
	ScheduledAt         *time.Time  `json:"scheduled_at,omitempty"`
	PublishedAt         *time.Time  `json:"published_at,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	// Result is populated once the submission has been dispatched
	Result *PublicationResult `json:"result,omitempty"`
}

// IsDeletable reports whether the stored post may be removed. Posts already
// pushed to the platforms stay in history; scheduled and failed ones may go.
func (p *Post) IsDeletable() bool {
	return p.Status != PostStatusPublished && p.Status != PostStatusPartial
}
