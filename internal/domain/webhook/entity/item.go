package entity

import (
	"errors"
	"time"
)

// IngestStatus is the processing state of one received item
type IngestStatus string

const (
	// Received: stored, not yet routed
	IngestStatusReceived IngestStatus = "received"
	// Rejected: no enabled template routes this shop
	IngestStatusRejected  IngestStatus = "rejected"
	IngestStatusPublished IngestStatus = "published"
	IngestStatusPartial   IngestStatus = "partial"
	IngestStatusFailed    IngestStatus = "failed"
)

// Item is one product descriptor received over the ingestion webhook
type Item struct {
	ID          string       `json:"id"`
	Shop        string       `json:"shop"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description,omitempty"`
	MediaURL    string       `json:"media_url,omitempty"`
	MediaType   string       `json:"media_type,omitempty"`
	Status      IngestStatus `json:"status"`
	// PostID links the item to the stored post created for it
	PostID       string    `json:"post_id,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Domain errors for webhook ingestion
var (
	ErrItemNotFound  = errors.New("ingested item not found")
	ErrShopNotRouted = errors.New("no enabled template routes this shop")
	ErrMissingShop   = errors.New("item shop cannot be empty")
	ErrMissingTitle  = errors.New("item title cannot be empty")
	ErrMissingURL    = errors.New("item url cannot be empty")
	ErrUnauthorized  = errors.New("webhook token mismatch")
)

// Validate validates the received descriptor
func (i *Item) Validate() error {
	if i.Shop == "" {
		return ErrMissingShop
	}
	if i.Title == "" {
		return ErrMissingTitle
	}
	if i.URL == "" {
		return ErrMissingURL
	}
	return nil
}
