package entity

import (
	"errors"
	"time"
)

// LinkPreview holds metadata resolved for one detected URL
type LinkPreview struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	SiteName    string    `json:"site_name,omitempty"`
	FetchedAt   time.Time `json:"-"`
}

// HasContent reports whether the resolver found anything beyond the bare URL
func (p LinkPreview) HasContent() bool {
	return p.Title != "" || p.Description != "" || p.Image != ""
}

// Domain errors for link detection
var (
	ErrEmptyText      = errors.New("text is empty")
	ErrUnresolvable   = errors.New("link metadata could not be resolved")
	ErrUnsupportedURL = errors.New("unsupported URL scheme")
)
