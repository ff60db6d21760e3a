package entity

import (
	"errors"
	"strings"
	"time"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

// TargetRoute is one publishing destination a shop's items are routed to
type TargetRoute struct {
	TargetID string               `json:"target_id"`
	Kind     catalog.TargetKind   `json:"kind"`
	Origin   catalog.TargetOrigin `json:"origin"`
}

// ShopTemplate maps one shop to its caption template and the targets its
// incoming items are published to. The caption may carry {title}, {url} and
// {description} placeholders filled from the item descriptor.
type ShopTemplate struct {
	ID         string        `json:"id"`
	Shop       string        `json:"shop"`
	Caption    string        `json:"caption"`
	Targets    []TargetRoute `json:"targets"`
	Enabled    bool          `json:"enabled"`
	UsageCount int           `json:"usage_count"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Domain errors for shop templates
var (
	ErrTemplateNotFound = errors.New("shop template not found")
	ErrEmptyShop        = errors.New("shop name cannot be empty")
	ErrEmptyCaption     = errors.New("caption template cannot be empty")
	ErrCaptionTooLong   = errors.New("caption template exceeds maximum length")
	ErrNoRoutes         = errors.New("shop template has no targets")
	ErrShopExists       = errors.New("shop template already exists")
)

// MaxCaptionLength is the maximum length of a caption template
const MaxCaptionLength = 2200

// Validate validates shop template fields
func (t *ShopTemplate) Validate() error {
	if t.Shop == "" {
		return ErrEmptyShop
	}
	if t.Caption == "" {
		return ErrEmptyCaption
	}
	if len(t.Caption) > MaxCaptionLength {
		return ErrCaptionTooLong
	}
	if len(t.Targets) == 0 {
		return ErrNoRoutes
	}
	return nil
}

// Render fills the caption placeholders with the item's fields
func (t *ShopTemplate) Render(title, url, description string) string {
	r := strings.NewReplacer(
		"{title}", title,
		"{url}", url,
		"{description}", description,
	)
	return r.Replace(t.Caption)
}
