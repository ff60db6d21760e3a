package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/meta-bridge/internal/domain/webhook/dao"
	"github.com/vadim/meta-bridge/internal/domain/webhook/entity"
)

// Service handles ingested item bookkeeping
type Service struct {
	items dao.ItemRepository
}

// New creates a new webhook service
func New(items dao.ItemRepository) *Service {
	return &Service{items: items}
}

// RecordInput represents one received descriptor
type RecordInput struct {
	Shop        string
	Title       string
	URL         string
	Description string
	MediaType   string
}

// Record stores a freshly received item
func (s *Service) Record(ctx context.Context, in RecordInput) (*entity.Item, error) {
	now := time.Now()
	item := &entity.Item{
		ID:          uuid.New().String(),
		Shop:        in.Shop,
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		MediaType:   in.MediaType,
		Status:      entity.IngestStatusReceived,
		ReceivedAt:  now,
		UpdatedAt:   now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// SetMediaURL records where the item's binary ended up
func (s *Service) SetMediaURL(ctx context.Context, item *entity.Item, url string) error {
	if err := s.items.SetMediaURL(ctx, item.ID, url); err != nil {
		return err
	}
	item.MediaURL = url
	return nil
}

// MarkRejected marks an item whose shop has no enabled route
func (s *Service) MarkRejected(ctx context.Context, id, reason string) error {
	return s.items.UpdateStatus(ctx, id, entity.IngestStatusRejected, "", reason)
}

// MarkFailed marks an item whose submission could not be dispatched
func (s *Service) MarkFailed(ctx context.Context, id, reason string) error {
	return s.items.UpdateStatus(ctx, id, entity.IngestStatusFailed, "", reason)
}

// MarkPublished records the dispatch outcome of an item
func (s *Service) MarkPublished(ctx context.Context, id string, status entity.IngestStatus, postID string) error {
	return s.items.UpdateStatus(ctx, id, status, postID, "")
}

// GetItem retrieves one ingested item
func (s *Service) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, entity.ErrItemNotFound
	}
	return item, nil
}

// ListInput represents input for listing ingested items
type ListInput struct {
	Shop   string
	Status *entity.IngestStatus
	Limit  int
	Offset int
}

// ListOutput represents the result of listing ingested items
type ListOutput struct {
	Items []entity.Item
	Total int64
}

// ListItems retrieves a page of the ingestion history, newest first
func (s *Service) ListItems(ctx context.Context, in ListInput) (*ListOutput, error) {
	filter := dao.ItemFilter{Shop: in.Shop, Status: in.Status}

	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	items, err := s.items.List(ctx, filter, dao.ListOptions{Limit: limit, Offset: in.Offset})
	if err != nil {
		return nil, err
	}

	total, err := s.items.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Items: items, Total: total}, nil
}
