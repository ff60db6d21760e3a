package service

import (
	"context"
	"fmt"

	"github.com/vadim/meta-bridge/internal/domain/shoptemplate/entity"
)

// TemplateRepository defines the interface for shop template storage
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *entity.ShopTemplate) error
	GetByID(ctx context.Context, id string) (*entity.ShopTemplate, error)
	GetByShop(ctx context.Context, shop string) (*entity.ShopTemplate, error)
	Update(ctx context.Context, tmpl *entity.ShopTemplate) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.ShopTemplate, error)
	IncrementUsageCount(ctx context.Context, id string) error
}

// Service handles shop template business logic
type Service struct {
	repo TemplateRepository
}

// New creates a new shop template service
func New(repo TemplateRepository) *Service {
	return &Service{repo: repo}
}

// CreateInput represents input for creating a shop template
type CreateInput struct {
	Shop    string
	Caption string
	Targets []entity.TargetRoute
	Enabled bool
}

// Create creates a new shop template; shop names are unique
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.ShopTemplate, error) {
	tmpl := &entity.ShopTemplate{
		Shop:    in.Shop,
		Caption: in.Caption,
		Targets: in.Targets,
		Enabled: in.Enabled,
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByShop(ctx, in.Shop)
	if err != nil {
		return nil, fmt.Errorf("checking shop template: %w", err)
	}
	if existing != nil {
		return nil, entity.ErrShopExists
	}

	if err := s.repo.Create(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("creating shop template: %w", err)
	}

	return tmpl, nil
}

// GetByID retrieves a shop template by ID
func (s *Service) GetByID(ctx context.Context, id string) (*entity.ShopTemplate, error) {
	tmpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting shop template: %w", err)
	}
	if tmpl == nil {
		return nil, entity.ErrTemplateNotFound
	}
	return tmpl, nil
}

// ResolveShop retrieves the enabled template routing a shop's items; a
// disabled or missing template means the shop is not routed
func (s *Service) ResolveShop(ctx context.Context, shop string) (*entity.ShopTemplate, error) {
	tmpl, err := s.repo.GetByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("resolving shop: %w", err)
	}
	if tmpl == nil || !tmpl.Enabled {
		return nil, entity.ErrTemplateNotFound
	}
	return tmpl, nil
}

// UpdateInput represents input for updating a shop template
type UpdateInput struct {
	ID      string
	Caption *string
	Targets []entity.TargetRoute
	Enabled *bool
}

// Update updates an existing shop template
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.ShopTemplate, error) {
	tmpl, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("getting shop template: %w", err)
	}
	if tmpl == nil {
		return nil, entity.ErrTemplateNotFound
	}

	if in.Caption != nil {
		tmpl.Caption = *in.Caption
	}
	if in.Targets != nil {
		tmpl.Targets = in.Targets
	}
	if in.Enabled != nil {
		tmpl.Enabled = *in.Enabled
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("updating shop template: %w", err)
	}

	return tmpl, nil
}

// Delete removes a shop template
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return nil
}

// List retrieves all shop templates
func (s *Service) List(ctx context.Context) ([]entity.ShopTemplate, error) {
	return s.repo.List(ctx)
}

// MarkUsed bumps the usage counter after an item was routed through the
// template; best-effort, a failure does not block the ingestion
func (s *Service) MarkUsed(ctx context.Context, id string) error {
	return s.repo.IncrementUsageCount(ctx, id)
}
