package policy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	pubentity "github.com/vadim/meta-bridge/internal/domain/publication/entity"
	pubpolicy "github.com/vadim/meta-bridge/internal/domain/publication/policy"
	pubservice "github.com/vadim/meta-bridge/internal/domain/publication/service"
	shop "github.com/vadim/meta-bridge/internal/domain/shoptemplate/entity"
	"github.com/vadim/meta-bridge/internal/domain/webhook/entity"
	"github.com/vadim/meta-bridge/internal/domain/webhook/service"
)

// ShopRouter defines the interface for resolving a shop's caption template
// and routes
type ShopRouter interface {
	ResolveShop(ctx context.Context, name string) (*shop.ShopTemplate, error)
	MarkUsed(ctx context.Context, id string) error
}

// TargetResolver defines the interface for resolving a stored route against
// the owner's current catalog
type TargetResolver interface {
	ResolveTarget(ctx context.Context, userID string, key catalog.TargetKey) (catalog.PlatformTarget, error)
}

// Submitter defines the interface for dispatching the built submission
type Submitter interface {
	Submit(ctx context.Context, in pubpolicy.SubmitInput) (*pubpolicy.SubmitOutput, error)
}

// Uploader stores the item's binary and returns a publicly reachable URL
type Uploader interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

// Policy orchestrates webhook ingestion: each received item is recorded,
// routed through its shop's template and published to the routed targets
type Policy struct {
	svc       *service.Service
	shops     ShopRouter
	resolver  TargetResolver
	submitter Submitter
	uploader  Uploader
	ownerID   string
	logger    *slog.Logger
}

// New creates a new webhook policy
func New(svc *service.Service, shops ShopRouter, resolver TargetResolver, submitter Submitter, uploader Uploader, ownerID string, logger *slog.Logger) *Policy {
	return &Policy{
		svc:       svc,
		shops:     shops,
		resolver:  resolver,
		submitter: submitter,
		uploader:  uploader,
		ownerID:   ownerID,
		logger:    logger,
	}
}

// IngestInput represents one incoming webhook delivery
type IngestInput struct {
	Shop        string
	Title       string
	URL         string
	Description string

	// Optional binary attachment
	MediaFilename    string
	MediaContentType string
	MediaBody        io.Reader
}

// Ingest records the item and publishes it to the shop's routed targets.
// An item whose shop has no enabled template is stored as rejected and the
// delivery is refused with ErrShopNotRouted.
func (p *Policy) Ingest(ctx context.Context, in IngestInput) (*entity.Item, error) {
	item, err := p.svc.Record(ctx, service.RecordInput{
		Shop:        in.Shop,
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		MediaType:   in.MediaContentType,
	})
	if err != nil {
		return nil, err
	}

	tmpl, err := p.shops.ResolveShop(ctx, item.Shop)
	if err != nil {
		p.logger.Info("no route for shop, item rejected", "shop", item.Shop, "item_id", item.ID)
		if markErr := p.svc.MarkRejected(ctx, item.ID, "no enabled template for shop"); markErr != nil {
			return nil, markErr
		}
		return nil, entity.ErrShopNotRouted
	}

	var media []pubservice.MediaRefInput
	if in.MediaBody != nil {
		key := fmt.Sprintf("webhook/%s_%s", item.ID, in.MediaFilename)
		url, upErr := p.uploader.Upload(ctx, key, in.MediaContentType, in.MediaBody)
		if upErr != nil {
			p.logger.Error("item media upload failed", "item_id", item.ID, "error", upErr)
			if markErr := p.svc.MarkFailed(ctx, item.ID, upErr.Error()); markErr != nil {
				return nil, markErr
			}
			item.Status = entity.IngestStatusFailed
			item.ErrorMessage = upErr.Error()
			return item, nil
		}
		if err := p.svc.SetMediaURL(ctx, item, url); err != nil {
			return nil, err
		}
		media = append(media, pubservice.MediaRefInput{
			URL:         url,
			ContentType: in.MediaContentType,
			IsVideo:     strings.HasPrefix(in.MediaContentType, "video/"),
		})
	}

	targets := p.resolveRoutes(ctx, tmpl.Targets)
	if len(targets) == 0 {
		if markErr := p.svc.MarkFailed(ctx, item.ID, "no routed target could be resolved"); markErr != nil {
			return nil, markErr
		}
		item.Status = entity.IngestStatusFailed
		item.ErrorMessage = "no routed target could be resolved"
		return item, nil
	}

	out, err := p.submitter.Submit(ctx, pubpolicy.SubmitInput{
		UserID:  p.ownerID,
		Text:    tmpl.Render(item.Title, item.URL, item.Description),
		LinkURL: item.URL,
		Targets: targets,
		Media:   media,
	})
	if err != nil {
		p.logger.Error("item submission failed", "item_id", item.ID, "error", err)
		if markErr := p.svc.MarkFailed(ctx, item.ID, err.Error()); markErr != nil {
			return nil, markErr
		}
		item.Status = entity.IngestStatusFailed
		item.ErrorMessage = err.Error()
		return item, nil
	}

	if err := p.shops.MarkUsed(ctx, tmpl.ID); err != nil {
		p.logger.Warn("failed to bump template usage", "template_id", tmpl.ID, "error", err)
	}

	status := ingestStatus(out.Result)
	if err := p.svc.MarkPublished(ctx, item.ID, status, out.Post.ID); err != nil {
		return nil, err
	}
	item.Status = status
	item.PostID = out.Post.ID

	return item, nil
}

// resolveRoutes maps stored routes to live targets; a route whose target has
// disappeared from the owner's catalog is dropped with a log line
func (p *Policy) resolveRoutes(ctx context.Context, routes []shop.TargetRoute) []catalog.PlatformTarget {
	var targets []catalog.PlatformTarget
	for _, route := range routes {
		target, err := p.resolver.ResolveTarget(ctx, p.ownerID, catalog.TargetKey{
			ID:     route.TargetID,
			Origin: route.Origin,
		})
		if err != nil {
			p.logger.Warn("routed target not resolvable",
				"target_id", route.TargetID,
				"origin", route.Origin,
				"error", err,
			)
			continue
		}
		targets = append(targets, target)
	}
	return targets
}

// GetItem retrieves one ingested item
func (p *Policy) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	return p.svc.GetItem(ctx, id)
}

// ListItems retrieves a page of the ingestion history
func (p *Policy) ListItems(ctx context.Context, in service.ListInput) (*service.ListOutput, error) {
	return p.svc.ListItems(ctx, in)
}

// ingestStatus maps the submission's post status to the item's state
func ingestStatus(result *pubentity.PublicationResult) entity.IngestStatus {
	switch result.DeriveStatus() {
	case pubentity.PostStatusPublished:
		return entity.IngestStatusPublished
	case pubentity.PostStatusPartial:
		return entity.IngestStatusPartial
	default:
		return entity.IngestStatusFailed
	}
}
