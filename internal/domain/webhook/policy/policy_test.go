package policy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	pubentity "github.com/vadim/meta-bridge/internal/domain/publication/entity"
	pubpolicy "github.com/vadim/meta-bridge/internal/domain/publication/policy"
	shop "github.com/vadim/meta-bridge/internal/domain/shoptemplate/entity"
	"github.com/vadim/meta-bridge/internal/domain/webhook/dao"
	"github.com/vadim/meta-bridge/internal/domain/webhook/entity"
	"github.com/vadim/meta-bridge/internal/domain/webhook/service"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type memItems struct {
	items map[string]*entity.Item
}

func newMemItems() *memItems { return &memItems{items: make(map[string]*entity.Item)} }

func (m *memItems) Create(_ context.Context, item *entity.Item) error {
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memItems) GetByID(_ context.Context, id string) (*entity.Item, error) {
	i, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (m *memItems) UpdateStatus(_ context.Context, id string, status entity.IngestStatus, postID, errorMsg string) error {
	i, ok := m.items[id]
	if !ok {
		return entity.ErrItemNotFound
	}
	i.Status = status
	i.PostID = postID
	i.ErrorMessage = errorMsg
	return nil
}

func (m *memItems) SetMediaURL(_ context.Context, id, url string) error {
	i, ok := m.items[id]
	if !ok {
		return entity.ErrItemNotFound
	}
	i.MediaURL = url
	return nil
}

func (m *memItems) List(_ context.Context, filter dao.ItemFilter, _ dao.ListOptions) ([]entity.Item, error) {
	var out []entity.Item
	for _, i := range m.items {
		if filter.Shop != "" && i.Shop != filter.Shop {
			continue
		}
		if filter.Status != nil && i.Status != *filter.Status {
			continue
		}
		out = append(out, *i)
	}
	return out, nil
}

func (m *memItems) Count(ctx context.Context, filter dao.ItemFilter) (int64, error) {
	items, _ := m.List(ctx, filter, dao.ListOptions{})
	return int64(len(items)), nil
}

type fakeShops struct {
	templates map[string]*shop.ShopTemplate
	used      []string
}

func (f *fakeShops) ResolveShop(_ context.Context, name string) (*shop.ShopTemplate, error) {
	t, ok := f.templates[name]
	if !ok {
		return nil, shop.ErrTemplateNotFound
	}
	return t, nil
}

func (f *fakeShops) MarkUsed(_ context.Context, id string) error {
	f.used = append(f.used, id)
	return nil
}

type fakeResolver struct {
	targets map[catalog.TargetKey]catalog.PlatformTarget
}

func (f *fakeResolver) ResolveTarget(_ context.Context, _ string, key catalog.TargetKey) (catalog.PlatformTarget, error) {
	t, ok := f.targets[key]
	if !ok {
		return catalog.PlatformTarget{}, catalog.ErrTargetNotFound
	}
	return t, nil
}

type fakeSubmitter struct {
	inputs []pubpolicy.SubmitInput
	result *pubentity.PublicationResult
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, in pubpolicy.SubmitInput) (*pubpolicy.SubmitOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &pubpolicy.SubmitOutput{
		Post:   &pubentity.Post{ID: "post-1", Status: f.result.DeriveStatus()},
		Result: f.result,
	}, nil
}

type fakeUploader struct {
	err error
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + key, nil
}

func successResult(published, failed int) *pubentity.PublicationResult {
	r := &pubentity.PublicationResult{}
	for i := 0; i < published; i++ {
		o := pubentity.TargetOutcome{Status: pubentity.OutcomeSuccess}
		if i == 0 {
			r.SetMain(o)
		} else {
			r.AddAdditional(o)
		}
	}
	for i := 0; i < failed; i++ {
		r.AddAdditional(pubentity.TargetOutcome{
			Target: pubentity.TargetRef{Kind: catalog.TargetKindGroup},
			Status: pubentity.OutcomeFailure,
		})
	}
	return r
}

func routedTemplate() *shop.ShopTemplate {
	return &shop.ShopTemplate{
		ID:      "tpl-1",
		Shop:    "acme",
		Caption: "{title}\n{description}\n{url}",
		Targets: []shop.TargetRoute{
			{TargetID: "page-1", Kind: catalog.TargetKindPage, Origin: catalog.TargetOriginPersonal},
		},
		Enabled: true,
	}
}

func pageTarget() catalog.PlatformTarget {
	return catalog.NewTarget("page-1", "Acme Page", catalog.TargetKindPage, catalog.TargetOriginPersonal)
}

type env struct {
	policy    *Policy
	items     *memItems
	shops     *fakeShops
	submitter *fakeSubmitter
}

func newEnv(submitter *fakeSubmitter, uploader *fakeUploader, resolver *fakeResolver) *env {
	items := newMemItems()
	shops := &fakeShops{templates: map[string]*shop.ShopTemplate{"acme": routedTemplate()}}
	if submitter == nil {
		submitter = &fakeSubmitter{result: successResult(1, 0)}
	}
	if uploader == nil {
		uploader = &fakeUploader{}
	}
	if resolver == nil {
		target := pageTarget()
		resolver = &fakeResolver{targets: map[catalog.TargetKey]catalog.PlatformTarget{
			target.Key(): target,
		}}
	}
	return &env{
		policy:    New(service.New(items), shops, resolver, submitter, uploader, "owner-1", testLogger),
		items:     items,
		shops:     shops,
		submitter: submitter,
	}
}

func descriptor() IngestInput {
	return IngestInput{
		Shop:        "acme",
		Title:       "Leather Bag",
		URL:         "https://acme.example.com/bag",
		Description: "Hand-stitched.",
	}
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("routed item is published", func(t *testing.T) {
		e := newEnv(nil, nil, nil)

		item, err := e.policy.Ingest(ctx, descriptor())
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if item.Status != entity.IngestStatusPublished {
			t.Errorf("Expected status 'published', got '%s'", item.Status)
		}
		if item.PostID != "post-1" {
			t.Errorf("Expected post id recorded, got %q", item.PostID)
		}

		if len(e.submitter.inputs) != 1 {
			t.Fatalf("Expected 1 submission, got %d", len(e.submitter.inputs))
		}
		in := e.submitter.inputs[0]
		if in.UserID != "owner-1" {
			t.Errorf("Expected submission as owner-1, got %q", in.UserID)
		}
		wantText := "Leather Bag\nHand-stitched.\nhttps://acme.example.com/bag"
		if in.Text != wantText {
			t.Errorf("Expected rendered caption %q, got %q", wantText, in.Text)
		}
		if in.LinkURL != "https://acme.example.com/bag" {
			t.Errorf("Expected item URL as link, got %q", in.LinkURL)
		}
		if len(in.Targets) != 1 || in.Targets[0].ID != "page-1" {
			t.Errorf("Expected routed target page-1, got %+v", in.Targets)
		}

		if len(e.shops.used) != 1 || e.shops.used[0] != "tpl-1" {
			t.Errorf("Expected template usage bumped, got %v", e.shops.used)
		}
	})

	t.Run("attached binary is uploaded and submitted", func(t *testing.T) {
		e := newEnv(nil, nil, nil)

		in := descriptor()
		in.MediaFilename = "bag.jpg"
		in.MediaContentType = "image/jpeg"
		in.MediaBody = strings.NewReader("binary")

		item, err := e.policy.Ingest(ctx, in)
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if item.MediaURL == "" {
			t.Error("Expected media URL recorded on the item")
		}
		sub := e.submitter.inputs[0]
		if len(sub.Media) != 1 || sub.Media[0].URL != item.MediaURL {
			t.Errorf("Expected uploaded media in the submission, got %+v", sub.Media)
		}
	})

	t.Run("unrouted shop is rejected", func(t *testing.T) {
		e := newEnv(nil, nil, nil)

		in := descriptor()
		in.Shop = "unknown-shop"
		if _, err := e.policy.Ingest(ctx, in); !errors.Is(err, entity.ErrShopNotRouted) {
			t.Fatalf("Expected ErrShopNotRouted, got %v", err)
		}
		if len(e.submitter.inputs) != 0 {
			t.Errorf("Expected no submission, got %d", len(e.submitter.inputs))
		}

		stored, err := e.items.List(ctx, dao.ItemFilter{Shop: "unknown-shop"}, dao.ListOptions{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("Expected the rejected item recorded, got %d items", len(stored))
		}
		if stored[0].Status != entity.IngestStatusRejected {
			t.Errorf("Expected status 'rejected', got '%s'", stored[0].Status)
		}
	})

	t.Run("invalid descriptor is rejected", func(t *testing.T) {
		e := newEnv(nil, nil, nil)

		in := descriptor()
		in.Title = ""
		if _, err := e.policy.Ingest(ctx, in); !errors.Is(err, entity.ErrMissingTitle) {
			t.Errorf("Expected ErrMissingTitle, got %v", err)
		}
	})

	t.Run("upload failure marks the item failed", func(t *testing.T) {
		e := newEnv(nil, &fakeUploader{err: errors.New("storage unavailable")}, nil)

		in := descriptor()
		in.MediaFilename = "bag.jpg"
		in.MediaContentType = "image/jpeg"
		in.MediaBody = strings.NewReader("binary")

		item, err := e.policy.Ingest(ctx, in)
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if item.Status != entity.IngestStatusFailed {
			t.Errorf("Expected status 'failed', got '%s'", item.Status)
		}
		if item.ErrorMessage == "" {
			t.Error("Expected error message on the item")
		}
	})

	t.Run("unresolvable routes mark the item failed", func(t *testing.T) {
		e := newEnv(nil, nil, &fakeResolver{targets: map[catalog.TargetKey]catalog.PlatformTarget{}})

		item, err := e.policy.Ingest(ctx, descriptor())
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if item.Status != entity.IngestStatusFailed {
			t.Errorf("Expected status 'failed', got '%s'", item.Status)
		}
		if len(e.submitter.inputs) != 0 {
			t.Errorf("Expected no submission, got %d", len(e.submitter.inputs))
		}
	})

	t.Run("partial submission surfaces as partial", func(t *testing.T) {
		e := newEnv(&fakeSubmitter{result: successResult(1, 1)}, nil, nil)

		item, err := e.policy.Ingest(ctx, descriptor())
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if item.Status != entity.IngestStatusPartial {
			t.Errorf("Expected status 'partial', got '%s'", item.Status)
		}
	})

	t.Run("submission error marks the item failed", func(t *testing.T) {
		e := newEnv(&fakeSubmitter{err: errors.New("graph API down")}, nil, nil)

		item, err := e.policy.Ingest(ctx, descriptor())
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if item.Status != entity.IngestStatusFailed {
			t.Errorf("Expected status 'failed', got '%s'", item.Status)
		}

		// The stored record agrees with the returned one
		stored, err := e.policy.GetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if stored.Status != entity.IngestStatusFailed {
			t.Errorf("Expected stored status 'failed', got '%s'", stored.Status)
		}
	})
}
