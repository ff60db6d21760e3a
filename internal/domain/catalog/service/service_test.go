package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vadim/meta-bridge/internal/domain/catalog/dao"
	"github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

type fakeAccounts struct {
	tokens map[string]string
}

func (f *fakeAccounts) Upsert(context.Context, *dao.Account) error { return nil }

func (f *fakeAccounts) GetByUserID(_ context.Context, userID string) (*dao.Account, error) {
	token, ok := f.tokens[userID]
	if !ok {
		return nil, nil
	}
	return &dao.Account{UserID: userID, AccessToken: token}, nil
}

func (f *fakeAccounts) GetAccessToken(_ context.Context, userID string) (string, error) {
	token, ok := f.tokens[userID]
	if !ok {
		return "", errors.New("no account")
	}
	return token, nil
}

func (f *fakeAccounts) List(context.Context) ([]dao.Account, error) { return nil, nil }

func (f *fakeAccounts) Delete(context.Context, string) error { return nil }

type fakeLoader struct {
	mu      sync.Mutex
	loads   int
	catalog func() *entity.Catalog
	related []entity.Suggestion
}

func (f *fakeLoader) LoadCatalog(_ context.Context, userID, _ string) (*entity.Catalog, error) {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()

	cat := f.catalog()
	cat.UserID = userID
	return cat, nil
}

func (f *fakeLoader) RelatedPlatforms(context.Context, string, string) ([]entity.Suggestion, error) {
	return f.related, nil
}

func (f *fakeLoader) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func testCatalog() *entity.Catalog {
	return &entity.Catalog{
		PersonalPages: []entity.PlatformTarget{
			entity.NewTarget("pp-1", "My Page", entity.TargetKindPage, entity.TargetOriginPersonal),
		},
		PersonalGroups: []entity.PlatformTarget{
			entity.NewTarget("pg-1", "My Group", entity.TargetKindGroup, entity.TargetOriginPersonal),
		},
		BusinessManagers: []entity.BusinessManager{
			{
				ID:   "bm-1",
				Name: "Acme Media",
				Pages: []entity.PlatformTarget{
					entity.NewTarget("bp-1", "Acme Page", entity.TargetKindPage, entity.TargetOriginBusiness),
				},
				InstagramAccounts: []entity.PlatformTarget{
					entity.NewTarget("big-1", "@acme", entity.TargetKindInstagram, entity.TargetOriginBusiness),
				},
			},
			{
				ID:   "bm-2",
				Name: "Acme Outlet",
				Pages: []entity.PlatformTarget{
					entity.NewTarget("bp-2", "Outlet Page", entity.TargetKindPage, entity.TargetOriginBusiness),
				},
			},
		},
	}
}

func newCatalogService(loader *fakeLoader) *Service {
	return New(&fakeAccounts{tokens: map[string]string{"user-1": "token-1"}}, loader)
}

func TestLoadCachesSnapshot(t *testing.T) {
	loader := &fakeLoader{catalog: testCatalog}
	svc := newCatalogService(loader)
	ctx := context.Background()

	cat, err := svc.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.PersonalPages) != 1 {
		t.Errorf("Expected 1 personal page, got %d", len(cat.PersonalPages))
	}

	// Second load serves the cached snapshot
	if _, err := svc.Load(ctx, "user-1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loader.loadCount() != 1 {
		t.Errorf("Expected 1 upstream load, got %d", loader.loadCount())
	}

	// Refresh goes upstream again and bumps the version
	fresh, err := svc.Refresh(ctx, "user-1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if loader.loadCount() != 2 {
		t.Errorf("Expected 2 upstream loads, got %d", loader.loadCount())
	}
	if fresh.Version <= cat.Version {
		t.Errorf("Expected version to advance, got %d then %d", cat.Version, fresh.Version)
	}
}

func TestLoadWithoutAccount(t *testing.T) {
	svc := New(&fakeAccounts{tokens: map[string]string{}}, &fakeLoader{catalog: testCatalog})

	if _, err := svc.Load(context.Background(), "stranger"); !errors.Is(err, entity.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestManagerSelection(t *testing.T) {
	svc := newCatalogService(&fakeLoader{catalog: testCatalog})
	ctx := context.Background()

	t.Run("buckets are empty before selection", func(t *testing.T) {
		b, err := svc.Buckets(ctx, "user-1")
		if err != nil {
			t.Fatalf("Buckets failed: %v", err)
		}
		if len(b.PersonalPages) != 1 || len(b.PersonalGroups) != 1 {
			t.Errorf("Expected personal buckets populated, got %+v", b)
		}
		if len(b.BusinessPages) != 0 || len(b.BusinessInstagram) != 0 {
			t.Errorf("Expected empty business buckets without a manager, got %+v", b)
		}
	})

	t.Run("selection narrows business buckets", func(t *testing.T) {
		mgr, err := svc.SelectManager(ctx, "user-1", "bm-1")
		if err != nil {
			t.Fatalf("SelectManager failed: %v", err)
		}
		if mgr.Name != "Acme Media" {
			t.Errorf("Expected manager 'Acme Media', got '%s'", mgr.Name)
		}

		b, _ := svc.Buckets(ctx, "user-1")
		if len(b.BusinessPages) != 1 || b.BusinessPages[0].ID != "bp-1" {
			t.Errorf("Expected bm-1 pages, got %+v", b.BusinessPages)
		}
		if len(b.BusinessInstagram) != 1 {
			t.Errorf("Expected bm-1 instagram, got %+v", b.BusinessInstagram)
		}
	})

	t.Run("switching replaces the selection", func(t *testing.T) {
		if _, err := svc.SelectManager(ctx, "user-1", "bm-2"); err != nil {
			t.Fatalf("SelectManager failed: %v", err)
		}
		b, _ := svc.Buckets(ctx, "user-1")
		if len(b.BusinessPages) != 1 || b.BusinessPages[0].ID != "bp-2" {
			t.Errorf("Expected bm-2 pages after switch, got %+v", b.BusinessPages)
		}
	})

	t.Run("unknown manager", func(t *testing.T) {
		if _, err := svc.SelectManager(ctx, "user-1", "bm-404"); !errors.Is(err, entity.ErrManagerNotFound) {
			t.Errorf("Expected ErrManagerNotFound, got %v", err)
		}
	})

	t.Run("clear empties the business buckets", func(t *testing.T) {
		svc.ClearManager("user-1")
		if mgr := svc.SelectedManager("user-1"); mgr != nil {
			t.Errorf("Expected no selected manager, got %+v", mgr)
		}
		b, _ := svc.Buckets(ctx, "user-1")
		if len(b.BusinessPages) != 0 {
			t.Errorf("Expected empty business buckets after clear, got %+v", b.BusinessPages)
		}
	})
}

func TestRefreshDropsVanishedManager(t *testing.T) {
	loader := &fakeLoader{catalog: testCatalog}
	svc := newCatalogService(loader)
	ctx := context.Background()

	if _, err := svc.SelectManager(ctx, "user-1", "bm-2"); err != nil {
		t.Fatalf("SelectManager failed: %v", err)
	}

	// The next snapshot no longer carries bm-2
	loader.catalog = func() *entity.Catalog {
		cat := testCatalog()
		cat.BusinessManagers = cat.BusinessManagers[:1]
		return cat
	}

	if _, err := svc.Refresh(ctx, "user-1"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if mgr := svc.SelectedManager("user-1"); mgr != nil {
		t.Errorf("Expected vanished manager to be dropped, got %+v", mgr)
	}
}

func TestResolveTarget(t *testing.T) {
	svc := newCatalogService(&fakeLoader{catalog: testCatalog})
	ctx := context.Background()

	t.Run("personal target", func(t *testing.T) {
		got, err := svc.ResolveTarget(ctx, "user-1", entity.TargetKey{ID: "pp-1", Origin: entity.TargetOriginPersonal})
		if err != nil {
			t.Fatalf("ResolveTarget failed: %v", err)
		}
		if got.Origin != entity.TargetOriginPersonal {
			t.Errorf("Expected personal origin, got '%s'", got.Origin)
		}
	})

	t.Run("business target needs a selected manager", func(t *testing.T) {
		key := entity.TargetKey{ID: "bp-1", Origin: entity.TargetOriginBusiness}

		if _, err := svc.ResolveTarget(ctx, "user-1", key); !errors.Is(err, entity.ErrTargetNotFound) {
			t.Errorf("Expected ErrTargetNotFound without a manager, got %v", err)
		}

		svc.SelectManager(ctx, "user-1", "bm-1")
		got, err := svc.ResolveTarget(ctx, "user-1", key)
		if err != nil {
			t.Fatalf("ResolveTarget failed: %v", err)
		}
		if got.ID != "bp-1" || got.Origin != entity.TargetOriginBusiness {
			t.Errorf("Expected bp-1 with business origin, got %+v", got)
		}
	})

	t.Run("instagram target requires media", func(t *testing.T) {
		svc.SelectManager(ctx, "user-1", "bm-1")
		got, err := svc.ResolveTarget(ctx, "user-1", entity.TargetKey{ID: "big-1", Origin: entity.TargetOriginBusiness})
		if err != nil {
			t.Fatalf("ResolveTarget failed: %v", err)
		}
		if !got.RequiresMedia {
			t.Error("Expected instagram target to require media")
		}
	})
}
