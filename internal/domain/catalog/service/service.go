package service

import (
	"context"
	"sync"

	"github.com/vadim/meta-bridge/internal/domain/catalog/dao"
	"github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

// Loader defines the interface for loading a catalog snapshot from the Graph
// API. Defined here (consumer) not in the upstream package (provider).
type Loader interface {
	LoadCatalog(ctx context.Context, userID, accessToken string) (*entity.Catalog, error)
	RelatedPlatforms(ctx context.Context, pageID, pageToken string) ([]entity.Suggestion, error)
}

// session is the per-user catalog state: the newest snapshot plus the
// currently selected business manager
type session struct {
	catalog         *entity.Catalog
	selectedManager string
}

// Service handles catalog loading, caching and business-manager selection
type Service struct {
	accounts dao.AccountRepository
	loader   Loader

	mu       sync.Mutex
	sessions map[string]*session
	version  int64
}

// New creates a new catalog service
func New(accounts dao.AccountRepository, loader Loader) *Service {
	return &Service{
		accounts: accounts,
		loader:   loader,
		sessions: make(map[string]*session),
	}
}

// Load returns the cached catalog for a user, fetching it on first use.
// One fetch per session; use Refresh for an explicit reload.
func (s *Service) Load(ctx context.Context, userID string) (*entity.Catalog, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok && sess.catalog != nil {
		cat := sess.catalog
		s.mu.Unlock()
		return cat, nil
	}
	s.mu.Unlock()

	return s.Refresh(ctx, userID)
}

// Refresh fetches a fresh catalog snapshot, replacing the previous one
// wholesale. A manager selection racing the refresh is re-applied against the
// new snapshot: a selected manager absent from it is dropped.
func (s *Service) Refresh(ctx context.Context, userID string) (*entity.Catalog, error) {
	token, err := s.accounts.GetAccessToken(ctx, userID)
	if err != nil {
		return nil, entity.ErrAccountNotFound
	}

	cat, err := s.loader.LoadCatalog(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	cat.Version = s.version

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	sess.catalog = cat
	if sess.selectedManager != "" && cat.Manager(sess.selectedManager) == nil {
		sess.selectedManager = ""
	}

	return cat, nil
}

// SelectManager selects a business manager against the newest snapshot and
// returns it. At most one manager is selected at a time.
func (s *Service) SelectManager(ctx context.Context, userID, managerID string) (*entity.BusinessManager, error) {
	if _, err := s.Load(ctx, userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.catalog == nil {
		return nil, entity.ErrCatalogNotLoaded
	}

	mgr := sess.catalog.Manager(managerID)
	if mgr == nil {
		return nil, entity.ErrManagerNotFound
	}

	sess.selectedManager = managerID
	return mgr, nil
}

// ClearManager deselects the business manager for a user
func (s *Service) ClearManager(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.selectedManager = ""
	}
}

// SelectedManager returns the currently selected manager, or nil
func (s *Service) SelectedManager(userID string) *entity.BusinessManager {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.catalog == nil || sess.selectedManager == "" {
		return nil
	}
	return sess.catalog.Manager(sess.selectedManager)
}

// Buckets returns the catalog view for a user: business buckets narrowed to
// the selected manager, empty when none is selected
func (s *Service) Buckets(ctx context.Context, userID string) (*entity.Buckets, error) {
	cat, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	b := &entity.Buckets{
		PersonalPages:  cat.PersonalPages,
		PersonalGroups: cat.PersonalGroups,
	}

	if mgr := s.SelectedManager(userID); mgr != nil {
		b.BusinessPages = mgr.Pages
		b.BusinessGroups = mgr.Groups
		b.BusinessInstagram = mgr.InstagramAccounts
	}

	return b, nil
}

// ResolveTarget finds a target in the user's current snapshot by (id, origin)
// and returns a fresh copy with the origin stamped
func (s *Service) ResolveTarget(ctx context.Context, userID string, key entity.TargetKey) (entity.PlatformTarget, error) {
	buckets, err := s.Buckets(ctx, userID)
	if err != nil {
		return entity.PlatformTarget{}, err
	}

	var pool []entity.PlatformTarget
	switch key.Origin {
	case entity.TargetOriginPersonal:
		pool = append(pool, buckets.PersonalPages...)
		pool = append(pool, buckets.PersonalGroups...)
	case entity.TargetOriginBusiness:
		pool = append(pool, buckets.BusinessPages...)
		pool = append(pool, buckets.BusinessGroups...)
		pool = append(pool, buckets.BusinessInstagram...)
	default:
		return entity.PlatformTarget{}, entity.ErrInvalidTargetOrigin
	}

	for _, t := range pool {
		if t.ID == key.ID {
			return t.WithOrigin(key.Origin), nil
		}
	}

	return entity.PlatformTarget{}, entity.ErrTargetNotFound
}

// RelatedPlatforms returns smart-mode suggestions for a primary page: its
// linked Instagram account and the groups it can publish to
func (s *Service) RelatedPlatforms(ctx context.Context, userID, pageID string) ([]entity.Suggestion, error) {
	cat, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	page, ok := findPage(cat, pageID)
	if !ok {
		return nil, entity.ErrTargetNotFound
	}

	token := page.AccessToken
	if token == "" {
		token, err = s.accounts.GetAccessToken(ctx, userID)
		if err != nil {
			return nil, entity.ErrAccountNotFound
		}
	}

	return s.loader.RelatedPlatforms(ctx, pageID, token)
}

func findPage(cat *entity.Catalog, pageID string) (entity.PlatformTarget, bool) {
	for _, t := range cat.PersonalPages {
		if t.ID == pageID {
			return t, true
		}
	}
	for _, m := range cat.BusinessManagers {
		for _, t := range m.Pages {
			if t.ID == pageID {
				return t, true
			}
		}
	}
	return entity.PlatformTarget{}, false
}
