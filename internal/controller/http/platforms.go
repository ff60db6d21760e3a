package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

// CatalogService defines the interface for platform catalog operations
// Interface is defined by consumer (handler), not provider (service)
type CatalogService interface {
	Load(ctx context.Context, userID string) (*catalog.Catalog, error)
	Refresh(ctx context.Context, userID string) (*catalog.Catalog, error)
	SelectManager(ctx context.Context, userID, managerID string) (*catalog.BusinessManager, error)
	ClearManager(userID string)
	Buckets(ctx context.Context, userID string) (*catalog.Buckets, error)
	RelatedPlatforms(ctx context.Context, userID, pageID string) ([]catalog.Suggestion, error)
}

// DraftPruner defines the interface for dropping stale business targets
// from a draft after the manager selection changed
type DraftPruner interface {
	PruneBusinessTargets(id string, mgr *catalog.BusinessManager) ([]catalog.PlatformTarget, error)
}

// PlatformHandler handles HTTP requests for the platform catalog
type PlatformHandler struct {
	catalogs CatalogService
	pruner   DraftPruner
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(catalogs CatalogService, pruner DraftPruner) *PlatformHandler {
	return &PlatformHandler{catalogs: catalogs, pruner: pruner}
}

// RegisterRoutes registers platform routes
func (h *PlatformHandler) RegisterRoutes(r chi.Router) {
	r.Route("/platforms", func(r chi.Router) {
		r.Get("/", h.Buckets())
		r.Post("/refresh", h.Refresh())
		r.Get("/managers", h.Managers())
		r.Put("/manager", h.SelectManager())
		r.Delete("/manager", h.ClearManager())
		r.Get("/pages/{pageID}/related", h.Related())
	})
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.BadRequest(w, "user_id is required")
		return "", false
	}
	return userID, true
}

// Buckets handles GET /platforms. Business buckets reflect the selected
// manager and are empty when none is selected.
func (h *PlatformHandler) Buckets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		buckets, err := h.catalogs.Buckets(r.Context(), userID)
		if err != nil {
			handleCatalogError(w, err)
			return
		}

		response.OK(w, buckets)
	}
}

// Refresh handles POST /platforms/refresh: replaces the catalog snapshot
func (h *PlatformHandler) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		cat, err := h.catalogs.Refresh(r.Context(), userID)
		if err != nil {
			handleCatalogError(w, err)
			return
		}

		response.OK(w, cat)
	}
}

// ManagerInfo is the list representation of a business manager
type ManagerInfo struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	PageCount          int    `json:"page_count"`
	GroupCount         int    `json:"group_count"`
	InstagramCount     int    `json:"instagram_count"`
	VerificationStatus string `json:"verification_status,omitempty"`
}

// Managers handles GET /platforms/managers
func (h *PlatformHandler) Managers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		cat, err := h.catalogs.Load(r.Context(), userID)
		if err != nil {
			handleCatalogError(w, err)
			return
		}

		managers := make([]ManagerInfo, len(cat.BusinessManagers))
		for i, m := range cat.BusinessManagers {
			managers[i] = ManagerInfo{
				ID:                 m.ID,
				Name:               m.Name,
				PageCount:          len(m.Pages),
				GroupCount:         len(m.Groups),
				InstagramCount:     len(m.InstagramAccounts),
				VerificationStatus: m.VerificationStatus,
			}
		}

		response.OK(w, map[string]interface{}{
			"managers": managers,
			"total":    len(managers),
		})
	}
}

// SelectManagerRequest represents the request body for selecting a manager
type SelectManagerRequest struct {
	UserID    string `json:"user_id"`
	ManagerID string `json:"manager_id"`
	// DraftID names the draft whose business selections must follow the
	// narrowed catalog; optional
	DraftID string `json:"draft_id,omitempty"`
}

// SelectManager handles PUT /platforms/manager. Selecting a manager narrows
// the business buckets to it; business targets selected on the draft that
// the new manager does not own are removed, personal selections stay.
func (h *PlatformHandler) SelectManager() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectManagerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if req.UserID == "" || req.ManagerID == "" {
			response.BadRequest(w, "user_id and manager_id are required")
			return
		}

		mgr, err := h.catalogs.SelectManager(r.Context(), req.UserID, req.ManagerID)
		if err != nil {
			handleCatalogError(w, err)
			return
		}

		var removed []catalog.PlatformTarget
		if req.DraftID != "" {
			removed, err = h.pruner.PruneBusinessTargets(req.DraftID, mgr)
			if err != nil {
				handleComposerError(w, err)
				return
			}
		}

		response.OK(w, map[string]interface{}{
			"manager":         mgr,
			"removed_targets": removed,
		})
	}
}

// ClearManagerRequest represents the request body for clearing the manager
type ClearManagerRequest struct {
	UserID  string `json:"user_id"`
	DraftID string `json:"draft_id,omitempty"`
}

// ClearManager handles DELETE /platforms/manager: drops the selection and,
// with it, every business target on the named draft
func (h *PlatformHandler) ClearManager() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClearManagerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if req.UserID == "" {
			response.BadRequest(w, "user_id is required")
			return
		}

		h.catalogs.ClearManager(req.UserID)

		var removed []catalog.PlatformTarget
		if req.DraftID != "" {
			var err error
			removed, err = h.pruner.PruneBusinessTargets(req.DraftID, nil)
			if err != nil {
				handleComposerError(w, err)
				return
			}
		}

		response.OK(w, map[string]interface{}{
			"removed_targets": removed,
		})
	}
}

// Related handles GET /platforms/pages/{pageID}/related: the page's linked
// Instagram account and groups, for smart mode suggestions
func (h *PlatformHandler) Related() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		suggestions, err := h.catalogs.RelatedPlatforms(r.Context(), userID, chi.URLParam(r, "pageID"))
		if err != nil {
			handleCatalogError(w, err)
			return
		}

		response.OK(w, map[string]interface{}{
			"suggestions": suggestions,
		})
	}
}
