package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	"github.com/vadim/meta-bridge/internal/domain/shoptemplate/entity"
	"github.com/vadim/meta-bridge/internal/domain/shoptemplate/service"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

var validate = validator.New()

// ShopTemplateService defines the interface for shop template operations
type ShopTemplateService interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.ShopTemplate, error)
	GetByID(ctx context.Context, id string) (*entity.ShopTemplate, error)
	Update(ctx context.Context, in service.UpdateInput) (*entity.ShopTemplate, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.ShopTemplate, error)
}

// ShopHandler handles HTTP requests for shop templates
type ShopHandler struct {
	templates ShopTemplateService
}

// NewShopHandler creates a new shop handler
func NewShopHandler(templates ShopTemplateService) *ShopHandler {
	return &ShopHandler{templates: templates}
}

// RegisterRoutes registers shop template routes
func (h *ShopHandler) RegisterRoutes(r chi.Router) {
	r.Route("/shops", func(r chi.Router) {
		r.Post("/", h.Create())
		r.Get("/", h.List())
		r.Get("/{id}", h.Get())
		r.Put("/{id}", h.Update())
		r.Delete("/{id}", h.Delete())
	})
}

// TargetRouteRequest is one routed destination in shop template requests
type TargetRouteRequest struct {
	TargetID string `json:"target_id" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=page group instagram"`
	Origin   string `json:"origin" validate:"required,oneof=personal business"`
}

// CreateShopRequest represents the request body for creating a shop template
type CreateShopRequest struct {
	Shop    string               `json:"shop" validate:"required,max=100"`
	Caption string               `json:"caption" validate:"required,max=2200"`
	Targets []TargetRouteRequest `json:"targets" validate:"required,min=1,dive"`
	Enabled bool                 `json:"enabled"`
}

func toRoutes(reqs []TargetRouteRequest) []entity.TargetRoute {
	routes := make([]entity.TargetRoute, len(reqs))
	for i, t := range reqs {
		routes[i] = entity.TargetRoute{
			TargetID: t.TargetID,
			Kind:     catalog.TargetKind(t.Kind),
			Origin:   catalog.TargetOrigin(t.Origin),
		}
	}
	return routes
}

// Create handles POST /shops
func (h *ShopHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateShopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		tmpl, err := h.templates.Create(r.Context(), service.CreateInput{
			Shop:    req.Shop,
			Caption: req.Caption,
			Targets: toRoutes(req.Targets),
			Enabled: req.Enabled,
		})
		if err != nil {
			handleTemplateError(w, err)
			return
		}

		response.Created(w, tmpl)
	}
}

// List handles GET /shops
func (h *ShopHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := h.templates.List(r.Context())
		if err != nil {
			handleTemplateError(w, err)
			return
		}

		response.OK(w, map[string]interface{}{
			"templates": templates,
			"total":     len(templates),
		})
	}
}

// Get handles GET /shops/{id}
func (h *ShopHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, err := h.templates.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleTemplateError(w, err)
			return
		}

		response.OK(w, tmpl)
	}
}

// UpdateShopRequest represents the request body for updating a shop template
type UpdateShopRequest struct {
	Caption *string              `json:"caption,omitempty" validate:"omitempty,max=2200"`
	Targets []TargetRouteRequest `json:"targets,omitempty" validate:"omitempty,min=1,dive"`
	Enabled *bool                `json:"enabled,omitempty"`
}

// Update handles PUT /shops/{id}
func (h *ShopHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateShopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		in := service.UpdateInput{
			ID:      chi.URLParam(r, "id"),
			Caption: req.Caption,
			Enabled: req.Enabled,
		}
		if req.Targets != nil {
			in.Targets = toRoutes(req.Targets)
		}

		tmpl, err := h.templates.Update(r.Context(), in)
		if err != nil {
			handleTemplateError(w, err)
			return
		}

		response.OK(w, tmpl)
	}
}

// Delete handles DELETE /shops/{id}
func (h *ShopHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleTemplateError(w, err)
			return
		}

		response.NoContent(w)
	}
}
