package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/meta-bridge/internal/domain/publication/entity"
	"github.com/vadim/meta-bridge/internal/domain/publication/service"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

// PostPolicy defines the interface for stored post operations
type PostPolicy interface {
	GetPost(ctx context.Context, id string) (*entity.Post, error)
	ListPosts(ctx context.Context, in service.ListInput) (*service.ListOutput, error)
	DeletePost(ctx context.Context, id string) error
}

// PostHandler handles HTTP requests for the post history
type PostHandler struct {
	policy PostPolicy
}

// NewPostHandler creates a new post handler
func NewPostHandler(policy PostPolicy) *PostHandler {
	return &PostHandler{policy: policy}
}

// RegisterRoutes registers post routes
func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.List())
		r.Get("/{id}", h.Get())
		r.Delete("/{id}", h.Delete())
	})
}

// List handles GET /posts
func (h *PostHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		in := service.ListInput{UserID: userID}

		if s := r.URL.Query().Get("status"); s != "" {
			status := entity.PostStatus(s)
			switch status {
			case entity.PostStatusPending, entity.PostStatusScheduled,
				entity.PostStatusPublished, entity.PostStatusPartial,
				entity.PostStatusFailed:
				in.Status = &status
			default:
				response.BadRequest(w, "invalid status filter")
				return
			}
		}

		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				in.Limit = n
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				in.Offset = n
			}
		}

		out, err := h.policy.ListPosts(r.Context(), in)
		if err != nil {
			handlePublicationError(w, err)
			return
		}

		response.OK(w, map[string]interface{}{
			"posts": out.Posts,
			"total": out.Total,
		})
	}
}

// Get handles GET /posts/{id}
func (h *PostHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.policy.GetPost(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handlePublicationError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Delete handles DELETE /posts/{id}
func (h *PostHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.policy.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
			handlePublicationError(w, err)
			return
		}

		response.NoContent(w)
	}
}
