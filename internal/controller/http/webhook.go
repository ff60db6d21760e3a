package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/meta-bridge/internal/domain/webhook/entity"
	"github.com/vadim/meta-bridge/internal/domain/webhook/policy"
	"github.com/vadim/meta-bridge/internal/domain/webhook/service"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

// MaxWebhookSize is the maximum allowed webhook delivery size (100MB)
const MaxWebhookSize = 100 << 20

// WebhookPolicy defines the interface for webhook ingestion operations
type WebhookPolicy interface {
	Ingest(ctx context.Context, in policy.IngestInput) (*entity.Item, error)
	GetItem(ctx context.Context, id string) (*entity.Item, error)
	ListItems(ctx context.Context, in service.ListInput) (*service.ListOutput, error)
}

// WebhookHandler handles the ingestion webhook and its history
type WebhookHandler struct {
	policy WebhookPolicy
	token  string
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(p WebhookPolicy, token string) *WebhookHandler {
	return &WebhookHandler{policy: p, token: token}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Route("/webhook", func(r chi.Router) {
		r.Post("/items", h.Ingest())
		r.Get("/items", h.List())
		r.Get("/items/{id}", h.Get())
	})
}

// IngestDescriptor carries the item fields of a multipart delivery
type IngestDescriptor struct {
	Store       string `validate:"required,max=100"`
	Title       string `validate:"required,max=500"`
	URL         string `validate:"required,url"`
	Description string `validate:"max=5000"`
}

// Ingest handles POST /webhook/items: a multipart delivery with the item
// descriptor fields and an optional binary attachment under "file"
func (h *WebhookHandler) Ingest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" && r.Header.Get("X-Webhook-Token") != h.token {
			handleWebhookError(w, entity.ErrUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxWebhookSize)
		if err := r.ParseMultipartForm(MaxWebhookSize); err != nil {
			response.BadRequest(w, "invalid multipart form")
			return
		}

		desc := IngestDescriptor{
			Store:       r.FormValue("store"),
			Title:       r.FormValue("title"),
			URL:         r.FormValue("url"),
			Description: r.FormValue("description"),
		}
		if err := validate.Struct(desc); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		in := policy.IngestInput{
			Shop:        desc.Store,
			Title:       desc.Title,
			URL:         desc.URL,
			Description: desc.Description,
		}

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			in.MediaFilename = header.Filename
			in.MediaContentType = header.Header.Get("Content-Type")
			in.MediaBody = file
		}

		item, err := h.policy.Ingest(r.Context(), in)
		if err != nil {
			handleWebhookError(w, err)
			return
		}

		response.Created(w, item)
	}
}

// List handles GET /webhook/items
func (h *WebhookHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := service.ListInput{
			Shop: r.URL.Query().Get("shop"),
		}

		if s := r.URL.Query().Get("status"); s != "" {
			status := entity.IngestStatus(s)
			switch status {
			case entity.IngestStatusReceived, entity.IngestStatusRejected,
				entity.IngestStatusPublished, entity.IngestStatusPartial,
				entity.IngestStatusFailed:
				in.Status = &status
			default:
				response.BadRequest(w, "invalid status filter")
				return
			}
		}

		out, err := h.policy.ListItems(r.Context(), in)
		if err != nil {
			handleWebhookError(w, err)
			return
		}

		response.OK(w, map[string]interface{}{
			"items": out.Items,
			"total": out.Total,
		})
	}
}

// Get handles GET /webhook/items/{id}
func (h *WebhookHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := h.policy.GetItem(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleWebhookError(w, err)
			return
		}

		response.OK(w, item)
	}
}
