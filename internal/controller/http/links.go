package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/meta-bridge/internal/domain/links/entity"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

// LinkService defines the interface for link detection operations
type LinkService interface {
	DetectLinks(ctx context.Context, text string, dismissed map[string]bool) []entity.LinkPreview
}

// LinkHandler handles HTTP requests for link detection
type LinkHandler struct {
	links LinkService
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(links LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

// RegisterRoutes registers link routes
func (h *LinkHandler) RegisterRoutes(r chi.Router) {
	r.Post("/links/detect", h.Detect())
}

// DetectRequest represents the request body for detecting links in a text
type DetectRequest struct {
	Text string `json:"text"`
	// Dismissed URLs are never re-detected
	Dismissed []string `json:"dismissed,omitempty"`
}

// Detect handles POST /links/detect: extracts URLs from the text and
// resolves their previews. URLs that cannot be resolved are silently
// omitted from the answer.
func (h *LinkHandler) Detect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DetectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		dismissed := make(map[string]bool, len(req.Dismissed))
		for _, u := range req.Dismissed {
			dismissed[u] = true
		}

		previews := h.links.DetectLinks(r.Context(), req.Text, dismissed)
		if previews == nil {
			previews = []entity.LinkPreview{}
		}

		response.OK(w, map[string]interface{}{
			"links": previews,
		})
	}
}
