package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	"github.com/vadim/meta-bridge/internal/domain/composer/entity"
	"github.com/vadim/meta-bridge/internal/domain/composer/service"
	pubpolicy "github.com/vadim/meta-bridge/internal/domain/publication/policy"
	pubservice "github.com/vadim/meta-bridge/internal/domain/publication/service"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

// DraftService defines the interface for draft composition operations
// Interface is defined by consumer (handler), not provider (service)
type DraftService interface {
	CreateDraft(userID string) *entity.Draft
	GetDraft(id string) (*entity.Draft, error)
	DeleteDraft(id string) error
	SetText(id, text string) (*entity.Draft, error)
	AddMedia(id string, in service.AddMediaInput) (*entity.Draft, error)
	RemoveMedia(id, mediaID string) (*entity.Draft, error)
	SetSchedule(id string, at *time.Time) (*entity.Draft, error)
	SetCommentLink(id, link string) (*entity.Draft, error)
	DismissLink(id, url string) (*entity.Draft, error)
	SelectPrimary(ctx context.Context, id string, key catalog.TargetKey) (*entity.Draft, error)
	ToggleTarget(ctx context.Context, id string, key catalog.TargetKey) (*entity.Draft, error)
	EnableSmartMode(ctx context.Context, id string) (*entity.Draft, []catalog.Suggestion, error)
	DisableSmartMode(id string) (*entity.Draft, error)
	Compatibility(id string) ([]entity.TargetCompatibility, error)
	BeginSubmission(id string, override bool) (*entity.Draft, error)
	FinishSubmission(id string, success bool) (*entity.Draft, error)
}

// SubmitPolicy defines the interface for dispatching a finished draft
type SubmitPolicy interface {
	Submit(ctx context.Context, in pubpolicy.SubmitInput) (*pubpolicy.SubmitOutput, error)
}

// ManagerSource defines the interface for the user's selected business manager
type ManagerSource interface {
	SelectedManager(userID string) *catalog.BusinessManager
}

// DraftHandler handles HTTP requests for draft composition
type DraftHandler struct {
	drafts    DraftService
	submitter SubmitPolicy
	managers  ManagerSource
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(drafts DraftService, submitter SubmitPolicy, managers ManagerSource) *DraftHandler {
	return &DraftHandler{drafts: drafts, submitter: submitter, managers: managers}
}

// RegisterRoutes registers draft routes
func (h *DraftHandler) RegisterRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", h.Create())
		r.Get("/{id}", h.Get())
		r.Delete("/{id}", h.Delete())
		r.Put("/{id}/text", h.SetText())
		r.Post("/{id}/media", h.AddMedia())
		r.Delete("/{id}/media/{mediaID}", h.RemoveMedia())
		r.Put("/{id}/schedule", h.SetSchedule())
		r.Put("/{id}/comment-link", h.SetCommentLink())
		r.Post("/{id}/links/dismiss", h.DismissLink())
		r.Put("/{id}/targets/primary", h.SelectPrimary())
		r.Post("/{id}/targets/toggle", h.ToggleTarget())
		r.Post("/{id}/smart-mode", h.EnableSmartMode())
		r.Delete("/{id}/smart-mode", h.DisableSmartMode())
		r.Get("/{id}/compatibility", h.Compatibility())
		r.Post("/{id}/submit", h.Submit())
	})
}

// CreateDraftRequest represents the request body for creating a draft
type CreateDraftRequest struct {
	UserID string `json:"user_id"`
}

// Create handles POST /drafts
func (h *DraftHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDraftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if req.UserID == "" {
			response.BadRequest(w, "user_id is required")
			return
		}

		draft := h.drafts.CreateDraft(req.UserID)
		response.Created(w, draft)
	}
}

// Get handles GET /drafts/{id}
func (h *DraftHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := h.drafts.GetDraft(chi.URLParam(r, "id"))
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// Delete handles DELETE /drafts/{id}
func (h *DraftHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.drafts.DeleteDraft(chi.URLParam(r, "id")); err != nil {
			handleComposerError(w, err)
			return
		}

		response.NoContent(w)
	}
}

// SetTextRequest represents the request body for updating the draft text
type SetTextRequest struct {
	Text string `json:"text"`
}

// SetText handles PUT /drafts/{id}/text
func (h *DraftHandler) SetText() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		draft, err := h.drafts.SetText(chi.URLParam(r, "id"), req.Text)
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// AddMediaRequest represents the request body for attaching uploaded media
type AddMediaRequest struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// AddMedia handles POST /drafts/{id}/media
func (h *DraftHandler) AddMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddMediaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if req.URL == "" {
			response.BadRequest(w, "url is required")
			return
		}

		draft, err := h.drafts.AddMedia(chi.URLParam(r, "id"), service.AddMediaInput{
			Filename:    req.Filename,
			URL:         req.URL,
			ContentType: req.ContentType,
			Size:        req.Size,
		})
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// RemoveMedia handles DELETE /drafts/{id}/media/{mediaID}
func (h *DraftHandler) RemoveMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := h.drafts.RemoveMedia(chi.URLParam(r, "id"), chi.URLParam(r, "mediaID"))
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// SetScheduleRequest represents the request body for scheduling a draft
type SetScheduleRequest struct {
	ScheduledAt *string `json:"scheduled_at"` // RFC3339; null clears the schedule
}

// SetSchedule handles PUT /drafts/{id}/schedule
func (h *DraftHandler) SetSchedule() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		var at *time.Time
		if req.ScheduledAt != nil && *req.ScheduledAt != "" {
			t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
			if err != nil {
				response.BadRequest(w, "invalid scheduled_at format, use RFC3339")
				return
			}
			at = &t
		}

		draft, err := h.drafts.SetSchedule(chi.URLParam(r, "id"), at)
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// SetCommentLinkRequest represents the request body for the first-comment link
type SetCommentLinkRequest struct {
	Link string `json:"link"`
}

// SetCommentLink handles PUT /drafts/{id}/comment-link
func (h *DraftHandler) SetCommentLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetCommentLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		draft, err := h.drafts.SetCommentLink(chi.URLParam(r, "id"), req.Link)
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// DismissLinkRequest represents the request body for dismissing a detected link
type DismissLinkRequest struct {
	URL string `json:"url"`
}

// DismissLink handles POST /drafts/{id}/links/dismiss
func (h *DraftHandler) DismissLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DismissLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if req.URL == "" {
			response.BadRequest(w, "url is required")
			return
		}

		draft, err := h.drafts.DismissLink(chi.URLParam(r, "id"), req.URL)
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// TargetKeyRequest identifies one target within the current catalog
type TargetKeyRequest struct {
	ID     string `json:"id"`
	Origin string `json:"origin"`
}

func (req TargetKeyRequest) key() (catalog.TargetKey, bool) {
	origin := catalog.TargetOrigin(req.Origin)
	if req.ID == "" || (origin != catalog.TargetOriginPersonal && origin != catalog.TargetOriginBusiness) {
		return catalog.TargetKey{}, false
	}
	return catalog.TargetKey{ID: req.ID, Origin: origin}, true
}

// SelectPrimary handles PUT /drafts/{id}/targets/primary
func (h *DraftHandler) SelectPrimary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TargetKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		key, ok := req.key()
		if !ok {
			response.BadRequest(w, "id and a valid origin are required")
			return
		}

		draft, err := h.drafts.SelectPrimary(r.Context(), chi.URLParam(r, "id"), key)
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// ToggleTarget handles POST /drafts/{id}/targets/toggle
func (h *DraftHandler) ToggleTarget() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TargetKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		key, ok := req.key()
		if !ok {
			response.BadRequest(w, "id and a valid origin are required")
			return
		}

		draft, err := h.drafts.ToggleTarget(r.Context(), chi.URLParam(r, "id"), key)
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// EnableSmartMode handles POST /drafts/{id}/smart-mode
func (h *DraftHandler) EnableSmartMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, suggestions, err := h.drafts.EnableSmartMode(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, map[string]interface{}{
			"draft":       draft,
			"suggestions": suggestions,
		})
	}
}

// DisableSmartMode handles DELETE /drafts/{id}/smart-mode
func (h *DraftHandler) DisableSmartMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := h.drafts.DisableSmartMode(chi.URLParam(r, "id"))
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, draft)
	}
}

// Compatibility handles GET /drafts/{id}/compatibility
func (h *DraftHandler) Compatibility() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targets, err := h.drafts.Compatibility(chi.URLParam(r, "id"))
		if err != nil {
			handleComposerError(w, err)
			return
		}

		response.OK(w, map[string]interface{}{"targets": targets})
	}
}

// SubmitRequest represents the request body for submitting a draft
type SubmitRequest struct {
	// Override publishes despite incompatible targets still selected
	Override bool `json:"override"`
}

// Submit handles POST /drafts/{id}/submit. A dispatched submission resets
// the draft even when some targets failed; only a submission that never
// went out preserves it.
func (h *DraftHandler) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		snapshot, err := h.drafts.BeginSubmission(id, req.Override)
		if err != nil {
			handleComposerError(w, err)
			return
		}

		in := submitInput(snapshot)
		if mgr := h.managers.SelectedManager(snapshot.UserID); mgr != nil {
			in.BusinessManagerID = mgr.ID
			in.BusinessManagerName = mgr.Name
		}

		out, err := h.submitter.Submit(r.Context(), in)
		if err != nil {
			if _, finishErr := h.drafts.FinishSubmission(id, false); finishErr != nil {
				response.InternalError(w, "submission bookkeeping failed")
				return
			}
			handlePublicationError(w, err)
			return
		}

		if _, err := h.drafts.FinishSubmission(id, true); err != nil {
			response.InternalError(w, "submission bookkeeping failed")
			return
		}

		response.OK(w, map[string]interface{}{
			"post":   out.Post,
			"result": out.Result,
		})
	}
}

// submitInput maps a draft snapshot to the submission input: selected
// targets primary first, uploaded media in order, the first surviving
// detected link as the attachment URL
func submitInput(draft *entity.Draft) pubpolicy.SubmitInput {
	targets := draft.SelectedTargets()

	media := make([]pubservice.MediaRefInput, 0, len(draft.MediaFiles))
	for _, f := range draft.MediaFiles {
		media = append(media, pubservice.MediaRefInput{
			URL:         f.URL,
			ContentType: f.ContentType,
			IsVideo:     f.IsVideo,
		})
	}

	var linkURL string
	if len(draft.DetectedLinks) > 0 {
		linkURL = draft.DetectedLinks[0].URL
	}

	return pubpolicy.SubmitInput{
		UserID:      draft.UserID,
		Text:        draft.Text,
		CommentLink: draft.CommentLink,
		LinkURL:     linkURL,
		ScheduledAt: draft.ScheduledAt,
		Targets:     targets,
		Media:       media,
	}
}
