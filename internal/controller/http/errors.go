package http

import (
	"net/http"

	catalogentity "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	composerentity "github.com/vadim/meta-bridge/internal/domain/composer/entity"
	linksentity "github.com/vadim/meta-bridge/internal/domain/links/entity"
	pubentity "github.com/vadim/meta-bridge/internal/domain/publication/entity"
	shopentity "github.com/vadim/meta-bridge/internal/domain/shoptemplate/entity"
	webhookentity "github.com/vadim/meta-bridge/internal/domain/webhook/entity"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

// handleComposerError maps composer domain errors to HTTP responses
func handleComposerError(w http.ResponseWriter, err error) {
	switch err {
	case composerentity.ErrDraftNotFound:
		response.NotFound(w, err.Error())
	case composerentity.ErrSubmissionInFlight, composerentity.ErrNotSubmitting,
		composerentity.ErrPrimaryNotRemovable:
		response.Conflict(w, err.Error())
	case composerentity.ErrNoContent, composerentity.ErrNoTarget,
		composerentity.ErrTextTooLong, composerentity.ErrTooManyMediaFiles,
		composerentity.ErrMediaTooLarge, composerentity.ErrInvalidMediaType,
		composerentity.ErrScheduleTooSoon, composerentity.ErrIncompatibleTargets,
		composerentity.ErrPrimaryNotPage:
		response.BadRequest(w, err.Error())
	case catalogentity.ErrTargetNotFound, catalogentity.ErrManagerNotFound:
		response.NotFound(w, err.Error())
	case catalogentity.ErrCatalogNotLoaded:
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}

// handleCatalogError maps catalog domain errors to HTTP responses
func handleCatalogError(w http.ResponseWriter, err error) {
	switch err {
	case catalogentity.ErrAccountNotFound, catalogentity.ErrManagerNotFound,
		catalogentity.ErrTargetNotFound:
		response.NotFound(w, err.Error())
	case catalogentity.ErrCatalogNotLoaded:
		response.Conflict(w, err.Error())
	case catalogentity.ErrInvalidTargetKind, catalogentity.ErrInvalidTargetOrigin:
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}

// handlePublicationError maps publication domain errors to HTTP responses
func handlePublicationError(w http.ResponseWriter, err error) {
	switch err {
	case pubentity.ErrPostNotFound:
		response.NotFound(w, err.Error())
	case pubentity.ErrPostNotDeletable:
		response.Conflict(w, err.Error())
	case pubentity.ErrNoTargets, pubentity.ErrNoContent:
		response.BadRequest(w, err.Error())
	case pubentity.ErrGraphUnauthorized:
		response.Unauthorized(w, err.Error())
	case pubentity.ErrGraphRateLimited:
		response.Error(w, http.StatusTooManyRequests, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}

// handleLinksError maps link detection errors to HTTP responses
func handleLinksError(w http.ResponseWriter, err error) {
	switch err {
	case linksentity.ErrEmptyText, linksentity.ErrUnsupportedURL:
		response.BadRequest(w, err.Error())
	case linksentity.ErrUnresolvable:
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}

// handleTemplateError maps shop template errors to HTTP responses
func handleTemplateError(w http.ResponseWriter, err error) {
	switch err {
	case shopentity.ErrTemplateNotFound:
		response.NotFound(w, err.Error())
	case shopentity.ErrShopExists:
		response.Conflict(w, err.Error())
	case shopentity.ErrEmptyShop, shopentity.ErrEmptyCaption,
		shopentity.ErrCaptionTooLong, shopentity.ErrNoRoutes:
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}

// handleWebhookError maps webhook ingestion errors to HTTP responses
func handleWebhookError(w http.ResponseWriter, err error) {
	switch err {
	case webhookentity.ErrItemNotFound, webhookentity.ErrShopNotRouted:
		response.NotFound(w, err.Error())
	case webhookentity.ErrMissingShop, webhookentity.ErrMissingTitle,
		webhookentity.ErrMissingURL:
		response.BadRequest(w, err.Error())
	case webhookentity.ErrUnauthorized:
		response.Unauthorized(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
