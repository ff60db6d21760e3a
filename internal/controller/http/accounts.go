package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/meta-bridge/internal/domain/catalog/dao"
	"github.com/vadim/meta-bridge/internal/httpx/response"
)

// AccountStore defines the interface for connected-account bookkeeping
type AccountStore interface {
	Upsert(ctx context.Context, acc *dao.Account) error
	GetByUserID(ctx context.Context, userID string) (*dao.Account, error)
	List(ctx context.Context) ([]dao.Account, error)
	Delete(ctx context.Context, userID string) error
}

// AccountHandler handles HTTP requests for connected Meta accounts
type AccountHandler struct {
	accounts AccountStore
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts AccountStore) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.Connect())
		r.Get("/", h.List())
		r.Get("/{userID}", h.Get())
		r.Delete("/{userID}", h.Disconnect())
	})
}

// AccountInfo is the public representation of a connected account: the
// token itself never leaves the server
type AccountInfo struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	HasAccessToken bool      `json:"has_access_token"`
	ConnectedAt    time.Time `json:"connected_at"`
}

func accountInfo(acc dao.Account) AccountInfo {
	return AccountInfo{
		UserID:         acc.UserID,
		Name:           acc.Name,
		Email:          acc.Email,
		HasAccessToken: acc.AccessToken != "",
		ConnectedAt:    acc.ConnectedAt,
	}
}

// ConnectRequest represents the request body for connecting an account
type ConnectRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Name        string `json:"name"`
	Email       string `json:"email" validate:"omitempty,email"`
	AccessToken string `json:"access_token" validate:"required"`
}

// Connect handles POST /accounts: stores or refreshes the user's long-lived
// token
func (h *AccountHandler) Connect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConnectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		acc := &dao.Account{
			UserID:      req.UserID,
			Name:        req.Name,
			Email:       req.Email,
			AccessToken: req.AccessToken,
		}
		if err := h.accounts.Upsert(r.Context(), acc); err != nil {
			response.InternalError(w, "failed to store account")
			return
		}

		response.Created(w, accountInfo(*acc))
	}
}

// List handles GET /accounts
func (h *AccountHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := h.accounts.List(r.Context())
		if err != nil {
			response.InternalError(w, "failed to list accounts")
			return
		}

		infos := make([]AccountInfo, len(accounts))
		for i, acc := range accounts {
			infos[i] = accountInfo(acc)
		}

		response.OK(w, map[string]interface{}{
			"accounts": infos,
			"total":    len(infos),
		})
	}
}

// Get handles GET /accounts/{userID}
func (h *AccountHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, err := h.accounts.GetByUserID(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			response.InternalError(w, "failed to get account")
			return
		}
		if acc == nil {
			response.NotFound(w, "account not found")
			return
		}

		response.OK(w, accountInfo(*acc))
	}
}

// Disconnect handles DELETE /accounts/{userID}
func (h *AccountHandler) Disconnect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
			response.InternalError(w, "failed to delete account")
			return
		}

		response.NoContent(w)
	}
}
