package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/service"
)

// AccountHandler handles user account management requests.
// All routes are administrator-only; the service layer enforces that.
type AccountHandler struct {
	accounts *service.AccountService
	logger   zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts *service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With().Str("handler", "account").Logger(),
	}
}

// RegisterRoutes registers account routes on an authenticated router.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (h *AccountHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	input := service.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		input.Role = role
	}

	user, err := h.accounts.Create(r.Context(), principal, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type listAccountsResponse struct {
	Users []*domain.User `json:"users"`
	Total int64          `json:"total"`
}

func (h *AccountHandler) handleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	limit, offset := paginationParams(r)
	out, err := h.accounts.List(r.Context(), principal, service.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, listAccountsResponse{
		Users: out.Users,
		Total: out.TotalCount,
	})
}

func (h *AccountHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	user, err := h.accounts.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type updateAccountRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

func (h *AccountHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	input := service.UpdateAccountInput{
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		input.Role = &role
	}

	user, err := h.accounts.Update(r.Context(), principal, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	if err := h.accounts.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// paginationParams reads limit/offset query parameters with defaults.
func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
