// Package handler provides HTTP handlers for the Atlas Tasks API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/metrics"
	"github.com/prn-tf/atlas-tasks/internal/service"
)

// SessionHandler handles login requests.
type SessionHandler struct {
	sessions *service.SessionService
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *service.SessionService, m *metrics.Metrics, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		metrics:  m,
		logger:   logger.With().Str("handler", "session").Logger(),
	}
}

// RegisterRoutes registers session routes. These are public: the login
// endpoint is the only way to obtain a token in the first place.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

// recordLogin is a no-op when metrics are disabled.
func (h *SessionHandler) recordLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(outcome)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *domain.User `json:"user"`
}

func (h *SessionHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	out, err := h.sessions.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.recordLogin("failure")
		writeError(w, h.logger, err)
		return
	}

	h.recordLogin("success")
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     out.Token,
		ExpiresIn: out.ExpiresIn,
		User:      out.User,
	})
}
