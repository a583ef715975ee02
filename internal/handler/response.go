package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/domain"
)

// errorResponse is the JSON body for all error outcomes.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a service error onto the HTTP outcome taxonomy. The
// response body carries the sentinel message only; internal detail stays
// in the logs.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status := statusFor(err)

	msg := err.Error()
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		msg = derr.Err.Error()
	}
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
		msg = domain.ErrInternal.Error()
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor resolves the HTTP status for a domain error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrMissingCredential),
		errors.Is(err, auth.ErrMalformedCredential):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrUserHasTasks):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidDeadline):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a request body, rejecting unknown fields so typos
// in field names fail loudly instead of silently skipping the update.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// writeBadRequest reports a malformed request body.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
