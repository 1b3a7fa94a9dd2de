package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skillshare/api/internal/application/otp"
	"github.com/skillshare/api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login and registration-verify responses.
type AuthEnvelope struct {
	Bearer string       `json:"Bearer,omitempty"`
	User   *domain.User `json:"user,omitempty"`
}

// CodeIssuedEnvelope is returned whenever a one-time code is emailed.
type CodeIssuedEnvelope struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// PageEnvelope wraps cursor-paginated list responses.
type PageEnvelope struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps service-layer sentinel errors to HTTP statuses. Unknown
// errors become 500 with a generic body so internals don't leak.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, otp.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, otp.ErrDispatchFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, otp.ErrExpired):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, otp.ErrAlreadyUsed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrAttemptsExhausted):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, otp.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
