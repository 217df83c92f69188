// Package httpx holds the JSON request/response helpers shared by handlers.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ayush/greenprompt/backend/internal/common"
	"github.com/ayush/greenprompt/backend/internal/logging"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OK is the body of replies that carry no data.
type OK struct {
	OK bool `json:"ok"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"error": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// Decode reads a JSON body of bounded size into v.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// WriteError maps err onto a status code. Unexpected errors are logged and
// answered with a generic message.
func WriteError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		WriteMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrConflict):
		WriteMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrTooManyAttempts):
		WriteMessage(w, http.StatusTooManyRequests, "too many login attempts, try again later")
	default:
		logger.Error(ctx, "request failed", "error", err, "request_id", chimw.GetReqID(ctx))
		WriteMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
