package optimize

import (
	"net/http"

	"github.com/ayush/greenprompt/backend/internal/auth"
	"github.com/ayush/greenprompt/backend/internal/httpx"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/models"
)

// Handler holds optimization HTTP handlers.
type Handler struct {
	svc    *Service
	logger logging.Logger
}

func NewHandler(svc *Service, logger logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Optimize records an optimization for the current user, or anonymously.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req models.OptimizeRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Optimize(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		httpx.WriteError(r.Context(), w, h.logger, err)
		return
	}
	h.logger.Debug(r.Context(), "optimization recorded", "id", resp.ID, "tokens_saved", resp.TokensSaved)

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Suggest returns the heuristic rewrite of a prompt.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Suggest(req.Prompt)
	if err != nil {
		httpx.WriteError(r.Context(), w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
