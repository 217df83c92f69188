package auth

import (
	"context"
	"net"
	"net/http"

	"github.com/ayush/greenprompt/backend/internal/common"
	"github.com/ayush/greenprompt/backend/internal/httpx"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/models"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc          *Service
	tokens       *TokenIssuer
	throttle     *Throttle
	logger       logging.Logger
	cookieSecure bool
}

func NewHandler(svc *Service, tokens *TokenIssuer, throttle *Throttle, logger logging.Logger, cookieSecure bool) *Handler {
	return &Handler{svc: svc, tokens: tokens, throttle: throttle, logger: logger, cookieSecure: cookieSecure}
}

func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request) (*models.CredentialsRequest, bool) {
	var req models.CredentialsRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "email and password are required")
		return nil, false
	}
	return &req, true
}

// Signup creates a new user and starts a session.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(r.Context(), w, h.logger, err)
		return
	}
	h.logger.Info(r.Context(), "user registered", "user_id", user.ID)

	h.startSession(w, r, user)
}

// Login authenticates a user and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	subjects := LoginSubjects(clientIP(r), req.Email)

	blocked, err := h.throttle.Blocked(ctx, subjects...)
	if err != nil {
		h.logger.Warn(ctx, "login throttle unavailable", "error", err)
	}
	if blocked {
		httpx.WriteError(ctx, w, h.logger, common.ErrTooManyAttempts)
		return
	}

	user, err := h.svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		httpx.WriteError(ctx, w, h.logger, err)
		return
	}
	if user == nil {
		h.recordFailure(ctx, subjects)
		httpx.WriteError(ctx, w, h.logger, common.ErrUnauthorized)
		return
	}
	if err := h.throttle.Reset(ctx, subjects...); err != nil {
		h.logger.Warn(ctx, "login throttle reset failed", "error", err)
	}

	h.startSession(w, r, user)
}

func (h *Handler) recordFailure(ctx context.Context, subjects []string) {
	if err := h.throttle.Fail(ctx, subjects...); err != nil {
		h.logger.Warn(ctx, "login throttle update failed", "error", err)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		httpx.WriteError(r.Context(), w, h.logger, err)
		return
	}
	SetSessionCookie(w, token, h.tokens.TTL(), h.cookieSecure)
	httpx.WriteJSON(w, http.StatusOK, models.UserResponse{User: user.Public()})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.cookieSecure)
	httpx.WriteJSON(w, http.StatusOK, httpx.OK{OK: true})
}

// Me returns the current user, or null for anonymous requests.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, models.UserResponse{User: UserFromContext(r.Context()).Public()})
}

// clientIP strips the port from RemoteAddr; RealIP has already run.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
