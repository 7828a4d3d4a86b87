package handler

import (
	"log/slog"
	"net/http"

	"github.com/nomvote/nomvote/internal/auth"
	"github.com/nomvote/nomvote/internal/handler/dto"
	"github.com/nomvote/nomvote/internal/middleware"
	"github.com/nomvote/nomvote/internal/service"
)

// UserHandler handles account and session endpoints.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Signup handles POST /users. The first session token is returned in the
// x-auth header.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.svc.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Logout handles DELETE /users/me/token. Only the token presented with
// this request is revoked.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := auth.AuthFromContext(r.Context())
	if principal == nil {
		handleServiceError(w, r, h.logger, service.ErrUnauthenticated)
		return
	}

	if err := h.svc.RemoveToken(r.Context(), principal.UserID, auth.TokenFromContext(r.Context())); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("token_revoked", "user_id", principal.UserID)

	w.WriteHeader(http.StatusOK)
}

func requestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
