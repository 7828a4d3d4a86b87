package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nomvote/nomvote/internal/auth"
	"github.com/nomvote/nomvote/internal/handler/dto"
	"github.com/nomvote/nomvote/internal/service"
)

// NomineeHandler handles HTTP requests for nominee operations.
// Every route runs behind the auth middleware and is scoped to the caller.
type NomineeHandler struct {
	svc    *service.NomineeService
	logger *slog.Logger
}

// NewNomineeHandler creates a new NomineeHandler.
func NewNomineeHandler(svc *service.NomineeService, logger *slog.Logger) *NomineeHandler {
	return &NomineeHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /nominees.
func (h *NomineeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateNomineeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	creatorID := auth.UserIDFromContext(r.Context())
	nominee, err := h.svc.Create(r.Context(), creatorID, service.CreateNomineeInput{
		Name:  req.Name,
		Email: req.Email,
		Votes: req.Votes,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("nominee_created",
		"nominee_id", nominee.ID,
		"creator_id", creatorID,
	)

	writeJSON(w, http.StatusOK, nominee)
}

// List handles GET /nominees.
func (h *NomineeHandler) List(w http.ResponseWriter, r *http.Request) {
	nominees, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NomineeListResponse{Nominees: nominees})
}

// Get handles GET /nominees/{id}.
func (h *NomineeHandler) Get(w http.ResponseWriter, r *http.Request) {
	nominee, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NomineeResponse{Nominees: nominee})
}

// Update handles PATCH /nominees/{id}.
func (h *NomineeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateNomineeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	nominee, err := h.svc.Update(r.Context(), id, auth.UserIDFromContext(r.Context()), req.ToPatch())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("nominee_updated", "nominee_id", id)

	writeJSON(w, http.StatusOK, dto.NomineeResponse{Nominees: nominee})
}

// Vote handles PUT /nominees/{id}/{vote}. The vote segment is a signed
// integer added to the tally.
func (h *NomineeHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creatorID := auth.UserIDFromContext(r.Context())

	// A malformed id is a 404 even when the delta is also bad.
	if !service.ValidID(id) {
		handleServiceError(w, r, h.logger, service.ErrNomineeNotFound)
		return
	}

	delta, err := strconv.ParseInt(chi.URLParam(r, "vote"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "vote: must be an integer")
		return
	}

	nominee, err := h.svc.Vote(r.Context(), id, creatorID, delta)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("nominee_voted",
		"nominee_id", id,
		"delta", delta,
		"votes", nominee.VoteCount(),
	)

	writeJSON(w, http.StatusOK, dto.NomineeResponse{Nominees: nominee})
}

// Delete handles DELETE /nominees/{id}.
func (h *NomineeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nominee, err := h.svc.Delete(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("nominee_deleted", "nominee_id", id)

	writeJSON(w, http.StatusOK, dto.NomineeResponse{Nominees: nominee})
}
