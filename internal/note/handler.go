package note

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/notes-api/internal/auth"
	"github.com/redmonkez12/notes-api/internal/httputil"
	"github.com/redmonkez12/notes-api/internal/logging"
)

// Handler contains HTTP handlers for the notes resource. Every route sits
// behind the bearer gate, so the identity is always present in context.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// NoteRequest represents a create or update body
type NoteRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// NoteResponse wraps a single note
type NoteResponse struct {
	Message string `json:"message"`
	Note    *Note  `json:"note"`
}

// ListResponse wraps the user's notes
type ListResponse struct {
	Message string `json:"message"`
	Notes   []Note `json:"notes"`
}

// List returns the user's notes, newest first
// @Summary      List notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ListResponse
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /notes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	notes, err := h.store.ListByUser(r.Context(), identity.ID)
	if err != nil {
		logger.Error("failed to list notes", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, ListResponse{
		Message: "Notes retrieved successfully",
		Notes:   notes,
	}, http.StatusOK)
}

// Create stores a new note for the user
// @Summary      Create a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body NoteRequest true "Note fields"
// @Success      201 {object} NoteResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation failed"
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /notes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid note request body", "error", err.Error())
		httputil.RespondValidationError(w, []string{"Title is required and must be a non-empty string"})
		return
	}

	if details := validateInput(req.Title, req.Content); details != nil {
		httputil.RespondValidationError(w, details)
		return
	}

	created, err := h.store.Create(r.Context(), identity.ID, strings.TrimSpace(req.Title), normalizeContent(req.Content))
	if err != nil {
		logger.Error("failed to create note", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("note created", "note_id", created.ID)

	httputil.RespondJSON(w, NoteResponse{
		Message: "Note created successfully",
		Note:    created,
	}, http.StatusCreated)
}

// Get returns a single note owned by the user
// @Summary      Get a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Note ID"
// @Success      200 {object} NoteResponse
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      404 {object} httputil.ErrorResponse "Note not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /notes/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	noteID, ok := noteIDFromRequest(r)
	if !ok {
		httputil.RespondError(w, "Note not found", http.StatusNotFound)
		return
	}

	found, err := h.store.GetForUser(r.Context(), noteID, identity.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Note not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get note", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, NoteResponse{
		Message: "Note retrieved successfully",
		Note:    found,
	}, http.StatusOK)
}

// Update rewrites a note owned by the user
// @Summary      Update a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Note ID"
// @Param        request body NoteRequest true "Note fields"
// @Success      200 {object} NoteResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation failed"
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      404 {object} httputil.ErrorResponse "Note not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /notes/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	noteID, ok := noteIDFromRequest(r)
	if !ok {
		httputil.RespondError(w, "Note not found", http.StatusNotFound)
		return
	}

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid note request body", "error", err.Error())
		httputil.RespondValidationError(w, []string{"Title is required and must be a non-empty string"})
		return
	}

	if details := validateInput(req.Title, req.Content); details != nil {
		httputil.RespondValidationError(w, details)
		return
	}

	updated, err := h.store.Update(r.Context(), noteID, identity.ID, strings.TrimSpace(req.Title), normalizeContent(req.Content))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Note not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to update note", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("note updated", "note_id", updated.ID)

	httputil.RespondJSON(w, NoteResponse{
		Message: "Note updated successfully",
		Note:    updated,
	}, http.StatusOK)
}

// Delete removes a note owned by the user
// @Summary      Delete a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Note ID"
// @Success      200 {object} map[string]string
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      404 {object} httputil.ErrorResponse "Note not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /notes/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	noteID, ok := noteIDFromRequest(r)
	if !ok {
		httputil.RespondError(w, "Note not found", http.StatusNotFound)
		return
	}

	if err := h.store.Delete(r.Context(), noteID, identity.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Note not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete note", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("note deleted", "note_id", noteID)

	httputil.RespondJSON(w, map[string]string{
		"message": "Note deleted successfully",
	}, http.StatusOK)
}

// noteIDFromRequest parses the id path parameter. A malformed ID cannot
// name an existing note, so callers treat it as not found.
func noteIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return noteID, true
}
