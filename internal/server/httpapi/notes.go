package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobdeck/jobdeck/internal/server/auth"
	"github.com/jobdeck/jobdeck/internal/server/models"
)

type createNoteRequest struct {
	Content string `json:"content"`
}

type noteResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

func toNoteResponse(n *models.Note) noteResponse {
	return noteResponse{
		ID:            n.ID,
		ApplicationID: n.ApplicationID,
		Content:       n.Content,
		CreatedAt:     n.CreatedAt,
	}
}

func (h *Handlers) createNote(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	note, err := h.notes.Create(r.Context(), ident, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

func (h *Handlers) listNotes(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	notes, err := h.notes.List(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteNote(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	err := h.notes.Delete(r.Context(), ident, chi.URLParam(r, "id"), chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
