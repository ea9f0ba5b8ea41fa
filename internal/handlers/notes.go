package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tubedash-backend/internal/middleware"
	"tubedash-backend/internal/models"
	"tubedash-backend/internal/repository"
	"tubedash-backend/internal/services"
)

const maxTagLength = 50

type NoteHandler struct {
	notes repository.NoteStore
	users repository.UserStore
	audit *services.AuditLogger
	log   *zap.Logger
}

func NewNoteHandler(notes repository.NoteStore, users repository.UserStore, audit *services.AuditLogger, log *zap.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, users: users, audit: audit, log: log}
}

// Create attaches a new note to one of the caller's videos.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	videoID, err := services.ExtractVideoID(strings.TrimSpace(req.VideoID))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		badRequest(w, "Note content must not be empty")
		return
	}
	if !validTags(req.Tags) {
		badRequest(w, "Tags must be non-empty strings of at most 50 characters")
		return
	}

	session := middleware.GetSession(r.Context())
	if err := h.users.Ensure(r.Context(), session.User); err != nil {
		respondError(w, h.log, err)
		return
	}

	note := &models.Note{
		UserID:  session.User.ID,
		VideoID: videoID,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if err := h.notes.Create(r.Context(), note); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.audit.NoteCreated(r.Context(), r, session.User.ID, note)
	created(w, note)
}

// List returns the caller's notes, optionally filtered by video or by
// tag. A tag search is itself an audited action.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	videoID := r.URL.Query().Get("video")
	tag := r.URL.Query().Get("tag")

	if tag != "" {
		notes, err := h.notes.SearchByTag(r.Context(), session.User.ID, tag)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		h.audit.SearchPerformed(r.Context(), r, session.User.ID, tag, len(notes))
		ok(w, notes)
		return
	}

	notes, err := h.notes.ListByUser(r.Context(), session.User.ID, videoID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ok(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, done := h.ownedNote(w, r)
	if done {
		return
	}
	ok(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	note, done := h.ownedNote(w, r)
	if done {
		return
	}

	var req models.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			badRequest(w, "Note content must not be empty")
			return
		}
		note.Content = *req.Content
	}
	if req.Tags != nil {
		if !validTags(req.Tags) {
			badRequest(w, "Tags must be non-empty strings of at most 50 characters")
			return
		}
		note.Tags = req.Tags
	}

	if err := h.notes.Update(r.Context(), note); err != nil {
		respondError(w, h.log, err)
		return
	}

	session := middleware.GetSession(r.Context())
	h.audit.NoteUpdated(r.Context(), r, session.User.ID, note)
	ok(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	note, done := h.ownedNote(w, r)
	if done {
		return
	}

	if err := h.notes.Delete(r.Context(), note.ID); err != nil {
		respondError(w, h.log, err)
		return
	}

	session := middleware.GetSession(r.Context())
	h.audit.NoteDeleted(r.Context(), r, session.User.ID, note.ID)
	okMessage(w, "Note deleted")
}

// ownedNote loads the note in the path and enforces ownership. A note
// belonging to someone else answers 404, not 403, so note ids are not
// probeable.
func (h *NoteHandler) ownedNote(w http.ResponseWriter, r *http.Request) (*models.Note, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "Invalid note ID")
		return nil, true
	}

	note, err := h.notes.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return nil, true
	}

	if note.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, models.Response{Success: false, Error: "Note not found"})
		return nil, true
	}
	return note, false
}

func validTags(tags []string) bool {
	for _, t := range tags {
		if strings.TrimSpace(t) == "" || len(t) > maxTagLength {
			return false
		}
	}
	return true
}
