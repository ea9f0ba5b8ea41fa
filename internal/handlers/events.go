package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tubedash-backend/internal/middleware"
	"tubedash-backend/internal/models"
	"tubedash-backend/internal/repository"
	"tubedash-backend/internal/services"
)

// Client-originated event kinds accepted by the ingestion endpoint.
// Server-side kinds (note_created, api_error, ...) can only be written
// by the server itself.
var clientEventTypes = map[models.EventType]bool{
	models.EventPageView:        true,
	models.EventSearchPerformed: true,
}

var clientEntityTypes = map[models.EntityType]bool{
	models.EntityPage:  true,
	models.EntityVideo: true,
	models.EntityNote:  true,
	models.EntityUser:  true,
}

type EventHandler struct {
	events repository.EventStore
	audit  *services.AuditLogger
	log    *zap.Logger
}

func NewEventHandler(events repository.EventStore, audit *services.AuditLogger, log *zap.Logger) *EventHandler {
	return &EventHandler{events: events, audit: audit, log: log}
}

// Ingest records a UI event (page view, client-side search) into the
// audit trail.
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req models.ClientEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	eventType := models.EventType(req.EventType)
	entityType := models.EntityType(req.EntityType)
	if !clientEventTypes[eventType] {
		badRequest(w, "Unsupported event type")
		return
	}
	if !clientEntityTypes[entityType] {
		badRequest(w, "Unsupported entity type")
		return
	}
	if req.EntityID == "" {
		badRequest(w, "Missing entity ID")
		return
	}

	session := middleware.GetSession(r.Context())
	h.audit.ClientEvent(r.Context(), r, session.User.ID, eventType, entityType, req.EntityID, req.Metadata)
	okMessage(w, "Event recorded")
}

// ListRecent returns the caller's most recent audit entries.
func (h *EventHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}

	session := middleware.GetSession(r.Context())
	entries, lerr := h.events.ListRecent(r.Context(), session.User.ID, limit)
	if lerr != nil {
		respondError(w, h.log, lerr)
		return
	}
	ok(w, entries)
}
