package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the closed enumeration of auditable actions.
type EventType string

const (
	EventVideoUpdated    EventType = "video_updated"
	EventCommentPosted   EventType = "comment_posted"
	EventCommentReplied  EventType = "comment_replied"
	EventCommentDeleted  EventType = "comment_deleted"
	EventNoteCreated     EventType = "note_created"
	EventNoteUpdated     EventType = "note_updated"
	EventNoteDeleted     EventType = "note_deleted"
	EventSearchPerformed EventType = "search_performed"
	EventPageView        EventType = "page_view"
	EventAuthError       EventType = "auth_error"
	EventAPIError        EventType = "api_error"
)

// EntityType is the closed enumeration of audit subjects.
type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityVideo   EntityType = "video"
	EntityNote    EntityType = "note"
	EntityComment EntityType = "comment"
	EntityPage    EntityType = "page"
	EntitySystem  EntityType = "system"
)

// EventLogEntry is an append-only audit record. Entries are never
// updated or deleted by the application.
type EventLogEntry struct {
	ID         uuid.UUID      `json:"id"`
	EventType  EventType      `json:"event_type"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ClientIP   string         `json:"client_ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	UserID     *uuid.UUID     `json:"user_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ClientEventRequest is the body of the UI event ingestion endpoint.
type ClientEventRequest struct {
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Metadata   map[string]any `json:"metadata"`
}
