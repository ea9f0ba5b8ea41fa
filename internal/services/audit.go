package services

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tubedash-backend/internal/models"
	"tubedash-backend/internal/repository"
)

// AuditLogger persists a structured record of every consequential
// action. It never propagates its own failure: a degraded audit trail
// must not roll back or block the business action it documents. Callers
// invoke it strictly after the primary action succeeded.
type AuditLogger struct {
	events repository.EventStore
	log    *zap.Logger
}

func NewAuditLogger(events repository.EventStore, log *zap.Logger) *AuditLogger {
	return &AuditLogger{events: events, log: log}
}

// LogEvent writes the entry. On primary-write failure it attempts
// exactly one secondary record describing the failure; if that also
// fails the incident goes to the operational log only.
func (l *AuditLogger) LogEvent(ctx context.Context, entry *models.EventLogEntry) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("audit logger panicked", zap.Any("panic", r))
		}
	}()

	err := l.events.Insert(ctx, entry)
	if err == nil {
		return
	}

	secondary := &models.EventLogEntry{
		EventType:  models.EventAPIError,
		EntityType: models.EntitySystem,
		EntityID:   "system",
		UserID:     entry.UserID,
		ClientIP:   entry.ClientIP,
		UserAgent:  entry.UserAgent,
		Metadata: map[string]any{
			"error": err.Error(),
			"original_event": map[string]any{
				"event_type":  string(entry.EventType),
				"entity_type": string(entry.EntityType),
				"entity_id":   entry.EntityID,
				"metadata":    entry.Metadata,
			},
		},
	}
	if entry.UserID != nil {
		secondary.EntityType = models.EntityUser
		secondary.EntityID = entry.UserID.String()
	}

	if err2 := l.events.Insert(ctx, secondary); err2 != nil {
		l.log.Error("audit log write failed twice",
			zap.String("event_type", string(entry.EventType)),
			zap.String("entity_id", entry.EntityID),
			zap.NamedError("primary_error", err),
			zap.NamedError("secondary_error", err2))
	}
}

func (l *AuditLogger) entry(r *http.Request, userID *uuid.UUID, eventType models.EventType, entityType models.EntityType, entityID string, metadata map[string]any) *models.EventLogEntry {
	return &models.EventLogEntry{
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		ClientIP:   ClientIP(r),
		UserAgent:  UserAgent(r),
		UserID:     userID,
	}
}

func (l *AuditLogger) NoteCreated(ctx context.Context, r *http.Request, userID uuid.UUID, note *models.Note) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventNoteCreated, models.EntityNote, note.ID.String(), map[string]any{
		"video_id": note.VideoID,
		"tags":     note.Tags,
	}))
}

func (l *AuditLogger) NoteUpdated(ctx context.Context, r *http.Request, userID uuid.UUID, note *models.Note) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventNoteUpdated, models.EntityNote, note.ID.String(), map[string]any{
		"video_id": note.VideoID,
		"tags":     note.Tags,
	}))
}

func (l *AuditLogger) NoteDeleted(ctx context.Context, r *http.Request, userID, noteID uuid.UUID) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventNoteDeleted, models.EntityNote, noteID.String(), nil))
}

func (l *AuditLogger) VideoUpdated(ctx context.Context, r *http.Request, userID uuid.UUID, videoID string, changed []string) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventVideoUpdated, models.EntityVideo, videoID, map[string]any{
		"changed_fields": changed,
	}))
}

func (l *AuditLogger) CommentPosted(ctx context.Context, r *http.Request, userID uuid.UUID, videoID, commentID string) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventCommentPosted, models.EntityComment, commentID, map[string]any{
		"video_id": videoID,
	}))
}

func (l *AuditLogger) CommentReplied(ctx context.Context, r *http.Request, userID uuid.UUID, parentID, commentID string) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventCommentReplied, models.EntityComment, commentID, map[string]any{
		"parent_id": parentID,
	}))
}

func (l *AuditLogger) CommentDeleted(ctx context.Context, r *http.Request, userID uuid.UUID, commentID string) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventCommentDeleted, models.EntityComment, commentID, nil))
}

func (l *AuditLogger) SearchPerformed(ctx context.Context, r *http.Request, userID uuid.UUID, tag string, results int) {
	l.LogEvent(ctx, l.entry(r, &userID, models.EventSearchPerformed, models.EntityUser, userID.String(), map[string]any{
		"tag":     tag,
		"results": results,
	}))
}

func (l *AuditLogger) AuthFailure(ctx context.Context, r *http.Request, userID *uuid.UUID, reason string) {
	entityID := "anonymous"
	if userID != nil {
		entityID = userID.String()
	}
	l.LogEvent(ctx, l.entry(r, userID, models.EventAuthError, models.EntityUser, entityID, map[string]any{
		"reason": reason,
	}))
}

// ClientEvent records a UI-originated event (page views and the like)
// after the handler has validated it against the closed enumerations.
func (l *AuditLogger) ClientEvent(ctx context.Context, r *http.Request, userID uuid.UUID, eventType models.EventType, entityType models.EntityType, entityID string, metadata map[string]any) {
	l.LogEvent(ctx, l.entry(r, &userID, eventType, entityType, entityID, metadata))
}

// ClientIP extracts the caller's address: forwarded-for chain first,
// then the real-ip and client-ip headers, then the socket address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if client := r.Header.Get("X-Client-IP"); client != "" {
		return client
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserAgent returns the user-agent header verbatim.
func UserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}
