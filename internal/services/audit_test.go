package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tubedash-backend/internal/models"
)

// fakeEventStore records inserts and fails the first failN of them.
type fakeEventStore struct {
	inserted []*models.EventLogEntry
	failN    int
	calls    int
}

func (s *fakeEventStore) Insert(ctx context.Context, entry *models.EventLogEntry) error {
	s.calls++
	if s.calls <= s.failN {
		return errors.New("disk full")
	}
	s.inserted = append(s.inserted, entry)
	return nil
}

func (s *fakeEventStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.EventLogEntry, error) {
	return s.inserted, nil
}

type panickingEventStore struct{}

func (panickingEventStore) Insert(ctx context.Context, entry *models.EventLogEntry) error {
	panic("store exploded")
}

func (panickingEventStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.EventLogEntry, error) {
	return nil, nil
}

func TestAuditLoggerHappyPath(t *testing.T) {
	store := &fakeEventStore{}
	audit := NewAuditLogger(store, zap.NewNop())

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", nil)
	req.RemoteAddr = "203.0.113.7:41000"
	req.Header.Set("User-Agent", "test-agent")

	note := &models.Note{ID: uuid.New(), VideoID: "dQw4w9WgXcQ", Tags: []string{"a"}}
	audit.NoteCreated(context.Background(), req, userID, note)

	if len(store.inserted) != 1 {
		t.Fatalf("Expected 1 insert, got %d", len(store.inserted))
	}
	entry := store.inserted[0]
	if entry.EventType != models.EventNoteCreated || entry.EntityType != models.EntityNote {
		t.Errorf("Wrong event shape: %+v", entry)
	}
	if entry.EntityID != note.ID.String() {
		t.Errorf("EntityID = %q, want note id", entry.EntityID)
	}
	if entry.UserID == nil || *entry.UserID != userID {
		t.Errorf("UserID not attached: %v", entry.UserID)
	}
	if entry.ClientIP != "203.0.113.7" || entry.UserAgent != "test-agent" {
		t.Errorf("Client context not captured: ip=%q ua=%q", entry.ClientIP, entry.UserAgent)
	}
}

func TestAuditLoggerSecondaryWriteOnFailure(t *testing.T) {
	store := &fakeEventStore{failN: 1}
	audit := NewAuditLogger(store, zap.NewNop())

	userID := uuid.New()
	audit.LogEvent(context.Background(), &models.EventLogEntry{
		EventType:  models.EventNoteCreated,
		EntityType: models.EntityNote,
		EntityID:   "abc",
		UserID:     &userID,
	})

	if store.calls != 2 {
		t.Fatalf("Expected exactly 2 insert attempts, got %d", store.calls)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("Expected the secondary record to land, got %d records", len(store.inserted))
	}

	secondary := store.inserted[0]
	if secondary.EventType != models.EventAPIError {
		t.Errorf("Secondary event type = %q, want %q", secondary.EventType, models.EventAPIError)
	}
	if secondary.EntityType != models.EntityUser || secondary.EntityID != userID.String() {
		t.Errorf("Secondary should reference the user: %+v", secondary)
	}
	original, ok := secondary.Metadata["original_event"].(map[string]any)
	if !ok {
		t.Fatalf("Secondary metadata missing original_event: %v", secondary.Metadata)
	}
	if original["event_type"] != string(models.EventNoteCreated) {
		t.Errorf("original_event.event_type = %v", original["event_type"])
	}
}

func TestAuditLoggerAnonymousSecondaryUsesSystemEntity(t *testing.T) {
	store := &fakeEventStore{failN: 1}
	audit := NewAuditLogger(store, zap.NewNop())

	audit.LogEvent(context.Background(), &models.EventLogEntry{
		EventType:  models.EventPageView,
		EntityType: models.EntityPage,
		EntityID:   "/watch",
	})

	if len(store.inserted) != 1 {
		t.Fatalf("Expected the secondary record to land, got %d records", len(store.inserted))
	}
	secondary := store.inserted[0]
	if secondary.EntityType != models.EntitySystem || secondary.EntityID != "system" {
		t.Errorf("Anonymous secondary should be a system record: %+v", secondary)
	}
}

func TestAuditLoggerGivesUpAfterTwoFailures(t *testing.T) {
	store := &fakeEventStore{failN: 2}
	audit := NewAuditLogger(store, zap.NewNop())

	// Must return normally with no retries beyond the secondary.
	audit.LogEvent(context.Background(), &models.EventLogEntry{
		EventType:  models.EventNoteDeleted,
		EntityType: models.EntityNote,
		EntityID:   "abc",
	})

	if store.calls != 2 {
		t.Errorf("Expected exactly 2 insert attempts, got %d", store.calls)
	}
}

func TestAuditLoggerSwallowsPanics(t *testing.T) {
	audit := NewAuditLogger(panickingEventStore{}, zap.NewNop())

	// Must not panic the caller.
	audit.LogEvent(context.Background(), &models.EventLogEntry{
		EventType:  models.EventPageView,
		EntityType: models.EntityPage,
		EntityID:   "/",
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded chain takes first hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip fallback", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.2:1234", "203.0.113.8"},
		{"client ip fallback", map[string]string{"X-Client-IP": "203.0.113.9"}, "10.0.0.2:1234", "203.0.113.9"},
		{"socket address", nil, "198.51.100.4:9999", "198.51.100.4"},
		{"socket address without port", nil, "198.51.100.4", "198.51.100.4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
