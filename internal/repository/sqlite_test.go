package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"tubedash-backend/internal/database"
	"tubedash-backend/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunSQLiteMigrations(db, filepath.Join("..", "..", "migrations", "sqlite")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	user := models.SessionUser{ID: id, Name: "Test User", Email: id.String() + "@example.com"}
	if err := NewUserSQLiteRepo(db).Ensure(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user.ID
}

func TestNoteSQLiteCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteSQLiteRepo(db)
	ctx := context.Background()
	userID := seedUser(t, db)

	note := &models.Note{
		UserID:  userID,
		VideoID: "dQw4w9WgXcQ",
		Content: "timestamps to revisit",
		Tags:    []string{"golang", "tutorial"},
	}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if note.ID == uuid.Nil {
		t.Fatal("Create did not assign an ID")
	}
	if note.CreatedAt.IsZero() || note.UpdatedAt.IsZero() {
		t.Error("Create did not set timestamps")
	}

	got, err := repo.GetByID(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UserID != userID || got.VideoID != note.VideoID || got.Content != note.Content {
		t.Errorf("GetByID returned wrong note: %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, []string{"golang", "tutorial"}) {
		t.Errorf("Tags did not survive storage: %v", got.Tags)
	}

	got.Content = "updated content"
	got.Tags = []string{"golang"}
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err = repo.GetByID(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetByID after update failed: %v", err)
	}
	if got.Content != "updated content" || !reflect.DeepEqual(got.Tags, []string{"golang"}) {
		t.Errorf("Update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, note.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound after delete, got %v", err)
	}
}

func TestNoteSQLiteNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteSQLiteRepo(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("GetByID: expected ErrNoteNotFound, got %v", err)
	}
	if err := repo.Update(ctx, &models.Note{ID: uuid.New()}); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Update: expected ErrNoteNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, uuid.New()); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Delete: expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteSQLiteListAndSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteSQLiteRepo(db)
	ctx := context.Background()
	userID := seedUser(t, db)
	otherID := seedUser(t, db)

	seed := []*models.Note{
		{UserID: userID, VideoID: "aaaaaaaaaaa", Content: "first", Tags: []string{"go", "db"}},
		{UserID: userID, VideoID: "bbbbbbbbbbb", Content: "second", Tags: []string{"db"}},
		{UserID: userID, VideoID: "aaaaaaaaaaa", Content: "third", Tags: []string{}},
		{UserID: otherID, VideoID: "aaaaaaaaaaa", Content: "not mine", Tags: []string{"go"}},
	}
	for _, n := range seed {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := repo.ListByUser(ctx, userID, "")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 notes for user, got %d", len(all))
	}

	byVideo, err := repo.ListByUser(ctx, userID, "aaaaaaaaaaa")
	if err != nil {
		t.Fatalf("ListByUser with video filter failed: %v", err)
	}
	if len(byVideo) != 2 {
		t.Errorf("Expected 2 notes for video, got %d", len(byVideo))
	}

	// Containment, not equality: a note tagged [go db] matches "db".
	byTag, err := repo.SearchByTag(ctx, userID, "db")
	if err != nil {
		t.Fatalf("SearchByTag failed: %v", err)
	}
	if len(byTag) != 2 {
		t.Errorf("Expected 2 notes tagged db, got %d", len(byTag))
	}
	for _, n := range byTag {
		if n.UserID != userID {
			t.Errorf("SearchByTag leaked another user's note: %+v", n)
		}
	}

	none, err := repo.SearchByTag(ctx, userID, "missing")
	if err != nil {
		t.Fatalf("SearchByTag failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no matches, got %d", len(none))
	}
}

func TestNoteSQLiteCorruptTags(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteSQLiteRepo(db)
	ctx := context.Background()
	userID := seedUser(t, db)

	note := &models.Note{UserID: userID, VideoID: "dQw4w9WgXcQ", Content: "x", Tags: []string{"a"}}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Sabotage the stored blob directly, the way a bad migration would.
	if _, err := db.ExecContext(ctx, "UPDATE notes SET tags = 'not-json' WHERE id = ?", note.ID.String()); err != nil {
		t.Fatalf("Failed to corrupt record: %v", err)
	}

	if _, err := repo.GetByID(ctx, note.ID); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("Expected ErrCorruptRecord, got %v", err)
	}
}

func TestEventSQLiteInsertAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventSQLiteRepo(db)
	ctx := context.Background()
	userID := seedUser(t, db)

	entry := &models.EventLogEntry{
		EventType:  models.EventNoteCreated,
		EntityType: models.EntityNote,
		EntityID:   uuid.NewString(),
		Metadata:   map[string]any{"video_id": "dQw4w9WgXcQ"},
		ClientIP:   "203.0.113.7",
		UserAgent:  "test-agent",
		UserID:     &userID,
	}
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	anonymous := &models.EventLogEntry{
		EventType:  models.EventPageView,
		EntityType: models.EntityPage,
		EntityID:   "/watch",
	}
	if err := repo.Insert(ctx, anonymous); err != nil {
		t.Fatalf("Insert of anonymous entry failed: %v", err)
	}

	entries, err := repo.ListRecent(ctx, userID, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry for user, got %d", len(entries))
	}

	got := entries[0]
	if got.EventType != models.EventNoteCreated || got.EntityType != models.EntityNote {
		t.Errorf("Wrong event shape: %+v", got)
	}
	if got.ClientIP != "203.0.113.7" || got.UserAgent != "test-agent" {
		t.Errorf("Client context not persisted: %+v", got)
	}
	if !reflect.DeepEqual(got.Metadata, map[string]any{"video_id": "dQw4w9WgXcQ"}) {
		t.Errorf("Metadata did not round trip: %v", got.Metadata)
	}
	if got.UserID == nil || *got.UserID != userID {
		t.Errorf("UserID not persisted: %v", got.UserID)
	}
}
