package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"tubedash-backend/internal/models"
)

// ErrNoteNotFound is returned when a note id does not exist (or was
// deleted). Handlers map it to 404.
var ErrNoteNotFound = errors.New("note not found")

// NoteStore is the durable home of user notes. Both backends present
// tags as a native []string regardless of how they store them.
type NoteStore interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	ListByUser(ctx context.Context, userID uuid.UUID, videoID string) ([]*models.Note, error)
	SearchByTag(ctx context.Context, userID uuid.UUID, tag string) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventStore is the append-only audit trail. Entries are inserted and
// read, never updated or deleted.
type EventStore interface {
	Insert(ctx context.Context, entry *models.EventLogEntry) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.EventLogEntry, error)
}

// UserStore mirrors externally-issued identities into the local users
// table so notes have a valid owner row to reference.
type UserStore interface {
	Ensure(ctx context.Context, user models.SessionUser) error
}

// HealthProbe is the raw reachability check (SELECT 1 equivalent)
// used by the health endpoint.
type HealthProbe interface {
	Probe(ctx context.Context) error
}
