package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"tubedash-backend/internal/models"
)

// EventSQLiteRepo appends audit records with metadata serialized to a
// JSON text column.
type EventSQLiteRepo struct {
	db    *sql.DB
	codec FieldCodec
}

func NewEventSQLiteRepo(db *sql.DB) *EventSQLiteRepo {
	return &EventSQLiteRepo{db: db, codec: TextCodec{}}
}

func (r *EventSQLiteRepo) Insert(ctx context.Context, entry *models.EventLogEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	metadata, err := r.codec.EncodeMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	var userID any
	if entry.UserID != nil {
		userID = entry.UserID.String()
	}

	query := `
		INSERT INTO event_log (id, event_type, entity_type, entity_id, metadata, client_ip, user_agent, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID.String(), string(entry.EventType), string(entry.EntityType), entry.EntityID,
		metadata, nullable(entry.ClientIP), nullable(entry.UserAgent), userID, entry.CreatedAt)
	return err
}

func (r *EventSQLiteRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.EventLogEntry, error) {
	query := `SELECT id, event_type, entity_type, entity_id, metadata, client_ip, user_agent, user_id, created_at
		FROM event_log WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.EventLogEntry, 0)
	for rows.Next() {
		entry := &models.EventLogEntry{}
		var id string
		var metadata, clientIP, userAgent, rowUserID sql.NullString
		if err := rows.Scan(&id, &entry.EventType, &entry.EntityType, &entry.EntityID,
			&metadata, &clientIP, &userAgent, &rowUserID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		var raw any
		if metadata.Valid {
			raw = metadata.String
		}
		if entry.Metadata, err = r.codec.DecodeMetadata(raw); err != nil {
			return nil, err
		}
		entry.ClientIP = clientIP.String
		entry.UserAgent = userAgent.String
		if rowUserID.Valid {
			uid, err := uuid.Parse(rowUserID.String)
			if err != nil {
				return nil, err
			}
			entry.UserID = &uid
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
