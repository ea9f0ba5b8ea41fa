package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tubedash-backend/internal/models"
)

// EventPostgresRepo appends audit records with a native jsonb metadata
// column.
type EventPostgresRepo struct {
	pool  *pgxpool.Pool
	codec FieldCodec
}

func NewEventPostgresRepo(pool *pgxpool.Pool) *EventPostgresRepo {
	return &EventPostgresRepo{pool: pool, codec: NativeCodec{}}
}

func (r *EventPostgresRepo) Insert(ctx context.Context, entry *models.EventLogEntry) error {
	entry.ID = uuid.New()

	metadata, err := r.codec.EncodeMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO event_log (id, event_type, entity_type, entity_id, metadata, client_ip, user_agent, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		entry.ID, entry.EventType, entry.EntityType, entry.EntityID,
		metadata, nullable(entry.ClientIP), nullable(entry.UserAgent), entry.UserID,
	).Scan(&entry.CreatedAt)
}

func (r *EventPostgresRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.EventLogEntry, error) {
	query := `SELECT id, event_type, entity_type, entity_id, metadata, client_ip, user_agent, user_id, created_at
		FROM event_log WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.EventLogEntry, 0)
	for rows.Next() {
		entry := &models.EventLogEntry{}
		var metadata []byte
		var clientIP, userAgent *string
		if err := rows.Scan(&entry.ID, &entry.EventType, &entry.EntityType, &entry.EntityID,
			&metadata, &clientIP, &userAgent, &entry.UserID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if entry.Metadata, err = r.codec.DecodeMetadata(metadata); err != nil {
			return nil, err
		}
		if clientIP != nil {
			entry.ClientIP = *clientIP
		}
		if userAgent != nil {
			entry.UserAgent = *userAgent
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
