package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tubedash-backend/internal/models"
)

// NotePostgresRepo stores notes with a native text[] tags column, so
// tag search is pushed into the query.
type NotePostgresRepo struct {
	pool  *pgxpool.Pool
	codec FieldCodec
}

func NewNotePostgresRepo(pool *pgxpool.Pool) *NotePostgresRepo {
	return &NotePostgresRepo{pool: pool, codec: NativeCodec{}}
}

func (r *NotePostgresRepo) Create(ctx context.Context, note *models.Note) error {
	note.ID = uuid.New()
	note.Tags = NormalizeTags(note.Tags)

	tags, err := r.codec.EncodeTags(note.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notes (id, user_id, video_id, content, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		note.ID, note.UserID, note.VideoID, note.Content, tags,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
}

func (r *NotePostgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	query := `SELECT id, user_id, video_id, content, tags, created_at, updated_at
		FROM notes WHERE id = $1`
	return r.scanNote(r.pool.QueryRow(ctx, query, id))
}

func (r *NotePostgresRepo) ListByUser(ctx context.Context, userID uuid.UUID, videoID string) ([]*models.Note, error) {
	query := `SELECT id, user_id, video_id, content, tags, created_at, updated_at
		FROM notes WHERE user_id = $1 AND ($2 = '' OR video_id = $2)
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectNotes(rows)
}

// SearchByTag uses array containment in SQL; only matching rows leave
// the database.
func (r *NotePostgresRepo) SearchByTag(ctx context.Context, userID uuid.UUID, tag string) ([]*models.Note, error) {
	query := `SELECT id, user_id, video_id, content, tags, created_at, updated_at
		FROM notes WHERE user_id = $1 AND $2 = ANY(tags)
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectNotes(rows)
}

func (r *NotePostgresRepo) Update(ctx context.Context, note *models.Note) error {
	note.Tags = NormalizeTags(note.Tags)
	tags, err := r.codec.EncodeTags(note.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE notes SET content = $1, tags = $2, updated_at = NOW()
		WHERE id = $3 RETURNING updated_at`
	err = r.pool.QueryRow(ctx, query, note.Content, tags, note.ID).Scan(&note.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoteNotFound
	}
	return err
}

func (r *NotePostgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *NotePostgresRepo) scanNote(row pgx.Row) (*models.Note, error) {
	note := &models.Note{}
	var rawTags []string
	err := row.Scan(&note.ID, &note.UserID, &note.VideoID, &note.Content, &rawTags, &note.CreatedAt, &note.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	note.Tags, err = r.codec.DecodeTags(rawTags)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (r *NotePostgresRepo) collectNotes(rows pgx.Rows) ([]*models.Note, error) {
	notes := make([]*models.Note, 0)
	for rows.Next() {
		note := &models.Note{}
		var rawTags []string
		if err := rows.Scan(&note.ID, &note.UserID, &note.VideoID, &note.Content, &rawTags, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, err
		}
		tags, err := r.codec.DecodeTags(rawTags)
		if err != nil {
			return nil, err
		}
		note.Tags = tags
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
