package repository

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"tubedash-backend/internal/models"
)

// NoteSQLiteRepo stores notes in sqlite, which has no native array
// column: tags live in a JSON text blob and tag search filters in
// memory after decoding. Results are shape-identical to the postgres
// path.
type NoteSQLiteRepo struct {
	db    *sql.DB
	codec FieldCodec
}

func NewNoteSQLiteRepo(db *sql.DB) *NoteSQLiteRepo {
	return &NoteSQLiteRepo{db: db, codec: TextCodec{}}
}

func (r *NoteSQLiteRepo) Create(ctx context.Context, note *models.Note) error {
	note.ID = uuid.New()
	note.Tags = NormalizeTags(note.Tags)
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	tags, err := r.codec.EncodeTags(note.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notes (id, user_id, video_id, content, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		note.ID.String(), note.UserID.String(), note.VideoID, note.Content, tags, now, now)
	return err
}

func (r *NoteSQLiteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	query := `SELECT id, user_id, video_id, content, tags, created_at, updated_at
		FROM notes WHERE id = ?`
	return r.scanNote(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *NoteSQLiteRepo) ListByUser(ctx context.Context, userID uuid.UUID, videoID string) ([]*models.Note, error) {
	query := `SELECT id, user_id, video_id, content, tags, created_at, updated_at
		FROM notes WHERE user_id = ? AND (? = '' OR video_id = ?)
		ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID.String(), videoID, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectNotes(rows)
}

// SearchByTag fetches the user's notes and filters on decoded tag
// membership; the backend cannot evaluate containment itself.
func (r *NoteSQLiteRepo) SearchByTag(ctx context.Context, userID uuid.UUID, tag string) ([]*models.Note, error) {
	all, err := r.ListByUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	matched := make([]*models.Note, 0)
	for _, note := range all {
		if slices.Contains(note.Tags, tag) {
			matched = append(matched, note)
		}
	}
	return matched, nil
}

func (r *NoteSQLiteRepo) Update(ctx context.Context, note *models.Note) error {
	note.Tags = NormalizeTags(note.Tags)
	tags, err := r.codec.EncodeTags(note.Tags)
	if err != nil {
		return err
	}

	note.UpdatedAt = time.Now().UTC()
	query := `UPDATE notes SET content = ?, tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, note.Content, tags, note.UpdatedAt, note.ID.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *NoteSQLiteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *NoteSQLiteRepo) scanNote(row *sql.Row) (*models.Note, error) {
	note := &models.Note{}
	var id, userID string
	var rawTags sql.NullString
	err := row.Scan(&id, &userID, &note.VideoID, &note.Content, &rawTags, &note.CreatedAt, &note.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.finishNote(note, id, userID, rawTags)
}

func (r *NoteSQLiteRepo) collectNotes(rows *sql.Rows) ([]*models.Note, error) {
	notes := make([]*models.Note, 0)
	for rows.Next() {
		note := &models.Note{}
		var id, userID string
		var rawTags sql.NullString
		if err := rows.Scan(&id, &userID, &note.VideoID, &note.Content, &rawTags, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, err
		}
		note, err := r.finishNote(note, id, userID, rawTags)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *NoteSQLiteRepo) finishNote(note *models.Note, id, userID string, rawTags sql.NullString) (*models.Note, error) {
	var err error
	if note.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if note.UserID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	var raw any
	if rawTags.Valid {
		raw = rawTags.String
	}
	if note.Tags, err = r.codec.DecodeTags(raw); err != nil {
		return nil, err
	}
	note.CreatedAt = note.CreatedAt.UTC()
	note.UpdatedAt = note.UpdatedAt.UTC()
	return note, nil
}
