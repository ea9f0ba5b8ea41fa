package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a private annotation a user attaches to one of their videos.
// Tags behave as a set of short strings; insertion order is preserved
// for display.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	VideoID   string    `json:"video_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateNoteRequest struct {
	VideoID string   `json:"video_id"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type UpdateNoteRequest struct {
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}
