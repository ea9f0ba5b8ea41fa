package models

import "time"

// Comment is a transient projection of an upstream comment. Replies are
// nested one level only; a reply never carries replies of its own.
type Comment struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	AuthorName      string    `json:"author_name"`
	AuthorAvatarURL string    `json:"author_avatar_url"`
	AuthorChannelID *string   `json:"author_channel_id,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	LikeCount       int64     `json:"like_count"`
	Replies         []Comment `json:"replies,omitempty"`
}

// CommentPage is one page of top-level comment threads.
type CommentPage struct {
	Comments      []Comment `json:"comments"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

type PostCommentRequest struct {
	Text string `json:"text"`
}
