package models

import "time"

// Thumbnail is a single rendition of a video thumbnail, ordered
// smallest-first as returned by the upstream API.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// VideoStats holds the public counters of a video.
type VideoStats struct {
	ViewCount    uint64 `json:"view_count"`
	LikeCount    uint64 `json:"like_count"`
	CommentCount uint64 `json:"comment_count"`
}

// VideoDetails is a read-only projection of upstream video metadata.
// It is always fetched fresh and never persisted locally.
type VideoDetails struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Thumbnails   []Thumbnail `json:"thumbnails"`
	Statistics   VideoStats  `json:"statistics"`
	PublishedAt  time.Time   `json:"published_at"`
	ChannelID    string      `json:"channel_id"`
	ChannelTitle string      `json:"channel_title"`
}

// Channel is the authenticated caller's own channel.
type Channel struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// VideoListItem is one entry of the caller's uploads listing.
type VideoListItem struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Thumbnails   []Thumbnail `json:"thumbnails"`
	PublishedAt  time.Time   `json:"published_at"`
	ChannelID    string      `json:"channel_id"`
	ChannelTitle string      `json:"channel_title"`
}

// VideoPage is one page of the caller's uploads. NextPageToken is an
// opaque upstream cursor; pass it back verbatim to fetch the next page.
type VideoPage struct {
	Videos        []VideoListItem `json:"videos"`
	NextPageToken string          `json:"next_page_token,omitempty"`
	TotalResults  int64           `json:"total_results"`
}

// UpdateVideoRequest carries the mutable metadata fields. Nil means
// "leave unchanged".
type UpdateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
