package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tubedash-backend/internal/models"
)

// YouTubeService wraps the Data API v3 behind the operations the
// dashboard needs. Public reads go through an API-key client built once
// at startup; anything that mutates state or reads private ownership
// data builds a per-call client from the caller's bearer token.
//
// The adapter is stateless: no caching, no retries, no page
// aggregation. Page tokens are opaque upstream cursors passed through
// verbatim.
type YouTubeService struct {
	public    *youtube.Service
	extraOpts []option.ClientOption
}

func NewYouTubeService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeService, error) {
	publicOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	public, err := youtube.NewService(ctx, publicOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build youtube client: %w", err)
	}
	return &YouTubeService{public: public, extraOpts: opts}, nil
}

// authed builds a client bound to the caller's bearer token. Fails with
// ErrAuthenticationRequired before any network call when no token is
// present.
func (s *YouTubeService) authed(ctx context.Context, token string) (*youtube.Service, error) {
	if token == "" {
		return nil, ErrAuthenticationRequired
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(src)}, s.extraOpts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticated youtube client: %w", err)
	}
	return svc, nil
}

var (
	bareIDRe  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	watchRe   = regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})`)
	shortRe   = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`)
	embedRe   = regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`)
	shortsRe  = regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`)
	urlShapes = []*regexp.Regexp{watchRe, shortRe, embedRe, shortsRe}
)

// ExtractVideoID accepts a bare 11-character id or any recognized URL
// shape (watch, youtu.be, embed, shorts) and returns the id.
func ExtractVideoID(idOrURL string) (string, error) {
	if bareIDRe.MatchString(idOrURL) {
		return idOrURL, nil
	}
	for _, re := range urlShapes {
		if m := re.FindStringSubmatch(idOrURL); len(m) == 2 {
			return m[1], nil
		}
	}
	return "", ErrInvalidIdentifier
}

// GetVideoDetails fetches public metadata for a video given its id or URL.
func (s *YouTubeService) GetVideoDetails(ctx context.Context, idOrURL string) (*models.VideoDetails, error) {
	videoID, err := ExtractVideoID(idOrURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.public.Videos.List([]string{"snippet", "statistics"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNotFound
	}

	return videoFromUpstream(resp.Items[0]), nil
}

// GetUserChannel returns the authenticated caller's own channel.
func (s *YouTubeService) GetUserChannel(ctx context.Context, token string) (*models.Channel, error) {
	svc, err := s.authed(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Channels.List([]string{"id", "snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNotFound
	}

	ch := resp.Items[0]
	out := &models.Channel{ID: ch.Id}
	if ch.Snippet != nil {
		out.Title = ch.Snippet.Title
		if ch.Snippet.Thumbnails != nil && ch.Snippet.Thumbnails.Default != nil {
			out.ThumbnailURL = ch.Snippet.Thumbnails.Default.Url
		}
	}
	return out, nil
}

// GetUserVideos lists the caller's own uploads, one upstream page per call.
func (s *YouTubeService) GetUserVideos(ctx context.Context, token string, maxResults int64, pageToken string) (*models.VideoPage, error) {
	svc, err := s.authed(ctx, token)
	if err != nil {
		return nil, err
	}

	call := svc.Search.List([]string{"snippet"}).
		ForMine(true).
		Type("video").
		Order("date").
		MaxResults(maxResults).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}

	page := &models.VideoPage{
		Videos:        make([]models.VideoListItem, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	if resp.PageInfo != nil {
		page.TotalResults = resp.PageInfo.TotalResults
	}
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		page.Videos = append(page.Videos, models.VideoListItem{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnails:   thumbnailsFromUpstream(item.Snippet.Thumbnails),
			PublishedAt:  parseUpstreamTime(item.Snippet.PublishedAt),
			ChannelID:    item.Snippet.ChannelId,
			ChannelTitle: item.Snippet.ChannelTitle,
		})
	}
	return page, nil
}

// GetVideoDetailsWithOwnership fetches a video and verifies it belongs
// to the authenticated caller's channel. A mismatch is ErrOwnership,
// deliberately distinct from ErrNotFound.
func (s *YouTubeService) GetVideoDetailsWithOwnership(ctx context.Context, token, videoID string) (*models.VideoDetails, error) {
	channel, err := s.GetUserChannel(ctx, token)
	if err != nil {
		return nil, err
	}

	details, err := s.GetVideoDetails(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if details.ChannelID != channel.ID {
		return nil, ErrOwnership
	}
	return details, nil
}

// UpdateVideoMetadata updates title and/or description of a video the
// caller owns. Nil fields are left unchanged. The upstream update
// endpoint requires the full snippet, so the current one is fetched
// first and patched.
func (s *YouTubeService) UpdateVideoMetadata(ctx context.Context, token, videoID string, title, description *string) (*models.VideoDetails, error) {
	svc, err := s.authed(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetVideoDetailsWithOwnership(ctx, token, videoID); err != nil {
		return nil, err
	}

	current, err := svc.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	if len(current.Items) == 0 || current.Items[0].Snippet == nil {
		return nil, ErrNotFound
	}

	snippet := current.Items[0].Snippet
	if title != nil {
		snippet.Title = *title
	}
	if description != nil {
		snippet.Description = *description
	}

	updated, err := svc.Videos.Update([]string{"snippet"}, &youtube.Video{Id: videoID, Snippet: snippet}).Context(ctx).Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	return videoFromUpstream(updated), nil
}

// GetComments fetches one page of top-level comment threads with their
// replies. A video whose owner disabled comments yields
// ErrCommentsDisabled, which callers treat as an expected state.
func (s *YouTubeService) GetComments(ctx context.Context, videoID string, maxResults int64, pageToken string) (*models.CommentPage, error) {
	id, err := ExtractVideoID(videoID)
	if err != nil {
		return nil, err
	}

	call := s.public.CommentThreads.List([]string{"snippet", "replies"}).
		VideoId(id).
		TextFormat("plainText").
		MaxResults(maxResults).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}

	page := &models.CommentPage{
		Comments:      make([]models.Comment, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, thread := range resp.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil {
			continue
		}
		top := commentFromUpstream(thread.Snippet.TopLevelComment)
		if thread.Replies != nil {
			for _, reply := range thread.Replies.Comments {
				top.Replies = append(top.Replies, commentFromUpstream(reply))
			}
		}
		page.Comments = append(page.Comments, top)
	}
	return page, nil
}

// PostComment posts a new top-level comment on a video.
func (s *YouTubeService) PostComment(ctx context.Context, token, videoID, text string) (*models.Comment, error) {
	id, err := ExtractVideoID(videoID)
	if err != nil {
		return nil, err
	}
	svc, err := s.authed(ctx, token)
	if err != nil {
		return nil, err
	}

	thread := &youtube.CommentThread{
		Snippet: &youtube.CommentThreadSnippet{
			VideoId: id,
			TopLevelComment: &youtube.Comment{
				Snippet: &youtube.CommentSnippet{TextOriginal: text},
			},
		},
	}
	created, err := svc.CommentThreads.Insert([]string{"snippet"}, thread).Context(ctx).Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	if created.Snippet == nil || created.Snippet.TopLevelComment == nil {
		return nil, &APIError{StatusCode: 500, Message: "upstream returned a comment thread without a top-level comment"}
	}
	out := commentFromUpstream(created.Snippet.TopLevelComment)
	return &out, nil
}

// ReplyToComment posts a reply under an existing top-level comment.
func (s *YouTubeService) ReplyToComment(ctx context.Context, token, parentID, text string) (*models.Comment, error) {
	svc, err := s.authed(ctx, token)
	if err != nil {
		return nil, err
	}

	reply := &youtube.Comment{
		Snippet: &youtube.CommentSnippet{ParentId: parentID, TextOriginal: text},
	}
	created, err := svc.Comments.Insert([]string{"snippet"}, reply).Context(ctx).Do()
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	out := commentFromUpstream(created)
	return &out, nil
}

// DeleteComment removes a comment the caller is allowed to delete.
func (s *YouTubeService) DeleteComment(ctx context.Context, token, commentID string) error {
	svc, err := s.authed(ctx, token)
	if err != nil {
		return err
	}
	if err := svc.Comments.Delete(commentID).Context(ctx).Do(); err != nil {
		return mapUpstreamError(err)
	}
	return nil
}

// mapUpstreamError translates a Data API failure into the taxonomy.
// The disabled-comments condition arrives as a 403 with a dedicated
// error reason and is mapped before the generic auth case.
func mapUpstreamError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &APIError{StatusCode: 500, Message: err.Error()}
	}

	for _, item := range gerr.Errors {
		if item.Reason == "commentsDisabled" {
			return ErrCommentsDisabled
		}
	}

	switch gerr.Code {
	case 401, 403:
		return ErrUpstreamAuth
	case 404:
		return ErrNotFound
	default:
		return &APIError{StatusCode: gerr.Code, Message: gerr.Message}
	}
}

func videoFromUpstream(v *youtube.Video) *models.VideoDetails {
	out := &models.VideoDetails{ID: v.Id}
	if v.Snippet != nil {
		out.Title = v.Snippet.Title
		out.Description = v.Snippet.Description
		out.Thumbnails = thumbnailsFromUpstream(v.Snippet.Thumbnails)
		out.PublishedAt = parseUpstreamTime(v.Snippet.PublishedAt)
		out.ChannelID = v.Snippet.ChannelId
		out.ChannelTitle = v.Snippet.ChannelTitle
	}
	if v.Statistics != nil {
		out.Statistics = models.VideoStats{
			ViewCount:    v.Statistics.ViewCount,
			LikeCount:    v.Statistics.LikeCount,
			CommentCount: v.Statistics.CommentCount,
		}
	}
	return out
}

func commentFromUpstream(c *youtube.Comment) models.Comment {
	out := models.Comment{ID: c.Id}
	if c.Snippet == nil {
		return out
	}
	out.Text = c.Snippet.TextDisplay
	out.AuthorName = c.Snippet.AuthorDisplayName
	out.AuthorAvatarURL = c.Snippet.AuthorProfileImageUrl
	out.PublishedAt = parseUpstreamTime(c.Snippet.PublishedAt)
	out.LikeCount = c.Snippet.LikeCount
	if c.Snippet.AuthorChannelId != nil && c.Snippet.AuthorChannelId.Value != "" {
		id := c.Snippet.AuthorChannelId.Value
		out.AuthorChannelID = &id
	}
	return out
}

// smallest-first so the frontend can pick by index
func thumbnailsFromUpstream(t *youtube.ThumbnailDetails) []models.Thumbnail {
	if t == nil {
		return nil
	}
	var out []models.Thumbnail
	for _, thumb := range []*youtube.Thumbnail{t.Default, t.Medium, t.High, t.Standard, t.Maxres} {
		if thumb == nil || thumb.Url == "" {
			continue
		}
		out = append(out, models.Thumbnail{URL: thumb.Url, Width: thumb.Width, Height: thumb.Height})
	}
	return out
}

func parseUpstreamTime(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
