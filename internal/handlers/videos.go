package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tubedash-backend/internal/middleware"
	"tubedash-backend/internal/models"
	"tubedash-backend/internal/services"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
)

type videoAPI interface {
	GetVideoDetails(ctx context.Context, idOrURL string) (*models.VideoDetails, error)
	GetUserChannel(ctx context.Context, token string) (*models.Channel, error)
	GetUserVideos(ctx context.Context, token string, maxResults int64, pageToken string) (*models.VideoPage, error)
	UpdateVideoMetadata(ctx context.Context, token, videoID string, title, description *string) (*models.VideoDetails, error)
}

type VideoHandler struct {
	yt    videoAPI
	audit *services.AuditLogger
	log   *zap.Logger
}

func NewVideoHandler(yt videoAPI, audit *services.AuditLogger, log *zap.Logger) *VideoHandler {
	return &VideoHandler{yt: yt, audit: audit, log: log}
}

// Get returns public metadata for a video given its bare id.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.yt.GetVideoDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ok(w, details)
}

// Lookup accepts any recognized URL shape via the ?id= query parameter.
func (h *VideoHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	idOrURL := strings.TrimSpace(r.URL.Query().Get("id"))
	if idOrURL == "" {
		badRequest(w, "Missing id parameter")
		return
	}
	details, err := h.yt.GetVideoDetails(r.Context(), idOrURL)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ok(w, details)
}

// GetChannel returns the authenticated caller's own channel.
func (h *VideoHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	channel, err := h.yt.GetUserChannel(r.Context(), session.AccessToken)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ok(w, channel)
}

// ListMine returns one page of the caller's uploads.
func (h *VideoHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	maxResults := clampMaxResults(r.URL.Query().Get("maxResults"))
	pageToken := r.URL.Query().Get("pageToken")

	page, err := h.yt.GetUserVideos(r.Context(), session.AccessToken, maxResults, pageToken)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ok(w, page)
}

// Update changes the title and/or description of a video the caller
// owns. Validation happens before any upstream call.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	var req models.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Title == nil && req.Description == nil {
		badRequest(w, "Provide a title and/or a description to update")
		return
	}

	var changed []string
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			badRequest(w, "Title must not be empty")
			return
		}
		if len(title) > maxTitleLength {
			badRequest(w, "Title must be at most 100 characters")
			return
		}
		req.Title = &title
		changed = append(changed, "title")
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLength {
			badRequest(w, "Description must be at most 5000 characters")
			return
		}
		changed = append(changed, "description")
	}

	session := middleware.GetSession(r.Context())
	details, err := h.yt.UpdateVideoMetadata(r.Context(), session.AccessToken, videoID, req.Title, req.Description)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.audit.VideoUpdated(r.Context(), r, session.User.ID, details.ID, changed)
	ok(w, details)
}
