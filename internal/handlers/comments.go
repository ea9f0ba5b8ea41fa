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

const maxCommentLength = 10000

type commentAPI interface {
	GetComments(ctx context.Context, videoID string, maxResults int64, pageToken string) (*models.CommentPage, error)
	PostComment(ctx context.Context, token, videoID, text string) (*models.Comment, error)
	ReplyToComment(ctx context.Context, token, parentID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, token, commentID string) error
}

type CommentHandler struct {
	yt    commentAPI
	audit *services.AuditLogger
	log   *zap.Logger
}

func NewCommentHandler(yt commentAPI, audit *services.AuditLogger, log *zap.Logger) *CommentHandler {
	return &CommentHandler{yt: yt, audit: audit, log: log}
}

// List returns one page of a video's top-level comment threads.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	maxResults := clampMaxResults(r.URL.Query().Get("maxResults"))
	pageToken := r.URL.Query().Get("pageToken")

	page, err := h.yt.GetComments(r.Context(), videoID, maxResults, pageToken)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ok(w, page)
}

// Post adds a top-level comment to a video.
func (h *CommentHandler) Post(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	text, valid := h.commentText(w, r)
	if !valid {
		return
	}

	session := middleware.GetSession(r.Context())
	comment, err := h.yt.PostComment(r.Context(), session.AccessToken, videoID, text)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.audit.CommentPosted(r.Context(), r, session.User.ID, videoID, comment.ID)
	created(w, comment)
}

// Reply adds a reply under an existing top-level comment.
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "id")

	text, valid := h.commentText(w, r)
	if !valid {
		return
	}

	session := middleware.GetSession(r.Context())
	comment, err := h.yt.ReplyToComment(r.Context(), session.AccessToken, parentID, text)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.audit.CommentReplied(r.Context(), r, session.User.ID, parentID, comment.ID)
	created(w, comment)
}

// Delete removes a comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	session := middleware.GetSession(r.Context())
	if err := h.yt.DeleteComment(r.Context(), session.AccessToken, commentID); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.audit.CommentDeleted(r.Context(), r, session.User.ID, commentID)
	okMessage(w, "Comment deleted")
}

// commentText decodes and validates the comment body before any
// upstream call is attempted.
func (h *CommentHandler) commentText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.PostCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return "", false
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		badRequest(w, "Comment text must not be empty")
		return "", false
	}
	if len(req.Text) > maxCommentLength {
		badRequest(w, "Comment text must be at most 10000 characters")
		return "", false
	}
	return text, true
}
