package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"tubedash-backend/internal/handlers"
	"tubedash-backend/internal/middleware"
)

func New(
	sessions *middleware.SessionAuth,
	writeLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	videoHandler *handlers.VideoHandler,
	commentHandler *handlers.CommentHandler,
	noteHandler *handlers.NoteHandler,
	eventHandler *handlers.EventHandler,
	healthHandler *handlers.HealthHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth ────
		r.Group(func(r chi.Router) {
			r.Use(sessions.Require)
			r.Post("/auth/logout", authHandler.Logout)
		})

		// ──── Videos ────
		r.Route("/videos", func(r chi.Router) {
			// Public reads (session attached when present)
			r.Group(func(r chi.Router) {
				r.Use(sessions.Optional)
				r.Get("/lookup", videoHandler.Lookup)
				r.Get("/{id}", videoHandler.Get)
				r.Get("/{id}/comments", commentHandler.List)
			})

			r.Group(func(r chi.Router) {
				r.Use(sessions.Require)
				r.With(writeLimiter.Middleware).Put("/{id}", videoHandler.Update)
				r.With(writeLimiter.Middleware).Post("/{id}/comments", commentHandler.Post)
			})
		})

		// ──── Channel ────
		r.Route("/channel", func(r chi.Router) {
			r.Use(sessions.Require)
			r.Get("/", videoHandler.GetChannel)
			r.Get("/videos", videoHandler.ListMine)
		})

		// ──── Comments ────
		r.Route("/comments", func(r chi.Router) {
			r.Use(sessions.Require)
			r.Use(writeLimiter.Middleware)
			r.Post("/{id}/replies", commentHandler.Reply)
			r.Delete("/{id}", commentHandler.Delete)
		})

		// ──── Notes ────
		r.Route("/notes", func(r chi.Router) {
			r.Use(sessions.Require)
			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)
			r.Get("/{id}", noteHandler.Get)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
		})

		// ──── Events ────
		r.Route("/events", func(r chi.Router) {
			r.Use(sessions.Require)
			r.Post("/", eventHandler.Ingest)
			r.Get("/", eventHandler.ListRecent)
		})
	})

	return r
}
