package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tubedash-backend/internal/config"
	"tubedash-backend/internal/database"
	"tubedash-backend/internal/handlers"
	"tubedash-backend/internal/logging"
	"tubedash-backend/internal/middleware"
	"tubedash-backend/internal/repository"
	"tubedash-backend/internal/router"
	"tubedash-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}
	defer logger.Sync()
	logger.Info("starting tubedash backend", zap.String("env", cfg.Env))

	// ──── Step 2: Open the configured storage backend ────
	// The backend is chosen exactly once; everything above the
	// repository layer sees the same in-memory shapes either way.
	var (
		noteStore  repository.NoteStore
		eventStore repository.EventStore
		userStore  repository.UserStore
		probe      repository.HealthProbe
	)

	switch cfg.DatabaseDriver {
	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := database.RunPostgresMigrations(pool, filepath.Join("migrations", "postgres")); err != nil {
			logger.Fatal("postgres migration failed", zap.Error(err))
		}

		noteStore = repository.NewNotePostgresRepo(pool)
		eventStore = repository.NewEventPostgresRepo(pool)
		userStore = repository.NewUserPostgresRepo(pool)
		probe = repository.NewPostgresProbe(pool)
		logger.Info("postgres connected")

	case "sqlite":
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite open failed", zap.Error(err))
		}
		defer db.Close()

		if err := database.RunSQLiteMigrations(db, filepath.Join("migrations", "sqlite")); err != nil {
			logger.Fatal("sqlite migration failed", zap.Error(err))
		}

		noteStore = repository.NewNoteSQLiteRepo(db)
		eventStore = repository.NewEventSQLiteRepo(db)
		userStore = repository.NewUserSQLiteRepo(db)
		probe = repository.NewSQLiteProbe(db)
		logger.Info("sqlite opened", zap.String("path", cfg.SQLitePath))
	}

	// ──── Step 3: Redis (session revocation keys) ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("redis connected")

	// ──── Step 4: Services ────
	youtubeService, err := services.NewYouTubeService(context.Background(), cfg.YouTubeAPIKey)
	if err != nil {
		logger.Fatal("youtube client initialization failed", zap.Error(err))
	}

	auditLogger := services.NewAuditLogger(eventStore, logger)
	sessions := middleware.NewSessionAuth(cfg.JWTSecret, redisClient)
	writeLimiter := middleware.NewRateLimiter(cfg.RateLimitActions, time.Duration(cfg.RateLimitWindowSeconds)*time.Second)

	// ──── Step 5: Handlers ────
	authHandler := handlers.NewAuthHandler(sessions, auditLogger, logger)
	videoHandler := handlers.NewVideoHandler(youtubeService, auditLogger, logger)
	commentHandler := handlers.NewCommentHandler(youtubeService, auditLogger, logger)
	noteHandler := handlers.NewNoteHandler(noteStore, userStore, auditLogger, logger)
	eventHandler := handlers.NewEventHandler(eventStore, auditLogger, logger)
	healthHandler := handlers.NewHealthHandler(probe, redisClient, logger)

	// ──── Step 6: HTTP Server ────
	r := router.New(
		sessions,
		writeLimiter,
		authHandler,
		videoHandler,
		commentHandler,
		noteHandler,
		eventHandler,
		healthHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("tubedash backend ready",
		zap.String("addr", server.Addr),
		zap.String("driver", cfg.DatabaseDriver))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
