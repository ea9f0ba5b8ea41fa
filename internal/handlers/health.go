package handlers

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tubedash-backend/internal/repository"
)

type HealthHandler struct {
	probe   repository.HealthProbe
	redis   *redis.Client
	log     *zap.Logger
	started time.Time
}

func NewHealthHandler(probe repository.HealthProbe, redisClient *redis.Client, log *zap.Logger) *HealthHandler {
	return &HealthHandler{probe: probe, redis: redisClient, log: log, started: time.Now()}
}

// Check reports service liveness plus database and redis reachability.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbStatus := "ok"
	redisStatus := "ok"

	if err := h.probe.Probe(r.Context()); err != nil {
		h.log.Error("database health probe failed", zap.Error(err))
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		h.log.Error("redis health probe failed", zap.Error(err))
		redisStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":         overall,
		"database":       dbStatus,
		"redis":          redisStatus,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}
