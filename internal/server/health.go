package server

import (
	"log/slog"
	"net/http"
	"time"

	"astraxis-server/internal/shared/database"
	"astraxis-server/internal/shared/redis"
	"astraxis-server/internal/shared/response"
)

type HealthHandler struct {
	db     *database.DB
	redis  *redis.Client
	logger *slog.Logger
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: logger.With("component", "health"),
	}
}

// Check handles GET /health. Reports degraded rather than failing outright
// when Redis is down; the game core runs without it.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := map[string]string{}

	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("Database health check failed", "error", err)
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.redis == nil {
		checks["redis"] = "disabled"
	} else if err := h.redis.Ping(r.Context()).Err(); err != nil {
		h.logger.Warn("Redis health check failed", "error", err)
		checks["redis"] = "down"
	} else {
		checks["redis"] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	response.Success(w, status, map[string]any{
		"status": overall,
		"checks": checks,
		"time":   time.Now().UTC(),
	})
}
