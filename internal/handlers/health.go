package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

var startTime = time.Now()

// Checker probes one dependency
type Checker func(ctx context.Context) error

// HealthHandler provides health check endpoints
type HealthHandler struct {
	db     Checker
	cache  Checker
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler. cache may be nil when Redis
// is not configured.
func NewHealthHandler(db, cache Checker, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

// Check handles GET /api/v1/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/v1/health/ready (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:   "ready",
		Version:  Version,
		Uptime:   time.Since(startTime).String(),
		Database: "connected",
		Redis:    "disabled",
	}
	code := http.StatusOK

	if err := h.db(r.Context()); err != nil {
		h.logger.Warnw("Database ping failed", "error", err)
		status.Database = "disconnected"
		status.Status = "not ready"
		code = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		status.Redis = "connected"
		if err := h.cache(r.Context()); err != nil {
			h.logger.Warnw("Redis ping failed", "error", err)
			status.Redis = "disconnected"
			status.Status = "not ready"
			code = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, code, status)
}
