package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/harvester-service/internal/repository"
)

// Pinger is the connectivity probe a backing dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the ops endpoints: health, stats.
type Handler struct {
	pg    Pinger
	redis Pinger
	stats repository.StatsRepository
}

func NewHandler(pg, redis Pinger, stats repository.StatsRepository) *Handler {
	return &Handler{pg: pg, redis: redis, stats: stats}
}

// HandleHealthCheck pings both backing stores and reports per-dependency
// status, 503 when either is down.
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := h.pg.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		slog.Error("health check failed for postgres", "error", err)
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := h.redis.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		slog.Error("health check failed for redis", "error", err)
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] != "healthy" || healthStatus["redis"] != "healthy" {
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

// HandleStats returns store row counts so an operator can tell "no work yet"
// from "actively broken".
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.stats.Counts(r.Context())
	if err != nil {
		slog.Error("failed to load store stats", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
