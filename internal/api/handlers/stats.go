package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"vendorguard/internal/infrastructure/cache"
	"vendorguard/internal/infrastructure/database/repository"
	"vendorguard/pkg/logger"
)

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	repo   *repository.SubmissionRepository
	cache  *cache.RedisCache
	logger *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(repo *repository.SubmissionRepository, c *cache.RedisCache, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		repo:   repo,
		cache:  c,
		logger: log.WithComponent("stats"),
	}
}

// Stats summarizes decision volume over the trailing day
type Stats struct {
	DecisionsByTier map[string]int64 `json:"decisions_by_tier"`
	Window          string           `json:"window"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var stats Stats
	if h.cache != nil {
		if err := h.cache.GetJSON(r.Context(), cache.KeyStats, &stats); err == nil {
			writeStats(w, stats)
			return
		}
	}

	stats = Stats{
		DecisionsByTier: map[string]int64{},
		Window:          "24h",
		GeneratedAt:     time.Now().UTC(),
	}

	if h.repo != nil {
		counts, err := h.repo.DecisionStats(r.Context(), time.Now().Add(-24*time.Hour))
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to fetch decision stats")
		} else {
			stats.DecisionsByTier = counts
		}
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(r.Context(), cache.KeyStats, stats, 5*time.Minute)
	}

	writeStats(w, stats)
}

func writeStats(w http.ResponseWriter, stats Stats) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	json.NewEncoder(w).Encode(stats)
}
