package handlers

import (
	"vendorguard/internal/domain/services"
	"vendorguard/internal/infrastructure/cache"
	"vendorguard/internal/infrastructure/database"
	"vendorguard/internal/infrastructure/database/repository"
	"vendorguard/internal/streaming"
	"vendorguard/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health      *HealthHandler
	Assessments *AssessmentsHandler
	Stats       *StatsHandler
}

// Dependencies holds dependencies for handlers. DB, Repo, Cache, and
// Publisher may be nil when the backing service is down or disabled.
type Dependencies struct {
	Service   *services.AssessmentService
	Repo      *repository.SubmissionRepository
	DB        *database.PostgresDB
	Cache     *cache.RedisCache
	Publisher *streaming.NATSPublisher
	Logger    *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.DB, deps.Cache, deps.Publisher, deps.Logger),
		Assessments: NewAssessmentsHandler(deps.Service, deps.Logger),
		Stats:       NewStatsHandler(deps.Repo, deps.Cache, deps.Logger),
	}
}
