package services

import (
	"context"
	"time"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

// DecisionStore persists submissions and their decisions
type DecisionStore interface {
	SaveSubmission(ctx context.Context, sub *models.Submission) error
	SaveDecision(ctx context.Context, decision *models.RiskDecision) error
	GetDecision(ctx context.Context, requestID string) (*models.RiskDecision, error)
}

// GraphWriter persists relationship graph fragments
type GraphWriter interface {
	SaveRelationshipGraph(ctx context.Context, graph models.RelationshipGraph) error
}

// DecisionPublisher emits a finished decision to downstream consumers
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, decision *models.RiskDecision) error
}

// DecisionCache holds finished decisions for fast repeat lookups
type DecisionCache interface {
	CacheDecision(ctx context.Context, requestID string, decision any, ttl time.Duration) error
	GetCachedDecision(ctx context.Context, requestID string, dest any) error
}

// AssessmentService runs the full pipeline for one submission: orchestrated
// scoring, then in-memory state updates, then best-effort persistence and
// publishing. Every side effect except scoring is optional; a nil dependency
// is simply skipped, so the service keeps assessing with whatever backing
// stores are actually up.
type AssessmentService struct {
	orchestrator *Orchestrator
	baseline     *BaselineStore
	window       *WindowStore

	store     DecisionStore
	graph     GraphWriter
	publisher DecisionPublisher
	cache     DecisionCache
	cacheTTL  time.Duration

	log *logger.Logger
}

// NewAssessmentService creates the assessment pipeline
func NewAssessmentService(
	orchestrator *Orchestrator,
	baseline *BaselineStore,
	window *WindowStore,
	log *logger.Logger,
) *AssessmentService {
	return &AssessmentService{
		orchestrator: orchestrator,
		baseline:     baseline,
		window:       window,
		cacheTTL:     time.Hour,
		log:          log.WithComponent("assessment_service"),
	}
}

// WithStore attaches the decision store
func (s *AssessmentService) WithStore(store DecisionStore) *AssessmentService {
	s.store = store
	return s
}

// WithGraph attaches the relationship graph writer
func (s *AssessmentService) WithGraph(graph GraphWriter) *AssessmentService {
	s.graph = graph
	return s
}

// WithPublisher attaches the decision event publisher
func (s *AssessmentService) WithPublisher(publisher DecisionPublisher) *AssessmentService {
	s.publisher = publisher
	return s
}

// WithCache attaches the decision cache
func (s *AssessmentService) WithCache(cache DecisionCache, ttl time.Duration) *AssessmentService {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// Assess runs the pipeline for a validated submission. Scoring always
// completes; persistence and publishing failures are logged and swallowed so
// an infrastructure outage never turns away a submission.
func (s *AssessmentService) Assess(ctx context.Context, sub *models.Submission) (*models.RiskDecision, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}

	decision := s.orchestrator.Assess(ctx, sub)

	// Feed the in-memory state before any I/O so the very next submission
	// correlates against this one.
	if s.baseline != nil {
		s.baseline.Add(sub)
	}
	if s.window != nil {
		s.window.Add(sub)
	}

	s.persist(ctx, sub, decision)

	return decision, nil
}

// GetDecision looks up a stored decision, cache first
func (s *AssessmentService) GetDecision(ctx context.Context, requestID string) (*models.RiskDecision, error) {
	if s.cache != nil {
		var cached models.RiskDecision
		if err := s.cache.GetCachedDecision(ctx, requestID, &cached); err == nil {
			return &cached, nil
		}
	}
	if s.store == nil {
		return nil, models.ErrDecisionNotFound
	}

	decision, err := s.store.GetDecision(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.CacheDecision(ctx, requestID, decision, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("request_id", requestID).Msg("failed to cache decision")
		}
	}
	return decision, nil
}

// persist writes all side effects for a finished decision, best effort
func (s *AssessmentService) persist(ctx context.Context, sub *models.Submission, decision *models.RiskDecision) {
	if s.store != nil {
		if err := s.store.SaveSubmission(ctx, sub); err != nil {
			s.log.Warn().Err(err).Str("request_id", sub.ID).Msg("failed to save submission")
		} else if err := s.store.SaveDecision(ctx, decision); err != nil {
			s.log.Warn().Err(err).Str("request_id", sub.ID).Msg("failed to save decision")
		}
	}

	if s.cache != nil {
		if err := s.cache.CacheDecision(ctx, sub.ID, decision, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("request_id", sub.ID).Msg("failed to cache decision")
		}
	}

	if s.graph != nil {
		if graph, ok := s.extractGraph(decision); ok {
			if err := s.graph.SaveRelationshipGraph(ctx, graph); err != nil {
				s.log.Warn().Err(err).Str("request_id", sub.ID).Msg("failed to save relationship graph")
			}
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDecision(ctx, decision); err != nil {
			s.log.Warn().Err(err).Str("request_id", sub.ID).Msg("failed to publish decision event")
		}
	}
}

// extractGraph pulls the network analyzer's graph fragment out of the decision
func (s *AssessmentService) extractGraph(decision *models.RiskDecision) (models.RelationshipGraph, bool) {
	network, ok := decision.Results[AnalyzerNetwork]
	if !ok || network.Detail == nil {
		return models.RelationshipGraph{}, false
	}
	graph, ok := network.Detail["graph"].(models.RelationshipGraph)
	if !ok || len(graph.Edges) == 0 {
		return models.RelationshipGraph{}, false
	}
	return graph, true
}
