package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorguard/internal/config"
	"vendorguard/internal/domain/models"
)

type memoryStore struct {
	submissions map[string]*models.Submission
	decisions   map[string]*models.RiskDecision
	failSave    bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		submissions: make(map[string]*models.Submission),
		decisions:   make(map[string]*models.RiskDecision),
	}
}

func (m *memoryStore) SaveSubmission(_ context.Context, sub *models.Submission) error {
	if m.failSave {
		return errors.New("database down")
	}
	m.submissions[sub.ID] = sub
	return nil
}

func (m *memoryStore) SaveDecision(_ context.Context, decision *models.RiskDecision) error {
	if m.failSave {
		return errors.New("database down")
	}
	m.decisions[decision.SubmissionID] = decision
	return nil
}

func (m *memoryStore) GetDecision(_ context.Context, requestID string) (*models.RiskDecision, error) {
	decision, ok := m.decisions[requestID]
	if !ok {
		return nil, models.ErrDecisionNotFound
	}
	return decision, nil
}

type memoryCache struct {
	decisions map[string]*models.RiskDecision
}

func newMemoryCache() *memoryCache {
	return &memoryCache{decisions: make(map[string]*models.RiskDecision)}
}

func (m *memoryCache) CacheDecision(_ context.Context, requestID string, decision any, _ time.Duration) error {
	if d, ok := decision.(*models.RiskDecision); ok {
		m.decisions[requestID] = d
	}
	return nil
}

func (m *memoryCache) GetCachedDecision(_ context.Context, requestID string, dest any) error {
	decision, ok := m.decisions[requestID]
	if !ok {
		return errors.New("cache miss")
	}
	if d, ok := dest.(*models.RiskDecision); ok {
		*d = *decision
	}
	return nil
}

type recordingPublisher struct {
	published []*models.RiskDecision
	err       error
}

func (p *recordingPublisher) PublishDecision(_ context.Context, decision *models.RiskDecision) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, decision)
	return nil
}

type recordingGraphWriter struct {
	graphs []models.RelationshipGraph
}

func (w *recordingGraphWriter) SaveRelationshipGraph(_ context.Context, graph models.RelationshipGraph) error {
	w.graphs = append(w.graphs, graph)
	return nil
}

func newTestAssessmentService(analyzers ...Analyzer) *AssessmentService {
	log := testLogger()
	o := NewOrchestrator(analyzers, config.DefaultWeights(), time.Second, log)
	return NewAssessmentService(o, NewBaselineStore(100), NewWindowStore(24*time.Hour), log)
}

func TestAssessRejectsInvalidSubmission(t *testing.T) {
	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.1})

	_, err := s.Assess(context.Background(), &models.Submission{ID: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidSubmission)
}

func TestAssessWorksWithoutInfrastructure(t *testing.T) {
	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2})

	decision, err := s.Assess(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "req-001", decision.SubmissionID)
}

func TestAssessUpdatesWindowAndBaseline(t *testing.T) {
	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2})
	sub := validSubmission()

	_, err := s.Assess(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, 1, s.baseline.Snapshot().SampleSize)
	assert.Len(t, s.window.Recent(sub.SubmittedAt.Add(time.Minute)), 1)
}

func TestAssessPersistsAndPublishes(t *testing.T) {
	store := newMemoryStore()
	cache := newMemoryCache()
	publisher := &recordingPublisher{}

	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2}).
		WithStore(store).
		WithCache(cache, time.Hour).
		WithPublisher(publisher)

	sub := validSubmission()
	_, err := s.Assess(context.Background(), sub)
	require.NoError(t, err)

	assert.Contains(t, store.submissions, sub.ID)
	assert.Contains(t, store.decisions, sub.ID)
	assert.Contains(t, cache.decisions, sub.ID)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, sub.ID, publisher.published[0].SubmissionID)
}

func TestAssessSurvivesStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.failSave = true
	publisher := &recordingPublisher{err: errors.New("broker offline")}

	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2}).
		WithStore(store).
		WithPublisher(publisher)

	decision, err := s.Assess(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.NotNil(t, decision)
}

func TestAssessWritesRelationshipGraph(t *testing.T) {
	graphWriter := &recordingGraphWriter{}
	window := fixedWindow{
		{ID: "peer", VendorName: "Peer Corp", Email: "x@elsewhere.example", SourceIP: "203.0.113.10", SubmittedAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)},
	}
	network := NewNetworkAnalyzer(window, testLogger())
	network.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }

	s := newTestAssessmentService(network).WithGraph(graphWriter)

	_, err := s.Assess(context.Background(), validSubmission())
	require.NoError(t, err)

	require.Len(t, graphWriter.graphs, 1)
	assert.NotEmpty(t, graphWriter.graphs[0].Edges)
}

func TestAssessSkipsGraphWithoutEdges(t *testing.T) {
	graphWriter := &recordingGraphWriter{}
	network := NewNetworkAnalyzer(fixedWindow{}, testLogger())

	s := newTestAssessmentService(network).WithGraph(graphWriter)

	_, err := s.Assess(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Empty(t, graphWriter.graphs)
}

func TestGetDecisionCacheFirst(t *testing.T) {
	store := newMemoryStore()
	cache := newMemoryCache()
	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2}).
		WithStore(store).
		WithCache(cache, time.Hour)

	decision := &models.RiskDecision{SubmissionID: "cached-only", FinalScore: 0.42}
	cache.decisions["cached-only"] = decision

	got, err := s.GetDecision(context.Background(), "cached-only")
	require.NoError(t, err)
	assert.Equal(t, 0.42, got.FinalScore)
}

func TestGetDecisionFallsBackToStore(t *testing.T) {
	store := newMemoryStore()
	cache := newMemoryCache()
	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2}).
		WithStore(store).
		WithCache(cache, time.Hour)

	store.decisions["stored"] = &models.RiskDecision{SubmissionID: "stored", FinalScore: 0.3}

	got, err := s.GetDecision(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, "stored", got.SubmissionID)

	// lookup re-primes the cache
	assert.Contains(t, cache.decisions, "stored")
}

func TestGetDecisionNotFound(t *testing.T) {
	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2}).
		WithStore(newMemoryStore())

	_, err := s.GetDecision(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrDecisionNotFound)
}

func TestGetDecisionWithoutBackends(t *testing.T) {
	s := newTestAssessmentService(stubAnalyzer{name: AnalyzerLegal, score: 0.2})

	_, err := s.GetDecision(context.Background(), "anything")
	assert.ErrorIs(t, err, models.ErrDecisionNotFound)
}
