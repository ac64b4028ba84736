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

func newTestOrchestrator(timeout time.Duration, analyzers ...Analyzer) *Orchestrator {
	return NewOrchestrator(analyzers, config.DefaultWeights(), timeout, testLogger())
}

func TestOrchestratorWeightedCombination(t *testing.T) {
	o := newTestOrchestrator(time.Second,
		stubAnalyzer{name: AnalyzerEntity, score: 0.2},
		stubAnalyzer{name: AnalyzerLegal, score: 0.4},
		stubAnalyzer{name: AnalyzerPayment, score: 0.2},
		stubAnalyzer{name: AnalyzerBehavioral, score: 0.0},
		stubAnalyzer{name: AnalyzerNetwork, score: 0.0},
		stubAnalyzer{name: AnalyzerTrust, score: 0.0},
	)

	decision := o.Assess(context.Background(), validSubmission())

	// 0.2*0.30 + 0.4*0.15 + 0.2*0.15
	assert.InDelta(t, 0.15, decision.FinalScore, 1e-9)
	assert.Equal(t, models.RecommendationAutoApprove, decision.Recommendation)
	assert.Len(t, decision.AnalyzerScores, 6)
	assert.Empty(t, decision.DegradedAnalyzers)
}

func TestOrchestratorEntityOverride(t *testing.T) {
	o := newTestOrchestrator(time.Second,
		stubAnalyzer{name: AnalyzerEntity, score: 0.96},
		stubAnalyzer{name: AnalyzerLegal, score: 0.0},
	)

	decision := o.Assess(context.Background(), validSubmission())

	assert.InDelta(t, 0.96, decision.FinalScore, 1e-9)
	assert.Equal(t, models.RecommendationManualReview, decision.Recommendation)
}

func TestOrchestratorLegalOverride(t *testing.T) {
	o := newTestOrchestrator(time.Second,
		stubAnalyzer{name: AnalyzerLegal, score: 0.92},
		stubAnalyzer{name: AnalyzerEntity, score: 0.0},
	)

	decision := o.Assess(context.Background(), validSubmission())

	assert.InDelta(t, 0.9, decision.FinalScore, 1e-9)
	assert.Equal(t, models.RecommendationManualReview, decision.Recommendation)
}

func TestOrchestratorComplianceBlockWins(t *testing.T) {
	o := newTestOrchestrator(time.Second,
		stubAnalyzer{name: AnalyzerEntity, score: 0.1, compliance: models.ComplianceBlocked},
		stubAnalyzer{name: AnalyzerLegal, score: 0.0},
	)

	decision := o.Assess(context.Background(), validSubmission())

	assert.Equal(t, models.RecommendationBlocked, decision.Recommendation)
	assert.Equal(t, models.ComplianceBlocked, decision.ComplianceStatus)
}

func TestOrchestratorAnalyzerErrorDegrades(t *testing.T) {
	o := newTestOrchestrator(time.Second,
		stubAnalyzer{name: AnalyzerLegal, err: errors.New("backend down")},
		stubAnalyzer{name: AnalyzerEntity, score: 0.0},
	)

	decision := o.Assess(context.Background(), validSubmission())

	require.Contains(t, decision.Results, AnalyzerLegal)
	assert.True(t, decision.Results[AnalyzerLegal].Degraded)
	assert.Equal(t, neutralScore, decision.AnalyzerScores[AnalyzerLegal])
	assert.Equal(t, []string{AnalyzerLegal}, decision.DegradedAnalyzers)
}

func TestOrchestratorAnalyzerTimeoutDegrades(t *testing.T) {
	o := newTestOrchestrator(50*time.Millisecond,
		stubAnalyzer{name: AnalyzerNetwork, score: 0.9, delay: 500 * time.Millisecond},
	)

	decision := o.Assess(context.Background(), validSubmission())

	require.Contains(t, decision.Results, AnalyzerNetwork)
	assert.True(t, decision.Results[AnalyzerNetwork].Degraded)
	assert.Equal(t, neutralScore, decision.AnalyzerScores[AnalyzerNetwork])
}

func TestOrchestratorAnalyzerPanicDegrades(t *testing.T) {
	o := newTestOrchestrator(time.Second,
		stubAnalyzer{name: AnalyzerBehavioral, panics: true},
		stubAnalyzer{name: AnalyzerEntity, score: 0.2},
	)

	decision := o.Assess(context.Background(), validSubmission())

	require.Contains(t, decision.Results, AnalyzerBehavioral)
	assert.True(t, decision.Results[AnalyzerBehavioral].Degraded)
	assert.Contains(t, decision.Results[AnalyzerBehavioral].DegradedReason, "panic")
}

func TestOrchestratorRiskFactorsPrefixedAndSorted(t *testing.T) {
	o := newTestOrchestrator(time.Second,
		stubAnalyzer{name: AnalyzerTrust, score: 0.1, factors: []string{"untrusted_tld"}},
		stubAnalyzer{name: AnalyzerLegal, score: 0.1, factors: []string{"ongoing_case"}},
	)

	decision := o.Assess(context.Background(), validSubmission())

	assert.Equal(t, []string{
		"legal:ongoing_case",
		"trust:untrusted_tld",
	}, decision.RiskFactors)
}

func TestRecommendTiers(t *testing.T) {
	assert.Equal(t, models.RecommendationBlocked, recommend(0.0, models.ComplianceBlocked))
	assert.Equal(t, models.RecommendationManualReview, recommend(0.75, models.ComplianceClear))
	assert.Equal(t, models.RecommendationEnhanced, recommend(0.55, models.ComplianceClear))
	assert.Equal(t, models.RecommendationStandard, recommend(0.35, models.ComplianceClear))
	assert.Equal(t, models.RecommendationAutoApprove, recommend(0.1, models.ComplianceClear))
}

func TestOrchestratorEndToEndHighRisk(t *testing.T) {
	log := testLogger()
	analyzers := []Analyzer{
		NewLegalAnalyzer(DefaultLegalConfig(), log),
		NewPaymentAnalyzer(fixedCredit(780), log),
		NewBehavioralAnalyzer(FixedBaseline{}, log),
		NewNetworkAnalyzer(fixedWindow{}, log),
		NewEntityAnalyzer(nil, log),
		NewTrustAnalyzer(fixedProber{result: ProbeResult{WebsiteReachable: true, HTTPS: true, ValidTLS: true, HasMX: true}}, nil, log),
	}
	o := NewOrchestrator(analyzers, config.DefaultWeights(), 5*time.Second, log)

	sub := validSubmission()
	sub.BusinessDescription = "The company was convicted of wire fraud and later filed for bankruptcy protection in 2024."

	decision := o.Assess(context.Background(), sub)

	assert.GreaterOrEqual(t, decision.FinalScore, 0.9)
	assert.NotEqual(t, models.RecommendationAutoApprove, decision.Recommendation)
	assert.NotEmpty(t, decision.RiskFactors)
	assert.NotEmpty(t, decision.Summary.RiskLevel)
}

func TestOrchestratorEndToEndCleanVendor(t *testing.T) {
	log := testLogger()
	analyzers := []Analyzer{
		NewLegalAnalyzer(DefaultLegalConfig(), log),
		NewPaymentAnalyzer(fixedCredit(800), log),
		NewBehavioralAnalyzer(FixedBaseline{}, log),
		NewNetworkAnalyzer(fixedWindow{}, log),
		NewEntityAnalyzer(nil, log),
		NewTrustAnalyzer(fixedProber{result: ProbeResult{WebsiteReachable: true, HTTPS: true, ValidTLS: true, HasMX: true}}, nil, log),
	}
	o := NewOrchestrator(analyzers, config.DefaultWeights(), 5*time.Second, log)

	decision := o.Assess(context.Background(), validSubmission())

	assert.Less(t, decision.FinalScore, 0.3)
	assert.Equal(t, models.RecommendationAutoApprove, decision.Recommendation)
	assert.Equal(t, models.ComplianceClear, decision.ComplianceStatus)
	assert.Empty(t, decision.DegradedAnalyzers)
}
