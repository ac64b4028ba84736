package services

import (
	"context"

	"vendorguard/internal/domain/models"
)

// Analyzer names, also used as weight keys by the orchestrator
const (
	AnalyzerLegal      = "legal"
	AnalyzerPayment    = "payment"
	AnalyzerBehavioral = "behavioral"
	AnalyzerNetwork    = "network"
	AnalyzerEntity     = "entity"
	AnalyzerTrust      = "trust"
)

// neutralScore is substituted when an analyzer fails or times out. A failed
// check is treated as mild, not zero, risk.
const neutralScore = 0.3

// Analyzer scores one risk dimension of a submission. Implementations are
// pure functions of the submission plus whatever snapshot state they were
// constructed with, so the orchestrator can fan them out concurrently.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, sub *models.Submission) (*models.AnalyzerResult, error)
}

// degradedResult builds the conservative default substituted for a failed
// analyzer. The assessment carries on; the result is flagged so reviewers
// know the dimension was not actually scored.
func degradedResult(name, reason string) *models.AnalyzerResult {
	return &models.AnalyzerResult{
		Analyzer:       name,
		Score:          neutralScore,
		Status:         "UNKNOWN",
		RiskFactors:    []string{"analysis_error"},
		Degraded:       true,
		DegradedReason: reason,
	}
}
