package streaming

import (
	"strings"
	"time"

	"vendorguard/internal/domain/models"
)

// DecisionEvent is published after every completed assessment
type DecisionEvent struct {
	RequestID        string             `json:"request_id"`
	VendorName       string             `json:"vendor_name"`
	FinalScore       float64            `json:"final_score"`
	Recommendation   string             `json:"recommendation"`
	ComplianceStatus string             `json:"compliance_status"`
	RiskFactors      []string           `json:"risk_factors"`
	AnalyzerScores   map[string]float64 `json:"analyzer_scores"`
	Degraded         []string           `json:"degraded_analyzers,omitempty"`
	AssessedAt       time.Time          `json:"assessed_at"`
}

// NewDecisionEvent builds the event payload from a finished decision
func NewDecisionEvent(decision *models.RiskDecision) *DecisionEvent {
	return &DecisionEvent{
		RequestID:        decision.SubmissionID,
		VendorName:       decision.VendorName,
		FinalScore:       decision.FinalScore,
		Recommendation:   string(decision.Recommendation),
		ComplianceStatus: string(decision.ComplianceStatus),
		RiskFactors:      decision.RiskFactors,
		AnalyzerScores:   decision.AnalyzerScores,
		Degraded:         decision.DegradedAnalyzers,
		AssessedAt:       decision.AssessedAt,
	}
}

// Subject returns the NATS subject for this event.
// Hierarchy: onboarding.decision.<recommendation>
// Example: onboarding.decision.manual_review
func (e *DecisionEvent) Subject() string {
	tier := strings.ToLower(e.Recommendation)
	if tier == "" {
		tier = "unknown"
	}
	return "onboarding.decision." + tier
}
