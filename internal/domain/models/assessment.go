package models

import (
	"errors"
	"time"
)

// ErrDecisionNotFound is returned when no decision exists for a request ID
var ErrDecisionNotFound = errors.New("decision not found")

// Recommendation is the approval tier emitted for a submission
type Recommendation string

const (
	RecommendationAutoApprove  Recommendation = "AUTO_APPROVE"
	RecommendationStandard     Recommendation = "STANDARD_REVIEW"
	RecommendationEnhanced     Recommendation = "ENHANCED_DUE_DILIGENCE"
	RecommendationManualReview Recommendation = "MANUAL_REVIEW"
	RecommendationBlocked      Recommendation = "BLOCKED"
)

// ComplianceStatus is the binary sanctions gate, independent of the numeric score
type ComplianceStatus string

const (
	ComplianceClear   ComplianceStatus = "CLEAR"
	ComplianceBlocked ComplianceStatus = "BLOCKED"
)

// PatternMatch is a single keyword or regex hit found during analysis.
// Transient; it lives inside the AnalyzerResult that produced it.
type PatternMatch struct {
	Category string            `json:"category"`
	Keyword  string            `json:"keyword"`
	Severity float64           `json:"severity"`
	Context  string            `json:"context,omitempty"`
	Captures map[string]string `json:"captures,omitempty"`
}

// Anomaly is a behavioral or statistical irregularity flagged by an analyzer
type Anomaly struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// AnalyzerResult is the common output shape shared by all analyzers
type AnalyzerResult struct {
	Analyzer    string         `json:"analyzer"`
	Score       float64        `json:"score"`
	Status      string         `json:"status"`
	RiskFactors []string       `json:"risk_factors"`
	Matches     []PatternMatch `json:"matches,omitempty"`
	Anomalies   []Anomaly      `json:"anomalies,omitempty"`
	Detail      map[string]any `json:"detail,omitempty"`

	// Degraded marks a result substituted after an analyzer error or timeout
	Degraded       bool             `json:"degraded,omitempty"`
	DegradedReason string           `json:"degraded_reason,omitempty"`
	Compliance     ComplianceStatus `json:"compliance,omitempty"`
}

// Insight is a structured observation attached to an analyzer's detail payload
type Insight struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Risk    string `json:"risk"`
	Message string `json:"message"`
}

// Finding is one entry in the executive summary
type Finding struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Finding  string `json:"finding"`
}

// ExecutiveSummary is a condensed view of the assessment for reviewers
type ExecutiveSummary struct {
	RiskLevel   string    `json:"overall_risk_level"`
	KeyFindings []Finding `json:"key_findings"`
}

// RiskDecision is the final composite assessment for one submission
type RiskDecision struct {
	SubmissionID     string                     `json:"request_id"`
	VendorName       string                     `json:"vendor_name"`
	FinalScore       float64                    `json:"final_score"`
	Recommendation   Recommendation             `json:"recommendation"`
	ComplianceStatus ComplianceStatus           `json:"compliance_status"`
	AnalyzerScores   map[string]float64         `json:"analyzer_scores"`
	RiskFactors      []string                   `json:"risk_factors"`
	DegradedAnalyzers []string                  `json:"degraded_analyzers,omitempty"`
	Results          map[string]*AnalyzerResult `json:"results"`
	Summary          ExecutiveSummary           `json:"executive_summary"`
	AssessedAt       time.Time                  `json:"assessed_at"`
}
