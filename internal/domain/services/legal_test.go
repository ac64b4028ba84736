package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorguard/internal/domain/models"
)

func newTestLegalAnalyzer() *LegalAnalyzer {
	a := NewLegalAnalyzer(DefaultLegalConfig(), testLogger())
	a.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestLegalCriminalDominates(t *testing.T) {
	a := newTestLegalAnalyzer()
	sub := validSubmission()
	sub.BusinessDescription = "The founder was convicted of securities fraud in 2023."

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Score, 0.9)
	assert.Equal(t, "CRITICAL_ISSUES", result.Status)
	assert.NotEmpty(t, result.Matches)
}

func TestLegalCleanText(t *testing.T) {
	a := newTestLegalAnalyzer()
	sub := validSubmission()

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	assert.Less(t, result.Score, 0.2)
	assert.Equal(t, "CLEAR", result.Status)
}

func TestLegalResolvedScoresBelowOngoing(t *testing.T) {
	a := newTestLegalAnalyzer()

	ongoing := validSubmission()
	ongoing.BusinessDescription = "An ongoing lawsuit is pending in district court."

	resolved := validSubmission()
	resolved.BusinessDescription = "A prior lawsuit was dismissed and the case closed in district court."

	ongoingResult, err := a.Analyze(context.Background(), ongoing)
	require.NoError(t, err)
	resolvedResult, err := a.Analyze(context.Background(), resolved)
	require.NoError(t, err)

	assert.Greater(t, ongoingResult.Score, resolvedResult.Score)
}

func TestLegalMultipleCategoriesEscalate(t *testing.T) {
	a := newTestLegalAnalyzer()

	single := validSubmission()
	single.BusinessDescription = "Named as defendant in one matter."

	multi := validSubmission()
	multi.BusinessDescription = "Named as defendant, received an eeoc complaint, and a bbb complaint."

	singleResult, err := a.Analyze(context.Background(), single)
	require.NoError(t, err)
	multiResult, err := a.Analyze(context.Background(), multi)
	require.NoError(t, err)

	assert.Contains(t, multiResult.RiskFactors, "multiple_legal_categories")
	assert.Greater(t, multiResult.Score, singleResult.Score)
}

func TestLegalCaseReferenceDetected(t *testing.T) {
	a := newTestLegalAnalyzer()
	sub := validSubmission()
	sub.BusinessDescription = "Referenced in case no. 23-cv-01234 before the district court."

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	var sawCase bool
	for _, m := range result.Matches {
		if m.Category == "case_number" {
			sawCase = true
			assert.NotEmpty(t, m.Captures["case"])
		}
	}
	assert.True(t, sawCase, "expected a case_number match")
	assert.Greater(t, result.Score, 0.1)
}

func TestLegalMonetaryPenalty(t *testing.T) {
	a := newTestLegalAnalyzer()
	sub := validSubmission()
	sub.BusinessDescription = "Paid a $2,500,000 settlement in 2024."

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	var sawPenalty bool
	for _, m := range result.Matches {
		if m.Category == "monetary_penalty" {
			sawPenalty = true
		}
	}
	assert.True(t, sawPenalty, "expected a monetary_penalty match")
}

func TestLegalPositiveComplianceReduces(t *testing.T) {
	a := newTestLegalAnalyzer()

	flagged := validSubmission()
	flagged.BusinessDescription = "Received a notice of violation last quarter."

	mitigated := validSubmission()
	mitigated.BusinessDescription = "Received a notice of violation but is now iso certified and in good standing."

	flaggedResult, err := a.Analyze(context.Background(), flagged)
	require.NoError(t, err)
	mitigatedResult, err := a.Analyze(context.Background(), mitigated)
	require.NoError(t, err)

	assert.Contains(t, mitigatedResult.RiskFactors, "positive_compliance_indicators")
	assert.LessOrEqual(t, mitigatedResult.Score, flaggedResult.Score)
}

func TestLegalStatusLabels(t *testing.T) {
	critical := []models.PatternMatch{{Severity: 0.95}}
	assert.Equal(t, "CRITICAL_ISSUES", legalStatus(0.1, critical))
	assert.Equal(t, "HIGH_RISK", legalStatus(0.85, nil))
	assert.Equal(t, "MEDIUM_RISK", legalStatus(0.6, nil))
	assert.Equal(t, "LOW_RISK", legalStatus(0.3, nil))
	assert.Equal(t, "CLEAR", legalStatus(0.1, nil))
}
