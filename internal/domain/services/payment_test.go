package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCredit struct{}

func (failingCredit) CreditScore(_ context.Context, _ string) (int, error) {
	return 0, errors.New("bureau unavailable")
}

type fixedCredit int

func (c fixedCredit) CreditScore(_ context.Context, _ string) (int, error) {
	return int(c), nil
}

func newTestPaymentAnalyzer(credit CreditProvider) *PaymentAnalyzer {
	a := NewPaymentAnalyzer(credit, testLogger())
	a.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestPaymentBankruptcyDominates(t *testing.T) {
	a := newTestPaymentAnalyzer(fixedCredit(780))
	sub := validSubmission()
	sub.BusinessDescription = "Currently emerging from chapter 11 bankruptcy proceedings."

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Score, 0.9)
	assert.Equal(t, "HIGH_RISK", result.Status)
	assert.Contains(t, result.RiskFactors, "bankruptcy_bankruptcy")
}

func TestPaymentBusinessAgeTiers(t *testing.T) {
	a := newTestPaymentAnalyzer(fixedCredit(780))

	tests := []struct {
		name string
		text string
		risk float64
	}{
		{"established", "operating continuously since 2005", 0.0},
		{"moderate", "founded in 2020", 0.2},
		{"young", "founded in 2024", 0.4},
		{"brand new", "founded in 2026", 0.6},
		{"no date", "a company with history", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk, _, _ := a.analyzeBusinessAge(tt.text)
			assert.InDelta(t, tt.risk, risk, 1e-9)
		})
	}
}

func TestPaymentNewBusinessKeywordFloor(t *testing.T) {
	a := newTestPaymentAnalyzer(fixedCredit(780))

	risk, factors, _ := a.analyzeBusinessAge("a startup operating since 2005")
	assert.InDelta(t, 0.5, risk, 1e-9)
	assert.Contains(t, factors, "keyword_startup")
}

func TestPaymentCreditTiers(t *testing.T) {
	tests := []struct {
		score  int
		risk   float64
		factor string
	}{
		{800, 0.0, "excellent_credit_profile"},
		{700, 0.2, "good_credit_profile"},
		{600, 0.5, "fair_credit_profile"},
		{450, 0.8, "poor_credit_profile"},
	}

	for _, tt := range tests {
		a := newTestPaymentAnalyzer(fixedCredit(tt.score))
		risk, factors, _, err := a.checkCredit(context.Background(), validSubmission())
		require.NoError(t, err)
		assert.InDelta(t, tt.risk, risk, 1e-9)
		assert.Contains(t, factors, tt.factor)
	}
}

func TestPaymentFreeEmailPenalty(t *testing.T) {
	a := newTestPaymentAnalyzer(fixedCredit(800))
	sub := validSubmission()
	sub.ContactEmail = "acme@gmail.com"

	risk, factors, _, err := a.checkCredit(context.Background(), sub)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, risk, 1e-9)
	assert.Contains(t, factors, "free_email_domain")
}

func TestPaymentCreditFailureDegradesSignal(t *testing.T) {
	a := newTestPaymentAnalyzer(failingCredit{})
	sub := validSubmission()

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	assert.Contains(t, result.RiskFactors, "credit_check_unavailable")
	assert.False(t, result.Degraded)
}

func TestHashCreditProviderDeterministic(t *testing.T) {
	p := HashCreditProvider{}

	first, err := p.CreditScore(context.Background(), "Acme Solutions Inc")
	require.NoError(t, err)
	second, err := p.CreditScore(context.Background(), "Acme Solutions Inc")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 300)
	assert.LessOrEqual(t, first, 850)

	other, err := p.CreditScore(context.Background(), "Другой Vendor GmbH")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, other, 300)
	assert.LessOrEqual(t, other, 850)
}

func TestPaymentAggressiveAndFlexibleTerms(t *testing.T) {
	a := newTestPaymentAnalyzer(fixedCredit(780))

	risk, factors := a.analyzeTerms("payment upfront, wire transfer only")
	assert.InDelta(t, 0.5, risk, 1e-9)
	assert.NotEmpty(t, factors)

	risk, factors = a.analyzeTerms("payment upfront but net 30 available")
	assert.InDelta(t, 0.3, risk, 1e-9)
	assert.Contains(t, factors, "flexible_payment_terms")
}
