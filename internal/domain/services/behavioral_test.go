package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBehavioralCleanSubmission(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())

	result, err := a.Analyze(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Less(t, result.Score, 0.4)
	assert.Equal(t, "LOW", result.Status)
}

func TestBehavioralLateNightWeekendTiming(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())
	sub := validSubmission()
	// 3am on a Sunday trips all three timing checks
	sub.SubmittedAt = time.Date(2026, 3, 8, 3, 0, 0, 0, time.UTC)

	risk, factors, anomalies := a.analyzeTiming(sub)
	assert.InDelta(t, 0.65, risk, 1e-9)
	assert.Contains(t, factors, "weekend_submission")
	assert.Contains(t, factors, "late_night_submission")
	assert.Len(t, anomalies, 3)
}

func TestBehavioralDataQuality(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())
	sub := validSubmission()
	sub.VendorName = "AB"
	sub.BusinessDescription = "short"

	risk, factors, _ := a.analyzeDataQuality(sub)
	assert.InDelta(t, 0.45, risk, 1e-9)
	assert.Contains(t, factors, "name_too_short")
	assert.Contains(t, factors, "description_too_short")
}

func TestBehavioralAllCapsName(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())
	sub := validSubmission()
	sub.VendorName = "ACME CORPORATION"

	_, factors, _ := a.analyzeDataQuality(sub)
	assert.Contains(t, factors, "name_all_caps")
}

func TestBehavioralTextRepetition(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())
	sub := validSubmission()
	sub.BusinessDescription = "best best best best best best best best best best services services"

	_, factors, _ := a.analyzeDataQuality(sub)
	assert.Contains(t, factors, "high_text_repetition")
}

func TestBehavioralOutlierDetection(t *testing.T) {
	baseline := FixedBaseline{
		SampleSize: 100,
		MeanName:   20, StdName: 5,
		MeanDesc: 400, StdDesc: 50,
	}
	a := NewBehavioralAnalyzer(baseline, testLogger())

	sub := validSubmission()
	sub.VendorName = "Extraordinarily Long Vendor Name Holdings LLC LLC"

	risk, factors, anomalies := a.detectOutliers(sub)
	assert.Greater(t, risk, 0.0)
	require.NotEmpty(t, factors)
	assert.Contains(t, factors[0], "name_length_outlier")
	assert.NotEmpty(t, anomalies)
}

func TestBehavioralOutlierSkippedBelowMinSamples(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{SampleSize: 5, MeanName: 20, StdName: 1}, testLogger())

	sub := validSubmission()
	sub.VendorName = "Extraordinarily Long Vendor Name Holdings LLC LLC"

	risk, factors, anomalies := a.detectOutliers(sub)
	assert.Zero(t, risk)
	assert.Empty(t, factors)
	assert.Empty(t, anomalies)
}

func TestBehavioralBotIndicators(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())
	sub := validSubmission()
	sub.VendorName = "Test Vendor 123"
	sub.BusinessDescription = "Lorem ipsum dolor sit amet, consectetur adipiscing elit."
	sub.TaxID = "99-9999999"

	risk, factors, _ := a.detectBotBehavior(sub)
	assert.Equal(t, 1.0, risk)
	assert.Contains(t, factors, "test_pattern_in_name")
	assert.Contains(t, factors, "placeholder_text")
	assert.Contains(t, factors, "sequential_tax_id")
}

func TestBehavioralRepeatedTaxID(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())
	sub := validSubmission()
	sub.TaxID = "11-1111111"

	_, factors, anomalies := a.detectBotBehavior(sub)
	assert.Contains(t, factors, "sequential_tax_id")
	assert.NotEmpty(t, anomalies)
}

func TestRepeatedDigits(t *testing.T) {
	assert.True(t, repeatedDigits("999999999", 9))
	assert.True(t, repeatedDigits("0000000001", 9))
	assert.False(t, repeatedDigits("364821975", 9))
	assert.False(t, repeatedDigits("99999999", 9))
	assert.False(t, repeatedDigits("aaaaaaaaa", 9))
	assert.False(t, repeatedDigits("", 9))
}

func TestBehavioralProfileConfidence(t *testing.T) {
	a := NewBehavioralAnalyzer(FixedBaseline{}, testLogger())
	sub := validSubmission()
	sub.VendorName = "Test Vendor 123"
	sub.BusinessDescription = "Lorem ipsum dolor sit amet placeholder text"
	sub.SubmittedAt = time.Date(2026, 3, 8, 3, 0, 0, 0, time.UTC)

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	detail := result.Detail
	assert.Equal(t, "HIGH", detail["confidence"])
	assert.GreaterOrEqual(t, result.Score, 0.4)
}
