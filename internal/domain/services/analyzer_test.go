package services

import (
	"context"
	"time"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

// stubAnalyzer returns a fixed result, optionally failing, panicking, or
// stalling, for orchestrator tests.
type stubAnalyzer struct {
	name       string
	score      float64
	compliance models.ComplianceStatus
	factors    []string
	err        error
	delay      time.Duration
	panics     bool
}

func (s stubAnalyzer) Name() string { return s.name }

func (s stubAnalyzer) Analyze(ctx context.Context, _ *models.Submission) (*models.AnalyzerResult, error) {
	if s.panics {
		panic("stub panic")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.AnalyzerResult{
		Analyzer:    s.name,
		Score:       s.score,
		Status:      "OK",
		RiskFactors: s.factors,
		Compliance:  s.compliance,
	}, nil
}

// fixedWindow is a WindowSource returning a static entry list
type fixedWindow []WindowEntry

func (f fixedWindow) Recent(_ time.Time) []WindowEntry { return f }

func validSubmission() *models.Submission {
	return &models.Submission{
		ID:                  "req-001",
		VendorName:          "Acme Solutions Inc",
		ContactEmail:        "contact@acmesolutions.com",
		BusinessDescription: "Acme Solutions provides enterprise software consulting and integration services for mid-market manufacturers. Founded in 2005, the company maintains offices in Chicago and Austin and serves over two hundred active clients across logistics, retail, and industrial automation. Services include system architecture reviews, data migration, managed hosting, and staff training programs delivered both remotely and on site.",
		TaxID:               "36-4821975",
		SourceIP:            "203.0.113.10",
		SubmittedAt:         time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
	}
}
