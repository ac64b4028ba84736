package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vendorguard/internal/config"
	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

// Dominance override thresholds applied after the weighted sum
const (
	entityOverrideThreshold = 0.95
	legalOverrideThreshold  = 0.9
)

// Orchestrator fans the submission out to every analyzer, combines their
// scores with fixed weights, applies the dominance overrides, and produces
// the final RiskDecision. Any single analyzer failing, timing out, or
// panicking degrades to a neutral score instead of aborting the assessment.
type Orchestrator struct {
	analyzers []Analyzer
	weights   config.WeightsConfig
	timeout   time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator over the given analyzers
func NewOrchestrator(analyzers []Analyzer, weights config.WeightsConfig, timeout time.Duration, log *logger.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Orchestrator{
		analyzers: analyzers,
		weights:   weights,
		timeout:   timeout,
		log:       log.WithComponent("orchestrator"),
		now:       time.Now,
	}
}

// Assess runs the full risk assessment for one submission. The submission
// must already be validated; Assess never returns a partial decision.
func (o *Orchestrator) Assess(ctx context.Context, sub *models.Submission) *models.RiskDecision {
	start := o.now()
	results := o.runAnalyzers(ctx, sub)

	scores := make(map[string]float64, len(results))
	var degraded []string
	for name, result := range results {
		scores[name] = result.Score
		if result.Degraded {
			degraded = append(degraded, name)
		}
	}
	sort.Strings(degraded)

	finalScore := o.combineScores(scores)
	compliance := complianceOf(results)
	recommendation := recommend(finalScore, compliance)

	decision := &models.RiskDecision{
		SubmissionID:      sub.ID,
		VendorName:        sub.VendorName,
		FinalScore:        finalScore,
		Recommendation:    recommendation,
		ComplianceStatus:  compliance,
		AnalyzerScores:    scores,
		RiskFactors:       compileRiskFactors(results),
		DegradedAnalyzers: degraded,
		Results:           results,
		Summary:           buildSummary(finalScore, results),
		AssessedAt:        o.now().UTC(),
	}

	o.log.Info().
		Str("request_id", sub.ID).
		Str("vendor", sub.VendorName).
		Float64("final_score", finalScore).
		Str("recommendation", string(recommendation)).
		Str("compliance", string(compliance)).
		Dur("duration", o.now().Sub(start)).
		Msg("assessment complete")

	return decision
}

// runAnalyzers fans out all analyzers concurrently with per-analyzer
// timeouts and panic recovery.
func (o *Orchestrator) runAnalyzers(ctx context.Context, sub *models.Submission) map[string]*models.AnalyzerResult {
	results := make(map[string]*models.AnalyzerResult, len(o.analyzers))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, analyzer := range o.analyzers {
		wg.Add(1)
		go func(a Analyzer) {
			defer wg.Done()
			result := o.runOne(ctx, a, sub)
			mu.Lock()
			results[a.Name()] = result
			mu.Unlock()
		}(analyzer)
	}
	wg.Wait()

	return results
}

// runOne executes a single analyzer under its timeout. A panic inside an
// analyzer is converted to a degraded result so one bug cannot sink the
// whole assessment.
func (o *Orchestrator) runOne(ctx context.Context, a Analyzer, sub *models.Submission) (result *models.AnalyzerResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().
				Str("analyzer", a.Name()).
				Interface("panic", r).
				Msg("analyzer panicked")
			result = degradedResult(a.Name(), fmt.Sprintf("panic: %v", r))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type outcome struct {
		result *models.AnalyzerResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := a.Analyze(runCtx, sub)
		done <- outcome{result: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			o.log.Warn().
				Err(out.err).
				Str("analyzer", a.Name()).
				Msg("analyzer failed")
			return degradedResult(a.Name(), out.err.Error())
		}
		return out.result
	case <-runCtx.Done():
		o.log.Warn().
			Str("analyzer", a.Name()).
			Dur("timeout", o.timeout).
			Msg("analyzer timed out")
		return degradedResult(a.Name(), "timeout")
	}
}

// combineScores applies the fixed weights then the dominance overrides
func (o *Orchestrator) combineScores(scores map[string]float64) float64 {
	weighted := scores[AnalyzerEntity]*o.weights.Entity +
		scores[AnalyzerLegal]*o.weights.Legal +
		scores[AnalyzerPayment]*o.weights.Payment +
		scores[AnalyzerBehavioral]*o.weights.Behavioral +
		scores[AnalyzerNetwork]*o.weights.Network +
		scores[AnalyzerTrust]*o.weights.Trust

	if scores[AnalyzerEntity] >= entityOverrideThreshold && weighted < scores[AnalyzerEntity] {
		weighted = scores[AnalyzerEntity]
	}
	if scores[AnalyzerLegal] >= legalOverrideThreshold && weighted < legalOverrideThreshold {
		weighted = legalOverrideThreshold
	}

	return clamp(weighted, 0, 1)
}

// complianceOf is BLOCKED as soon as any analyzer reported a sanctions block
func complianceOf(results map[string]*models.AnalyzerResult) models.ComplianceStatus {
	for _, result := range results {
		if result.Compliance == models.ComplianceBlocked {
			return models.ComplianceBlocked
		}
	}
	return models.ComplianceClear
}

// recommend maps the final score to an approval tier. Compliance blocks win
// over any score.
func recommend(score float64, compliance models.ComplianceStatus) models.Recommendation {
	if compliance == models.ComplianceBlocked {
		return models.RecommendationBlocked
	}
	switch {
	case score >= 0.7:
		return models.RecommendationManualReview
	case score >= 0.5:
		return models.RecommendationEnhanced
	case score >= 0.3:
		return models.RecommendationStandard
	}
	return models.RecommendationAutoApprove
}

// compileRiskFactors flattens every analyzer's factors, prefixed by analyzer
// name so reviewers can trace each one back.
func compileRiskFactors(results map[string]*models.AnalyzerResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var factors []string
	for _, name := range names {
		for _, factor := range results[name].RiskFactors {
			factors = append(factors, name+":"+factor)
		}
	}
	return factors
}

// buildSummary condenses the noteworthy findings for reviewers
func buildSummary(score float64, results map[string]*models.AnalyzerResult) models.ExecutiveSummary {
	summary := models.ExecutiveSummary{
		RiskLevel:   overallRiskLevel(score),
		KeyFindings: []models.Finding{},
	}

	if network, ok := results[AnalyzerNetwork]; ok && network.Score >= 0.6 {
		summary.KeyFindings = append(summary.KeyFindings, models.Finding{
			Category: "Network Analysis",
			Severity: "HIGH",
			Finding:  fmt.Sprintf("Detected %d network risk factors", len(network.RiskFactors)),
		})
	}

	if entity, ok := results[AnalyzerEntity]; ok {
		if matched, ok := entity.Detail["matched_entities"].([]models.WatchlistMatch); ok && len(matched) > 0 {
			summary.KeyFindings = append(summary.KeyFindings, models.Finding{
				Category: "Entity Resolution",
				Severity: "CRITICAL",
				Finding:  fmt.Sprintf("Matched %d entities on watchlists", len(matched)),
			})
		}
	}

	if behavioral, ok := results[AnalyzerBehavioral]; ok && len(behavioral.Anomalies) >= 3 {
		summary.KeyFindings = append(summary.KeyFindings, models.Finding{
			Category: "Behavioral Analysis",
			Severity: "MEDIUM",
			Finding:  fmt.Sprintf("Detected %d behavioral anomalies", len(behavioral.Anomalies)),
		})
	}

	if legal, ok := results[AnalyzerLegal]; ok && legal.Score >= legalOverrideThreshold {
		summary.KeyFindings = append(summary.KeyFindings, models.Finding{
			Category: "Legal Records",
			Severity: "CRITICAL",
			Finding:  fmt.Sprintf("Critical legal issues across %d matches", len(legal.Matches)),
		})
	}

	return summary
}

func overallRiskLevel(score float64) string {
	switch {
	case score >= 0.8:
		return "CRITICAL"
	case score >= 0.6:
		return "HIGH"
	case score >= 0.4:
		return "MEDIUM"
	}
	return "LOW"
}
