package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

const (
	businessHoursStart = 8
	businessHoursEnd   = 18

	minNameLength = 5
	maxNameLength = 50
	minDescWords  = 50
	maxDescWords  = 500

	outlierZThreshold = 3.0
)

var testPatternRegex = regexp.MustCompile(`(123|abc|test|demo|sample)`)

var placeholderPatterns = []string{
	"lorem ipsum", "dolor sit amet", "consectetur", "placeholder",
}

// BehavioralAnalyzer detects bot-like and anomalous submission behavior:
// timing, data quality, statistical outliers against the rolling baseline,
// and placeholder or generated content.
type BehavioralAnalyzer struct {
	baseline BaselineSource
	log      *logger.Logger
}

// NewBehavioralAnalyzer creates a behavioral analyzer over the given baseline
func NewBehavioralAnalyzer(baseline BaselineSource, log *logger.Logger) *BehavioralAnalyzer {
	return &BehavioralAnalyzer{
		baseline: baseline,
		log:      log.WithComponent("behavioral_analyzer"),
	}
}

// Name implements Analyzer
func (a *BehavioralAnalyzer) Name() string { return AnalyzerBehavioral }

// Analyze implements Analyzer
func (a *BehavioralAnalyzer) Analyze(_ context.Context, sub *models.Submission) (*models.AnalyzerResult, error) {
	var signals []float64
	var factors []string
	var anomalies []models.Anomaly

	timingRisk, timingFactors, timingAnomalies := a.analyzeTiming(sub)
	signals = append(signals, timingRisk)
	factors = append(factors, timingFactors...)
	anomalies = append(anomalies, timingAnomalies...)

	qualityRisk, qualityFactors, qualityAnomalies := a.analyzeDataQuality(sub)
	signals = append(signals, qualityRisk)
	factors = append(factors, qualityFactors...)
	anomalies = append(anomalies, qualityAnomalies...)

	outlierRisk, outlierFactors, outlierAnomalies := a.detectOutliers(sub)
	signals = append(signals, outlierRisk)
	factors = append(factors, outlierFactors...)
	anomalies = append(anomalies, outlierAnomalies...)

	botRisk, botFactors, botAnomalies := a.detectBotBehavior(sub)
	signals = append(signals, botRisk)
	factors = append(factors, botFactors...)
	anomalies = append(anomalies, botAnomalies...)

	velocityRisk, velocityFactors := a.analyzeVelocity(sub)
	signals = append(signals, velocityRisk)
	factors = append(factors, velocityFactors...)

	combiner := Combiner{MaxWeight: 0.6, AvgWeight: 0.4}
	score := combiner.Combine(signals)

	a.log.Debug().
		Str("vendor", sub.VendorName).
		Float64("score", score).
		Int("anomalies", len(anomalies)).
		Msg("behavioral analysis complete")

	return &models.AnalyzerResult{
		Analyzer:    AnalyzerBehavioral,
		Score:       score,
		Status:      behavioralRiskLevel(score),
		RiskFactors: factors,
		Anomalies:   anomalies,
		Detail:      a.profile(sub, score, anomalies),
	}, nil
}

// analyzeTiming flags submissions at unusual hours. Additive: a 3am Sunday
// submission trips all three checks.
func (a *BehavioralAnalyzer) analyzeTiming(sub *models.Submission) (float64, []string, []models.Anomaly) {
	var risk float64
	var factors []string
	var anomalies []models.Anomaly

	t := sub.SubmittedAt.UTC()
	hour := t.Hour()

	if hour < businessHoursStart || hour > businessHoursEnd {
		risk += 0.2
		factors = append(factors, fmt.Sprintf("outside_business_hours_%dh", hour))
		anomalies = append(anomalies, models.Anomaly{
			Type:        "TIMING",
			Severity:    "LOW",
			Description: fmt.Sprintf("Submission at %d:00 (outside business hours)", hour),
		})
	}

	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		risk += 0.15
		factors = append(factors, "weekend_submission")
		anomalies = append(anomalies, models.Anomaly{
			Type:        "TIMING",
			Severity:    "LOW",
			Description: "Weekend submission",
		})
	}

	if hour >= 2 && hour <= 5 {
		risk += 0.3
		factors = append(factors, "late_night_submission")
		anomalies = append(anomalies, models.Anomaly{
			Type:        "TIMING",
			Severity:    "MEDIUM",
			Description: "Submission during unusual hours (2-5 AM)",
		})
	}

	return clamp(risk, 0, 1), factors, anomalies
}

// analyzeDataQuality checks field lengths, shouting, repetition and noise
func (a *BehavioralAnalyzer) analyzeDataQuality(sub *models.Submission) (float64, []string, []models.Anomaly) {
	var risk float64
	var factors []string
	var anomalies []models.Anomaly

	name := sub.VendorName
	desc := sub.BusinessDescription

	if len(name) < minNameLength {
		risk += 0.2
		factors = append(factors, "name_too_short")
		anomalies = append(anomalies, models.Anomaly{
			Type:        "DATA_QUALITY",
			Severity:    "MEDIUM",
			Description: fmt.Sprintf("Vendor name unusually short (%d chars)", len(name)),
		})
	} else if len(name) > maxNameLength {
		risk += 0.1
		factors = append(factors, "name_too_long")
	}

	if len(name) > 5 && name == strings.ToUpper(name) && name != strings.ToLower(name) {
		risk += 0.15
		factors = append(factors, "name_all_caps")
		anomalies = append(anomalies, models.Anomaly{
			Type:        "DATA_QUALITY",
			Severity:    "LOW",
			Description: "Vendor name in all capitals",
		})
	}

	words := strings.Fields(desc)
	if len(words) < minDescWords {
		risk += 0.25
		factors = append(factors, "description_too_short")
		anomalies = append(anomalies, models.Anomaly{
			Type:        "DATA_QUALITY",
			Severity:    "MEDIUM",
			Description: fmt.Sprintf("Business description too brief (%d words)", len(words)),
		})
	} else if len(words) > maxDescWords {
		risk += 0.1
		factors = append(factors, "description_too_long")
	}

	if len(words) > 10 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[strings.ToLower(w)] = struct{}{}
		}
		ratio := float64(len(unique)) / float64(len(words))
		if ratio < 0.5 {
			risk += 0.3
			factors = append(factors, "high_text_repetition")
			anomalies = append(anomalies, models.Anomaly{
				Type:        "DATA_QUALITY",
				Severity:    "MEDIUM",
				Description: fmt.Sprintf("High text repetition (%d%%)", int((1-ratio)*100)),
			})
		}
	}

	special := 0
	for _, r := range desc {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if len(desc) > 0 && float64(special) > float64(len(desc))*0.15 {
		risk += 0.2
		factors = append(factors, "excessive_special_chars")
	}

	return clamp(risk, 0, 1), factors, anomalies
}

// detectOutliers compares name and description lengths against the rolling
// baseline. Skipped when the baseline has too few samples to be meaningful.
func (a *BehavioralAnalyzer) detectOutliers(sub *models.Submission) (float64, []string, []models.Anomaly) {
	baseline := a.baseline.Snapshot()
	if baseline.SampleSize < minBaselineSamples {
		return 0, nil, nil
	}

	var risk float64
	var factors []string
	var anomalies []models.Anomaly

	if baseline.StdName > 0 {
		z := math.Abs((float64(len(sub.VendorName)) - baseline.MeanName) / baseline.StdName)
		if z > outlierZThreshold {
			risk += 0.3
			factors = append(factors, fmt.Sprintf("name_length_outlier_z%d", int(z)))
			anomalies = append(anomalies, models.Anomaly{
				Type:        "STATISTICAL",
				Severity:    "MEDIUM",
				Description: fmt.Sprintf("Name length is %dσ from mean", int(z)),
			})
		}
	}

	if baseline.StdDesc > 0 {
		z := math.Abs((float64(len(sub.BusinessDescription)) - baseline.MeanDesc) / baseline.StdDesc)
		if z > outlierZThreshold {
			risk += 0.25
			factors = append(factors, fmt.Sprintf("description_length_outlier_z%d", int(z)))
			anomalies = append(anomalies, models.Anomaly{
				Type:        "STATISTICAL",
				Severity:    "MEDIUM",
				Description: fmt.Sprintf("Description length is %dσ from mean", int(z)),
			})
		}
	}

	return clamp(risk, 0, 1), factors, anomalies
}

// detectBotBehavior looks for generated or placeholder content
func (a *BehavioralAnalyzer) detectBotBehavior(sub *models.Submission) (float64, []string, []models.Anomaly) {
	var risk float64
	var factors []string
	var anomalies []models.Anomaly

	name := strings.ToLower(sub.VendorName)
	desc := strings.ToLower(sub.BusinessDescription)

	if testPatternRegex.MatchString(name) {
		risk += 0.4
		factors = append(factors, "test_pattern_in_name")
		anomalies = append(anomalies, models.Anomaly{
			Type:        "BOT_DETECTION",
			Severity:    "HIGH",
			Description: "Test/demo pattern detected in vendor name",
		})
	}

	perfectCaps := true
	for _, word := range strings.Fields(sub.VendorName) {
		r := []rune(word)
		if len(r) > 0 && !unicode.IsUpper(r[0]) {
			perfectCaps = false
			break
		}
	}
	if perfectCaps && strings.Count(sub.BusinessDescription, ".") >= 3 {
		risk += 0.2
		factors = append(factors, "perfect_formatting")
	}

	for _, pattern := range placeholderPatterns {
		if strings.Contains(desc, pattern) {
			risk += 0.6
			factors = append(factors, "placeholder_text")
			anomalies = append(anomalies, models.Anomaly{
				Type:        "BOT_DETECTION",
				Severity:    "HIGH",
				Description: "Placeholder text detected",
			})
			break
		}
	}

	taxDigits := strings.ReplaceAll(sub.TaxID, "-", "")
	if repeatedDigits(taxDigits, 9) {
		risk += 0.5
		factors = append(factors, "sequential_tax_id")
		anomalies = append(anomalies, models.Anomaly{
			Type:        "BOT_DETECTION",
			Severity:    "HIGH",
			Description: "Sequential or repeated digits in Tax ID",
		})
	}

	return clamp(risk, 0, 1), factors, anomalies
}

// repeatedDigits reports whether s starts with n copies of the same digit
func repeatedDigits(s string, n int) bool {
	if len(s) < n || s[0] < '0' || s[0] > '9' {
		return false
	}
	for i := 1; i < n; i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// analyzeVelocity estimates whether the submission could have been typed by
// a human. Without a form-start timestamp this falls back to copy-paste
// indicators on very detailed submissions.
func (a *BehavioralAnalyzer) analyzeVelocity(sub *models.Submission) (float64, []string) {
	var risk float64
	var factors []string

	desc := sub.BusinessDescription
	totalChars := len(sub.VendorName) + len(desc)

	if totalChars > 500 && len(strings.Fields(desc)) > 50 {
		if strings.Contains(desc, "\n\n") || strings.Count(desc, ".") > 10 {
			risk += 0.1
			factors = append(factors, "possible_copy_paste")
		}
	}

	return risk, factors
}

// profile builds the audit detail payload
func (a *BehavioralAnalyzer) profile(sub *models.Submission, score float64, anomalies []models.Anomaly) map[string]any {
	highSeverity := 0
	for _, anomaly := range anomalies {
		if anomaly.Severity == "HIGH" {
			highSeverity++
		}
	}

	confidence := "LOW"
	if len(anomalies) >= 3 {
		confidence = "HIGH"
	} else if len(anomalies) >= 1 {
		confidence = "MEDIUM"
	}

	return map[string]any{
		"risk_level":              behavioralRiskLevel(score),
		"anomaly_count":           len(anomalies),
		"high_severity_anomalies": highSeverity,
		"confidence":              confidence,
		"submission_characteristics": map[string]int{
			"name_length":            len(sub.VendorName),
			"description_length":     len(sub.BusinessDescription),
			"description_word_count": len(strings.Fields(sub.BusinessDescription)),
		},
	}
}

func behavioralRiskLevel(score float64) string {
	switch {
	case score >= 0.7:
		return "HIGH"
	case score >= 0.4:
		return "MEDIUM"
	}
	return "LOW"
}
