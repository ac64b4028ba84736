package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

// legalCategories maps legal issue categories to keywords and severity.
// Criminal and fraud carry dominance-level severity.
var legalCategories = []PatternCategory{
	{
		Name:     "criminal",
		Severity: 1.0,
		Keywords: []string{
			"convicted", "indicted", "arrested", "charged with", "criminal case",
			"felony", "misdemeanor", "prison", "jail", "plea deal", "guilty plea",
		},
	},
	{
		Name:     "fraud",
		Severity: 0.95,
		Keywords: []string{
			"fraud", "ponzi scheme", "pyramid scheme", "embezzlement",
			"securities fraud", "wire fraud", "tax evasion", "money laundering",
			"insider trading", "market manipulation",
		},
	},
	{
		Name:     "bankruptcy_legal",
		Severity: 0.8,
		Keywords: []string{
			"bankruptcy fraud", "fraudulent conveyance", "preference action",
			"adversary proceeding", "trustee action",
		},
	},
	{
		Name:     "regulatory",
		Severity: 0.7,
		Keywords: []string{
			"sec charges", "ftc action", "fda warning", "epa violation",
			"osha violation", "regulatory action", "cease and desist",
			"consent decree", "compliance violation", "license suspended",
		},
	},
	{
		Name:     "employment",
		Severity: 0.6,
		Keywords: []string{
			"discrimination lawsuit", "wrongful termination", "wage theft",
			"labor violation", "eeoc complaint", "sexual harassment",
		},
	},
	{
		Name:     "civil_litigation",
		Severity: 0.5,
		Keywords: []string{
			"lawsuit", "sued", "plaintiff", "defendant", "litigation",
			"class action", "settlement", "judgment", "court order", "injunction",
		},
	},
	{
		Name:     "intellectual_property",
		Severity: 0.5,
		Keywords: []string{
			"patent infringement", "trademark infringement", "copyright violation",
			"trade secret theft", "dmca takedown",
		},
	},
	{
		Name:     "consumer_complaints",
		Severity: 0.4,
		Keywords: []string{
			"bbb complaint", "consumer complaint", "ftc complaint",
			"attorney general", "consumer protection", "unfair practices",
			"deceptive advertising", "false claims",
		},
	},
}

var caseReferencePatterns = []RegexPattern{
	{
		Name:     "case_number",
		Severity: 0.7,
		Pattern:  regexp.MustCompile(`(?i)case\s+(?:no\.?|number|#)\s*[:\s]*(?P<case>[0-9]{2,4}[-\s]?[A-Za-z]{2}[-\s]?[0-9]{3,6})`),
	},
	{
		Name:     "docket_number",
		Severity: 0.7,
		Pattern:  regexp.MustCompile(`(?i)docket\s+(?:no\.?|number|#)\s*[:\s]*(?P<docket>[0-9]{4,8})`),
	},
	{
		Name:     "civil_action",
		Severity: 0.7,
		Pattern:  regexp.MustCompile(`(?i)civil\s+action\s+(?:no\.?|#)\s*(?P<action>[0-9\-]+)`),
	},
}

var monetaryPenaltyPatterns = []RegexPattern{
	{
		Name:     "monetary_penalty",
		Severity: 0.8,
		Pattern:  regexp.MustCompile(`(?i)\$(?P<amount>[0-9,]+(?:\.[0-9]{2})?)\s*(?:million|billion)?\s*(?:settlement|judgment|fine|penalty|damages)`),
	},
	{
		Name:     "monetary_penalty",
		Severity: 0.8,
		Pattern:  regexp.MustCompile(`(?i)(?:settlement|judgment|fine|penalty|damages)\s*of\s*\$(?P<amount>[0-9,]+(?:\.[0-9]{2})?)\s*(?:million|billion)?`),
	},
}

var legalDatePattern = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+([0-9]{1,2}),?\s+(?P<year>20[0-9]{2})\b`)

var courtKeywords = []string{
	"district court", "circuit court", "supreme court", "appellate court",
	"bankruptcy court", "federal court", "state court",
}

var negativeCompliance = []string{
	"non-compliant", "violation", "breach", "failed inspection",
	"warning letter", "notice of violation", "corrective action",
	"suspended license", "revoked", "probation",
}

var positiveCompliance = []string{
	"compliant", "certified", "accredited", "licensed",
	"good standing", "passed inspection", "iso certified",
	"regulatory approval",
}

var negativeSentimentWords = []string{
	"guilty", "liable", "violated", "breached", "failed",
	"negligent", "fraudulent", "illegal", "unlawful", "criminal",
}

var positiveSentimentWords = []string{
	"resolved", "settled", "dismissed", "acquitted", "exonerated",
	"cleared", "vindicated", "compliant", "approved",
}

var ongoingKeywords = []string{
	"ongoing", "pending", "current", "active case", "under investigation",
	"awaiting trial", "in litigation", "ongoing lawsuit",
}

var resolvedKeywords = []string{
	"resolved", "settled", "dismissed", "closed", "concluded",
	"final judgment", "appeal denied", "case closed",
}

// LegalConfig tunes the timeline heuristics. The percentages are textual
// heuristics, not validated constants, so they stay adjustable.
type LegalConfig struct {
	// RecentBoost multiplies the timeline risk when ongoing issues are recent
	RecentBoost float64
	// ResolvedReduction is subtracted when resolved-issue language is present
	ResolvedReduction float64
	// RecentYears bounds how far back a mentioned date counts as recent
	RecentYears int
}

// DefaultLegalConfig returns the standard timeline tuning
func DefaultLegalConfig() LegalConfig {
	return LegalConfig{
		RecentBoost:       1.2,
		ResolvedReduction: 0.3,
		RecentYears:       3,
	}
}

// LegalAnalyzer scans the submission text for legal, criminal and regulatory
// signals: keyword categories, case references, monetary penalties,
// compliance language, sentiment around legal terms, and issue timeline.
type LegalAnalyzer struct {
	cfg     LegalConfig
	matcher *Matcher
	log     *logger.Logger
	now     func() time.Time
}

// NewLegalAnalyzer creates a legal analyzer
func NewLegalAnalyzer(cfg LegalConfig, log *logger.Logger) *LegalAnalyzer {
	return &LegalAnalyzer{
		cfg:     cfg,
		matcher: NewMatcher(),
		log:     log.WithComponent("legal_analyzer"),
		now:     time.Now,
	}
}

// Name implements Analyzer
func (a *LegalAnalyzer) Name() string { return AnalyzerLegal }

// Analyze implements Analyzer
func (a *LegalAnalyzer) Analyze(_ context.Context, sub *models.Submission) (*models.AnalyzerResult, error) {
	text := strings.ToLower(sub.CombinedText())

	var signals []float64
	var factors []string
	var issues []models.PatternMatch

	keywordRisk, keywordFactors, keywordIssues := a.scanKeywords(text)
	signals = append(signals, keywordRisk)
	factors = append(factors, keywordFactors...)
	issues = append(issues, keywordIssues...)

	refRisk, refFactors, refIssues := a.scanReferences(text)
	signals = append(signals, refRisk)
	factors = append(factors, refFactors...)
	issues = append(issues, refIssues...)

	complianceRisk, complianceFactors := a.scanCompliance(text)
	signals = append(signals, complianceRisk)
	factors = append(factors, complianceFactors...)

	sentimentRisk, sentimentFactors := a.scanSentiment(text)
	signals = append(signals, sentimentRisk)
	factors = append(factors, sentimentFactors...)

	timelineRisk, timelineFactors, timeline := a.scanTimeline(text)
	signals = append(signals, timelineRisk)
	factors = append(factors, timelineFactors...)

	score := a.calculateRisk(signals, issues)
	status := legalStatus(score, issues)

	a.log.Debug().
		Str("vendor", sub.VendorName).
		Float64("score", score).
		Str("status", status).
		Int("issues", len(issues)).
		Msg("legal scan complete")

	return &models.AnalyzerResult{
		Analyzer:    AnalyzerLegal,
		Score:       score,
		Status:      status,
		RiskFactors: factors,
		Matches:     issues,
		Detail:      map[string]any{"timeline": timeline, "issueCount": len(issues)},
	}, nil
}

// scanKeywords runs the category keyword tables and escalates when several
// distinct categories match at once.
func (a *LegalAnalyzer) scanKeywords(text string) (float64, []string, []models.PatternMatch) {
	var risk float64
	var factors []string

	matches := a.matcher.ScanKeywords(text, legalCategories)

	perCategory := make(map[string]int)
	for _, m := range matches {
		perCategory[m.Category]++
		if m.Severity > risk {
			risk = m.Severity
		}
	}
	for category, count := range perCategory {
		factors = append(factors, fmt.Sprintf("%s_%d_matches", category, count))
	}

	if len(perCategory) >= 3 {
		risk = clamp(risk*1.3, 0, 1)
		factors = append(factors, "multiple_legal_categories")
	}

	return risk, factors, matches
}

// scanReferences looks for concrete litigation artifacts: case and docket
// numbers, court mentions, monetary judgments, and recent legal dates.
func (a *LegalAnalyzer) scanReferences(text string) (float64, []string, []models.PatternMatch) {
	var risk float64
	var factors []string
	var issues []models.PatternMatch

	for _, pattern := range caseReferencePatterns {
		found := a.matcher.ScanRegex(text, pattern)
		if len(found) > 0 {
			if risk < pattern.Severity {
				risk = pattern.Severity
			}
			factors = append(factors, fmt.Sprintf("case_number_found_%d", len(found)))
			issues = append(issues, found...)
		}
	}

	for _, court := range courtKeywords {
		if strings.Contains(text, court) {
			if risk < 0.6 {
				risk = 0.6
			}
			factors = append(factors, "court_mention_"+strings.ReplaceAll(court, " ", "_"))
			issues = append(issues, models.PatternMatch{
				Category: "court_reference",
				Keyword:  court,
				Severity: 0.6,
			})
		}
	}

	for _, pattern := range monetaryPenaltyPatterns {
		found := a.matcher.ScanRegex(text, pattern)
		if len(found) > 0 {
			if risk < pattern.Severity {
				risk = pattern.Severity
			}
			factors = append(factors, fmt.Sprintf("monetary_judgment_%d", len(found)))
			issues = append(issues, found...)
		}
	}

	if dates := legalDatePattern.FindAllStringSubmatch(text, -1); len(dates) > 0 {
		currentYear := a.now().Year()
		recent := 0
		for _, d := range dates {
			var year int
			fmt.Sscanf(d[3], "%d", &year)
			if year >= currentYear-a.cfg.RecentYears {
				recent++
			}
		}
		if recent > 0 {
			if risk < 0.5 {
				risk = 0.5
			}
			factors = append(factors, fmt.Sprintf("recent_legal_dates_%d", recent))
		}
	}

	return risk, factors, issues
}

// scanCompliance weighs negative compliance language against positive
// certifications.
func (a *LegalAnalyzer) scanCompliance(text string) (float64, []string) {
	var risk float64
	var factors []string

	for _, indicator := range negativeCompliance {
		if strings.Contains(text, indicator) {
			if risk < 0.7 {
				risk = 0.7
			}
			factors = append(factors, "compliance_issue_"+strings.ReplaceAll(indicator, " ", "_"))
		}
	}

	positive := 0
	for _, indicator := range positiveCompliance {
		if strings.Contains(text, indicator) {
			positive++
		}
	}
	if positive >= 2 {
		risk = clamp(risk-0.2, 0, 1)
		factors = append(factors, "positive_compliance_indicators")
	}

	return risk, factors
}

// scanSentiment tallies negative versus mitigating words around legal terms
func (a *LegalAnalyzer) scanSentiment(text string) (float64, []string) {
	negative := 0
	for _, word := range negativeSentimentWords {
		if strings.Contains(text, word) {
			negative++
		}
	}
	positive := 0
	for _, word := range positiveSentimentWords {
		if strings.Contains(text, word) {
			positive++
		}
	}

	sentiment := negative - positive
	switch {
	case sentiment > 2:
		return 0.6, []string{fmt.Sprintf("negative_legal_sentiment_%d", sentiment)}
	case sentiment > 0:
		return 0.3, []string{"mild_negative_sentiment"}
	case sentiment < -1:
		return 0.0, []string{"positive_legal_resolution"}
	}
	return 0.0, nil
}

// legalTimeline summarizes ongoing versus resolved issue language
type legalTimeline struct {
	Status        string `json:"status,omitempty"`
	OngoingCount  int    `json:"ongoingCount,omitempty"`
	ResolvedCount int    `json:"resolvedCount,omitempty"`
	Recency       string `json:"recency,omitempty"`
}

// scanTimeline checks whether issues read as ongoing or resolved. The
// adjustments come from LegalConfig since they are rough textual heuristics.
func (a *LegalAnalyzer) scanTimeline(text string) (float64, []string, legalTimeline) {
	var risk float64
	var factors []string
	var timeline legalTimeline

	ongoing := 0
	for _, keyword := range ongoingKeywords {
		if strings.Contains(text, keyword) {
			ongoing++
		}
	}
	if ongoing > 0 {
		risk = 0.7
		factors = append(factors, fmt.Sprintf("ongoing_legal_issues_%d", ongoing))
		timeline.Status = "ONGOING"
		timeline.OngoingCount = ongoing
	}

	resolved := 0
	for _, keyword := range resolvedKeywords {
		if strings.Contains(text, keyword) {
			resolved++
		}
	}
	if resolved > 0 {
		risk = clamp(risk-a.cfg.ResolvedReduction, 0, 1)
		factors = append(factors, fmt.Sprintf("resolved_issues_%d", resolved))
		timeline.ResolvedCount = resolved
	}

	currentYear := a.now().Year()
	recentMarkers := []string{
		fmt.Sprintf("%d", currentYear),
		fmt.Sprintf("%d", currentYear-1),
		"recent", "recently", "this year", "last year",
	}
	for _, marker := range recentMarkers {
		if strings.Contains(text, marker) && ongoing > 0 {
			risk = clamp(risk*a.cfg.RecentBoost, 0, 1)
			factors = append(factors, "recent_ongoing_issues")
			timeline.Recency = "RECENT"
			break
		}
	}

	return risk, factors, timeline
}

// calculateRisk combines the sub-scan signals. Criminal and fraud severities
// dominate outright; otherwise the blend scales with issue count and average
// severity.
func (a *LegalAnalyzer) calculateRisk(signals []float64, issues []models.PatternMatch) float64 {
	if len(signals) == 0 {
		return 0
	}

	maxRisk := signals[0]
	var sum float64
	for _, s := range signals {
		if s > maxRisk {
			maxRisk = s
		}
		sum += s
	}
	if maxRisk >= 0.9 {
		return clamp(maxRisk, 0, 1)
	}

	base := sum / float64(len(signals))
	if len(issues) == 0 {
		return clamp(base, 0, 1)
	}

	var severitySum float64
	for _, issue := range issues {
		severitySum += issue.Severity
	}
	avgSeverity := severitySum / float64(len(issues))
	multiplier := 1.0 + float64(len(issues))*0.1
	if multiplier > 1.5 {
		multiplier = 1.5
	}

	return clamp(base*multiplier*(0.5+avgSeverity*0.5), 0, 1)
}

// legalStatus labels the score for reviewers
func legalStatus(score float64, issues []models.PatternMatch) string {
	for _, issue := range issues {
		if issue.Severity >= 0.9 {
			return "CRITICAL_ISSUES"
		}
	}
	switch {
	case score >= 0.8:
		return "HIGH_RISK"
	case score >= 0.5:
		return "MEDIUM_RISK"
	case score >= 0.2:
		return "LOW_RISK"
	}
	return "CLEAR"
}
