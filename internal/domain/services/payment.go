package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

var establishmentYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

var bankruptcyKeywords = []string{
	"bankruptcy", "chapter 11", "chapter 7", "insolvent",
	"liquidation", "receivership", "administration",
}

var distressKeywords = []string{
	"restructuring", "debt", "defaulted", "delinquent",
	"past due", "collections", "write-off",
}

var positiveFinancialKeywords = []string{
	"profitable", "revenue growth", "funded", "series a", "series b",
	"venture capital", "investment", "expansion", "growing",
}

var negativeFinancialKeywords = []string{
	"struggling", "losses", "declining", "downsizing",
	"layoffs", "cost cutting", "cash flow issues",
}

var aggressivePaymentTerms = []string{
	"payment upfront", "prepayment required", "100% advance",
	"no refunds", "cash only", "wire transfer only",
}

var flexiblePaymentTerms = []string{
	"net 30", "net 60", "payment plans", "flexible terms",
	"credit terms", "invoice",
}

var newBusinessKeywords = []string{
	"startup", "new company", "recently founded", "just launched",
}

var freeEmailProviders = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
}

// CreditProvider supplies a credit tier for a vendor. The hash-based default
// is a placeholder; a bureau integration slots in behind this interface
// without touching the scoring path.
type CreditProvider interface {
	CreditScore(ctx context.Context, vendorName string) (int, error)
}

// HashCreditProvider derives a stable pseudo-score in [300,850] from the
// vendor name. Deterministic, so repeated assessments agree.
type HashCreditProvider struct{}

// CreditScore implements CreditProvider
func (HashCreditProvider) CreditScore(_ context.Context, vendorName string) (int, error) {
	sum := md5.Sum([]byte(vendorName))
	prefix := hex.EncodeToString(sum[:])[:8]
	h, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("hashing vendor name: %w", err)
	}
	return 300 + int(h%551), nil
}

// PaymentAnalyzer assesses financial reliability: business age, bankruptcy
// and distress language, stability sentiment, payment-terms language, and a
// credit tier from the injected provider.
type PaymentAnalyzer struct {
	credit CreditProvider
	log    *logger.Logger
	now    func() time.Time
}

// NewPaymentAnalyzer creates a payment analyzer
func NewPaymentAnalyzer(credit CreditProvider, log *logger.Logger) *PaymentAnalyzer {
	if credit == nil {
		credit = HashCreditProvider{}
	}
	return &PaymentAnalyzer{
		credit: credit,
		log:    log.WithComponent("payment_analyzer"),
		now:    time.Now,
	}
}

// Name implements Analyzer
func (a *PaymentAnalyzer) Name() string { return AnalyzerPayment }

// Analyze implements Analyzer
func (a *PaymentAnalyzer) Analyze(ctx context.Context, sub *models.Submission) (*models.AnalyzerResult, error) {
	text := strings.ToLower(sub.CombinedText())
	desc := strings.ToLower(sub.BusinessDescription)

	var signals []float64
	var factors []string
	insights := make([]models.Insight, 0, 4)

	ageRisk, ageFactors, ageInsights := a.analyzeBusinessAge(text)
	signals = append(signals, ageRisk)
	factors = append(factors, ageFactors...)
	insights = append(insights, ageInsights...)

	bankruptcyRisk, bankruptcyFactors := a.checkBankruptcy(text)
	signals = append(signals, bankruptcyRisk)
	factors = append(factors, bankruptcyFactors...)

	stabilityRisk, stabilityFactors, stabilityInsights := a.analyzeStability(desc)
	signals = append(signals, stabilityRisk)
	factors = append(factors, stabilityFactors...)
	insights = append(insights, stabilityInsights...)

	termsRisk, termsFactors := a.analyzeTerms(desc)
	signals = append(signals, termsRisk)
	factors = append(factors, termsFactors...)

	creditRisk, creditFactors, creditInsights, err := a.checkCredit(ctx, sub)
	if err != nil {
		// credit source failure degrades the signal, not the assessment
		a.log.Warn().Err(err).Str("vendor", sub.VendorName).Msg("credit check unavailable")
		creditRisk = neutralScore
		creditFactors = []string{"credit_check_unavailable"}
	}
	signals = append(signals, creditRisk)
	factors = append(factors, creditFactors...)
	insights = append(insights, creditInsights...)

	combiner := Combiner{DominanceThreshold: 0.9, MaxWeight: 0.7, AvgWeight: 0.3}
	score := combiner.Combine(signals)

	a.log.Debug().
		Str("vendor", sub.VendorName).
		Float64("score", score).
		Msg("payment analysis complete")

	return &models.AnalyzerResult{
		Analyzer:    AnalyzerPayment,
		Score:       score,
		Status:      reliabilityRating(score),
		RiskFactors: factors,
		Detail:      map[string]any{"insights": insights},
	}, nil
}

// analyzeBusinessAge infers age from the oldest 4-digit year in the text
func (a *PaymentAnalyzer) analyzeBusinessAge(text string) (float64, []string, []models.Insight) {
	var risk float64
	var factors []string
	var insights []models.Insight

	years := establishmentYearPattern.FindAllString(text, -1)
	if len(years) > 0 {
		oldest := 0
		for _, y := range years {
			year, err := strconv.Atoi(y)
			if err != nil {
				continue
			}
			if oldest == 0 || year < oldest {
				oldest = year
			}
		}
		age := a.now().Year() - oldest

		switch {
		case age < 1:
			risk = 0.6
			factors = append(factors, "very_new_business")
			insights = append(insights, models.Insight{
				Type: "AGE", Value: fmt.Sprintf("%d years", age), Risk: "HIGH",
				Message: "Very new business - limited track record",
			})
		case age < 3:
			risk = 0.4
			factors = append(factors, "new_business")
			insights = append(insights, models.Insight{
				Type: "AGE", Value: fmt.Sprintf("%d years", age), Risk: "MEDIUM",
				Message: "Relatively new business",
			})
		case age >= 10:
			risk = 0.0
			factors = append(factors, "established_business")
			insights = append(insights, models.Insight{
				Type: "AGE", Value: fmt.Sprintf("%d+ years", age), Risk: "LOW",
				Message: "Well-established business",
			})
		default:
			risk = 0.2
			insights = append(insights, models.Insight{
				Type: "AGE", Value: fmt.Sprintf("%d years", age), Risk: "LOW",
				Message: "Moderate business history",
			})
		}
	} else {
		risk = 0.3
		factors = append(factors, "no_establishment_date")
	}

	for _, keyword := range newBusinessKeywords {
		if strings.Contains(text, keyword) {
			if risk < 0.5 {
				risk = 0.5
			}
			factors = append(factors, "keyword_"+strings.ReplaceAll(keyword, " ", "_"))
		}
	}

	return risk, factors, insights
}

// checkBankruptcy looks for bankruptcy and financial-distress language.
// A bankruptcy keyword drives the signal to dominance level.
func (a *PaymentAnalyzer) checkBankruptcy(text string) (float64, []string) {
	var risk float64
	var factors []string

	for _, keyword := range bankruptcyKeywords {
		if strings.Contains(text, keyword) {
			risk = 0.95
			factors = append(factors, "bankruptcy_"+strings.ReplaceAll(keyword, " ", "_"))
			a.log.Warn().Str("keyword", keyword).Msg("bankruptcy indicator found")
		}
	}

	for _, keyword := range distressKeywords {
		if strings.Contains(text, keyword) {
			if risk < 0.6 {
				risk = 0.6
			}
			factors = append(factors, "distress_"+strings.ReplaceAll(keyword, " ", "_"))
		}
	}

	return risk, factors
}

// analyzeStability tallies positive and negative financial language
func (a *PaymentAnalyzer) analyzeStability(text string) (float64, []string, []models.Insight) {
	var risk float64
	var factors []string
	var insights []models.Insight

	positive := 0
	for _, keyword := range positiveFinancialKeywords {
		if strings.Contains(text, keyword) {
			positive++
		}
	}
	if positive >= 2 {
		factors = append(factors, "strong_financial_indicators")
		insights = append(insights, models.Insight{
			Type: "STABILITY", Value: fmt.Sprintf("%d positive indicators", positive),
			Risk: "LOW", Message: "Strong financial indicators present",
		})
	} else if positive == 1 {
		risk = 0.1
		insights = append(insights, models.Insight{
			Type: "STABILITY", Value: "Some positive indicators",
			Risk: "LOW", Message: "Moderate financial indicators",
		})
	}

	negative := 0
	for _, keyword := range negativeFinancialKeywords {
		if strings.Contains(text, keyword) {
			negative++
		}
	}
	if negative > 0 {
		candidate := 0.4 + float64(negative)*0.1
		if candidate > risk {
			risk = candidate
		}
		factors = append(factors, fmt.Sprintf("negative_indicators_%d", negative))
		insights = append(insights, models.Insight{
			Type: "STABILITY", Value: fmt.Sprintf("%d negative indicators", negative),
			Risk: "HIGH", Message: "Financial stability concerns detected",
		})
	}

	return clamp(risk, 0, 1), factors, insights
}

// analyzeTerms flags aggressive payment-terms language and credits flexible
// terms.
func (a *PaymentAnalyzer) analyzeTerms(text string) (float64, []string) {
	var risk float64
	var factors []string

	for _, term := range aggressivePaymentTerms {
		if strings.Contains(text, term) {
			if risk < 0.5 {
				risk = 0.5
			}
			factors = append(factors, "aggressive_terms_"+strings.ReplaceAll(term, " ", "_"))
		}
	}

	for _, term := range flexiblePaymentTerms {
		if strings.Contains(text, term) {
			risk = clamp(risk-0.2, 0, 1)
			factors = append(factors, "flexible_payment_terms")
			break
		}
	}

	return risk, factors
}

// checkCredit bins the provider's score into risk tiers and penalizes
// free-mail contact domains.
func (a *PaymentAnalyzer) checkCredit(ctx context.Context, sub *models.Submission) (float64, []string, []models.Insight, error) {
	score, err := a.credit.CreditScore(ctx, sub.VendorName)
	if err != nil {
		return 0, nil, nil, err
	}

	var risk float64
	var factors []string
	var insights []models.Insight

	switch {
	case score >= 750:
		risk = 0.0
		factors = append(factors, "excellent_credit_profile")
		insights = append(insights, models.Insight{
			Type: "CREDIT", Value: "Excellent", Risk: "LOW",
			Message: "Strong credit profile indicators",
		})
	case score >= 650:
		risk = 0.2
		factors = append(factors, "good_credit_profile")
		insights = append(insights, models.Insight{
			Type: "CREDIT", Value: "Good", Risk: "LOW",
			Message: "Acceptable credit profile",
		})
	case score >= 550:
		risk = 0.5
		factors = append(factors, "fair_credit_profile")
		insights = append(insights, models.Insight{
			Type: "CREDIT", Value: "Fair", Risk: "MEDIUM",
			Message: "Moderate credit concerns",
		})
	default:
		risk = 0.8
		factors = append(factors, "poor_credit_profile")
		insights = append(insights, models.Insight{
			Type: "CREDIT", Value: "Poor", Risk: "HIGH",
			Message: "Significant credit concerns",
		})
	}

	if freeEmailProviders[sub.EmailDomain()] {
		risk += 0.15
		factors = append(factors, "free_email_domain")
		insights = append(insights, models.Insight{
			Type: "PROFESSIONALISM", Value: "Free email provider", Risk: "MEDIUM",
			Message: "Using free email instead of business domain",
		})
	}

	return clamp(risk, 0, 1), factors, insights, nil
}

// reliabilityRating labels the payment score
func reliabilityRating(score float64) string {
	switch {
	case score >= 0.8:
		return "HIGH_RISK"
	case score >= 0.5:
		return "MEDIUM_RISK"
	case score >= 0.3:
		return "LOW_RISK"
	}
	return "RELIABLE"
}
