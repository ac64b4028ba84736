package services

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

// Screening lists. Stand-ins for the real OFAC SDN feed; production swaps
// these for an S3-hosted or API-backed list without changing the checks.
var sanctionedEntities = []string{
	"rosneft", "gazprom bank", "sberbank", "vtb bank",
	"huawei", "zte corporation", "kaspersky lab",
}

var sanctionedIndividuals = []string{
	"vladimir putin", "kim jong un", "bashar al-assad",
	"nicolas maduro", "alexander lukashenko",
}

var sanctionsKeywords = []string{
	"sanctioned", "embargo", "restricted", "prohibited",
	"blacklist", "designated national",
}

var highRiskJurisdictions = []string{
	"north korea", "iran", "syria", "cuba", "venezuela",
	"crimea", "donetsk", "luhansk", "russia", "belarus",
}

var negativeNewsKeywords = []string{
	"fraud", "scam", "ponzi", "investigation", "indicted",
	"arrested", "lawsuit", "bankrupt", "scandal", "corruption",
	"money laundering", "embezzlement", "sec charges",
}

var politicalTitles = []string{
	"president", "minister", "senator", "governor", "ambassador",
	"secretary", "chairman", "commissioner", "director general",
}

var corporateSuffixes = []string{
	"inc", "llc", "ltd", "corp", "corporation", "limited",
}

var (
	personNamePattern   = regexp.MustCompile(`\b(?:Mr\.|Mrs\.|Ms\.|Dr\.|Prof\.)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	organizationPattern = regexp.MustCompile(`\b([A-Z][A-Za-z0-9\s&]+(?:Inc\.|LLC|Corp\.|Corporation|Ltd\.|Limited|GmbH|S\.A\.))`)
	entityDatePattern   = regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`)
	monetaryPattern     = regexp.MustCompile(`(?i)\$\d{1,3}(?:,\d{3})*(?:\.\d{2})?(?:\s*(?:million|billion|thousand))?`)
)

// locationGazetteer is the fixed list of recognized place names
var locationGazetteer = []string{
	"United States", "USA", "China", "Russia", "Iran", "North Korea",
	"Syria", "Venezuela", "Cuba", "Belarus", "Crimea", "Ukraine",
	"New York", "California", "Texas", "London", "Moscow", "Beijing",
}

// EntityExtractor pulls named entities out of free text with regex and
// dictionary lookups. Shared by the entity and trust analyzers.
type EntityExtractor struct{}

// NewEntityExtractor creates an entity extractor
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{}
}

// Extract returns the deduplicated entities found in the text
func (e *EntityExtractor) Extract(text string) []models.ExtractedEntity {
	if len(text) < 10 {
		return nil
	}

	var entities []models.ExtractedEntity

	for _, m := range personNamePattern.FindAllStringSubmatch(text, -1) {
		entities = append(entities, models.ExtractedEntity{
			Text: m[1], Type: models.EntityTypePerson, Score: 0.85,
		})
	}

	for _, m := range organizationPattern.FindAllStringSubmatch(text, -1) {
		entities = append(entities, models.ExtractedEntity{
			Text: strings.TrimSpace(m[1]), Type: models.EntityTypeOrganization, Score: 0.9,
		})
	}

	for _, location := range locationGazetteer {
		if strings.Contains(text, location) {
			entities = append(entities, models.ExtractedEntity{
				Text: location, Type: models.EntityTypeLocation, Score: 0.95,
			})
		}
	}

	for _, m := range entityDatePattern.FindAllString(text, -1) {
		entities = append(entities, models.ExtractedEntity{
			Text: m, Type: models.EntityTypeDate, Score: 0.9,
		})
	}

	for _, m := range monetaryPattern.FindAllString(text, -1) {
		entities = append(entities, models.ExtractedEntity{
			Text: m, Type: models.EntityTypeMoney, Score: 0.95,
		})
	}

	return dedupeEntities(entities)
}

func dedupeEntities(entities []models.ExtractedEntity) []models.ExtractedEntity {
	seen := make(map[string]struct{}, len(entities))
	out := entities[:0]
	for _, entity := range entities {
		key := strings.ToLower(entity.Text) + "|" + string(entity.Type)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entity)
	}
	return out
}

// EntityAnalyzer screens the submission against sanctions and watch lists:
// SDN entities and individuals, high-risk jurisdictions, negative news
// density, PEP titles, and corporate registry plausibility. A sanctions
// match hard-blocks compliance regardless of the numeric score.
type EntityAnalyzer struct {
	extractor *EntityExtractor
	log       *logger.Logger
}

// NewEntityAnalyzer creates an entity analyzer
func NewEntityAnalyzer(extractor *EntityExtractor, log *logger.Logger) *EntityAnalyzer {
	if extractor == nil {
		extractor = NewEntityExtractor()
	}
	return &EntityAnalyzer{
		extractor: extractor,
		log:       log.WithComponent("entity_analyzer"),
	}
}

// Name implements Analyzer
func (a *EntityAnalyzer) Name() string { return AnalyzerEntity }

// Analyze implements Analyzer
func (a *EntityAnalyzer) Analyze(_ context.Context, sub *models.Submission) (*models.AnalyzerResult, error) {
	entities := a.extractor.Extract(sub.BusinessDescription)

	var signals []float64
	var factors []string
	var matches []models.WatchlistMatch

	sanctionsRisk, sanctionsFactors, sanctionsMatches := a.checkSanctions(sub, entities)
	signals = append(signals, sanctionsRisk)
	factors = append(factors, sanctionsFactors...)
	matches = append(matches, sanctionsMatches...)

	jurisdictionRisk, jurisdictionFactors := a.checkJurisdictions(sub, entities)
	signals = append(signals, jurisdictionRisk)
	factors = append(factors, jurisdictionFactors...)

	newsRisk, newsFactors := a.screenNegativeNews(sub)
	signals = append(signals, newsRisk)
	factors = append(factors, newsFactors...)

	pepRisk, pepFactors := a.screenPEP(entities)
	signals = append(signals, pepRisk)
	factors = append(factors, pepFactors...)

	registryRisk, registryFactors := a.verifyRegistry(sub)
	signals = append(signals, registryRisk)
	factors = append(factors, registryFactors...)

	combiner := Combiner{DominanceThreshold: 0.95, MaxWeight: 0.6, AvgWeight: 0.4}
	score := combiner.Combine(signals)

	compliance := models.ComplianceClear
	for _, m := range matches {
		if m.Severity == "CRITICAL" {
			compliance = models.ComplianceBlocked
			break
		}
	}

	a.log.Debug().
		Str("vendor", sub.VendorName).
		Float64("score", score).
		Str("compliance", string(compliance)).
		Int("entities", len(entities)).
		Msg("entity resolution complete")

	return &models.AnalyzerResult{
		Analyzer:    AnalyzerEntity,
		Score:       score,
		Status:      entityStatus(score, compliance),
		RiskFactors: factors,
		Compliance:  compliance,
		Detail: map[string]any{
			"matched_entities":   matches,
			"extracted_entities": entities,
		},
	}, nil
}

// checkSanctions matches the vendor name, the raw submission text, and the
// extracted entities against the SDN stand-in lists. A listed entity anywhere
// in the text is an unconditional 1.0.
func (a *EntityAnalyzer) checkSanctions(sub *models.Submission, entities []models.ExtractedEntity) (float64, []string, []models.WatchlistMatch) {
	var risk float64
	var factors []string
	var matches []models.WatchlistMatch

	vendorLower := strings.ToLower(sub.VendorName)
	text := sub.CombinedText()

	for _, sanctioned := range sanctionedEntities {
		if strings.Contains(text, sanctioned) || strings.Contains(sanctioned, vendorLower) {
			risk = 1.0
			factors = append(factors, "sanctions_match_"+strings.ReplaceAll(sanctioned, " ", "_"))
			matches = append(matches, models.WatchlistMatch{
				Type:        "SANCTIONS",
				MatchedText: sanctioned,
				List:        "OFAC_SDN",
				Severity:    "CRITICAL",
			})
			a.log.Error().
				Str("vendor", sub.VendorName).
				Str("matched", sanctioned).
				Msg("sanctions match")
		}
	}

	for _, person := range sanctionedIndividuals {
		if strings.Contains(text, person) {
			if risk < 0.95 {
				risk = 0.95
			}
			factors = append(factors, "pep_match_"+strings.ReplaceAll(person, " ", "_"))
			matches = append(matches, models.WatchlistMatch{
				Type:        "PEP",
				MatchedText: person,
				List:        "OFAC_SDN",
				Severity:    "CRITICAL",
			})
			a.log.Error().
				Str("vendor", sub.VendorName).
				Str("matched", person).
				Msg("sanctioned individual match")
		}
	}

	for _, entity := range entities {
		entityLower := strings.ToLower(entity.Text)
		for _, keyword := range sanctionsKeywords {
			if strings.Contains(entityLower, keyword) {
				if risk < 0.7 {
					risk = 0.7
				}
				factors = append(factors, "sanctions_keyword_"+strings.ReplaceAll(keyword, " ", "_"))
			}
		}
	}

	return risk, factors, matches
}

// checkJurisdictions flags high-risk country mentions in the text or the
// extracted locations.
func (a *EntityAnalyzer) checkJurisdictions(sub *models.Submission, entities []models.ExtractedEntity) (float64, []string) {
	var risk float64
	var factors []string

	text := strings.ToLower(sub.CombinedText())
	for _, country := range highRiskJurisdictions {
		if strings.Contains(text, country) {
			risk = 0.8
			factors = append(factors, "high_risk_jurisdiction_"+strings.ReplaceAll(country, " ", "_"))
			a.log.Warn().Str("jurisdiction", country).Msg("high-risk jurisdiction detected")
		}
	}

	for _, entity := range entities {
		if entity.Type != models.EntityTypeLocation {
			continue
		}
		entityLower := strings.ToLower(entity.Text)
		for _, country := range highRiskJurisdictions {
			if strings.Contains(entityLower, country) {
				risk = 0.8
				factors = append(factors, "location_risk_"+strings.ReplaceAll(country, " ", "_"))
			}
		}
	}

	return risk, factors
}

// screenNegativeNews scores adverse-media keyword density
func (a *EntityAnalyzer) screenNegativeNews(sub *models.Submission) (float64, []string) {
	text := strings.ToLower(sub.CombinedText())

	var factors []string
	count := 0
	for _, keyword := range negativeNewsKeywords {
		if strings.Contains(text, keyword) {
			count++
			factors = append(factors, "negative_news_"+strings.ReplaceAll(keyword, " ", "_"))
		}
	}

	if count == 0 {
		return 0, nil
	}
	return clamp(0.3+float64(count)*0.1, 0, 0.7), factors
}

// screenPEP checks extracted persons for political titles
func (a *EntityAnalyzer) screenPEP(entities []models.ExtractedEntity) (float64, []string) {
	var risk float64
	var factors []string

	for _, entity := range entities {
		if entity.Type != models.EntityTypePerson {
			continue
		}
		entityLower := strings.ToLower(entity.Text)
		for _, title := range politicalTitles {
			if strings.Contains(entityLower, title) {
				if risk < 0.6 {
					risk = 0.6
				}
				factors = append(factors, "pep_title_"+strings.ReplaceAll(title, " ", "_"))
			}
		}
	}

	return risk, factors
}

// verifyRegistry sanity-checks the corporate identity: legal suffix in the
// name and contact domain consistency.
func (a *EntityAnalyzer) verifyRegistry(sub *models.Submission) (float64, []string) {
	var risk float64
	var factors []string

	vendorLower := strings.ToLower(sub.VendorName)

	hasSuffix := false
	for _, suffix := range corporateSuffixes {
		if strings.Contains(vendorLower, suffix) {
			hasSuffix = true
			break
		}
	}
	if !hasSuffix {
		risk = 0.2
		factors = append(factors, "no_corporate_suffix")
	}

	domain := sub.EmailDomain()
	if domain != "" {
		vendorClean := alnumOnly(vendorLower)
		domainClean := domain
		if dot := strings.Index(domain, "."); dot > 0 {
			domainClean = domain[:dot]
		}
		if vendorClean != "" && domainClean != "" &&
			!strings.Contains(domainClean, vendorClean) && !strings.Contains(vendorClean, domainClean) {
			risk += 0.15
			factors = append(factors, "email_domain_mismatch")
		}
	}

	return clamp(risk, 0, 1), factors
}

// alnumOnly strips everything but letters and digits
func alnumOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func entityStatus(score float64, compliance models.ComplianceStatus) string {
	if compliance == models.ComplianceBlocked {
		return "BLOCKED"
	}
	switch {
	case score >= 0.8:
		return "HIGH_RISK"
	case score >= 0.5:
		return "MEDIUM_RISK"
	}
	return "CLEAR"
}
