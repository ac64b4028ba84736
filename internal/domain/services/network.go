package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

const (
	sameIPThreshold        = 3
	similarityThreshold    = 0.85
	sharedDomainThreshold  = 5
	temporalBurstThreshold = 10
	temporalWindow         = 60 * time.Minute
	fingerprintThreshold   = 3
	graphNodeLimit         = 20
)

// NetworkAnalyzer detects fraud rings by correlating the submission against
// the trailing window: shared source addresses, near-duplicate descriptions,
// shared contact domains, burst activity, and repeated shape fingerprints.
// It also emits a relationship graph fragment for downstream visualization.
type NetworkAnalyzer struct {
	window WindowSource
	log    *logger.Logger
	now    func() time.Time
}

// NewNetworkAnalyzer creates a network analyzer over the given window
func NewNetworkAnalyzer(window WindowSource, log *logger.Logger) *NetworkAnalyzer {
	return &NetworkAnalyzer{
		window: window,
		log:    log.WithComponent("network_analyzer"),
		now:    time.Now,
	}
}

// Name implements Analyzer
func (a *NetworkAnalyzer) Name() string { return AnalyzerNetwork }

// Analyze implements Analyzer
func (a *NetworkAnalyzer) Analyze(_ context.Context, sub *models.Submission) (*models.AnalyzerResult, error) {
	recent := a.excludeSelf(a.window.Recent(a.now()), sub.ID)

	var signals []float64
	var factors []string

	ipRisk, ipFactors := a.analyzeIPClustering(sub, recent)
	signals = append(signals, ipRisk)
	factors = append(factors, ipFactors...)

	similarityRisk, similarityFactors := a.analyzeTextSimilarity(sub, recent)
	signals = append(signals, similarityRisk)
	factors = append(factors, similarityFactors...)

	domainRisk, domainFactors := a.analyzeEmailDomains(sub, recent)
	signals = append(signals, domainRisk)
	factors = append(factors, domainFactors...)

	temporalRisk, temporalFactors := a.analyzeTemporalPatterns(recent)
	signals = append(signals, temporalRisk)
	factors = append(factors, temporalFactors...)

	fingerprintRisk, fingerprintFactors := a.analyzeFingerprint(sub, recent)
	signals = append(signals, fingerprintRisk)
	factors = append(factors, fingerprintFactors...)

	combiner := Combiner{MaxWeight: 0.7, AvgWeight: 0.3}
	score := combiner.Combine(signals)

	graph := a.buildGraph(sub, recent)

	a.log.Debug().
		Str("vendor", sub.VendorName).
		Float64("score", score).
		Int("window_size", len(recent)).
		Msg("network analysis complete")

	return &models.AnalyzerResult{
		Analyzer:    AnalyzerNetwork,
		Score:       score,
		Status:      networkStatus(score),
		RiskFactors: factors,
		Detail:      map[string]any{"graph": graph, "window_size": len(recent)},
	}, nil
}

// excludeSelf drops the submission's own window entry so it never correlates
// with itself.
func (a *NetworkAnalyzer) excludeSelf(entries []WindowEntry, id string) []WindowEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// analyzeIPClustering counts windowed submissions sharing the source address
func (a *NetworkAnalyzer) analyzeIPClustering(sub *models.Submission, recent []WindowEntry) (float64, []string) {
	if sub.SourceIP == "" || sub.SourceIP == "unknown" {
		return 0, nil
	}

	count := 0
	for _, e := range recent {
		if e.SourceIP == sub.SourceIP {
			count++
		}
	}

	if count >= sameIPThreshold {
		a.log.Warn().
			Str("source_ip", sub.SourceIP).
			Int("count", count).
			Msg("ip clustering detected")
		risk := clamp(0.3+float64(count)*0.1, 0, 0.8)
		return risk, []string{fmt.Sprintf("ip_clustering_%d_vendors", count)}
	}
	return 0, nil
}

// analyzeTextSimilarity flags near-duplicate descriptions by Jaccard
// similarity of their word sets.
func (a *NetworkAnalyzer) analyzeTextSimilarity(sub *models.Submission, recent []WindowEntry) (float64, []string) {
	if len(sub.BusinessDescription) < 20 {
		return 0, nil
	}

	words := wordSet(sub.BusinessDescription)
	if len(words) == 0 {
		return 0, nil
	}

	similarCount := 0
	maxSimilarity := 0.0
	for _, e := range recent {
		if len(e.Description) < 20 {
			continue
		}
		similarity := JaccardSimilarity(words, wordSet(e.Description))
		if similarity > similarityThreshold {
			similarCount++
			if similarity > maxSimilarity {
				maxSimilarity = similarity
			}
		}
	}

	if similarCount == 0 {
		return 0, nil
	}

	a.log.Warn().Int("similar", similarCount).Msg("near-duplicate descriptions detected")
	risk := clamp(0.4+float64(similarCount)*0.15, 0, 0.7)
	return risk, []string{
		fmt.Sprintf("text_plagiarism_%d_matches", similarCount),
		fmt.Sprintf("max_similarity_%dpct", int(maxSimilarity*100)),
	}
}

// analyzeEmailDomains counts vendors sharing a custom contact domain.
// Free-mail providers are scored by the payment analyzer instead.
func (a *NetworkAnalyzer) analyzeEmailDomains(sub *models.Submission, recent []WindowEntry) (float64, []string) {
	domain := sub.EmailDomain()
	if domain == "" || freeEmailProviders[domain] {
		return 0, nil
	}

	count := 0
	for _, e := range recent {
		if e.Domain() == domain {
			count++
		}
	}

	if count >= sharedDomainThreshold {
		a.log.Warn().
			Str("domain", domain).
			Int("count", count).
			Msg("domain sharing detected")
		risk := clamp(0.2+float64(count)*0.08, 0, 0.6)
		return risk, []string{fmt.Sprintf("shared_domain_%d_vendors", count)}
	}
	return 0, nil
}

// analyzeTemporalPatterns flags submission bursts in the trailing hour
func (a *NetworkAnalyzer) analyzeTemporalPatterns(recent []WindowEntry) (float64, []string) {
	if len(recent) < 5 {
		return 0, nil
	}

	cutoff := a.now().Add(-temporalWindow)
	count := 0
	for _, e := range recent {
		if e.SubmittedAt.After(cutoff) {
			count++
		}
	}

	if count >= temporalBurstThreshold {
		a.log.Warn().Int("count", count).Msg("temporal clustering detected")
		risk := clamp(0.2+float64(count)*0.03, 0, 0.5)
		return risk, []string{fmt.Sprintf("temporal_burst_%d_in_60min", count)}
	}
	return 0, nil
}

// analyzeFingerprint hashes the submission's shape (field lengths plus tax
// prefix) and counts windowed submissions with the identical shape, a sign
// of scripted form filling.
func (a *NetworkAnalyzer) analyzeFingerprint(sub *models.Submission, recent []WindowEntry) (float64, []string) {
	fingerprint := shapeFingerprint(sub.VendorName, sub.BusinessDescription, sub.TaxID)

	similar := 0
	for _, e := range recent {
		if shapeFingerprint(e.VendorName, e.Description, e.TaxID) == fingerprint {
			similar++
		}
	}

	if similar >= fingerprintThreshold {
		a.log.Warn().Int("similar", similar).Msg("repeated submission shape detected")
		return 0.6, []string{fmt.Sprintf("bot_pattern_%d_similar", similar)}
	}
	return 0, nil
}

// buildGraph emits the relationship fragment linking this submission to
// windowed vendors sharing an address or domain. Visualization artifact only.
func (a *NetworkAnalyzer) buildGraph(sub *models.Submission, recent []WindowEntry) models.RelationshipGraph {
	domain := sub.EmailDomain()

	graph := models.RelationshipGraph{
		Nodes: []models.SubmissionNode{{
			ID:         sub.ID,
			VendorName: sub.VendorName,
			Type:       "vendor",
			Domain:     domain,
			SourceIP:   sub.SourceIP,
		}},
	}

	limit := len(recent)
	if limit > graphNodeLimit {
		limit = graphNodeLimit
	}

	for _, e := range recent[:limit] {
		sameIP := e.SourceIP != "" && e.SourceIP == sub.SourceIP
		sameDomain := e.Domain() != "" && e.Domain() == domain
		if !sameIP && !sameDomain {
			continue
		}

		graph.Nodes = append(graph.Nodes, models.SubmissionNode{
			ID:         e.ID,
			VendorName: e.VendorName,
			Type:       "related_vendor",
			Domain:     e.Domain(),
			SourceIP:   e.SourceIP,
		})

		var relationships []string
		if sameIP {
			relationships = append(relationships, "same_ip")
		}
		if sameDomain {
			relationships = append(relationships, "same_domain")
		}
		graph.Edges = append(graph.Edges, models.SubmissionEdge{
			From:          sub.ID,
			To:            e.ID,
			Relationships: relationships,
		})
	}

	return graph
}

// JaccardSimilarity returns |A∩B|/|A∪B| for two word sets
func JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// wordSet lowercases and splits text into its set of words
func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// shapeFingerprint hashes the coarse shape of a submission
func shapeFingerprint(name, description, taxID string) string {
	prefix := "XX"
	if len(taxID) >= 2 {
		prefix = taxID[:2]
	}
	key := fmt.Sprintf("%d|%d|%s", len(name), len(description), prefix)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:8]
}

func networkStatus(score float64) string {
	switch {
	case score >= 0.7:
		return "HIGH_RISK"
	case score >= 0.4:
		return "SUSPICIOUS"
	}
	return "NORMAL"
}
