package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetworkAnalyzer(window WindowSource) *NetworkAnalyzer {
	a := NewNetworkAnalyzer(window, testLogger())
	a.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	return a
}

func windowEntry(id, ip, email string) WindowEntry {
	return WindowEntry{
		ID:          id,
		VendorName:  "Vendor " + id,
		Email:       email,
		Description: "short text",
		SourceIP:    ip,
		SubmittedAt: time.Date(2026, 3, 4, 11, 30, 0, 0, time.UTC),
	}
}

func TestNetworkEmptyWindow(t *testing.T) {
	a := newTestNetworkAnalyzer(fixedWindow{})

	result, err := a.Analyze(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Zero(t, result.Score)
	assert.Equal(t, "NORMAL", result.Status)
	assert.Empty(t, result.RiskFactors)
}

func TestNetworkIPClustering(t *testing.T) {
	a := newTestNetworkAnalyzer(fixedWindow{
		windowEntry("w1", "203.0.113.10", "a@one.example"),
		windowEntry("w2", "203.0.113.10", "b@two.example"),
		windowEntry("w3", "203.0.113.10", "c@three.example"),
	})

	result, err := a.Analyze(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Contains(t, result.RiskFactors, "ip_clustering_3_vendors")
	assert.Greater(t, result.Score, 0.3)
}

func TestNetworkExcludesSelf(t *testing.T) {
	sub := validSubmission()
	a := newTestNetworkAnalyzer(fixedWindow{
		windowEntry(sub.ID, sub.SourceIP, sub.ContactEmail),
	})

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	assert.Zero(t, result.Score)
	assert.Empty(t, result.RiskFactors)
}

func TestNetworkTextSimilarity(t *testing.T) {
	sub := validSubmission()
	clone := windowEntry("w1", "198.51.100.7", "x@elsewhere.example")
	clone.Description = sub.BusinessDescription

	a := newTestNetworkAnalyzer(fixedWindow{clone})

	result, err := a.Analyze(context.Background(), sub)
	require.NoError(t, err)

	assert.Contains(t, result.RiskFactors, "text_plagiarism_1_matches")
	assert.Contains(t, result.RiskFactors, "max_similarity_100pct")
}

func TestNetworkSharedDomain(t *testing.T) {
	entries := make(fixedWindow, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, windowEntry(fmt.Sprintf("w%d", i), fmt.Sprintf("198.51.100.%d", i), "x@acmesolutions.com"))
	}
	a := newTestNetworkAnalyzer(entries)

	result, err := a.Analyze(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Contains(t, result.RiskFactors, "shared_domain_5_vendors")
}

func TestNetworkFreeDomainIgnored(t *testing.T) {
	sub := validSubmission()
	sub.ContactEmail = "acme@gmail.com"

	entries := make(fixedWindow, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, windowEntry(fmt.Sprintf("w%d", i), fmt.Sprintf("198.51.100.%d", i), "x@gmail.com"))
	}
	a := newTestNetworkAnalyzer(entries)

	risk, factors := a.analyzeEmailDomains(sub, entries)
	assert.Zero(t, risk)
	assert.Empty(t, factors)
}

func TestNetworkTemporalBurst(t *testing.T) {
	entries := make(fixedWindow, 0, 10)
	for i := 0; i < 10; i++ {
		entries = append(entries, windowEntry(fmt.Sprintf("w%d", i), fmt.Sprintf("198.51.100.%d", i), fmt.Sprintf("x@d%d.example", i)))
	}
	a := newTestNetworkAnalyzer(entries)

	risk, factors := a.analyzeTemporalPatterns(entries)
	assert.InDelta(t, 0.5, risk, 1e-9)
	assert.Contains(t, factors, "temporal_burst_10_in_60min")
}

func TestNetworkShapeFingerprint(t *testing.T) {
	sub := validSubmission()

	entries := make(fixedWindow, 0, 3)
	for i := 0; i < 3; i++ {
		e := windowEntry(fmt.Sprintf("w%d", i), fmt.Sprintf("198.51.100.%d", i), fmt.Sprintf("x@d%d.example", i))
		e.VendorName = "Acme Solutions Ltd" // same length as the subject's name
		e.Description = sub.BusinessDescription
		e.TaxID = "36-0000000"
		entries = append(entries, e)
	}
	a := newTestNetworkAnalyzer(entries)

	risk, factors := a.analyzeFingerprint(sub, entries)
	assert.InDelta(t, 0.6, risk, 1e-9)
	assert.Contains(t, factors, "bot_pattern_3_similar")
}

func TestNetworkGraphEdges(t *testing.T) {
	sub := validSubmission()
	sameIP := windowEntry("ip-peer", sub.SourceIP, "x@other.example")
	sameDomain := windowEntry("domain-peer", "198.51.100.9", "y@acmesolutions.com")
	unrelated := windowEntry("stranger", "198.51.100.8", "z@nowhere.example")

	a := newTestNetworkAnalyzer(nil)
	graph := a.buildGraph(sub, []WindowEntry{sameIP, sameDomain, unrelated})

	require.Len(t, graph.Nodes, 3)
	require.Len(t, graph.Edges, 2)
	assert.Equal(t, sub.ID, graph.Edges[0].From)
	assert.Equal(t, []string{"same_ip"}, graph.Edges[0].Relationships)
	assert.Equal(t, []string{"same_domain"}, graph.Edges[1].Relationships)
}

func TestJaccardSimilarity(t *testing.T) {
	a := wordSet("alpha beta gamma")
	b := wordSet("alpha beta gamma")
	c := wordSet("delta epsilon")

	assert.Equal(t, 1.0, JaccardSimilarity(a, b))
	assert.Equal(t, 0.0, JaccardSimilarity(a, c))
	assert.Equal(t, 0.0, JaccardSimilarity(nil, a))
	assert.InDelta(t, 0.5, JaccardSimilarity(wordSet("a b c"), wordSet("a b d")), 1e-9)
}
