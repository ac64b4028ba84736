package services

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

// trustedTLDs carry full reputation points; anything else gets half
var trustedTLDs = []string{".com", ".org", ".net", ".edu", ".gov"}

// ProbeResult is the outcome of the live checks against a contact domain
type ProbeResult struct {
	WebsiteReachable bool
	HTTPS            bool
	ValidTLS         bool
	HasMX            bool
	MXCount          int
}

// DomainProber performs the live website and DNS checks. Behind an interface
// so tests run without network access.
type DomainProber interface {
	Probe(ctx context.Context, domain string) (ProbeResult, error)
}

// LiveProber checks domains over the real network with short per-check
// timeouts. One unreachable domain must not stall an assessment.
type LiveProber struct {
	client   *http.Client
	resolver *net.Resolver
	timeout  time.Duration
}

// NewLiveProber creates a prober with the given per-check timeout
func NewLiveProber(timeout time.Duration) *LiveProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LiveProber{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		resolver: net.DefaultResolver,
		timeout:  timeout,
	}
}

// Probe implements DomainProber. Failures are reported as absent signals,
// never as errors; unreachable and timed-out mean the same thing here.
func (p *LiveProber) Probe(ctx context.Context, domain string) (ProbeResult, error) {
	var result ProbeResult

	if resp, err := p.fetch(ctx, "https://"+domain); err == nil {
		result.WebsiteReachable = true
		result.HTTPS = true
		if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
			result.ValidTLS = true
		}
		resp.Body.Close()
	} else if resp, err := p.fetch(ctx, "http://"+domain); err == nil {
		result.WebsiteReachable = true
		resp.Body.Close()
	}

	dnsCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if mx, err := p.resolver.LookupMX(dnsCtx, domain); err == nil && len(mx) > 0 {
		result.HasMX = true
		result.MXCount = len(mx)
	} else if addrs, err := p.resolver.LookupHost(dnsCtx, domain); err == nil && len(addrs) > 0 {
		// A record without MX still accepts mail on some setups
		result.HasMX = true
		result.MXCount = 1
	}

	return result, nil
}

func (p *LiveProber) fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	return p.client.Do(req)
}

// TrustAnalyzer verifies the vendor's online presence: website reachability,
// mail setup, TLS, TLD reputation, and how much verifiable detail the
// description carries. Points out of 100 invert into a risk score.
type TrustAnalyzer struct {
	prober    DomainProber
	extractor *EntityExtractor
	log       *logger.Logger
}

// NewTrustAnalyzer creates a trust analyzer
func NewTrustAnalyzer(prober DomainProber, extractor *EntityExtractor, log *logger.Logger) *TrustAnalyzer {
	if extractor == nil {
		extractor = NewEntityExtractor()
	}
	return &TrustAnalyzer{
		prober:    prober,
		extractor: extractor,
		log:       log.WithComponent("trust_analyzer"),
	}
}

// Name implements Analyzer
func (a *TrustAnalyzer) Name() string { return AnalyzerTrust }

// Analyze implements Analyzer
func (a *TrustAnalyzer) Analyze(ctx context.Context, sub *models.Submission) (*models.AnalyzerResult, error) {
	domain := sub.EmailDomain()
	if domain == "" {
		return degradedResult(AnalyzerTrust, "no contact domain to verify"), nil
	}

	probe, err := a.prober.Probe(ctx, domain)
	if err != nil {
		// network trouble degrades to neutral, it never fails the assessment
		a.log.Warn().Err(err).Str("domain", domain).Msg("domain probe failed")
		return degradedResult(AnalyzerTrust, "domain probe failed"), nil
	}

	var total int
	var factors []string
	breakdown := make(map[string]int, 5)

	switch {
	case probe.WebsiteReachable && probe.HTTPS:
		total += 30
		breakdown["website"] = 30
	case probe.WebsiteReachable:
		total += 15
		breakdown["website"] = 15
		factors = append(factors, "website_insecure_only")
	default:
		breakdown["website"] = 0
		factors = append(factors, "website_unreachable")
	}

	if probe.HasMX {
		total += 20
		breakdown["email"] = 20
	} else {
		breakdown["email"] = 0
		factors = append(factors, "no_mx_records")
	}

	if probe.ValidTLS {
		total += 15
		breakdown["ssl"] = 15
	} else {
		breakdown["ssl"] = 0
		if probe.WebsiteReachable {
			factors = append(factors, "no_valid_tls")
		}
	}

	if hasTrustedTLD(domain) {
		total += 20
		breakdown["domain"] = 20
	} else {
		total += 10
		breakdown["domain"] = 10
		factors = append(factors, "untrusted_tld")
	}

	richness := a.entityRichness(sub.BusinessDescription)
	total += richness
	breakdown["entities"] = richness
	if richness <= 5 {
		factors = append(factors, "sparse_business_detail")
	}

	score := clamp(1.0-float64(total)/100.0, 0, 1)

	a.log.Debug().
		Str("domain", domain).
		Int("trust_points", total).
		Float64("score", score).
		Msg("trust verification complete")

	return &models.AnalyzerResult{
		Analyzer:    AnalyzerTrust,
		Score:       score,
		Status:      trustStatus(total),
		RiskFactors: factors,
		Detail: map[string]any{
			"trust_points": total,
			"breakdown":    breakdown,
			"probe":        probe,
		},
	}, nil
}

// entityRichness awards points for verifiable detail in the description
func (a *TrustAnalyzer) entityRichness(description string) int {
	entities := a.extractor.Extract(description)
	switch {
	case len(entities) >= 5:
		return 15
	case len(entities) >= 2:
		return 10
	}
	return 5
}

func hasTrustedTLD(domain string) bool {
	for _, tld := range trustedTLDs {
		if strings.HasSuffix(domain, tld) {
			return true
		}
	}
	return false
}

func trustStatus(points int) string {
	switch {
	case points >= 70:
		return "VERIFIED"
	case points >= 40:
		return "PARTIAL"
	}
	return "UNVERIFIED"
}
