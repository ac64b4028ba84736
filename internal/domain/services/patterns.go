package services

import (
	"regexp"
	"strings"

	"vendorguard/internal/domain/models"
)

// contextWindow is the number of characters captured on each side of a match
// for human review.
const contextWindow = 50

// PatternCategory is one keyword table entry: a category name, its keywords,
// and the severity weight assigned to any hit in the category.
type PatternCategory struct {
	Name     string
	Keywords []string
	Severity float64
}

// RegexPattern is a compiled pattern with a category and severity. Named
// capture groups become structured fields on the match (case numbers, dates,
// monetary amounts).
type RegexPattern struct {
	Name     string
	Pattern  *regexp.Regexp
	Severity float64
}

// Matcher scans text against keyword tables and regex patterns, producing
// one PatternMatch per occurrence with surrounding context.
type Matcher struct{}

// NewMatcher creates a new Matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// ScanKeywords finds every case-insensitive occurrence of each keyword.
// No match found means an empty slice, never an error.
func (m *Matcher) ScanKeywords(text string, categories []PatternCategory) []models.PatternMatch {
	lower := strings.ToLower(text)
	var matches []models.PatternMatch

	for _, cat := range categories {
		for _, keyword := range cat.Keywords {
			kw := strings.ToLower(keyword)
			from := 0
			for {
				idx := strings.Index(lower[from:], kw)
				if idx < 0 {
					break
				}
				start := from + idx
				matches = append(matches, models.PatternMatch{
					Category: cat.Name,
					Keyword:  keyword,
					Severity: cat.Severity,
					Context:  extractContext(lower, start, start+len(kw)),
				})
				from = start + len(kw)
			}
		}
	}

	return matches
}

// ScanRegex finds all occurrences of a regex pattern. Named capture groups
// are extracted into the match's Captures map.
func (m *Matcher) ScanRegex(text string, pattern RegexPattern) []models.PatternMatch {
	var matches []models.PatternMatch

	locs := pattern.Pattern.FindAllStringSubmatchIndex(text, -1)
	names := pattern.Pattern.SubexpNames()

	for _, loc := range locs {
		match := models.PatternMatch{
			Category: pattern.Name,
			Keyword:  text[loc[0]:loc[1]],
			Severity: pattern.Severity,
			Context:  extractContext(text, loc[0], loc[1]),
		}

		for i, name := range names {
			if i == 0 || name == "" {
				continue
			}
			if 2*i+1 < len(loc) && loc[2*i] >= 0 {
				if match.Captures == nil {
					match.Captures = make(map[string]string)
				}
				match.Captures[name] = text[loc[2*i]:loc[2*i+1]]
			}
		}

		matches = append(matches, match)
	}

	return matches
}

// extractContext returns the text surrounding [start,end), clamped to the
// text bounds, with ellipses marking truncation.
func extractContext(text string, start, end int) string {
	from := start - contextWindow
	if from < 0 {
		from = 0
	}
	to := end + contextWindow
	if to > len(text) {
		to = len(text)
	}

	ctx := strings.TrimSpace(text[from:to])
	if from > 0 {
		ctx = "..." + ctx
	}
	if to < len(text) {
		ctx = ctx + "..."
	}
	return ctx
}
