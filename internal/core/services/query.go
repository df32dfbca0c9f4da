package services

import (
	"sort"
	"strings"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/logger"
)

// QueryProcessor cleans a raw query, classifies its type, extracts implicit
// metadata filters, and expands it with domain synonyms. It is pure and
// deterministic: no I/O, no state beyond the static vocabulary tables.
type QueryProcessor struct {
	maxExpansionTerms int
}

// NewQueryProcessor creates a query processor with the given settings.
func NewQueryProcessor(settings domain.RetrievalSettings) *QueryProcessor {
	maxTerms := settings.MaxExpansionTerms
	if maxTerms <= 0 {
		maxTerms = domain.DefaultRetrievalSettings().MaxExpansionTerms
	}
	return &QueryProcessor{maxExpansionTerms: maxTerms}
}

// Process turns raw user text and optional explicit filters into a Query.
// Explicit filters always win over filters extracted from the text.
// Classification failures are never errors; the type falls back to general.
func (p *QueryProcessor) Process(rawText string, explicit domain.Filters) domain.Query {
	raw := strings.TrimSpace(rawText)
	normalised := normaliseForMatching(raw)

	queryType := p.detectType(raw, normalised)
	extracted := p.extractFilters(raw, normalised)
	merged := explicit.Merge(extracted)
	expanded := p.expand(normalised)

	logger.Debug("Query processed: type=%s filters=%+v expansions=%d",
		queryType, merged, len(expanded))

	return domain.Query{
		RawText:       raw,
		Type:          queryType,
		Filters:       merged,
		ExpandedTerms: expanded,
	}
}

// detectType classifies the query with rule-based keyword matching.
// Multiple matching rules are resolved by fixed priority; no match at all
// falls back to general.
func (p *QueryProcessor) detectType(raw, normalised string) domain.QueryType {
	for _, marker := range troubleshootingMarkers {
		if containsPhrase(normalised, marker) {
			return domain.QueryTroubleshooting
		}
	}

	if techniquePattern.MatchString(strings.ToUpper(raw)) ||
		eventIDPattern.MatchString(raw) ||
		strings.Contains(raw, "```") {
		return domain.QueryTechnical
	}
	for _, marker := range technicalMarkers {
		if containsPhrase(normalised, marker) {
			return domain.QueryTechnical
		}
	}

	for _, marker := range terminologyMarkers {
		if containsPhrase(normalised, marker) {
			return domain.QueryTerminology
		}
	}
	// A bare product or vendor name with no other content is a
	// terminology lookup ("Cortex XDR?").
	if _, ok := knownProducts[normalised]; ok {
		return domain.QueryTerminology
	}
	if _, ok := knownVendors[normalised]; ok {
		return domain.QueryTerminology
	}

	for _, marker := range conceptualMarkers {
		if containsPhrase(normalised, marker) {
			return domain.QueryConceptual
		}
	}

	return domain.QueryGeneral
}

// extractFilters scans the query for known vendor and product names and
// MITRE technique IDs. Any match becomes an implicit filter.
func (p *QueryProcessor) extractFilters(raw, normalised string) domain.Filters {
	var f domain.Filters

	if m := techniquePattern.FindString(strings.ToUpper(raw)); m != "" {
		f.Technique = m
	}

	// Longest product match wins; ties broken lexicographically for
	// determinism.
	var productMatch string
	for name := range knownProducts {
		if !containsPhrase(normalised, name) {
			continue
		}
		if len(name) > len(productMatch) ||
			(len(name) == len(productMatch) && name < productMatch) {
			productMatch = name
		}
	}
	if productMatch != "" {
		f.Product = productMatch
		f.Vendor = knownProducts[productMatch]
	}

	if f.Vendor == "" {
		var vendorMatch string
		for name := range knownVendors {
			if !containsPhrase(normalised, name) {
				continue
			}
			if len(name) > len(vendorMatch) ||
				(len(name) == len(vendorMatch) && name < vendorMatch) {
				vendorMatch = name
			}
		}
		if vendorMatch != "" {
			f.Vendor = knownVendors[vendorMatch]
		}
	}

	return f
}

// expand looks up query terms in the synonym table and returns matched
// expansions ordered by their position in the query, capped at the
// configured maximum. Terms already present in the query are not repeated.
func (p *QueryProcessor) expand(normalised string) []string {
	type match struct {
		pos int
		key string
	}

	var matches []match
	for key := range synonyms {
		if stopWords[key] {
			continue
		}
		if pos := phraseIndex(normalised, key); pos >= 0 {
			matches = append(matches, match{pos: pos, key: key})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].pos != matches[j].pos {
			return matches[i].pos < matches[j].pos
		}
		return matches[i].key < matches[j].key
	})

	var expanded []string
	seen := make(map[string]bool)
	for _, m := range matches {
		for _, term := range synonyms[m.key] {
			if len(expanded) >= p.maxExpansionTerms {
				return expanded
			}
			if seen[term] || containsPhrase(normalised, term) {
				continue
			}
			seen[term] = true
			expanded = append(expanded, term)
		}
	}
	return expanded
}

// normaliseForMatching lowercases the text, strips punctuation (keeping
// hyphens, which appear in product names), and collapses whitespace. Used
// for matching only; the original casing is preserved in Query.RawText.
func normaliseForMatching(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsPhrase reports whether phrase occurs in normalised text on word
// boundaries.
func containsPhrase(normalised, phrase string) bool {
	return phraseIndex(normalised, phrase) >= 0
}

// phraseIndex returns the index of phrase in normalised text, respecting
// word boundaries, or -1.
func phraseIndex(normalised, phrase string) int {
	padded := " " + normalised + " "
	idx := strings.Index(padded, " "+phrase+" ")
	if idx < 0 {
		return -1
	}
	return idx
}
