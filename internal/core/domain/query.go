package domain

import "strings"

// QueryType classifies the intent of a user query. The type drives both
// embedding model routing and answer prompting, and is inferred by the
// query processor rather than supplied by the caller.
type QueryType string

// Recognised query types, in tie-break priority order (highest first).
const (
	// QueryTroubleshooting asks how to configure or fix something.
	QueryTroubleshooting QueryType = "troubleshooting"

	// QueryTechnical references concrete technical artefacts such as
	// event IDs, parsers, field names, or MITRE technique IDs.
	QueryTechnical QueryType = "technical"

	// QueryTerminology asks what a product or term is.
	QueryTerminology QueryType = "terminology"

	// QueryConceptual asks about concepts, comparisons, or rationale.
	QueryConceptual QueryType = "conceptual"

	// QueryGeneral is the fallback when no rule matches.
	QueryGeneral QueryType = "general"
)

// String returns the string representation.
func (t QueryType) String() string {
	return string(t)
}

// Filters are structured constraints applied to a search. Empty fields are
// not applied. Filters may be supplied explicitly by the caller or extracted
// from query text; explicit values win on conflict.
type Filters struct {
	// Vendor restricts results to a product vendor.
	Vendor string

	// Product restricts results to a specific product.
	Product string

	// DocumentType restricts results to one document type.
	DocumentType DocumentType

	// Technique restricts results to fragments tagged with a MITRE
	// technique ID.
	Technique string
}

// IsZero returns true if no filter field is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Merge overlays f on top of extracted, returning the combined filters.
// Fields set in f (the explicit filters) always win; extracted values fill
// only the gaps.
func (f Filters) Merge(extracted Filters) Filters {
	out := f
	if out.Vendor == "" {
		out.Vendor = extracted.Vendor
	}
	if out.Product == "" {
		out.Product = extracted.Product
	}
	if out.DocumentType == "" {
		out.DocumentType = extracted.DocumentType
	}
	if out.Technique == "" {
		out.Technique = extracted.Technique
	}
	return out
}

// Query is a processed user request, ready for search.
type Query struct {
	// RawText is the user's original text, casing preserved.
	RawText string

	// Type is the inferred query classification.
	Type QueryType

	// Filters are the merged explicit and extracted constraints.
	Filters Filters

	// ExpandedTerms are synonym and related terms added for recall,
	// ordered by match position. The raw text itself is always the
	// highest-weighted search input and is not repeated here.
	ExpandedTerms []string
}

// SearchText returns the text handed to the keyword index: the raw query
// followed by any expansion terms.
func (q Query) SearchText() string {
	if len(q.ExpandedTerms) == 0 {
		return q.RawText
	}
	return q.RawText + " " + strings.Join(q.ExpandedTerms, " ")
}

// equalFold is a case-insensitive comparison for metadata matching.
func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
