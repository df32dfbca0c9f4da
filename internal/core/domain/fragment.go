package domain

import "time"

// DocumentType classifies a fragment of security-product documentation.
type DocumentType string

// Recognised document types.
const (
	// DocTypeOverview is high-level product or feature documentation.
	DocTypeOverview DocumentType = "overview"

	// DocTypeUseCase describes a detection or response use case.
	DocTypeUseCase DocumentType = "use_case"

	// DocTypeDataSource documents a log/data source and its fields.
	DocTypeDataSource DocumentType = "data_source"

	// DocTypeParser documents a log parser and its extraction format.
	DocTypeParser DocumentType = "parser"

	// DocTypeRule documents a detection rule or model.
	DocTypeRule DocumentType = "rule"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocTypeOverview, DocTypeUseCase, DocTypeDataSource, DocTypeParser, DocTypeRule:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Metadata carries the attribution and filtering attributes of a fragment.
// DocumentType is always present; every other field is optional, with the
// zero value meaning "absent". Filters never match on absent values, so the
// zero value is safe to treat as missing.
type Metadata struct {
	// DocumentType classifies the fragment (required).
	DocumentType DocumentType

	// Vendor is the security product vendor, e.g. "Microsoft".
	Vendor string

	// Product is the specific product, e.g. "Active Directory".
	Product string

	// MITRETechniques lists ATT&CK technique IDs the fragment covers,
	// e.g. "T1110" or "T1110.003".
	MITRETechniques []string

	// SourcePath is the path of the source document the fragment came from.
	SourcePath string

	// Title is the human-readable title of the source document.
	Title string

	// LastUpdated is when the source document was last modified.
	LastUpdated time.Time
}

// HasTechnique reports whether the fragment is tagged with the technique ID.
func (m Metadata) HasTechnique(id string) bool {
	for _, t := range m.MITRETechniques {
		if t == id {
			return true
		}
	}
	return false
}

// Fragment is a stored chunk of source documentation.
// Fragments are produced by the ingestion pipeline and are immutable once
// stored; the retrieval pipeline only ever reads them. Pipeline stages wrap
// fragments in derived structures rather than mutating them.
type Fragment struct {
	// ID is the stable unique identifier.
	ID string

	// Text is the fragment's content. Never empty for a stored fragment.
	Text string

	// Metadata carries attribution and filter attributes.
	Metadata Metadata
}

// Matches reports whether the fragment satisfies the given filters.
// Empty filter fields are not applied; a fragment with an absent metadata
// value never matches a non-empty filter on that key.
func (f Fragment) Matches(filters Filters) bool {
	if filters.Vendor != "" && !equalFold(f.Metadata.Vendor, filters.Vendor) {
		return false
	}
	if filters.Product != "" && !equalFold(f.Metadata.Product, filters.Product) {
		return false
	}
	if filters.DocumentType != "" && f.Metadata.DocumentType != filters.DocumentType {
		return false
	}
	if filters.Technique != "" && !f.Metadata.HasTechnique(filters.Technique) {
		return false
	}
	return true
}
