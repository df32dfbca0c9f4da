package domain

const unknownDescription = "Unknown"

// ContentKind distinguishes natural-language content from structured or
// code-like content for embedding model routing. The routing rule is a
// shared contract between ingestion and query time: a query must be embedded
// with the same model family as the fragments it is matched against.
type ContentKind string

// Recognised content kinds.
const (
	// ContentText is natural-language documentation and explanatory prose.
	ContentText ContentKind = "text"

	// ContentCode is structured content: parsers, field mappings, rule
	// definitions, and anything dominated by code blocks.
	ContentCode ContentKind = "code"
)

// String returns the string representation.
func (k ContentKind) String() string {
	return string(k)
}

// AIProvider identifies an external AI service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderVoyage is the Voyage AI cloud API (embeddings, reranking).
	AIProviderVoyage AIProvider = "voyage"

	// AIProviderOllama is a local Ollama instance (embeddings).
	AIProviderOllama AIProvider = "ollama"

	// AIProviderJina is the Jina AI cloud API (reranking).
	AIProviderJina AIProvider = "jina"

	// AIProviderAnthropic is the Anthropic cloud API (generation).
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderVoyage, AIProviderOllama, AIProviderJina, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderVoyage:
		return "Voyage AI (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderJina:
		return "Jina AI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// RetrievalSettings holds the tuning knobs of the pipeline. A settings value
// is constructed once at startup and passed to each component's constructor;
// pipeline logic never reads ambient global state.
type RetrievalSettings struct {
	// TopK is the number of fragments to return from search.
	TopK int

	// CandidateMultiplier widens the search when reranking is enabled:
	// the searcher fetches TopK*CandidateMultiplier candidates so the
	// reranker has something to reorder.
	CandidateMultiplier int

	// VectorWeight and KeywordWeight are the fusion weights. They are
	// applied to independently min-max normalised score lists, so any
	// positive pair works; the defaults bias towards vector similarity.
	VectorWeight  float64
	KeywordWeight float64

	// MaxExpansionTerms caps query synonym expansion to bound downstream
	// query cost.
	MaxExpansionTerms int

	// RerankCandidateLimit is the candidate-set size above which the
	// network reranker is skipped in favour of the local heuristic, so
	// reranking cost does not scale unboundedly with result-set size.
	RerankCandidateLimit int

	// MaxPerSource caps how many fragments from one source document may
	// appear in the diversified result.
	MaxPerSource int

	// ContextBudget is the maximum rendered context size in characters.
	ContextBudget int
}

// DefaultRetrievalSettings returns the standard pipeline tuning.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		TopK:                 10,
		CandidateMultiplier:  3,
		VectorWeight:         0.7,
		KeywordWeight:        0.3,
		MaxExpansionTerms:    8,
		RerankCandidateLimit: 50,
		MaxPerSource:         3,
		ContextBudget:        8000,
	}
}

// RetrieveOptions are per-call overrides for a retrieval request. Zero
// values fall back to the configured settings.
type RetrieveOptions struct {
	// Filters constrain the search. These are the caller's explicit
	// filters and take precedence over filters extracted from the query
	// text.
	Filters Filters

	// TopK overrides the number of fragments to retrieve.
	TopK int

	// MaxPerSource overrides the per-source diversity cap.
	MaxPerSource int

	// Budget overrides the context budget in characters.
	Budget int
}
