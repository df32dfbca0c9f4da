package domain

// ScoredFragment pairs a fragment with the scores assigned by the pipeline.
// Each stage derives a new slice rather than mutating its input, so reruns
// with different parameters are side-effect free.
type ScoredFragment struct {
	// Fragment is the underlying stored fragment (read-only).
	Fragment Fragment

	// VectorScore is the similarity from the vector search, normalised
	// to [0,1] over the returned set. Zero when the fragment was only
	// found by the keyword side.
	VectorScore float64

	// KeywordScore is the lexical match score, same normalisation.
	// Zero when the fragment was only found by the vector side.
	KeywordScore float64

	// FusedScore is the weighted combination of the two components.
	FusedScore float64

	// RerankScore is assigned by the reranker. When non-nil it supersedes
	// FusedScore for ordering; stages never mix the two orderings.
	RerankScore *float64
}

// OrderingScore returns the score that governs this fragment's position:
// the rerank score when present, the fused score otherwise.
func (s ScoredFragment) OrderingScore() float64 {
	if s.RerankScore != nil {
		return *s.RerankScore
	}
	return s.FusedScore
}

// Citation maps an inline marker back to the fragment it references.
type Citation struct {
	// Marker is the 1-based inline reference number, assigned in
	// inclusion order.
	Marker int

	// SourcePath is the source document path.
	SourcePath string

	// Title is the source document title, when known.
	Title string

	// Vendor is the product vendor, when known.
	Vendor string

	// Product is the product name, when known.
	Product string
}

// ContextBlock is the assembled retrieval output, ready to hand to a
// generation step.
type ContextBlock struct {
	// Fragments are the fragments actually included, in citation order.
	Fragments []ScoredFragment

	// Citations map markers to attribution metadata, ordered by marker.
	Citations []Citation

	// Text is the rendered context. Rendering is deterministic: the same
	// fragments in the same order produce byte-identical text.
	Text string

	// Truncated is true when candidates beyond the budget were dropped.
	Truncated bool
}

// IsEmpty returns true when no fragments were assembled.
func (c ContextBlock) IsEmpty() bool {
	return len(c.Fragments) == 0
}

// Answer is the generated response for a question, with its supporting
// context and token accounting from the language model.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Context is the assembled evidence the answer was generated from.
	Context ContextBlock

	// InputTokens and OutputTokens are the model's reported usage.
	InputTokens  int
	OutputTokens int

	// Model is the generating model's name.
	Model string
}
