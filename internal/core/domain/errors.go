package domain

import "errors"

// Domain errors represent the normalised failure taxonomy of the pipeline.
// Provider-specific details (status codes, provider names) are logged where
// they occur and never surfaced through these errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the configured embedding
	// provider(s) failed or are unreachable. Recovered inside the
	// searcher by degrading to keyword-only search.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankUnavailable indicates all configured reranking providers
	// failed. Always recovered locally by the heuristic scorer; never
	// surfaced to callers of the pipeline.
	ErrRerankUnavailable = errors.New("rerank service unavailable")

	// ErrSearchUnavailable indicates both the vector and keyword search
	// mechanisms failed. This is the only fatal condition in the search
	// stage and is surfaced to the caller as retriable.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrLLMUnavailable indicates the generation service is not
	// configured or unreachable. Retrieval still works without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrDimensionMismatch indicates the query embedding model produces
	// vectors of a different dimension than the stored index. Similarity
	// over mixed dimensions is meaningless, so construction fails fast
	// rather than silently returning garbage scores.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
