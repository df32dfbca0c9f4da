package driven

import (
	"context"

	"github.com/siemdocs/docqa/internal/core/domain"
)

// VectorIndex provides semantic similarity search over stored fragment
// embeddings. All vectors in one index share a single dimension; mixing
// dimensions makes similarity search meaningless, so the pipeline verifies
// Dimensions() against the query embedding model at construction.
type VectorIndex interface {
	// SimilaritySearch finds the k nearest fragments to the query vector.
	// Filters are pushed into the index query rather than applied to the
	// returned set, so k is honoured after filtering.
	SimilaritySearch(ctx context.Context, vector []float32, k int, filters domain.Filters) ([]VectorHit, error)

	// Dimensions returns the vector size this index was built with.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// FragmentID identifies the matched fragment.
	FragmentID string

	// Similarity is the cosine similarity score. Raw index scores are
	// normalised to [0,1] at the searcher boundary.
	Similarity float64
}

// FragmentStore resolves fragment IDs to stored fragments. Stored fragments
// are immutable; the store is read-only to the retrieval pipeline.
type FragmentStore interface {
	// Get retrieves a fragment by ID. Returns domain.ErrNotFound when the
	// fragment does not exist.
	Get(ctx context.Context, id string) (*domain.Fragment, error)
}
