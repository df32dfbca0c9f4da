package driven

import "context"

// ScoreCache stores rerank scores keyed by a stable content hash. Entries
// are write-once: a key, once written, is only ever re-derived identically,
// because fragments are immutable and the key covers the normalised query
// text and the fragment ID. Implementations must be safe for concurrent use;
// duplicate computation on a racing miss is acceptable, stale data is not.
//
// Get and Put absorb backend failures (a shared cache being down degrades
// to recomputation, never to an error).
type ScoreCache interface {
	// Get returns the cached score for key, if present.
	Get(ctx context.Context, key string) (float64, bool)

	// Put stores the score for key.
	Put(ctx context.Context, key string, score float64)
}

// VectorCache stores query embeddings keyed by a stable content hash, under
// the same write-once discipline as ScoreCache.
type VectorCache interface {
	// Get returns the cached vector for key, if present.
	Get(ctx context.Context, key string) ([]float32, bool)

	// Put stores the vector for key.
	Put(ctx context.Context, key string, vector []float32)
}
