package driven

import "context"

// RerankProvider scores (query, fragment text) pairs with a cross-encoder
// style relevance model reached over a network API. Providers are arranged
// in a priority chain by the reranker service; a provider failure moves on
// to the next provider and finally to the local heuristic scorer, so the
// pipeline never depends on any provider being reachable.
type RerankProvider interface {
	// Score returns one relevance score per text, aligned by position.
	// Given N texts it returns exactly N scores or an error.
	Score(ctx context.Context, query string, texts []string) ([]float64, error)

	// Name identifies the provider for logging.
	Name() string
}
