package driven

import (
	"context"

	"github.com/siemdocs/docqa/internal/core/domain"
)

// KeywordIndex provides lexical (BM25-style) search over fragment text.
type KeywordIndex interface {
	// LexicalSearch performs a keyword search and returns matching
	// fragment IDs with scores. Filters are pushed into the index query.
	LexicalSearch(ctx context.Context, text string, k int, filters domain.Filters) ([]KeywordHit, error)

	// Close releases resources.
	Close() error
}

// KeywordHit is a lexical search result.
type KeywordHit struct {
	// FragmentID identifies the matched fragment.
	FragmentID string

	// Score is the relevance score (e.g. BM25). Raw index scores are
	// normalised to [0,1] at the searcher boundary.
	Score float64
}
