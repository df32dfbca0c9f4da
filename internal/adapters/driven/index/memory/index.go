// Package memory provides an in-memory fragment store and search indexes.
// Used for tests and for small corpora where persistence is not needed.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

// Ensure Index implements the interfaces.
var (
	_ driven.FragmentStore = (*Index)(nil)
	_ driven.VectorIndex   = (*Index)(nil)
	_ driven.KeywordIndex  = (*Index)(nil)
)

// Index is an in-memory implementation of the fragment store, the vector
// index, and the keyword index in one structure. Reads take a shared lock;
// the retrieval pipeline never writes.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	fragments  map[string]domain.Fragment
	vectors    map[string][]float32
}

// NewIndex creates an empty in-memory index for vectors of the given
// dimension.
func NewIndex(dimensions int) *Index {
	return &Index{
		dimensions: dimensions,
		fragments:  make(map[string]domain.Fragment),
		vectors:    make(map[string][]float32),
	}
}

// Add stores a fragment with its embedding. The vector may be nil for
// fragments that should only be found by keyword search.
func (ix *Index) Add(fragment domain.Fragment, vector []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.fragments[fragment.ID] = fragment
	if vector != nil {
		ix.vectors[fragment.ID] = vector
	}
}

// Get retrieves a fragment by ID.
func (ix *Index) Get(_ context.Context, id string) (*domain.Fragment, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	fragment, ok := ix.fragments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &fragment, nil
}

// SimilaritySearch finds the k nearest fragments to the query vector by
// cosine similarity, restricted to fragments matching the filters.
func (ix *Index) SimilaritySearch(_ context.Context, vector []float32, k int, filters domain.Filters) ([]driven.VectorHit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(ix.vectors))
	for id, stored := range ix.vectors {
		fragment, ok := ix.fragments[id]
		if !ok || !fragment.Matches(filters) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			FragmentID: id,
			Similarity: cosineSimilarity(vector, stored),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].FragmentID < hits[j].FragmentID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// LexicalSearch scores fragments by query term frequency, restricted to
// fragments matching the filters. The scoring is a plain term-count
// measure; the bleve adapter provides real BM25 for production corpora.
func (ix *Index) LexicalSearch(_ context.Context, text string, k int, filters domain.Filters) ([]driven.KeywordHit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	terms := tokenise(text)
	if len(terms) == 0 {
		return nil, nil
	}

	hits := make([]driven.KeywordHit, 0)
	for id, fragment := range ix.fragments {
		if !fragment.Matches(filters) {
			continue
		}
		score := lexicalScore(terms, fragment.Text)
		if score == 0 {
			continue
		}
		hits = append(hits, driven.KeywordHit{FragmentID: id, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FragmentID < hits[j].FragmentID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Dimensions returns the vector size this index was built with.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// Close releases resources.
func (ix *Index) Close() error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// lexicalScore counts occurrences of query terms in the fragment text.
func lexicalScore(queryTerms []string, fragmentText string) float64 {
	counts := make(map[string]int)
	for _, t := range tokenise(fragmentText) {
		counts[t]++
	}
	var score float64
	for _, t := range queryTerms {
		score += float64(counts[t])
	}
	return score
}

// tokenise lowercases text and splits it into alphanumeric tokens.
func tokenise(text string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
