package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
	"github.com/siemdocs/docqa/internal/logger"
)

// SearchService executes hybrid (vector + keyword) search. The two
// mechanisms run in parallel; one failing degrades the search to the other
// side's results, and only both failing surfaces
// domain.ErrSearchUnavailable.
type SearchService struct {
	router       *EmbeddingRouter
	vectorIndex  driven.VectorIndex
	keywordIndex driven.KeywordIndex
	store        driven.FragmentStore
	settings     domain.RetrievalSettings
}

// NewSearchService creates a hybrid searcher. Either index may be nil, in
// which case that mechanism is treated as permanently failed; at least one
// must be present for searches to succeed.
func NewSearchService(
	router *EmbeddingRouter,
	vectorIndex driven.VectorIndex,
	keywordIndex driven.KeywordIndex,
	store driven.FragmentStore,
	settings domain.RetrievalSettings,
) *SearchService {
	return &SearchService{
		router:       router,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		store:        store,
		settings:     settings,
	}
}

// CheckDimensions verifies the routed embedding models produce vectors of
// the dimension the vector index was built with. Returns
// domain.ErrDimensionMismatch on disagreement. A searcher without a vector
// side has nothing to check.
func (s *SearchService) CheckDimensions() error {
	if s.router == nil || s.vectorIndex == nil {
		return nil
	}
	if s.router.Dimensions() != s.vectorIndex.Dimensions() {
		return fmt.Errorf("%w: query model produces %dd, index stores %dd",
			domain.ErrDimensionMismatch, s.router.Dimensions(), s.vectorIndex.Dimensions())
	}
	return nil
}

// Search returns up to limit fragments ordered by fused score descending,
// ties broken by fragment ID. Scores from each mechanism are min-max
// normalised over the returned set before fusion; a fragment found by only
// one mechanism scores zero on the missing component. No two results share
// a fragment ID.
func (s *SearchService) Search(ctx context.Context, q domain.Query, limit int) ([]domain.ScoredFragment, error) {
	logger.Section("Hybrid Search")
	if limit <= 0 {
		limit = s.settings.TopK
	}
	logger.Debug("Query: %q, limit=%d, filters=%+v", q.RawText, limit, q.Filters)

	var (
		vectorHits  []driven.VectorHit
		keywordHits []driven.KeywordHit
		vectorErr   error
		keywordErr  error
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		vectorHits, vectorErr = s.vectorSearch(ctx, q, limit)
	}()

	go func() {
		defer wg.Done()
		keywordHits, keywordErr = s.keywordSearch(ctx, q, limit)
	}()

	wg.Wait()

	// One mechanism failing degrades to the other; both failing is the
	// only fatal condition in this stage.
	if vectorErr != nil && keywordErr != nil {
		logger.Warn("Both search mechanisms failed: vector=%v keyword=%v", vectorErr, keywordErr)
		return nil, fmt.Errorf("%w: vector and keyword search both failed", domain.ErrSearchUnavailable)
	}
	if vectorErr != nil {
		logger.Warn("Vector search failed, continuing keyword-only: %v", vectorErr)
	}
	if keywordErr != nil {
		logger.Warn("Keyword search failed, continuing vector-only: %v", keywordErr)
	}

	merged := s.fuse(vectorHits, keywordHits)
	logger.Debug("Fused %d vector + %d keyword hits into %d candidates",
		len(vectorHits), len(keywordHits), len(merged))

	results, err := s.hydrate(ctx, merged)
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		return results[i].Fragment.ID < results[j].Fragment.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	logger.Info("Search returned %d candidates", len(results))
	return results, nil
}

// vectorSearch embeds the query with the routed model and queries the
// vector index. An embedding failure counts as a vector-side failure and
// degrades the hybrid search to keyword-only.
func (s *SearchService) vectorSearch(ctx context.Context, q domain.Query, limit int) ([]driven.VectorHit, error) {
	if s.vectorIndex == nil {
		return nil, domain.ErrSearchUnavailable
	}
	if s.router == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vector, err := s.router.EmbedQuery(ctx, q)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.vectorIndex.SimilaritySearch(ctx, vector, limit, q.Filters)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))
	return hits, nil
}

// keywordSearch queries the lexical index with the expanded query text.
func (s *SearchService) keywordSearch(ctx context.Context, q domain.Query, limit int) ([]driven.KeywordHit, error) {
	if s.keywordIndex == nil {
		return nil, domain.ErrSearchUnavailable
	}

	hits, err := s.keywordIndex.LexicalSearch(ctx, q.SearchText(), limit, q.Filters)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	logger.Debug("Keyword search: %d hits", len(hits))
	return hits, nil
}

// fuse min-max normalises each list independently, then combines the two
// scores per fragment with the configured weights. A fragment present in
// both lists is merged, not double counted.
func (s *SearchService) fuse(vectorHits []driven.VectorHit, keywordHits []driven.KeywordHit) map[string]domain.ScoredFragment {
	wv, wk := s.weights()

	merged := make(map[string]domain.ScoredFragment)

	vectorScores := make([]float64, len(vectorHits))
	for i, h := range vectorHits {
		vectorScores[i] = h.Similarity
	}
	for i, norm := range minMaxNormalise(vectorScores) {
		id := vectorHits[i].FragmentID
		sf := merged[id]
		sf.Fragment.ID = id
		if norm > sf.VectorScore {
			sf.VectorScore = norm
		}
		merged[id] = sf
	}

	keywordScores := make([]float64, len(keywordHits))
	for i, h := range keywordHits {
		keywordScores[i] = h.Score
	}
	for i, norm := range minMaxNormalise(keywordScores) {
		id := keywordHits[i].FragmentID
		sf := merged[id]
		sf.Fragment.ID = id
		if norm > sf.KeywordScore {
			sf.KeywordScore = norm
		}
		merged[id] = sf
	}

	for id, sf := range merged {
		sf.FusedScore = wv*sf.VectorScore + wk*sf.KeywordScore
		merged[id] = sf
	}
	return merged
}

// weights returns the fusion weights scaled to sum to one, keeping fused
// scores inside [0,1] whatever the configured pair.
func (s *SearchService) weights() (float64, float64) {
	wv, wk := s.settings.VectorWeight, s.settings.KeywordWeight
	if wv <= 0 && wk <= 0 {
		def := domain.DefaultRetrievalSettings()
		wv, wk = def.VectorWeight, def.KeywordWeight
	}
	total := wv + wk
	return wv / total, wk / total
}

// minMaxNormalise scales scores to [0,1] over the given set. A set with a
// single distinct value maps to 1.0 throughout: within one returned list,
// equal raw scores mean equal (maximal) relevance rank.
func minMaxNormalise(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	minScore, maxScore := scores[0], scores[0]
	for _, v := range scores[1:] {
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
	}

	out := make([]float64, len(scores))
	if maxScore == minScore {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}
	for i, v := range scores {
		out[i] = (v - minScore) / (maxScore - minScore)
	}
	return out
}

// hydrate resolves fragment IDs to stored fragments. Fragments deleted
// since indexing are skipped; a store failure means no candidate can be
// materialised, which is fatal for the request like any total search
// failure.
func (s *SearchService) hydrate(ctx context.Context, merged map[string]domain.ScoredFragment) ([]domain.ScoredFragment, error) {
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]domain.ScoredFragment, 0, len(ids))
	for _, id := range ids {
		fragment, err := s.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Fragment %s no longer stored, skipping", id)
				continue
			}
			logger.Warn("Fragment store failure: %v", err)
			return nil, fmt.Errorf("%w: fragment store: %w", domain.ErrSearchUnavailable, err)
		}
		sf := merged[id]
		sf.Fragment = *fragment
		results = append(results, sf)
	}
	return results, nil
}
