package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
	"github.com/siemdocs/docqa/internal/logger"
)

// Reranker re-scores search candidates with a cross-encoder relevance
// provider, falling back through the configured provider chain and finally
// to a local heuristic. It never fails the pipeline: given candidates, it
// always returns an ordering.
//
// Provider scores are cached by a stable hash of (normalised query text,
// fragment ID). Fragments are immutable once stored, so cache entries never
// need invalidation; a cache hit skips the network call for that pair.
type Reranker struct {
	providers []driven.RerankProvider
	cache     driven.ScoreCache
	settings  domain.RetrievalSettings
}

// NewReranker creates a reranker. The provider chain is tried in order;
// an empty chain means the heuristic scorer is always used. The cache is
// optional.
func NewReranker(providers []driven.RerankProvider, cache driven.ScoreCache, settings domain.RetrievalSettings) *Reranker {
	if settings.RerankCandidateLimit <= 0 {
		settings.RerankCandidateLimit = domain.DefaultRetrievalSettings().RerankCandidateLimit
	}
	return &Reranker{
		providers: providers,
		cache:     cache,
		settings:  settings,
	}
}

// Rerank assigns each candidate a rerank score and returns a new slice
// reordered by it, descending; ties are broken by fused score, then by
// fragment ID. The input slice is not modified.
//
// Candidate sets larger than the configured limit skip the network
// providers entirely: reranking-service cost must not scale unboundedly
// with result-set size.
func (r *Reranker) Rerank(ctx context.Context, q domain.Query, candidates []domain.ScoredFragment) []domain.ScoredFragment {
	logger.Section("Rerank")
	if len(candidates) == 0 {
		return nil
	}

	var scores []float64
	switch {
	case len(r.providers) == 0:
		logger.Debug("No rerank providers configured, using heuristic scorer")
		scores = r.heuristicScores(q, candidates)

	case len(candidates) > r.settings.RerankCandidateLimit:
		logger.Debug("Candidate set %d exceeds limit %d, using heuristic scorer",
			len(candidates), r.settings.RerankCandidateLimit)
		scores = r.heuristicScores(q, candidates)

	default:
		var ok bool
		scores, ok = r.providerScores(ctx, q, candidates)
		if !ok {
			// All providers failed. Scored entirely by the
			// heuristic rather than mixing cached provider scores
			// with heuristic ones: the two scales are not
			// comparable within one ordering.
			logger.Warn("Rerank degraded: %v", domain.ErrRerankUnavailable)
			scores = r.heuristicScores(q, candidates)
		}
	}

	out := make([]domain.ScoredFragment, len(candidates))
	for i, c := range candidates {
		score := scores[i]
		c.RerankScore = &score
		out[i] = c
	}

	sort.Slice(out, func(i, j int) bool {
		if *out[i].RerankScore != *out[j].RerankScore {
			return *out[i].RerankScore > *out[j].RerankScore
		}
		if out[i].FusedScore != out[j].FusedScore {
			return out[i].FusedScore > out[j].FusedScore
		}
		return out[i].Fragment.ID < out[j].Fragment.ID
	})

	logger.Info("Reranked %d candidates", len(out))
	return out
}

// providerScores resolves one score per candidate from the cache and the
// provider chain. Returns ok=false when uncached pairs remain and every
// provider failed.
func (r *Reranker) providerScores(ctx context.Context, q domain.Query, candidates []domain.ScoredFragment) ([]float64, bool) {
	scores := make([]float64, len(candidates))

	var missIdx []int
	for i, c := range candidates {
		key := rerankCacheKey(q.RawText, c.Fragment.ID)
		if r.cache != nil {
			if score, hit := r.cache.Get(ctx, key); hit {
				scores[i] = score
				continue
			}
		}
		missIdx = append(missIdx, i)
	}

	if len(missIdx) == 0 {
		logger.Debug("All %d rerank scores served from cache", len(candidates))
		return scores, true
	}
	logger.Debug("Rerank cache: %d hits, %d misses", len(candidates)-len(missIdx), len(missIdx))

	texts := make([]string, len(missIdx))
	for i, idx := range missIdx {
		texts[i] = candidates[idx].Fragment.Text
	}

	for _, provider := range r.providers {
		missScores, err := provider.Score(ctx, q.RawText, texts)
		if err != nil {
			logger.Warn("Rerank provider %s failed: %v", provider.Name(), err)
			continue
		}
		if len(missScores) != len(texts) {
			logger.Warn("Rerank provider %s returned %d scores for %d texts",
				provider.Name(), len(missScores), len(texts))
			continue
		}

		for i, idx := range missIdx {
			scores[idx] = missScores[i]
			if r.cache != nil {
				r.cache.Put(ctx, rerankCacheKey(q.RawText, candidates[idx].Fragment.ID), missScores[i])
			}
		}
		return scores, true
	}

	return nil, false
}

// heuristicScores is the always-available local scorer: a blend of the
// fused retrieval score and normalised query/fragment term overlap. Fully
// deterministic, no network dependency, and produces scores in [0,1].
func (r *Reranker) heuristicScores(q domain.Query, candidates []domain.ScoredFragment) []float64 {
	queryTerms := contentTerms(q.RawText)

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = 0.5*c.FusedScore + 0.5*termOverlap(queryTerms, c.Fragment.Text)
	}
	return scores
}

// termOverlap returns the fraction of query terms present in the fragment
// text, in [0,1].
func termOverlap(queryTerms []string, fragmentText string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	fragmentTerms := make(map[string]bool)
	for _, t := range strings.Fields(normaliseForMatching(fragmentText)) {
		fragmentTerms[t] = true
	}

	matched := 0
	for _, t := range queryTerms {
		if fragmentTerms[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

// contentTerms tokenises text for overlap scoring, dropping stop words.
func contentTerms(text string) []string {
	var terms []string
	for _, t := range strings.Fields(normaliseForMatching(text)) {
		if stopWords[t] {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

// rerankCacheKey derives the stable cache key for a (query, fragment)
// pair. The query component is normalised so casing and whitespace
// variants share an entry; the fragment component is its ID, which is
// sufficient because stored fragments are immutable.
func rerankCacheKey(queryText, fragmentID string) string {
	h := sha256.New()
	h.Write([]byte(normaliseForMatching(queryText)))
	h.Write([]byte{0})
	h.Write([]byte(fragmentID))
	return hex.EncodeToString(h.Sum(nil))
}
