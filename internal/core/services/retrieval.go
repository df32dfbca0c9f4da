package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driving"
	"github.com/siemdocs/docqa/internal/logger"
)

// Ensure Retrieval implements the interface.
var _ driving.RetrievalService = (*Retrieval)(nil)

// Retrieval orchestrates the pipeline for one request: query processing,
// hybrid search, reranking, diversification, and context assembly. The
// stages run sequentially; each consumes the previous stage's complete
// output. Retrieval itself holds no per-request state, so one instance
// serves concurrent requests.
type Retrieval struct {
	processor *QueryProcessor
	searcher  *SearchService
	reranker  *Reranker
	settings  domain.RetrievalSettings
}

// NewRetrieval wires the pipeline stages together. It fails fast with
// domain.ErrDimensionMismatch when the query embedding model's output
// dimension does not match the vector index, rather than letting
// similarity search silently return meaningless scores.
func NewRetrieval(
	processor *QueryProcessor,
	searcher *SearchService,
	reranker *Reranker,
	settings domain.RetrievalSettings,
) (*Retrieval, error) {
	if processor == nil || searcher == nil || reranker == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := searcher.CheckDimensions(); err != nil {
		return nil, err
	}
	return &Retrieval{
		processor: processor,
		searcher:  searcher,
		reranker:  reranker,
		settings:  settings,
	}, nil
}

// Retrieve runs the full pipeline and returns the assembled context block.
// An empty result set is not an error: the block comes back empty with no
// citations and Truncated=false. The only error surfaced is
// domain.ErrSearchUnavailable, when both search mechanisms fail.
func (r *Retrieval) Retrieve(ctx context.Context, rawQuery string, opts domain.RetrieveOptions) (domain.ContextBlock, error) {
	if strings.TrimSpace(rawQuery) == "" {
		logger.Debug("Empty query, returning empty context")
		return domain.ContextBlock{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = r.settings.TopK
	}
	maxPerSource := opts.MaxPerSource
	if maxPerSource <= 0 {
		maxPerSource = r.settings.MaxPerSource
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = r.settings.ContextBudget
	}

	query := r.processor.Process(rawQuery, opts.Filters)

	// Fetch a wider candidate set than topK so the reranker has
	// something to reorder.
	candidateLimit := topK * r.candidateMultiplier()
	candidates, err := r.searcher.Search(ctx, query, candidateLimit)
	if err != nil {
		return domain.ContextBlock{}, fmt.Errorf("retrieve: %w", err)
	}
	if len(candidates) == 0 {
		logger.Info("No candidates after filtering, returning empty context")
		return domain.ContextBlock{}, nil
	}

	ranked := r.reranker.Rerank(ctx, query, candidates)
	diversified := Diversify(ranked, maxPerSource, topK)
	return Assemble(diversified, budget), nil
}

func (r *Retrieval) candidateMultiplier() int {
	if r.settings.CandidateMultiplier > 0 {
		return r.settings.CandidateMultiplier
	}
	return domain.DefaultRetrievalSettings().CandidateMultiplier
}
