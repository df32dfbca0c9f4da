package ingest

import (
	"context"
	"fmt"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/services"
	"github.com/siemdocs/docqa/internal/logger"
)

// embedBatchSize bounds how many fragment texts go to the embedding
// provider in one request.
const embedBatchSize = 32

// FragmentWriter persists a fragment with its embedding. The sqlite store
// satisfies this.
type FragmentWriter interface {
	Put(ctx context.Context, fragment domain.Fragment, vector []float32) (string, error)
}

// KeywordWriter adds a fragment to the keyword index. The bleve adapter
// satisfies this.
type KeywordWriter interface {
	Add(fragment domain.Fragment) error
}

// Indexer embeds fragments and writes them to both indexes. Fragments are
// routed to the text or code embedding model by the same rule the query
// path uses.
type Indexer struct {
	router   *services.EmbeddingRouter
	store    FragmentWriter
	keywords KeywordWriter
}

// NewIndexer creates an indexer over the given sinks.
func NewIndexer(router *services.EmbeddingRouter, store FragmentWriter, keywords KeywordWriter) *Indexer {
	return &Indexer{router: router, store: store, keywords: keywords}
}

// IndexAll embeds and indexes all fragments, batching embedding calls per
// content kind. Returns the number of fragments indexed.
func (ix *Indexer) IndexAll(ctx context.Context, fragments []domain.Fragment) (int, error) {
	byKind := map[domain.ContentKind][]int{}
	for i, fragment := range fragments {
		kind := services.KindForFragment(fragment)
		byKind[kind] = append(byKind[kind], i)
	}

	vectors := make([][]float32, len(fragments))
	for kind, positions := range byKind {
		svc := ix.router.ServiceFor(kind)
		logger.Info("Embedding %d fragments with %s model (%s)", len(positions), kind, svc.ModelName())

		for batchStart := 0; batchStart < len(positions); batchStart += embedBatchSize {
			batchEnd := batchStart + embedBatchSize
			if batchEnd > len(positions) {
				batchEnd = len(positions)
			}
			batch := positions[batchStart:batchEnd]

			texts := make([]string, len(batch))
			for j, i := range batch {
				texts[j] = fragments[i].Text
			}

			embedded, err := svc.EmbedBatch(ctx, texts)
			if err != nil {
				return 0, fmt.Errorf("embedding fragments: %w", err)
			}
			if len(embedded) != len(batch) {
				return 0, fmt.Errorf("%w: embedding service returned %d vectors for %d texts",
					domain.ErrEmbeddingUnavailable, len(embedded), len(batch))
			}
			for j, i := range batch {
				vectors[i] = embedded[j]
			}
		}
	}

	indexed := 0
	for i, fragment := range fragments {
		id, err := ix.store.Put(ctx, fragment, vectors[i])
		if err != nil {
			return indexed, fmt.Errorf("storing fragment: %w", err)
		}
		fragment.ID = id
		if err := ix.keywords.Add(fragment); err != nil {
			return indexed, fmt.Errorf("indexing fragment keywords: %w", err)
		}
		indexed++
	}
	return indexed, nil
}
