package services

import (
	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/logger"
)

// Diversify walks the ranked list in order and admits each fragment unless
// its source document is already represented maxPerSource times, stopping
// once limit fragments are admitted. It is a stable, order-preserving
// filter: the output is a subsequence of the input, never a reordering.
// This stops one verbose source document from monopolising the evidence
// base.
//
// When sources are too concentrated to fill limit, the admitted fragments
// are returned as-is; excluded fragments are never used as padding.
func Diversify(ranked []domain.ScoredFragment, maxPerSource, limit int) []domain.ScoredFragment {
	if maxPerSource <= 0 {
		maxPerSource = domain.DefaultRetrievalSettings().MaxPerSource
	}
	if limit <= 0 {
		limit = domain.DefaultRetrievalSettings().TopK
	}

	perSource := make(map[string]int)
	admitted := make([]domain.ScoredFragment, 0, limit)

	for _, sf := range ranked {
		if len(admitted) >= limit {
			break
		}
		source := sourceKey(sf.Fragment)
		if perSource[source] >= maxPerSource {
			logger.Debug("Skipping %s: source %q already at cap %d",
				sf.Fragment.ID, source, maxPerSource)
			continue
		}
		perSource[source]++
		admitted = append(admitted, sf)
	}

	logger.Debug("Diversified %d candidates to %d (cap %d per source)",
		len(ranked), len(admitted), maxPerSource)
	return admitted
}

// sourceKey identifies the source document for diversity accounting.
// Fragments without a source path count as their own source.
func sourceKey(f domain.Fragment) string {
	if f.Metadata.SourcePath != "" {
		return f.Metadata.SourcePath
	}
	return f.ID
}
