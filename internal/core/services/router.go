package services

import (
	"context"
	"strings"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
	"github.com/siemdocs/docqa/internal/logger"
)

// EmbeddingRouter selects between a natural-language embedding model and a
// structured-content model. The selection rule is a shared contract between
// ingestion and query time: a query routed to one model is only comparable
// against fragments that were embedded with the same model, so both sides
// call the same routing functions.
//
// The code service is optional; when nil everything routes to the text
// service.
type EmbeddingRouter struct {
	text driven.EmbeddingService
	code driven.EmbeddingService
}

// NewEmbeddingRouter creates a router over the given services. The text
// service is required; code may be nil. When both are present their
// dimensions must agree, since all vectors share one index
// (domain.ErrDimensionMismatch otherwise).
func NewEmbeddingRouter(text, code driven.EmbeddingService) (*EmbeddingRouter, error) {
	if text == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if code != nil && code.Dimensions() != text.Dimensions() {
		return nil, domain.ErrDimensionMismatch
	}
	return &EmbeddingRouter{text: text, code: code}, nil
}

// Dimensions returns the common vector size of the routed models.
func (r *EmbeddingRouter) Dimensions() int {
	return r.text.Dimensions()
}

// KindForQuery returns the content kind a query routes to. Technical
// queries reference structured artefacts (parsers, field mappings, event
// formats) and route to the code model; everything else is prose.
func KindForQuery(q domain.Query) domain.ContentKind {
	if q.Type == domain.QueryTechnical {
		return domain.ContentCode
	}
	return domain.ContentText
}

// KindForFragment returns the content kind a fragment routes to. Parser
// documentation and fragments dominated by code blocks use the code model.
// This must match whatever rule the ingestion pipeline applied when the
// fragment was embedded.
func KindForFragment(f domain.Fragment) domain.ContentKind {
	if f.Metadata.DocumentType == domain.DocTypeParser {
		return domain.ContentCode
	}
	if strings.Contains(f.Text, "```") {
		return domain.ContentCode
	}
	return domain.ContentText
}

// ServiceFor returns the embedding service for a content kind.
func (r *EmbeddingRouter) ServiceFor(kind domain.ContentKind) driven.EmbeddingService {
	if kind == domain.ContentCode && r.code != nil {
		return r.code
	}
	return r.text
}

// EmbedQuery embeds a query with the model its type routes to.
func (r *EmbeddingRouter) EmbedQuery(ctx context.Context, q domain.Query) ([]float32, error) {
	kind := KindForQuery(q)
	svc := r.ServiceFor(kind)
	logger.Debug("Embedding query with %s model (%s)", kind, svc.ModelName())
	return svc.Embed(ctx, q.RawText)
}
