// Package driving provides interfaces exposed to external actors
// (primary/inbound ports): the CLI and any API layer built on top.
package driving

import (
	"context"

	"github.com/siemdocs/docqa/internal/core/domain"
)

// RetrievalService runs the full retrieval pipeline for a query: query
// processing, hybrid search, reranking, diversification, and context
// assembly.
type RetrievalService interface {
	// Retrieve returns an assembled context block for the query. A query
	// that matches nothing is not an error: the returned block is empty
	// with Truncated=false. Retrieve fails only when both search
	// mechanisms are unavailable (domain.ErrSearchUnavailable).
	Retrieve(ctx context.Context, rawQuery string, opts domain.RetrieveOptions) (domain.ContextBlock, error)
}

// AnswerService produces a cited answer by running retrieval and handing
// the assembled context to a language model.
type AnswerService interface {
	// Answer generates an answer for the question. Returns
	// domain.ErrLLMUnavailable when no generation service is configured.
	Answer(ctx context.Context, question string, opts domain.RetrieveOptions) (domain.Answer, error)
}
