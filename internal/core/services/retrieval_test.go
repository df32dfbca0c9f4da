package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemdocs/docqa/internal/adapters/driven/index/memory"
	"github.com/siemdocs/docqa/internal/core/domain"
)

// vocabEmbedding embeds text as term counts over a fixed vocabulary, so
// texts sharing terms get similar vectors. Deterministic and offline.
type vocabEmbedding struct {
	vocab []string
}

func newVocabEmbedding() *vocabEmbedding {
	return &vocabEmbedding{vocab: []string{
		"event", "id", "password", "reset", "account", "lockout",
		"firewall", "parser", "detection", "hunting",
	}}
}

func (v *vocabEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	lowered := strings.ToLower(text)
	vector := make([]float32, len(v.vocab))
	for i, term := range v.vocab {
		vector[i] = float32(strings.Count(lowered, term))
	}
	return vector, nil
}

func (v *vocabEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := v.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vector
	}
	return out, nil
}

func (v *vocabEmbedding) Dimensions() int            { return len(v.vocab) }
func (v *vocabEmbedding) ModelName() string          { return "vocab-test" }
func (v *vocabEmbedding) Ping(context.Context) error { return nil }
func (v *vocabEmbedding) Close() error               { return nil }

func seedCorpus(t *testing.T, embedder *vocabEmbedding) *memory.Index {
	t.Helper()
	index := memory.NewIndex(embedder.Dimensions())

	fragments := []domain.Fragment{
		{
			ID:   "ad-4724",
			Text: "Event ID 4724 is generated when an account password reset is attempted by an administrator.",
			Metadata: domain.Metadata{
				DocumentType: domain.DocTypeDataSource,
				Vendor:       "Microsoft",
				Product:      "Active Directory",
				Title:        "AD Account Management Events",
				SourcePath:   "docs/ad/account-events.md",
			},
		},
		{
			ID:   "ad-4740",
			Text: "Event ID 4740 indicates an account lockout after repeated failed password attempts.",
			Metadata: domain.Metadata{
				DocumentType: domain.DocTypeDataSource,
				Vendor:       "Microsoft",
				Product:      "Active Directory",
				Title:        "AD Account Management Events",
				SourcePath:   "docs/ad/account-events.md",
			},
		},
		{
			ID:   "asa-fw",
			Text: "Configure the firewall access control lists on the management interface.",
			Metadata: domain.Metadata{
				DocumentType: domain.DocTypeOverview,
				Vendor:       "Cisco",
				Product:      "ASA",
				Title:        "ASA Configuration",
				SourcePath:   "docs/cisco/asa.md",
			},
		},
		{
			ID:   "hunt-1",
			Text: "Threat hunting uses detection content across all log sources.",
			Metadata: domain.Metadata{
				DocumentType: domain.DocTypeUseCase,
				Title:        "Hunting Guide",
				SourcePath:   "docs/hunting.md",
			},
		},
	}

	ctx := context.Background()
	for _, f := range fragments {
		vector, err := embedder.Embed(ctx, f.Text)
		require.NoError(t, err)
		index.Add(f, vector)
	}
	return index
}

func newTestPipeline(t *testing.T) (*Retrieval, *memory.Index) {
	t.Helper()
	embedder := newVocabEmbedding()
	index := seedCorpus(t, embedder)

	router, err := NewEmbeddingRouter(embedder, nil)
	require.NoError(t, err)

	settings := domain.DefaultRetrievalSettings()
	searcher := NewSearchService(router, index, index, index, settings)
	reranker := NewReranker(nil, nil, settings)
	processor := NewQueryProcessor(settings)

	pipeline, err := NewRetrieval(processor, searcher, reranker, settings)
	require.NoError(t, err)
	return pipeline, index
}

func TestRetrieval_EndToEnd(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	block, err := pipeline.Retrieve(context.Background(),
		"What event ID is used for password reset in Active Directory?",
		domain.RetrieveOptions{})
	require.NoError(t, err)
	require.False(t, block.IsEmpty())

	assert.Equal(t, "ad-4724", block.Fragments[0].Fragment.ID)
	assert.Contains(t, block.Text, "4724")
	assert.Contains(t, block.Text, "[1] AD Account Management Events (Microsoft Active Directory)")
	require.NotEmpty(t, block.Citations)
	assert.Equal(t, "docs/ad/account-events.md", block.Citations[0].SourcePath)
}

func TestRetrieval_Deterministic(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := context.Background()
	const query = "account lockout event"

	first, err := pipeline.Retrieve(ctx, query, domain.RetrieveOptions{})
	require.NoError(t, err)
	second, err := pipeline.Retrieve(ctx, query, domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
}

func TestRetrieval_ExplicitFilters(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	block, err := pipeline.Retrieve(context.Background(), "firewall configuration",
		domain.RetrieveOptions{Filters: domain.Filters{Vendor: "Cisco"}})
	require.NoError(t, err)
	require.False(t, block.IsEmpty())
	for _, sf := range block.Fragments {
		assert.Equal(t, "Cisco", sf.Fragment.Metadata.Vendor)
	}
}

func TestRetrieval_FilterExcludesEverything(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	block, err := pipeline.Retrieve(context.Background(), "password reset",
		domain.RetrieveOptions{Filters: domain.Filters{Vendor: "Palo Alto Networks"}})
	require.NoError(t, err)
	assert.True(t, block.IsEmpty())
	assert.False(t, block.Truncated)
}

func TestRetrieval_EmptyQuery(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	block, err := pipeline.Retrieve(context.Background(), "   ", domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.True(t, block.IsEmpty())
}

func TestRetrieval_EmptyCorpus(t *testing.T) {
	embedder := newVocabEmbedding()
	index := memory.NewIndex(embedder.Dimensions())

	router, err := NewEmbeddingRouter(embedder, nil)
	require.NoError(t, err)

	settings := domain.DefaultRetrievalSettings()
	pipeline, err := NewRetrieval(
		NewQueryProcessor(settings),
		NewSearchService(router, index, index, index, settings),
		NewReranker(nil, nil, settings),
		settings,
	)
	require.NoError(t, err)

	block, err := pipeline.Retrieve(context.Background(), "anything at all", domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.True(t, block.IsEmpty())
}

func TestRetrieval_DimensionMismatchAtConstruction(t *testing.T) {
	embedder := newVocabEmbedding()
	index := memory.NewIndex(embedder.Dimensions() + 3)

	router, err := NewEmbeddingRouter(embedder, nil)
	require.NoError(t, err)

	settings := domain.DefaultRetrievalSettings()
	_, err = NewRetrieval(
		NewQueryProcessor(settings),
		NewSearchService(router, index, index, index, settings),
		NewReranker(nil, nil, settings),
		settings,
	)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRetrieval_TopKRespected(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	block, err := pipeline.Retrieve(context.Background(), "event password account",
		domain.RetrieveOptions{TopK: 1})
	require.NoError(t, err)
	assert.Len(t, block.Fragments, 1)
}
