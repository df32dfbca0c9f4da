package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemdocs/docqa/internal/core/domain"
)

func seed(ix *Index) {
	ix.Add(domain.Fragment{
		ID:   "ms-1",
		Text: "Event ID 4724 password reset attempt",
		Metadata: domain.Metadata{
			DocumentType:    domain.DocTypeDataSource,
			Vendor:          "Microsoft",
			Product:         "Active Directory",
			MITRETechniques: []string{"T1098"},
		},
	}, []float32{1, 0, 0})
	ix.Add(domain.Fragment{
		ID:   "ms-2",
		Text: "Account lockout policy configuration",
		Metadata: domain.Metadata{
			DocumentType: domain.DocTypeOverview,
			Vendor:       "Microsoft",
			Product:      "Active Directory",
		},
	}, []float32{0, 1, 0})
	ix.Add(domain.Fragment{
		ID:   "cs-1",
		Text: "Falcon sensor event stream",
		Metadata: domain.Metadata{
			DocumentType: domain.DocTypeDataSource,
			Vendor:       "CrowdStrike",
			Product:      "Falcon",
		},
	}, []float32{0, 0, 1})
}

func TestIndex_Get(t *testing.T) {
	ix := NewIndex(3)
	seed(ix)

	fragment, err := ix.Get(context.Background(), "ms-1")
	require.NoError(t, err)
	assert.Equal(t, "ms-1", fragment.ID)

	_, err = ix.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_SimilaritySearch(t *testing.T) {
	ix := NewIndex(3)
	seed(ix)

	hits, err := ix.SimilaritySearch(context.Background(), []float32{1, 0.2, 0}, 10, domain.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "ms-1", hits[0].FragmentID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestIndex_SimilaritySearchFiltered(t *testing.T) {
	ix := NewIndex(3)
	seed(ix)
	ctx := context.Background()

	hits, err := ix.SimilaritySearch(ctx, []float32{1, 1, 1}, 10, domain.Filters{Vendor: "crowdstrike"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "cs-1", hits[0].FragmentID)

	hits, err = ix.SimilaritySearch(ctx, []float32{1, 1, 1}, 10, domain.Filters{Technique: "T1098"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ms-1", hits[0].FragmentID)

	hits, err = ix.SimilaritySearch(ctx, []float32{1, 1, 1}, 10, domain.Filters{
		Vendor:       "Microsoft",
		DocumentType: domain.DocTypeOverview,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ms-2", hits[0].FragmentID)
}

func TestIndex_SimilaritySearchTopK(t *testing.T) {
	ix := NewIndex(3)
	seed(ix)

	hits, err := ix.SimilaritySearch(context.Background(), []float32{1, 1, 1}, 2, domain.Filters{})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_LexicalSearch(t *testing.T) {
	ix := NewIndex(3)
	seed(ix)

	hits, err := ix.LexicalSearch(context.Background(), "password reset", 10, domain.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ms-1", hits[0].FragmentID)
	assert.Positive(t, hits[0].Score)
}

func TestIndex_LexicalSearchEmptyQuery(t *testing.T) {
	ix := NewIndex(3)
	seed(ix)

	hits, err := ix.LexicalSearch(context.Background(), "  !!  ", 10, domain.Filters{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_KeywordOnlyFragment(t *testing.T) {
	ix := NewIndex(3)
	ix.Add(domain.Fragment{ID: "kw", Text: "syslog forwarding setup"}, nil)

	hits, err := ix.LexicalSearch(context.Background(), "syslog", 10, domain.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	vhits, err := ix.SimilaritySearch(context.Background(), []float32{1, 0, 0}, 10, domain.Filters{})
	require.NoError(t, err)
	assert.Empty(t, vhits)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
