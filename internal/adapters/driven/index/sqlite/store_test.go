package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemdocs/docqa/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), 3)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	updated := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	fragment := domain.Fragment{
		Text: "Event ID 4724 marks a password reset attempt.",
		Metadata: domain.Metadata{
			DocumentType:    domain.DocTypeDataSource,
			Vendor:          "Microsoft",
			Product:         "Active Directory",
			MITRETechniques: []string{"T1098", "T1110.003"},
			SourcePath:      "docs/ad/events.md",
			Title:           "AD Account Events",
			LastUpdated:     updated,
		},
	}

	id, err := store.Put(ctx, fragment, []float32{0.1, 0.2, 0.3})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fragment.Text, got.Text)
	assert.Equal(t, "Microsoft", got.Metadata.Vendor)
	assert.Equal(t, "Active Directory", got.Metadata.Product)
	assert.Equal(t, domain.DocTypeDataSource, got.Metadata.DocumentType)
	assert.Equal(t, []string{"T1098", "T1110.003"}, got.Metadata.MITRETechniques)
	assert.True(t, got.Metadata.LastUpdated.Equal(updated))
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PutUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, domain.Fragment{ID: "f1", Text: "first"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "f1", id)

	_, err = store.Put(ctx, domain.Fragment{ID: "f1", Text: "second"}, nil)
	require.NoError(t, err)

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Text)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_PutDimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Put(context.Background(), domain.Fragment{Text: "x"}, []float32{1, 2})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, domain.Fragment{Text: "x"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SimilaritySearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	put := func(id, vendor, technique string, vector []float32) {
		meta := domain.Metadata{Vendor: vendor}
		if technique != "" {
			meta.MITRETechniques = []string{technique}
		}
		_, err := store.Put(ctx, domain.Fragment{ID: id, Text: "text " + id, Metadata: meta}, vector)
		require.NoError(t, err)
	}

	put("ms-1", "Microsoft", "T1098", []float32{1, 0, 0})
	put("ms-2", "Microsoft", "", []float32{0, 1, 0})
	put("cs-1", "CrowdStrike", "", []float32{0, 0, 1})

	hits, err := store.SimilaritySearch(ctx, []float32{1, 0.1, 0}, 10, domain.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "ms-1", hits[0].FragmentID)

	// Vendor filtering is case-insensitive.
	hits, err = store.SimilaritySearch(ctx, []float32{1, 1, 1}, 10, domain.Filters{Vendor: "microsoft"})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = store.SimilaritySearch(ctx, []float32{1, 1, 1}, 10, domain.Filters{Technique: "t1098"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ms-1", hits[0].FragmentID)

	// Fragments without embeddings never appear in vector results.
	put("no-vec", "Microsoft", "", nil)
	hits, err = store.SimilaritySearch(ctx, []float32{1, 1, 1}, 10, domain.Filters{})
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	vector := []float32{0.5, -1.25, 3e7}
	assert.Equal(t, vector, bytesToFloat32Slice(float32SliceToBytes(vector)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
