package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreLRU(t *testing.T) {
	c := NewScoreLRU(2)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Put(ctx, "a", 0.5)
	score, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 0.5, score)

	// Filling past capacity evicts the least recently used entry.
	c.Put(ctx, "b", 0.6)
	c.Put(ctx, "c", 0.7)
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestVectorLRU_CopiesOnReadAndWrite(t *testing.T) {
	c := NewVectorLRU(8)
	ctx := context.Background()

	original := []float32{1, 2, 3}
	c.Put(ctx, "k", original)
	original[0] = 99

	first, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, first)

	first[1] = 99
	second, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, second)
}

// countingEmbedder records Embed/EmbedBatch traffic for cache assertions.
type countingEmbedder struct {
	mu         sync.Mutex
	embedCalls int
	batchTexts [][]string
	err        error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embedCalls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batchTexts = append(c.batchTexts, texts)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int            { return 2 }
func (c *countingEmbedder) ModelName() string          { return "counting-model" }
func (c *countingEmbedder) Ping(context.Context) error { return nil }
func (c *countingEmbedder) Close() error               { return nil }

func TestCachingEmbedder_Embed(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachingEmbedder(inner, NewVectorLRU(8))
	ctx := context.Background()

	first, err := e.Embed(ctx, "password reset")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "password reset")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.embedCalls)
}

func TestCachingEmbedder_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("quota exceeded")}
	e := NewCachingEmbedder(inner, NewVectorLRU(8))
	ctx := context.Background()

	_, err := e.Embed(ctx, "text")
	require.Error(t, err)

	inner.err = nil
	_, err = e.Embed(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.embedCalls)
}

func TestCachingEmbedder_ConcurrentMissesCollapse(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachingEmbedder(inner, NewVectorLRU(8))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Embed(context.Background(), "same text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Concurrent misses share one in-flight call; some goroutines may
	// start after it completes and hit the cache instead.
	assert.LessOrEqual(t, inner.embedCalls, 2)
	assert.GreaterOrEqual(t, inner.embedCalls, 1)
}

func TestCachingEmbedder_EmbedBatchForwardsOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachingEmbedder(inner, NewVectorLRU(8))
	ctx := context.Background()

	_, err := e.Embed(ctx, "cached")
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(ctx, []string{"fresh one", "cached", "fresh two"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	require.Len(t, inner.batchTexts, 1)
	assert.Equal(t, []string{"fresh one", "fresh two"}, inner.batchTexts[0])

	for i, text := range []string{"fresh one", "cached", "fresh two"} {
		assert.Equal(t, float32(len(text)), vectors[i][0])
	}
}

func TestCachingEmbedder_EmbedBatchAllCached(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachingEmbedder(inner, NewVectorLRU(8))
	ctx := context.Background()

	_, err := e.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)

	_, err = e.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, inner.batchTexts, 1)
}
