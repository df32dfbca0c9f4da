package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/sync/singleflight"

	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*CachingEmbedder)(nil)

// CachingEmbedder wraps an EmbeddingService with a vector cache. Concurrent
// misses for the same text are collapsed into one provider call.
type CachingEmbedder struct {
	inner driven.EmbeddingService
	cache driven.VectorCache
	group singleflight.Group
}

// NewCachingEmbedder decorates inner with the given cache.
func NewCachingEmbedder(inner driven.EmbeddingService, cache driven.VectorCache) *CachingEmbedder {
	return &CachingEmbedder{inner: inner, cache: cache}
}

// Embed returns the cached embedding for text, generating and caching it
// on a miss.
func (e *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := e.cacheKey(text)
	if vector, ok := e.cache.Get(ctx, key); ok {
		return vector, nil
	}

	result, err, _ := e.group.Do(key, func() (any, error) {
		vector, err := e.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		e.cache.Put(ctx, key, vector)
		return vector, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// EmbedBatch serves cached texts from the cache and forwards only the
// misses to the provider, preserving input order.
func (e *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missing []string
	var missingAt []int

	for i, text := range texts {
		if vector, ok := e.cache.Get(ctx, e.cacheKey(text)); ok {
			vectors[i] = vector
			continue
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	embedded, err := e.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vector := range embedded {
		i := missingAt[j]
		vectors[i] = vector
		e.cache.Put(ctx, e.cacheKey(texts[i]), vector)
	}
	return vectors, nil
}

// Dimensions reports the wrapped service's vector size.
func (e *CachingEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// ModelName reports the wrapped service's model.
func (e *CachingEmbedder) ModelName() string {
	return e.inner.ModelName()
}

// Ping forwards to the wrapped service.
func (e *CachingEmbedder) Ping(ctx context.Context) error {
	return e.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (e *CachingEmbedder) Close() error {
	return e.inner.Close()
}

// cacheKey covers the model name so caches survive a model switch without
// serving vectors from the wrong space.
func (e *CachingEmbedder) cacheKey(text string) string {
	h := sha256.New()
	h.Write([]byte(e.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
