// Package cache provides in-process and shared implementations of the
// score and embedding caches used by the retrieval pipeline.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

var (
	_ driven.ScoreCache  = (*ScoreLRU)(nil)
	_ driven.VectorCache = (*VectorLRU)(nil)
)

// defaultCacheSize bounds the in-process caches when no size is given.
const defaultCacheSize = 10000

// ScoreLRU is an in-process LRU rerank-score cache.
type ScoreLRU struct {
	cache *lru.Cache[string, float64]
}

// NewScoreLRU creates a score cache holding at most size entries.
func NewScoreLRU(size int) *ScoreLRU {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, float64](size)
	if err != nil {
		cache, _ = lru.New[string, float64](defaultCacheSize)
	}
	return &ScoreLRU{cache: cache}
}

// Get returns the cached score for key, if present.
func (c *ScoreLRU) Get(_ context.Context, key string) (float64, bool) {
	return c.cache.Get(key)
}

// Put stores the score for key.
func (c *ScoreLRU) Put(_ context.Context, key string, score float64) {
	c.cache.Add(key, score)
}

// Len returns the current number of cached scores.
func (c *ScoreLRU) Len() int {
	return c.cache.Len()
}

// VectorLRU is an in-process LRU embedding cache.
type VectorLRU struct {
	cache *lru.Cache[string, []float32]
}

// NewVectorLRU creates a vector cache holding at most size entries.
func NewVectorLRU(size int) *VectorLRU {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		cache, _ = lru.New[string, []float32](defaultCacheSize)
	}
	return &VectorLRU{cache: cache}
}

// Get returns a copy of the cached vector for key, if present. Copying
// prevents caller mutations from polluting the cache.
func (c *VectorLRU) Get(_ context.Context, key string) ([]float32, bool) {
	vector, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vector))
	copy(out, vector)
	return out, true
}

// Put stores a copy of the vector for key.
func (c *VectorLRU) Put(_ context.Context, key string, vector []float32) {
	stored := make([]float32, len(vector))
	copy(stored, vector)
	c.cache.Add(key, stored)
}

// Len returns the current number of cached vectors.
func (c *VectorLRU) Len() int {
	return c.cache.Len()
}
