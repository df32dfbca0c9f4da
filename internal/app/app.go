// Package app wires configuration into a running retrieval pipeline. The
// CLI builds an App per invocation; tests build their own pipelines from
// the pieces directly.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/siemdocs/docqa/internal/adapters/driven/ai"
	"github.com/siemdocs/docqa/internal/adapters/driven/cache"
	"github.com/siemdocs/docqa/internal/adapters/driven/config/file"
	bleveindex "github.com/siemdocs/docqa/internal/adapters/driven/index/bleve"
	"github.com/siemdocs/docqa/internal/adapters/driven/index/sqlite"
	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
	"github.com/siemdocs/docqa/internal/core/ports/driving"
	"github.com/siemdocs/docqa/internal/core/services"
	"github.com/siemdocs/docqa/internal/ingest"
	"github.com/siemdocs/docqa/internal/logger"
)

// vectorCacheSize bounds the in-process query-embedding cache.
const vectorCacheSize = 4096

// scoreCacheSize bounds the in-process rerank-score cache.
const scoreCacheSize = 20000

// redisDialTimeout bounds the connection check for the shared cache.
const redisDialTimeout = 3 * time.Second

// App holds the wired pipeline and the resources behind it.
type App struct {
	Config    file.Config
	Settings  domain.RetrievalSettings
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService // nil when no LLM is configured
	Router    *services.EmbeddingRouter
	Store     *sqlite.Store
	Keywords  *bleveindex.Index

	embeddings ai.EmbeddingPair
	scoreCache interface{ Close() error }
}

// Build loads configuration and constructs the full pipeline. The
// embedding provider is created and pinged; the LLM is optional and only
// validated when configured.
func Build(configPath string) (*App, error) {
	config, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}
	settings := config.RetrievalSettings()

	embeddings, err := ai.CreateAndValidateEmbeddingServices(config.EmbeddingSettings())
	if err != nil {
		return nil, err
	}

	app := &App{Config: config, Settings: settings, embeddings: embeddings}
	if err := app.wire(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire() error {
	vectorCache := cache.NewVectorLRU(vectorCacheSize)
	text := cache.NewCachingEmbedder(a.embeddings.Text, vectorCache)
	code := cache.NewCachingEmbedder(a.embeddings.Code, vectorCache)

	router, err := services.NewEmbeddingRouter(text, code)
	if err != nil {
		return err
	}
	a.Router = router

	dataDir, err := a.dataDir()
	if err != nil {
		return err
	}
	store, err := sqlite.NewStore(dataDir, router.Dimensions())
	if err != nil {
		return err
	}
	a.Store = store

	keywords, err := bleveindex.Open(filepath.Join(dataDir, "keywords.bleve"))
	if err != nil {
		return err
	}
	a.Keywords = keywords

	scoreCache := a.buildScoreCache()

	rerankChain, err := ai.CreateRerankChain(a.Config.RerankSettings())
	if err != nil {
		return err
	}

	processor := services.NewQueryProcessor(a.Settings)
	searcher := services.NewSearchService(router, store, keywords, store, a.Settings)
	reranker := services.NewReranker(rerankChain, scoreCache, a.Settings)

	retrieval, err := services.NewRetrieval(processor, searcher, reranker, a.Settings)
	if err != nil {
		return err
	}
	a.Retrieval = retrieval

	llm, err := ai.CreateAndValidateLLMService(a.Config.LLMSettings())
	if err != nil {
		logger.Warn("Answer generation unavailable: %v", err)
	} else if llm != nil {
		a.Answer = services.NewAnswerer(retrieval, llm)
	}
	return nil
}

// buildScoreCache prefers the shared Redis cache when configured, falling
// back to the in-process LRU if it is unreachable.
func (a *App) buildScoreCache() driven.ScoreCache {
	if a.Config.Cache.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		defer cancel()
		shared, err := cache.NewRedisScores(ctx, cache.RedisConfig{
			Addr:     a.Config.Cache.RedisAddr,
			Password: a.Config.Cache.RedisPassword,
			DB:       a.Config.Cache.RedisDB,
		})
		if err == nil {
			a.scoreCache = shared
			return shared
		}
		logger.Warn("Shared score cache unreachable, using in-process cache: %v", err)
	}
	return cache.NewScoreLRU(scoreCacheSize)
}

// Indexer returns an indexer writing into this app's indexes.
func (a *App) Indexer() *ingest.Indexer {
	return ingest.NewIndexer(a.Router, a.Store, a.Keywords)
}

// Close releases all resources.
func (a *App) Close() {
	if a.Keywords != nil {
		a.Keywords.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.scoreCache != nil {
		a.scoreCache.Close()
	}
	a.embeddings.Close()
}

func (a *App) dataDir() (string, error) {
	if a.Config.Data.Dir != "" {
		return a.Config.Data.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docqa", "data"), nil
}
