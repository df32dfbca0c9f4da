// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/siemdocs/docqa/internal/adapters/driven/embedding/ollama"
	voyageembed "github.com/siemdocs/docqa/internal/adapters/driven/embedding/voyage"
	anthropicllm "github.com/siemdocs/docqa/internal/adapters/driven/llm/anthropic"
	jinararank "github.com/siemdocs/docqa/internal/adapters/driven/rerank/jina"
	voyagererank "github.com/siemdocs/docqa/internal/adapters/driven/rerank/voyage"
	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// EmbeddingPair holds the text and code embedding services the router
// needs. With a provider that has no separate code model both fields hold
// the same service.
type EmbeddingPair struct {
	Text driven.EmbeddingService
	Code driven.EmbeddingService
}

// Close releases both services. Closing a shared service twice is safe for
// all adapters in this package.
func (p EmbeddingPair) Close() {
	if p.Text != nil {
		p.Text.Close()
	}
	if p.Code != nil && p.Code != p.Text {
		p.Code.Close()
	}
}

// CreateEmbeddingServices creates the text/code embedding pair for the
// configured provider.
func CreateEmbeddingServices(settings domain.EmbeddingSettings) (EmbeddingPair, error) {
	if !settings.IsConfigured() {
		return EmbeddingPair{}, fmt.Errorf("%w: embedding provider not configured", domain.ErrEmbeddingUnavailable)
	}

	switch settings.Provider {
	case domain.AIProviderVoyage:
		return createVoyagePair(settings)

	case domain.AIProviderOllama:
		svc := ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.TextModel,
		})
		return EmbeddingPair{Text: svc, Code: svc}, nil

	default:
		return EmbeddingPair{}, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbeddingServices creates the embedding pair and
// validates connectivity with a lightweight request.
func CreateAndValidateEmbeddingServices(settings domain.EmbeddingSettings) (EmbeddingPair, error) {
	pair, err := CreateEmbeddingServices(settings)
	if err != nil {
		return EmbeddingPair{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := pair.Text.Ping(ctx); err != nil {
		pair.Close()
		return EmbeddingPair{}, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return pair, nil
}

func createVoyagePair(settings domain.EmbeddingSettings) (EmbeddingPair, error) {
	text, err := voyageembed.NewEmbeddingService(voyageembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.TextModel,
	})
	if err != nil {
		return EmbeddingPair{}, fmt.Errorf("creating text embedding service: %w", err)
	}
	if settings.CodeModel == "" || settings.CodeModel == settings.TextModel {
		return EmbeddingPair{Text: text, Code: text}, nil
	}
	code, err := voyageembed.NewEmbeddingService(voyageembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.CodeModel,
	})
	if err != nil {
		text.Close()
		return EmbeddingPair{}, fmt.Errorf("creating code embedding service: %w", err)
	}
	return EmbeddingPair{Text: text, Code: code}, nil
}

// CreateRerankChain creates rerank providers in the configured priority
// order, skipping entries that are not configured. An empty chain is valid:
// the reranker falls back to its local heuristic.
func CreateRerankChain(chain []domain.RerankProviderSettings) ([]driven.RerankProvider, error) {
	providers := make([]driven.RerankProvider, 0, len(chain))
	for _, settings := range chain {
		if !settings.IsConfigured() {
			continue
		}
		provider, err := createRerankProvider(settings)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	return providers, nil
}

func createRerankProvider(settings domain.RerankProviderSettings) (driven.RerankProvider, error) {
	switch settings.Provider {
	case domain.AIProviderVoyage:
		return voyagererank.NewProvider(voyagererank.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderJina:
		return jinararank.NewProvider(jinararank.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported rerank provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the answer-generation service. Returns nil
// without error when no provider is configured; answering is optional.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateAndValidateLLMService creates the LLM service and validates
// connectivity. Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return svc, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}
