// Package voyage provides an embedding service adapter using the Voyage AI
// API. Voyage publishes paired models for prose and structured content
// (voyage-3-large / voyage-code-3), which is what the embedding router
// expects on each side.
package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/siemdocs/docqa/internal/core/ports/driven"
	"github.com/siemdocs/docqa/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.voyageai.com/v1"
	DefaultModel     = "voyage-3-large"
	DefaultTimeout   = 60 * time.Second
	DefaultBatchSize = 8

	// defaultRetryMax bounds retries on transient API failures.
	defaultRetryMax = 3

	// batchInterval paces batch requests to stay under the API rate
	// limit.
	batchInterval = 500 * time.Millisecond
)

// Model dimensions for Voyage embedding models.
var modelDimensions = map[string]int{
	"voyage-3-large": 1024,
	"voyage-3":       1024,
	"voyage-3-lite":  512,
	"voyage-code-3":  1024,
}

// Config holds configuration for the Voyage embedding service.
type Config struct {
	// APIKey is the Voyage AI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.voyageai.com/v1).
	BaseURL string

	// Model is the embedding model to use (default: voyage-3-large).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// BatchSize is the number of texts per API call (default: 8).
	BatchSize int
}

// EmbeddingService generates embeddings using the Voyage AI API.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	model      string
	batchSize  int
	dimensions int
}

// embeddingRequest is the Voyage API request format.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse is the Voyage API response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Detail string `json:"detail,omitempty"`
}

// NewEmbeddingService creates a new Voyage embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("voyage: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	dimensions, ok := modelDimensions[cfg.Model]
	if !ok {
		dimensions = 1024
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Every(batchInterval), 1),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		batchSize:  cfg.BatchSize,
		dimensions: dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("voyage: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts. Requests are split
// into batches, rate limited between batches, and retried with exponential
// backoff on transient failures.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("voyage: %w", err)
		}

		batch, err := s.embedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// embedWithRetry sends one batch, retrying with exponential backoff.
func (s *EmbeddingService) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= defaultRetryMax; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			logger.Warn("Voyage request failed, retrying in %s: %v", backoff, lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("voyage: %w", ctx.Err())
			}
		}

		embeddings, err := s.embedOnce(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("voyage: %d retries exhausted: %w", defaultRetryMax, lastErr)
}

func (s *EmbeddingService) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{
		Model: s.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if embedResp.Detail != "" {
			return nil, fmt.Errorf("voyage error (status %d): %s", resp.StatusCode, embedResp.Detail)
		}
		return nil, fmt.Errorf("voyage error (status %d): %s", resp.StatusCode, string(body))
	}

	// Order by index; the API may return batch items out of order.
	embeddings := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("voyage: embedding index %d out of range", data.Index)
		}
		embedding := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			embedding[i] = float32(v)
		}
		embeddings[data.Index] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by embedding a short probe text.
// Voyage has no models listing endpoint, so this costs one minimal request.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.embedOnce(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("voyage: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
