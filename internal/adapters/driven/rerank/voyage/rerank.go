// Package voyage provides a rerank provider adapter using the Voyage AI
// rerank API, a cross-encoder that scores (query, document) pairs jointly.
package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.RerankProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.voyageai.com/v1"
	DefaultModel   = "rerank-2"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Voyage rerank provider.
type Config struct {
	// APIKey is the Voyage AI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.voyageai.com/v1).
	BaseURL string

	// Model is the rerank model to use (default: rerank-2).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Provider scores query/document pairs using the Voyage rerank endpoint.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// rerankRequest is the Voyage /rerank request format.
type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// rerankResponse is the Voyage /rerank response format.
type rerankResponse struct {
	Data []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// NewProvider creates a new Voyage rerank provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("voyage rerank: API key is required")
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

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Score returns one relevance score per text, aligned by position.
func (p *Provider) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(rerankRequest{
		Model:     p.model,
		Query:     query,
		Documents: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rerankResp rerankResponse
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if rerankResp.Detail != "" {
			return nil, fmt.Errorf("voyage rerank error (status %d): %s", resp.StatusCode, rerankResp.Detail)
		}
		return nil, fmt.Errorf("voyage rerank error (status %d): %s", resp.StatusCode, string(body))
	}

	// The API returns results ordered by relevance; realign by index so
	// scores match the input positions.
	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, data := range rerankResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("voyage rerank: index %d out of range", data.Index)
		}
		scores[data.Index] = data.RelevanceScore
		seen[data.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("voyage rerank: no score for document %d", i)
		}
	}
	return scores, nil
}

// Name identifies the provider for logging.
func (p *Provider) Name() string {
	return "voyage/" + p.model
}
