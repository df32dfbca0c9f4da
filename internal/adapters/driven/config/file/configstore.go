// Package file loads and saves docqa configuration as a TOML file in the
// user's home directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/siemdocs/docqa/internal/core/domain"
)

// Config is the on-disk configuration shape.
type Config struct {
	Data      DataConfig      `toml:"data"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Rerank    []RerankConfig  `toml:"rerank"`
	LLM       LLMConfig       `toml:"llm"`
	Cache     CacheConfig     `toml:"cache"`
}

// DataConfig locates the on-disk indexes.
type DataConfig struct {
	// Dir holds the fragment database and the keyword index.
	// Defaults to ~/.docqa/data.
	Dir string `toml:"dir"`
}

// RetrievalConfig holds pipeline tuning overrides. Zero values fall back
// to the defaults.
type RetrievalConfig struct {
	TopK                 int     `toml:"top_k"`
	CandidateMultiplier  int     `toml:"candidate_multiplier"`
	VectorWeight         float64 `toml:"vector_weight"`
	KeywordWeight        float64 `toml:"keyword_weight"`
	MaxExpansionTerms    int     `toml:"max_expansion_terms"`
	RerankCandidateLimit int     `toml:"rerank_candidate_limit"`
	MaxPerSource         int     `toml:"max_per_source"`
	ContextBudget        int     `toml:"context_budget"`
}

// EmbeddingConfig selects the embedding provider and its model pair.
type EmbeddingConfig struct {
	Provider  string `toml:"provider"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	TextModel string `toml:"text_model"`
	CodeModel string `toml:"code_model"`
}

// RerankConfig is one entry in the rerank provider chain, tried in file
// order.
type RerankConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`
}

// LLMConfig selects the answer-generation provider.
type LLMConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`
}

// CacheConfig configures the optional shared rerank-score cache.
type CacheConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// DefaultPath returns the standard config file location,
// ~/.docqa/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docqa", "config.toml"), nil
}

// Load reads the config file at path. If path is empty the default
// location is used. A missing file yields the zero Config without error,
// so a fresh install works with environment defaults.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return config, nil
}

// Save writes the config to path, creating the directory if needed. If
// path is empty the default location is used. The file may hold API keys,
// so permissions are restricted.
func Save(config Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// RetrievalSettings merges the file's overrides onto the defaults.
func (c Config) RetrievalSettings() domain.RetrievalSettings {
	settings := domain.DefaultRetrievalSettings()
	if c.Retrieval.TopK > 0 {
		settings.TopK = c.Retrieval.TopK
	}
	if c.Retrieval.CandidateMultiplier > 0 {
		settings.CandidateMultiplier = c.Retrieval.CandidateMultiplier
	}
	if c.Retrieval.VectorWeight > 0 {
		settings.VectorWeight = c.Retrieval.VectorWeight
	}
	if c.Retrieval.KeywordWeight > 0 {
		settings.KeywordWeight = c.Retrieval.KeywordWeight
	}
	if c.Retrieval.MaxExpansionTerms > 0 {
		settings.MaxExpansionTerms = c.Retrieval.MaxExpansionTerms
	}
	if c.Retrieval.RerankCandidateLimit > 0 {
		settings.RerankCandidateLimit = c.Retrieval.RerankCandidateLimit
	}
	if c.Retrieval.MaxPerSource > 0 {
		settings.MaxPerSource = c.Retrieval.MaxPerSource
	}
	if c.Retrieval.ContextBudget > 0 {
		settings.ContextBudget = c.Retrieval.ContextBudget
	}
	return settings
}

// EmbeddingSettings converts the embedding section to domain settings,
// falling back to the DOCQA_VOYAGE_API_KEY environment variable for the
// key so config files can omit secrets.
func (c Config) EmbeddingSettings() domain.EmbeddingSettings {
	apiKey := c.Embedding.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("DOCQA_VOYAGE_API_KEY")
	}
	settings := domain.EmbeddingSettings{
		Provider:  domain.AIProvider(c.Embedding.Provider),
		APIKey:    apiKey,
		BaseURL:   c.Embedding.BaseURL,
		TextModel: c.Embedding.TextModel,
		CodeModel: c.Embedding.CodeModel,
	}
	if settings.Provider == "" {
		settings.Provider = domain.AIProviderVoyage
	}
	if settings.TextModel == "" {
		settings.TextModel = "voyage-3-large"
	}
	if settings.CodeModel == "" && settings.Provider == domain.AIProviderVoyage {
		settings.CodeModel = "voyage-code-3"
	}
	return settings
}

// RerankSettings converts the rerank chain to domain settings, preserving
// file order.
func (c Config) RerankSettings() []domain.RerankProviderSettings {
	chain := make([]domain.RerankProviderSettings, 0, len(c.Rerank))
	for _, entry := range c.Rerank {
		apiKey := entry.APIKey
		if apiKey == "" {
			switch domain.AIProvider(entry.Provider) {
			case domain.AIProviderVoyage:
				apiKey = os.Getenv("DOCQA_VOYAGE_API_KEY")
			case domain.AIProviderJina:
				apiKey = os.Getenv("DOCQA_JINA_API_KEY")
			}
		}
		chain = append(chain, domain.RerankProviderSettings{
			Provider: domain.AIProvider(entry.Provider),
			APIKey:   apiKey,
			BaseURL:  entry.BaseURL,
			Model:    entry.Model,
		})
	}
	return chain
}

// LLMSettings converts the llm section to domain settings, falling back to
// DOCQA_ANTHROPIC_API_KEY for the key.
func (c Config) LLMSettings() domain.LLMSettings {
	apiKey := c.LLM.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("DOCQA_ANTHROPIC_API_KEY")
	}
	settings := domain.LLMSettings{
		Provider: domain.AIProvider(c.LLM.Provider),
		APIKey:   apiKey,
		BaseURL:  c.LLM.BaseURL,
		Model:    c.LLM.Model,
	}
	if settings.Provider == "" {
		settings.Provider = domain.AIProviderAnthropic
	}
	return settings
}
