package domain

// EmbeddingSettings configures the embedding provider. The text and code
// models must come from the same provider and share a vector dimension;
// NewEmbeddingRouter enforces the dimension part.
type EmbeddingSettings struct {
	Provider  AIProvider
	APIKey    string
	BaseURL   string
	TextModel string
	CodeModel string
}

// IsConfigured returns true if the settings name a usable provider.
func (s EmbeddingSettings) IsConfigured() bool {
	if !s.Provider.IsValid() || s.TextModel == "" {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// RerankProviderSettings configures one provider in the rerank chain.
type RerankProviderSettings struct {
	Provider AIProvider
	APIKey   string
	BaseURL  string
	Model    string
}

// IsConfigured returns true if the settings name a usable provider.
func (s RerankProviderSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the answer-generation provider.
type LLMSettings struct {
	Provider AIProvider
	APIKey   string
	BaseURL  string
	Model    string
}

// IsConfigured returns true if the settings name a usable provider.
func (s LLMSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}
