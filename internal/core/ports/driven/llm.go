package driven

import "context"

// LLMService turns an assembled context block plus the user's question into
// prose. This is the downstream consumer of the retrieval pipeline; the
// pipeline itself never calls it. Optional: when nil, the CLI returns the
// assembled context without generation.
type LLMService interface {
	// Generate produces a completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (Completion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// System is an optional system prompt.
	System string
}

// Completion is the result of a generation call.
type Completion struct {
	// Text is the generated text.
	Text string

	// InputTokens and OutputTokens are the provider's reported usage.
	InputTokens  int
	OutputTokens int
}
