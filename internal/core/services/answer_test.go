package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
)

// mockRetrieval returns a canned context block.
type mockRetrieval struct {
	block domain.ContextBlock
	err   error
}

func (m *mockRetrieval) Retrieve(context.Context, string, domain.RetrieveOptions) (domain.ContextBlock, error) {
	return m.block, m.err
}

// mockLLM records the prompt it was given.
type mockLLM struct {
	prompt string
	opts   driven.GenerateOptions
	err    error
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (driven.Completion, error) {
	m.prompt = prompt
	m.opts = opts
	if m.err != nil {
		return driven.Completion{}, m.err
	}
	return driven.Completion{Text: "Event ID 4724 [1].", InputTokens: 120, OutputTokens: 9}, nil
}

func (m *mockLLM) ModelName() string          { return "mock-model" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func TestAnswerer_Answer(t *testing.T) {
	block := domain.ContextBlock{
		Fragments: []domain.ScoredFragment{{Fragment: domain.Fragment{ID: "f1"}}},
		Text:      "[1] AD Events\nEvent ID 4724 is logged on password reset.",
	}
	llm := &mockLLM{}
	a := NewAnswerer(&mockRetrieval{block: block}, llm)

	answer, err := a.Answer(context.Background(), "What event ID signals a password reset?", domain.RetrieveOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Event ID 4724 [1].", answer.Text)
	assert.Equal(t, "mock-model", answer.Model)
	assert.Equal(t, 120, answer.InputTokens)
	assert.Equal(t, block.Text, answer.Context.Text)

	assert.True(t, strings.HasPrefix(llm.prompt, "Context:\n\n[1] AD Events"))
	assert.Contains(t, llm.prompt, "Question: What event ID signals a password reset?")
	assert.NotEmpty(t, llm.opts.System)
}

func TestAnswerer_EmptyContextStillAnswered(t *testing.T) {
	llm := &mockLLM{}
	a := NewAnswerer(&mockRetrieval{}, llm)

	_, err := a.Answer(context.Background(), "unknown topic", domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.Contains(t, llm.prompt, "No documentation context was found")
}

func TestAnswerer_NilLLM(t *testing.T) {
	a := NewAnswerer(&mockRetrieval{}, nil)
	_, err := a.Answer(context.Background(), "q", domain.RetrieveOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswerer_RetrievalErrorPropagates(t *testing.T) {
	a := NewAnswerer(&mockRetrieval{err: domain.ErrSearchUnavailable}, &mockLLM{})
	_, err := a.Answer(context.Background(), "q", domain.RetrieveOptions{})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestAnswerer_GenerationFailure(t *testing.T) {
	a := NewAnswerer(&mockRetrieval{}, &mockLLM{err: errors.New("overloaded")})
	_, err := a.Answer(context.Background(), "q", domain.RetrieveOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
