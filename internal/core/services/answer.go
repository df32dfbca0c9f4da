package services

import (
	"context"
	"fmt"

	"github.com/siemdocs/docqa/internal/core/domain"
	"github.com/siemdocs/docqa/internal/core/ports/driven"
	"github.com/siemdocs/docqa/internal/core/ports/driving"
	"github.com/siemdocs/docqa/internal/logger"
)

// Ensure Answerer implements the interface.
var _ driving.AnswerService = (*Answerer)(nil)

const answerSystemPrompt = "You are an assistant answering questions about " +
	"security product documentation. Answer only from the provided context " +
	"and cite supporting fragments by their [n] markers. If the context " +
	"does not contain the answer, say you do not know."

// Default generation parameters, matching the corpus the prompts were
// tuned against.
const (
	answerMaxTokens   = 4096
	answerTemperature = 0.2
)

// Answerer turns a question into a cited answer: it runs the retrieval
// pipeline and hands the assembled context to the generation model.
type Answerer struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
}

// NewAnswerer creates an answer service. The LLM service may be nil, in
// which case Answer returns domain.ErrLLMUnavailable.
func NewAnswerer(retrieval driving.RetrievalService, llm driven.LLMService) *Answerer {
	return &Answerer{retrieval: retrieval, llm: llm}
}

// Answer retrieves context for the question and generates a response.
// An empty context is still answered: the model is instructed to say it
// does not know rather than invent citations.
func (a *Answerer) Answer(ctx context.Context, question string, opts domain.RetrieveOptions) (domain.Answer, error) {
	if a.llm == nil {
		return domain.Answer{}, domain.ErrLLMUnavailable
	}

	block, err := a.retrieval.Retrieve(ctx, question, opts)
	if err != nil {
		return domain.Answer{}, err
	}

	prompt := renderPrompt(question, block)
	logger.Debug("Generating answer with %s (%d context chars)", a.llm.ModelName(), len(block.Text))

	completion, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
		System:      answerSystemPrompt,
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	return domain.Answer{
		Text:         completion.Text,
		Context:      block,
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
		Model:        a.llm.ModelName(),
	}, nil
}

// renderPrompt builds the generation prompt from the question and the
// assembled context. Deterministic for a given block, so provider-side
// prompt caching stays effective.
func renderPrompt(question string, block domain.ContextBlock) string {
	if block.IsEmpty() {
		return fmt.Sprintf("No documentation context was found for this question.\n\nQuestion: %s\n\nAnswer:", question)
	}
	return fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s\n\nAnswer:", block.Text, question)
}
