package rag

import (
	"context"
	"strings"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/llm/tokenizer"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

// Contextualizer rewrites a follow-up question into a standalone question
// using the session history, streaming the rewrite token by token.
type Contextualizer struct {
	provider  llm.Provider
	model     string
	counter   tokenizer.Tokenizer
	maxTokens int
	logger    *zap.Logger
}

func NewContextualizer(provider llm.Provider, model string, counter tokenizer.Tokenizer, maxHistoryTokens int, logger *zap.Logger) *Contextualizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if counter == nil {
		counter = tokenizer.Estimator{}
	}
	return &Contextualizer{
		provider:  provider,
		model:     model,
		counter:   counter,
		maxTokens: maxHistoryTokens,
		logger:    logger.With(zap.String("component", "contextualizer")),
	}
}

// Contextualize produces the standalone form of question, invoking emit for
// every generated fragment. With no history the question is already
// standalone: it is emitted once, without a model call. A false return from
// emit means the caller is gone; generation stops there.
func (c *Contextualizer) Contextualize(ctx context.Context, question string, history []types.Turn, emit func(fragment string) bool) (string, error) {
	if len(history) == 0 {
		if !emit(question) {
			return "", ctx.Err()
		}
		return question, nil
	}

	trimmed := c.trimHistory(history)
	messages := make([]llm.Message, 0, 2+2*len(trimmed))
	messages = append(messages, llm.NewSystemMessage(contextualizePrompt))
	for _, turn := range trimmed {
		messages = append(messages,
			llm.NewUserMessage(turn.Question),
			llm.NewAssistantMessage(turn.Answer))
	}
	messages = append(messages, llm.NewUserMessage(question))

	chunks, err := c.provider.Stream(ctx, &llm.ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	var standalone strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		if chunk.Delta.Content == "" {
			continue
		}
		standalone.WriteString(chunk.Delta.Content)
		if !emit(chunk.Delta.Content) {
			return "", ctx.Err()
		}
	}

	result := strings.TrimSpace(standalone.String())
	if result == "" {
		return question, nil
	}
	return result, nil
}

// trimHistory drops the oldest turns until the remainder fits the token
// budget. Token counting failures fall back to keeping the turn; budgeting
// degrades rather than failing the request.
func (c *Contextualizer) trimHistory(history []types.Turn) []types.Turn {
	if c.maxTokens <= 0 {
		return history
	}

	total := 0
	// Walk newest to oldest so the most recent turns survive.
	cut := 0
	for i := len(history) - 1; i >= 0; i-- {
		n, err := c.counter.CountTokens(history[i].Question + history[i].Answer)
		if err != nil {
			n = 0
		}
		if total+n > c.maxTokens {
			cut = i + 1
			break
		}
		total += n
	}
	if cut > 0 {
		c.logger.Debug("trimmed history to token budget",
			zap.Int("dropped_turns", cut),
			zap.Int("kept_tokens", total))
	}
	return history[cut:]
}
