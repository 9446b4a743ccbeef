package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

// strategyLabels maps classifier output substrings to strategies in the
// canonical priority order. The classifier returns free text; when that
// text happens to contain several label substrings, the first match in
// this order wins.
var strategyLabels = []struct {
	substring string
	strategy  types.Strategy
}{
	{"multiquery", types.StrategyMultiQuery},
	{"decompose", types.StrategyDecomposition},
	{"stepback", types.StrategyStepBack},
	{"hyde", types.StrategyHyDE},
	{"ragfusion", types.StrategyRAGFusion},
	{"default", types.StrategyDefault},
}

// ParseStrategy resolves classifier free text to a strategy using
// first-match-wins substring containment. Text matching no label resolves
// to the default strategy.
func ParseStrategy(text string) types.Strategy {
	normalized := strings.ToLower(text)
	normalized = strings.ReplaceAll(normalized, "_", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	for _, label := range strategyLabels {
		if strings.Contains(normalized, label.substring) {
			return label.strategy
		}
	}
	return types.StrategyDefault
}

// ParseIntent resolves classifier free text to an intent. Anything that
// does not mention a document request is treated as a general query.
func ParseIntent(text string) types.Intent {
	if strings.Contains(strings.ToLower(text), string(types.IntentDocumentRequest)) {
		return types.IntentDocumentRequest
	}
	return types.IntentGeneralQuery
}

// Classifier labels questions with an intent and a retrieval strategy via
// the intent model. Classification failures never propagate: both calls
// fall back to their safe default.
type Classifier struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

func NewClassifier(provider llm.Provider, model string, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		provider: provider,
		model:    model,
		logger:   logger.With(zap.String("component", "classifier")),
	}
}

// ClassifyIntent labels the question as a document request or a general
// query, taking the conversation history into account.
func (c *Classifier) ClassifyIntent(ctx context.Context, question string, history []types.Turn) types.Intent {
	messages := make([]llm.Message, 0, 2+2*len(history))
	messages = append(messages, llm.NewSystemMessage(intentPrompt))
	for _, turn := range history {
		messages = append(messages,
			llm.NewUserMessage(turn.Question),
			llm.NewAssistantMessage(turn.Answer))
	}
	messages = append(messages, llm.NewUserMessage(question))

	resp, err := c.provider.Completion(ctx, &llm.ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		c.logger.Warn("intent classification failed, treating as general query", zap.Error(err))
		return types.IntentGeneralQuery
	}
	return ParseIntent(resp.Text())
}

// ClassifyStrategy selects the transformation strategy for a standalone
// question. On failure the default strategy is used.
func (c *Classifier) ClassifyStrategy(ctx context.Context, question string) types.Strategy {
	resp, err := c.provider.Completion(ctx, &llm.ChatRequest{
		Model:       c.model,
		Messages:    []llm.Message{llm.NewUserMessage(fmt.Sprintf(methodSelectionPrompt, question))},
		Temperature: 0,
	})
	if err != nil {
		c.logger.Warn("strategy classification failed, using default", zap.Error(err))
		return types.StrategyDefault
	}
	strategy := ParseStrategy(resp.Text())
	c.logger.Debug("strategy selected",
		zap.String("strategy", string(strategy)),
		zap.String("raw", resp.Text()))
	return strategy
}
