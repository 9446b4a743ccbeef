package rag

import (
	"context"
	"fmt"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

// HyDETransformer generates a hypothetical answer passage and retrieves
// with that passage as the query. Hypothetical documents embed closer to
// real relevant documents than short questions do.
type HyDETransformer struct {
	translator
}

func NewHyDETransformer(provider llm.Provider, model string, logger *zap.Logger) *HyDETransformer {
	return &HyDETransformer{translator: newTranslator(provider, model, logger)}
}

func (t *HyDETransformer) Strategy() types.Strategy { return types.StrategyHyDE }

func (t *HyDETransformer) Transform(ctx context.Context, question string, retriever Retriever) (*TransformResult, error) {
	passage, err := t.complete(ctx, []llm.Message{
		llm.NewUserMessage(fmt.Sprintf(hydePrompt, question)),
	})
	if err != nil {
		return nil, fmt.Errorf("generate hypothetical passage: %w", err)
	}
	if passage == "" {
		passage = question
	}

	chunks, err := retriever.Retrieve(ctx, passage)
	if err != nil {
		return nil, err
	}
	return &TransformResult{
		Context: FormatChunks(chunks),
		Chunks:  chunks,
	}, nil
}
