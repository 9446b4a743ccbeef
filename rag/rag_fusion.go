package rag

import (
	"context"
	"fmt"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

const ragFusionQueryCount = 4

// RAGFusionTransformer generates four refined queries, retrieves per
// query, and merges the ranked lists with reciprocal rank fusion.
type RAGFusionTransformer struct {
	translator
	rrfConstant int
}

func NewRAGFusionTransformer(provider llm.Provider, model string, rrfConstant int, logger *zap.Logger) *RAGFusionTransformer {
	if rrfConstant <= 0 {
		rrfConstant = 60
	}
	return &RAGFusionTransformer{
		translator:  newTranslator(provider, model, logger),
		rrfConstant: rrfConstant,
	}
}

func (t *RAGFusionTransformer) Strategy() types.Strategy { return types.StrategyRAGFusion }

func (t *RAGFusionTransformer) Transform(ctx context.Context, question string, retriever Retriever) (*TransformResult, error) {
	text, err := t.complete(ctx, []llm.Message{
		llm.NewUserMessage(fmt.Sprintf(ragFusionPrompt, question)),
	})
	if err != nil {
		return nil, fmt.Errorf("generate queries: %w", err)
	}

	queries := nonEmptyLines(text, ragFusionQueryCount)
	if len(queries) == 0 {
		queries = []string{question}
	}

	lists, err := fanOutRetrieve(ctx, retriever, queries)
	if err != nil {
		return nil, err
	}

	fused := ReciprocalRankFusion(lists, t.rrfConstant)
	t.logger.Debug("rag-fusion complete",
		zap.Int("queries", len(queries)),
		zap.Int("fused_chunks", len(fused)))

	// The placeholder chunk feeds the prompt but is not a real source,
	// so it never appears in the context event.
	eventChunks := fused
	if len(fused) == 1 && fused[0].Content == noDocumentsPlaceholder {
		eventChunks = nil
	}
	return &TransformResult{
		Context: FormatChunks(fused),
		Chunks:  eventChunks,
	}, nil
}
