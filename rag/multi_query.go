package rag

import (
	"context"
	"fmt"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const multiQueryCount = 5

// MultiQueryTransformer generates five diverse reformulations of the
// question, retrieves independently per reformulation, and unions the
// results with structural deduplication.
type MultiQueryTransformer struct {
	translator
}

func NewMultiQueryTransformer(provider llm.Provider, model string, logger *zap.Logger) *MultiQueryTransformer {
	return &MultiQueryTransformer{translator: newTranslator(provider, model, logger)}
}

func (t *MultiQueryTransformer) Strategy() types.Strategy { return types.StrategyMultiQuery }

func (t *MultiQueryTransformer) Transform(ctx context.Context, question string, retriever Retriever) (*TransformResult, error) {
	text, err := t.complete(ctx, []llm.Message{
		llm.NewUserMessage(fmt.Sprintf(multiQueryPrompt, question)),
	})
	if err != nil {
		return nil, fmt.Errorf("generate queries: %w", err)
	}

	queries := nonEmptyLines(text, multiQueryCount)
	if len(queries) == 0 {
		queries = []string{question}
	}

	lists, err := fanOutRetrieve(ctx, retriever, queries)
	if err != nil {
		return nil, err
	}

	chunks := UnionChunks(lists)
	t.logger.Debug("multi-query fan-out complete",
		zap.Int("queries", len(queries)),
		zap.Int("unique_chunks", len(chunks)))
	return &TransformResult{
		Context: FormatChunks(chunks),
		Chunks:  chunks,
	}, nil
}

// fanOutRetrieve runs one retrieval call per query concurrently, keeping
// result lists in query order.
func fanOutRetrieve(ctx context.Context, retriever Retriever, queries []string) ([][]types.Chunk, error) {
	lists := make([][]types.Chunk, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			chunks, err := retriever.Retrieve(gctx, q)
			if err != nil {
				return err
			}
			lists[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}
