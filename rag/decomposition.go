package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

const decompositionSubQuestions = 3

// DecompositionTransformer breaks the question into three sub-questions,
// answers them sequentially with earlier answers as background, and hands
// the router a synthesis prompt over the accumulated Q&A pairs. Unlike the
// other strategies its output drives the final generation directly rather
// than feeding the standard retrieval-grounded prompt.
type DecompositionTransformer struct {
	translator
}

func NewDecompositionTransformer(provider llm.Provider, model string, logger *zap.Logger) *DecompositionTransformer {
	return &DecompositionTransformer{translator: newTranslator(provider, model, logger)}
}

func (t *DecompositionTransformer) Strategy() types.Strategy { return types.StrategyDecomposition }

func (t *DecompositionTransformer) Transform(ctx context.Context, question string, retriever Retriever) (*TransformResult, error) {
	text, err := t.complete(ctx, []llm.Message{
		llm.NewUserMessage(fmt.Sprintf(decompositionPrompt, question)),
	})
	if err != nil {
		return nil, fmt.Errorf("generate sub-questions: %w", err)
	}

	subQuestions := nonEmptyLines(text, decompositionSubQuestions)
	if len(subQuestions) == 0 {
		subQuestions = []string{question}
	}

	// Sub-questions are answered strictly in order: the answer to
	// sub-question i may build on the answers to sub-questions before it,
	// never on those after.
	var qaPairs strings.Builder
	var allChunks []types.Chunk
	for i, sub := range subQuestions {
		chunks, err := retriever.Retrieve(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("retrieve for sub-question %d: %w", i+1, err)
		}
		allChunks = append(allChunks, chunks...)

		answer, err := t.complete(ctx, []llm.Message{
			llm.NewUserMessage(fmt.Sprintf(decompositionQAPrompt,
				sub, qaPairs.String(), FormatChunks(chunks), sub)),
		})
		if err != nil {
			return nil, fmt.Errorf("answer sub-question %d: %w", i+1, err)
		}

		fmt.Fprintf(&qaPairs, "Question %d: %s\nAnswer %d: %s\n\n", i+1, sub, i+1, answer)
		t.logger.Debug("answered sub-question", zap.Int("index", i+1))
	}

	pairs := qaPairs.String()
	return &TransformResult{
		Context:      pairs,
		Chunks:       allChunks,
		AnswerPrompt: fmt.Sprintf(decompositionSynthesisPrompt, pairs, question),
	}, nil
}
