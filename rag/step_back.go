package rag

import (
	"context"
	"fmt"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StepBackTransformer reformulates the question into a broader legal one
// using few-shot examples, retrieves with both the original and the
// stepped-back question, and presents the two result sets as labeled
// context sections.
type StepBackTransformer struct {
	translator
}

func NewStepBackTransformer(provider llm.Provider, model string, logger *zap.Logger) *StepBackTransformer {
	return &StepBackTransformer{translator: newTranslator(provider, model, logger)}
}

func (t *StepBackTransformer) Strategy() types.Strategy { return types.StrategyStepBack }

func (t *StepBackTransformer) Transform(ctx context.Context, question string, retriever Retriever) (*TransformResult, error) {
	messages := make([]llm.Message, 0, 2+2*len(stepBackExamples))
	messages = append(messages, llm.NewSystemMessage(stepBackSystemPrompt))
	for _, ex := range stepBackExamples {
		messages = append(messages,
			llm.NewUserMessage(ex.Input),
			llm.NewAssistantMessage(ex.Output))
	}
	messages = append(messages, llm.NewUserMessage(question))

	stepBack, err := t.complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate step-back question: %w", err)
	}
	if stepBack == "" {
		stepBack = question
	}
	t.logger.Debug("stepped back", zap.String("question", stepBack))

	var normal, broad []types.Chunk
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		normal, err = retriever.Retrieve(gctx, question)
		return err
	})
	g.Go(func() error {
		var err error
		broad, err = retriever.Retrieve(gctx, stepBack)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(stepBackContextTemplate,
		FormatChunks(normal), FormatChunks(broad), question)
	return &TransformResult{
		Context:      prompt,
		Chunks:       append(append([]types.Chunk{}, normal...), broad...),
		AnswerPrompt: prompt,
	}, nil
}
