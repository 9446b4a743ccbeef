package rag

import (
	"context"
	"strings"

	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

// TransformResult is the output of a query transformer.
type TransformResult struct {
	// Context is the formatted retrieval context for answer generation.
	Context string

	// Chunks are the raw retrieved chunks behind Context, used to build
	// the context event. Includes no placeholder entries.
	Chunks []types.Chunk

	// AnswerPrompt, when non-empty, replaces the standard
	// retrieval-grounded answer prompt for this cycle. Decomposition uses
	// it to stream its synthesis; step-back uses it to present both
	// context sections.
	AnswerPrompt string
}

// Transformer turns a standalone question into retrieval context using
// the bound retriever. Transformers are read-only consumers of the vector
// index and must not mutate the chunks they receive.
type Transformer interface {
	Strategy() types.Strategy
	Transform(ctx context.Context, question string, retriever Retriever) (*TransformResult, error)
}

// translator holds the dependencies shared by all transformers: the prompt
// model used for internal sub-query generation and its invocation settings.
type translator struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

func newTranslator(provider llm.Provider, model string, logger *zap.Logger) translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return translator{provider: provider, model: model, logger: logger}
}

// complete runs one deterministic prompt-model call and returns its text.
func (t translator) complete(ctx context.Context, messages []llm.Message) (string, error) {
	resp, err := t.provider.Completion(ctx, &llm.ChatRequest{
		Model:       t.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

// nonEmptyLines splits generated query text into trimmed lines, dropping
// blanks. Models occasionally number their output; leading list markers
// are stripped.
func nonEmptyLines(text string, max int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)- ")
		if line == "" {
			continue
		}
		out = append(out, line)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// DefaultTransformer performs a single retrieval call on the question
// as-is and formats the chunks directly.
type DefaultTransformer struct{}

func (DefaultTransformer) Strategy() types.Strategy { return types.StrategyDefault }

func (DefaultTransformer) Transform(ctx context.Context, question string, retriever Retriever) (*TransformResult, error) {
	chunks, err := retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	return &TransformResult{
		Context: FormatChunks(chunks),
		Chunks:  chunks,
	}, nil
}
