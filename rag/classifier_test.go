package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/nefac-ai/nefacrag/testutil/mocks"
	"github.com/nefac-ai/nefacrag/types"
	"github.com/stretchr/testify/assert"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		text string
		want types.Strategy
	}{
		{"multiquery", types.StrategyMultiQuery},
		{"multi_query", types.StrategyMultiQuery},
		{"decompose", types.StrategyDecomposition},
		{"stepback", types.StrategyStepBack},
		{"step-back", types.StrategyStepBack},
		{"hyde", types.StrategyHyDE},
		{"HyDE", types.StrategyHyDE},
		{"ragfusion", types.StrategyRAGFusion},
		{"default", types.StrategyDefault},
		{"I would use the default method here", types.StrategyDefault},
		{"no recognizable label at all", types.StrategyDefault},
		{"", types.StrategyDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStrategy(tt.text), "input %q", tt.text)
	}
}

func TestParseStrategyPriorityTieBreak(t *testing.T) {
	// multiquery wins over ragfusion when both labels appear.
	got := ParseStrategy("This looks like a multiquery and ragfusion case")
	assert.Equal(t, types.StrategyMultiQuery, got)

	// decompose outranks hyde and ragfusion.
	got = ParseStrategy("either decompose or hyde or ragfusion")
	assert.Equal(t, types.StrategyDecomposition, got)
}

func TestParseIntent(t *testing.T) {
	assert.Equal(t, types.IntentDocumentRequest, ParseIntent("document request"))
	assert.Equal(t, types.IntentDocumentRequest, ParseIntent("This is a Document Request."))
	assert.Equal(t, types.IntentGeneralQuery, ParseIntent("general query"))
	assert.Equal(t, types.IntentGeneralQuery, ParseIntent("something unexpected"))
	assert.Equal(t, types.IntentGeneralQuery, ParseIntent(""))
}

func TestClassifyIntentFallsBackOnError(t *testing.T) {
	provider := mocks.NewMockProvider().WithError(errors.New("upstream down"))
	c := NewClassifier(provider, "gpt-3.5-turbo", nil)

	intent := c.ClassifyIntent(context.Background(), "Do you have FOI resources?", nil)
	assert.Equal(t, types.IntentGeneralQuery, intent)
}

func TestClassifyStrategyFallsBackOnError(t *testing.T) {
	provider := mocks.NewMockProvider().WithError(errors.New("upstream down"))
	c := NewClassifier(provider, "gpt-3.5-turbo", nil)

	strategy := c.ClassifyStrategy(context.Background(), "question")
	assert.Equal(t, types.StrategyDefault, strategy)
}

func TestClassifyIntentUsesHistory(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "document request")
	c := NewClassifier(provider, "gpt-3.5-turbo", nil)

	history := []types.Turn{{Question: "earlier q", Answer: "earlier a"}}
	intent := c.ClassifyIntent(context.Background(), "And about Vermont?", history)
	assert.Equal(t, types.IntentDocumentRequest, intent)

	reqs := provider.Requests()
	assert.Len(t, reqs, 1)
	// History turns ride along as chat messages.
	assert.Len(t, reqs[0].Messages, 4)
}
