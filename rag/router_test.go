package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nefac-ai/nefacrag/config"
	"github.com/nefac-ai/nefacrag/llm/tokenizer"
	"github.com/nefac-ai/nefacrag/session"
	"github.com/nefac-ai/nefacrag/testutil/mocks"
	"github.com/nefac-ai/nefacrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, provider *mocks.MockProvider, store VectorStore) (*Router, session.Store) {
	t.Helper()
	sessions := session.NewMemoryStore(session.MemoryStoreConfig{}, nil)
	router := NewRouter(*config.DefaultConfig(), RouterDeps{
		Provider: provider,
		Store:    store,
		Sessions: sessions,
		Counter:  tokenizer.Estimator{},
	})
	return router, sessions
}

func collectEvents(t *testing.T, events <-chan types.Event) []types.Event {
	t.Helper()
	var out []types.Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("timed out waiting for events")
		}
	}
}

func assembleAnswer(events []types.Event) string {
	var b strings.Builder
	for _, ev := range events {
		if msg, ok := ev.(types.MessageEvent); ok {
			b.WriteString(msg.Message)
		}
	}
	return b.String()
}

func TestRouterDocumentRequestDefaultPath(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "document request").
		WithRule("choose the best query transformation strategy", "default").
		WithDefaultReply("According to the 'FOI Guide', you can file a request.")

	store := &stubVectorStore{chunks: []types.Chunk{
		makeChunk("FOI Guide", "how to file", 1, types.SourcePDF),
		makeChunk("Appeals Handbook", "how to appeal", 2, types.SourcePDF),
	}}

	router, sessions := newTestRouter(t, provider, store)
	question := "Do you have resources on FOI requests?"
	events := collectEvents(t, router.AnswerQuery(context.Background(), AnswerRequest{
		Question:  question,
		SessionID: "s1",
	}))

	// Orders are strictly increasing from 0 across all event kinds.
	for i, ev := range events {
		assert.Equal(t, i, ev.EventOrder())
	}

	// First event is the reformulated question (no history, so identity).
	require.NotEmpty(t, events)
	reformulated, ok := events[0].(types.ReformulatedEvent)
	require.True(t, ok, "first event should be reformulated, got %T", events[0])
	assert.Equal(t, question, reformulated.Reformulated)

	// Exactly one context event, carrying both formatted results.
	var contexts []types.ContextEvent
	for _, ev := range events {
		if ce, ok := ev.(types.ContextEvent); ok {
			contexts = append(contexts, ce)
		}
	}
	require.Len(t, contexts, 1)
	assert.Len(t, contexts[0].Context, 2)
	assert.Equal(t, "FOI Guide", contexts[0].Context[0].Title)

	// One retrieval call was made for the default strategy.
	assert.Equal(t, 1, store.searchCount())

	// The answer streams after the context event.
	answer := assembleAnswer(events)
	assert.Equal(t, "According to the 'FOI Guide', you can file a request.", answer)

	// The session gained exactly one new turn.
	history, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, question, history[0].Question)
	assert.Equal(t, answer, history[0].Answer)
}

func TestRouterGeneralQueryPath(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "general query").
		WithDefaultReply("NEFAC protects press freedom in New England.")

	store := &stubVectorStore{chunks: []types.Chunk{
		makeChunk("Unused", "never retrieved", 1, types.SourcePDF),
	}}

	router, sessions := newTestRouter(t, provider, store)
	events := collectEvents(t, router.AnswerQuery(context.Background(), AnswerRequest{
		Question:  "What's the weather today?",
		SessionID: "s1",
	}))

	// No retrieval call occurs and no context or reformulated events appear.
	assert.Equal(t, 0, store.searchCount())
	for _, ev := range events {
		_, isMessage := ev.(types.MessageEvent)
		assert.True(t, isMessage, "general path must emit only message events, got %T", ev)
	}
	require.NotEmpty(t, events)
	for i, ev := range events {
		assert.Equal(t, i, ev.EventOrder())
	}

	history, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestRouterContextualizesFollowUps(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "document request").
		WithRule("formulate a standalone question", "What FOI resources exist for Vermont?").
		WithRule("choose the best query transformation strategy", "default").
		WithDefaultReply("Vermont has a public records act.")

	store := &stubVectorStore{chunks: []types.Chunk{
		makeChunk("Vermont PRA", "vermont records", 1, types.SourcePDF),
	}}

	router, sessions := newTestRouter(t, provider, store)
	ctx := context.Background()

	require.NoError(t, sessions.Append(ctx, "s1", types.Turn{
		Question: "Do you have FOI resources?",
		Answer:   "Yes, several guides.",
	}))

	events := collectEvents(t, router.AnswerQuery(ctx, AnswerRequest{
		Question:  "What about Vermont?",
		SessionID: "s1",
	}))

	var reformulated strings.Builder
	for _, ev := range events {
		if re, ok := ev.(types.ReformulatedEvent); ok {
			reformulated.WriteString(re.Reformulated)
		}
	}
	assert.Equal(t, "What FOI resources exist for Vermont?", reformulated.String())
}

func TestRouterEmitsApologyOnFailure(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "document request").
		WithRule("choose the best query transformation strategy", "default").
		WithDefaultReply("unused")

	store := &stubVectorStore{err: errors.New("index unavailable")}

	router, sessions := newTestRouter(t, provider, store)
	events := collectEvents(t, router.AnswerQuery(context.Background(), AnswerRequest{
		Question:  "Do you have resources on FOI requests?",
		SessionID: "s1",
	}))

	// The stream ends with exactly one terminal apology message and the
	// raw error never surfaces.
	require.NotEmpty(t, events)
	last, ok := events[len(events)-1].(types.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, apologyMessage, last.Message)
	assert.NotContains(t, last.Message, "index unavailable")

	// No turn is recorded for a failed cycle.
	history, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRouterAppliesMetadataFilter(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "document request").
		WithRule("choose the best query transformation strategy", "default").
		WithDefaultReply("answer")

	lawyerChunk := makeChunk("Lawyer Guide", "for lawyers", 1, types.SourcePDF)
	lawyerChunk.Metadata.Audience = []string{"lawyer"}
	citizenChunk := makeChunk("Citizen Guide", "for citizens", 1, types.SourcePDF)
	citizenChunk.Metadata.Audience = []string{"citizen"}
	store := &stubVectorStore{chunks: []types.Chunk{lawyerChunk, citizenChunk}}

	router, _ := newTestRouter(t, provider, store)
	events := collectEvents(t, router.AnswerQuery(context.Background(), AnswerRequest{
		Question:  "Any guides?",
		SessionID: "s1",
		Filter:    FilterOptions{Audience: strptr("citizen")},
	}))

	var contexts []types.ContextEvent
	for _, ev := range events {
		if ce, ok := ev.(types.ContextEvent); ok {
			contexts = append(contexts, ce)
		}
	}
	require.Len(t, contexts, 1)
	require.Len(t, contexts[0].Context, 1)
	assert.Equal(t, "Citizen Guide", contexts[0].Context[0].Title)
}

func TestRouterNoContextEventWhenRetrievalEmpty(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "document request").
		WithRule("choose the best query transformation strategy", "default").
		WithDefaultReply("I couldn't find specific information in the database.")

	store := &stubVectorStore{}

	router, _ := newTestRouter(t, provider, store)
	events := collectEvents(t, router.AnswerQuery(context.Background(), AnswerRequest{
		Question:  "Anything on maritime law?",
		SessionID: "s1",
	}))

	for _, ev := range events {
		_, isContext := ev.(types.ContextEvent)
		assert.False(t, isContext, "empty retrieval must not emit a context event")
	}
	assert.NotEmpty(t, assembleAnswer(events))
}

func TestRouterSameSessionSerialized(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithRule("determine the user's intent", "general query").
		WithDefaultReply("answer")

	router, sessions := newTestRouter(t, provider, &stubVectorStore{})
	ctx := context.Background()

	first := router.AnswerQuery(ctx, AnswerRequest{Question: "q1", SessionID: "s"})
	second := router.AnswerQuery(ctx, AnswerRequest{Question: "q2", SessionID: "s"})

	collectEvents(t, first)
	collectEvents(t, second)

	history, err := sessions.History(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
