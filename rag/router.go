package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nefac-ai/nefacrag/config"
	"github.com/nefac-ai/nefacrag/internal/metrics"
	"github.com/nefac-ai/nefacrag/llm"
	"github.com/nefac-ai/nefacrag/llm/tokenizer"
	"github.com/nefac-ai/nefacrag/session"
	"github.com/nefac-ai/nefacrag/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AnswerRequest is one inbound query.
type AnswerRequest struct {
	Question  string
	SessionID string

	// Filter restricts retrieval by metadata. Zero value means no filter,
	// in which case filtering is skipped entirely.
	Filter FilterOptions
}

// Router composes the full pipeline: intent classification, question
// contextualization, strategy selection, retrieval, and streamed answer
// generation, with per-session conversation history.
type Router struct {
	provider       llm.Provider
	classifier     *Classifier
	contextualizer *Contextualizer
	transformers   map[types.Strategy]Transformer
	retriever      *VectorRetriever
	sessions       session.Store

	answerModel string
	temperature float32

	collector *metrics.Collector
	tracer    trace.Tracer
	logger    *zap.Logger

	// Appends for the same session are serialized so concurrent requests
	// against one session cannot interleave history turns.
	sessionLocks sync.Map
}

// RouterDeps carries the router's constructor dependencies. Collector may
// be nil to disable metrics; Counter may be nil to use the prompt model's
// tokenizer.
type RouterDeps struct {
	Provider  llm.Provider
	Store     VectorStore
	Sessions  session.Store
	Collector *metrics.Collector
	Counter   tokenizer.Tokenizer
	Logger    *zap.Logger
}

func NewRouter(cfg config.Config, deps RouterDeps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "router"))

	promptModel := cfg.LLM.PromptModel
	counter := deps.Counter
	if counter == nil {
		counter = tokenizer.ForModel(promptModel)
	}

	transformers := map[types.Strategy]Transformer{
		types.StrategyDefault:       DefaultTransformer{},
		types.StrategyMultiQuery:    NewMultiQueryTransformer(deps.Provider, promptModel, logger),
		types.StrategyRAGFusion:     NewRAGFusionTransformer(deps.Provider, promptModel, cfg.Retrieval.RRFConstant, logger),
		types.StrategyDecomposition: NewDecompositionTransformer(deps.Provider, promptModel, logger),
		types.StrategyStepBack:      NewStepBackTransformer(deps.Provider, promptModel, logger),
		types.StrategyHyDE:          NewHyDETransformer(deps.Provider, promptModel, logger),
	}

	return &Router{
		provider:       deps.Provider,
		classifier:     NewClassifier(deps.Provider, cfg.LLM.IntentModel, logger),
		contextualizer: NewContextualizer(deps.Provider, promptModel, counter, cfg.Retrieval.MaxHistoryTokens, logger),
		transformers:   transformers,
		retriever:      NewVectorRetriever(deps.Store, cfg.Retrieval),
		sessions:       deps.Sessions,
		answerModel:    cfg.LLM.AnswerModel,
		temperature:    cfg.LLM.Temperature,
		collector:      deps.Collector,
		tracer:         otel.Tracer("nefacrag/rag"),
		logger:         logger,
	}
}

// AnswerQuery loads the session history and streams the response events
// for one query cycle. The returned channel is closed when the cycle ends
// or ctx is cancelled.
func (r *Router) AnswerQuery(ctx context.Context, req AnswerRequest) <-chan types.Event {
	events := make(chan types.Event, 16)
	go func() {
		defer close(events)
		r.respond(ctx, req, newEmitter(ctx, events))
	}()
	return events
}

func (r *Router) respond(ctx context.Context, req AnswerRequest, emit *emitter) {
	lock := r.sessionLock(req.SessionID)
	lock.Lock()
	defer lock.Unlock()

	cycleID := uuid.NewString()
	started := time.Now()
	logger := r.logger.With(
		zap.String("cycle_id", cycleID),
		zap.String("session_id", req.SessionID))

	ctx, span := r.tracer.Start(ctx, "rag.respond",
		trace.WithAttributes(attribute.String("rag.cycle_id", cycleID)))
	defer span.End()

	history, err := r.sessions.History(ctx, req.SessionID)
	if err != nil {
		logger.Error("failed to load session history", zap.Error(err))
		r.fail(emit, "unknown", started)
		return
	}

	intent := r.classifier.ClassifyIntent(ctx, req.Question, history)
	span.SetAttributes(attribute.String("rag.intent", string(intent)))
	logger.Info("classified intent", zap.String("intent", string(intent)))

	var answer string
	if intent == types.IntentDocumentRequest {
		answer, err = r.retrievalPath(ctx, req, history, emit, span, logger)
	} else {
		answer, err = r.generalPath(ctx, req.Question, history, emit)
	}
	if err != nil {
		logger.Error("query cycle failed", zap.Error(err))
		r.fail(emit, string(intent), started)
		return
	}

	if err := r.sessions.Append(ctx, req.SessionID, types.Turn{
		Question:  req.Question,
		Answer:    answer,
		CreatedAt: time.Now(),
	}); err != nil {
		// The user already has their answer; losing the history turn is
		// logged but not surfaced.
		logger.Warn("failed to append session turn", zap.Error(err))
	}

	if r.collector != nil {
		r.collector.RecordQuery(string(intent), "ok", time.Since(started))
	}
	logger.Info("query cycle complete", zap.Duration("elapsed", time.Since(started)))
}

// retrievalPath runs contextualization, strategy selection, the chosen
// transformer, the context event, and the grounded answer stream.
func (r *Router) retrievalPath(ctx context.Context, req AnswerRequest, history []types.Turn, emit *emitter, span trace.Span, logger *zap.Logger) (string, error) {
	standalone, err := r.contextualizer.Contextualize(ctx, req.Question, history, func(fragment string) bool {
		if !emit.reformulated(fragment) {
			return false
		}
		r.recordEvent("reformulated")
		return true
	})
	if err != nil {
		return "", err
	}

	strategy := r.classifier.ClassifyStrategy(ctx, standalone)
	span.SetAttributes(attribute.String("rag.strategy", string(strategy)))
	if r.collector != nil {
		r.collector.RecordStrategy(string(strategy))
	}

	transformer, ok := r.transformers[strategy]
	if !ok {
		transformer = r.transformers[types.StrategyDefault]
	}

	retriever := r.retriever
	if !req.Filter.Empty() {
		retriever = retriever.WithFilter(BuildFilter(req.Filter))
	}

	result, err := transformer.Transform(ctx, standalone, retriever)
	if err != nil {
		return "", err
	}
	if r.collector != nil {
		r.collector.RecordRetrieval(string(strategy), len(result.Chunks))
	}

	if results := FormatResults(result.Chunks); len(results) > 0 {
		emit.context(results)
		r.recordEvent("context")
	}

	var messages []llm.Message
	if result.AnswerPrompt != "" {
		messages = []llm.Message{llm.NewUserMessage(result.AnswerPrompt)}
	} else {
		messages = make([]llm.Message, 0, 2+2*len(history))
		messages = append(messages, llm.NewSystemMessage(formatRetrievalPrompt(result.Context, standalone)))
		for _, turn := range history {
			messages = append(messages,
				llm.NewUserMessage(turn.Question),
				llm.NewAssistantMessage(turn.Answer))
		}
		messages = append(messages, llm.NewUserMessage(standalone))
	}

	logger.Info("generating answer",
		zap.String("strategy", string(strategy)),
		zap.Int("context_chunks", len(result.Chunks)))
	return r.streamAnswer(ctx, messages, emit)
}

// generalPath answers without retrieval, using only NEFAC framing and the
// conversation history.
func (r *Router) generalPath(ctx context.Context, question string, history []types.Turn, emit *emitter) (string, error) {
	messages := make([]llm.Message, 0, 2+2*len(history))
	messages = append(messages, llm.NewSystemMessage(generalPrompt))
	for _, turn := range history {
		messages = append(messages,
			llm.NewUserMessage(turn.Question),
			llm.NewAssistantMessage(turn.Answer))
	}
	messages = append(messages, llm.NewUserMessage(question))

	return r.streamAnswer(ctx, messages, emit)
}

// streamAnswer runs a streaming completion on the answer model, emitting
// one message event per delta, and returns the assembled answer.
func (r *Router) streamAnswer(ctx context.Context, messages []llm.Message, emit *emitter) (string, error) {
	started := time.Now()
	chunks, err := r.provider.Stream(ctx, &llm.ChatRequest{
		Model:       r.answerModel,
		Messages:    messages,
		Temperature: r.temperature,
	})
	if err != nil {
		r.recordLLM("error", started)
		return "", err
	}

	var answer strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			r.recordLLM("error", started)
			return "", chunk.Err
		}
		if chunk.Usage != nil && r.collector != nil {
			r.collector.RecordTokens(r.provider.Name(), r.answerModel,
				chunk.Usage.PromptTokens, chunk.Usage.CompletionTokens)
		}
		if chunk.Delta.Content == "" {
			continue
		}
		answer.WriteString(chunk.Delta.Content)
		if !emit.message(chunk.Delta.Content) {
			return "", ctx.Err()
		}
		r.recordEvent("message")
	}

	r.recordLLM("ok", started)
	return answer.String(), nil
}

// fail emits the single terminal apology message and records the cycle.
func (r *Router) fail(emit *emitter, intent string, started time.Time) {
	emit.message(apologyMessage)
	r.recordEvent("message")
	if r.collector != nil {
		r.collector.RecordQuery(intent, "error", time.Since(started))
	}
}

func (r *Router) sessionLock(sessionID string) *sync.Mutex {
	v, _ := r.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (r *Router) recordEvent(kind string) {
	if r.collector != nil {
		r.collector.RecordEvent(kind)
	}
}

func (r *Router) recordLLM(status string, started time.Time) {
	if r.collector != nil {
		r.collector.RecordLLMRequest(r.provider.Name(), r.answerModel, status, time.Since(started))
	}
}
