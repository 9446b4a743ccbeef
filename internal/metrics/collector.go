// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector holds the pipeline's Prometheus instruments. The registerer is
// injectable so tests can use a private registry instead of the global one.
type Collector struct {
	queriesTotal     *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	strategySelected *prometheus.CounterVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	retrievalCalls  *prometheus.CounterVec
	retrievedChunks prometheus.Histogram

	eventsEmitted *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates the collector, registering all instruments with reg.
// Pass prometheus.DefaultRegisterer in production.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.queriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of answered queries",
		},
		[]string{"intent", "status"},
	)

	c.queryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end query cycle duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"intent"},
	)

	c.strategySelected = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_selected_total",
			Help:      "Retrieval strategies chosen by the classifier",
		},
		[]string{"strategy"},
	)

	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.llmTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "kind"},
	)

	c.retrievalCalls = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_calls_total",
			Help:      "Vector search calls by strategy",
		},
		[]string{"strategy"},
	)

	c.retrievedChunks = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_chunks",
			Help:      "Chunks returned per retrieval call",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	c.eventsEmitted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Streamed events by kind",
		},
		[]string{"kind"},
	)

	return c
}

func (c *Collector) RecordQuery(intent string, status string, duration time.Duration) {
	c.queriesTotal.WithLabelValues(intent, status).Inc()
	c.queryDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

func (c *Collector) RecordStrategy(strategy string) {
	c.strategySelected.WithLabelValues(strategy).Inc()
}

func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

func (c *Collector) RecordTokens(provider, model string, prompt, completion int) {
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(prompt))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completion))
}

func (c *Collector) RecordRetrieval(strategy string, chunks int) {
	c.retrievalCalls.WithLabelValues(strategy).Inc()
	c.retrievedChunks.Observe(float64(chunks))
}

func (c *Collector) RecordEvent(kind string) {
	c.eventsEmitted.WithLabelValues(kind).Inc()
}
