package types

// SearchResult is the externally exposed shape of a retrieved source.
// TimestampSeconds is set for video sources and null for PDFs; Summary is
// null when no precomputed summary exists for the source.
type SearchResult struct {
	Title            string  `json:"title"`
	Link             string  `json:"link"`
	Type             string  `json:"type"`
	TimestampSeconds *int    `json:"timestamp_seconds"`
	Summary          *string `json:"summary"`
}

// Event is one unit of the streamed response for a single query cycle.
// Every event carries a strictly increasing order value scoped to the cycle,
// shared across the message, reformulated and context streams.
type Event interface {
	EventOrder() int
}

// MessageEvent carries a fragment of the generated answer.
type MessageEvent struct {
	Message string `json:"message"`
	Order   int    `json:"order"`
}

// ReformulatedEvent carries a fragment of the standalone question produced
// by the contextualizer.
type ReformulatedEvent struct {
	Reformulated string `json:"reformulated"`
	Order        int    `json:"order"`
}

// ContextEvent carries the formatted, deduplicated retrieval results for
// the cycle. It is only emitted when at least one result was retrieved.
type ContextEvent struct {
	Context []SearchResult `json:"context"`
	Order   int            `json:"order"`
}

func (e MessageEvent) EventOrder() int      { return e.Order }
func (e ReformulatedEvent) EventOrder() int { return e.Order }
func (e ContextEvent) EventOrder() int      { return e.Order }
