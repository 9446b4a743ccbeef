package rag

import (
	"context"
	"encoding/json"
	"io"

	"github.com/nefac-ai/nefacrag/types"
)

// emitter assigns the strictly increasing order values shared by all event
// kinds within one query cycle and delivers events to the caller's channel.
// Delivery stops as soon as the cycle context is cancelled, so a
// disconnected caller does not wedge the pipeline.
type emitter struct {
	ctx  context.Context
	ch   chan<- types.Event
	next int
}

func newEmitter(ctx context.Context, ch chan<- types.Event) *emitter {
	return &emitter{ctx: ctx, ch: ch}
}

func (e *emitter) send(ev types.Event) bool {
	select {
	case e.ch <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (e *emitter) message(text string) bool {
	ev := types.MessageEvent{Message: text, Order: e.next}
	e.next++
	return e.send(ev)
}

func (e *emitter) reformulated(text string) bool {
	ev := types.ReformulatedEvent{Reformulated: text, Order: e.next}
	e.next++
	return e.send(ev)
}

func (e *emitter) context(results []types.SearchResult) bool {
	ev := types.ContextEvent{Context: results, Order: e.next}
	e.next++
	return e.send(ev)
}

// WriteEvents encodes events as newline-delimited JSON, one object per
// event, until the channel closes. Transports that speak SSE can wrap the
// writer; the wire shape per event is identical.
func WriteEvents(w io.Writer, events <-chan types.Event) error {
	enc := json.NewEncoder(w)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
		if f, ok := w.(interface{ Flush() }); ok {
			f.Flush()
		}
	}
	return nil
}
