// Package pipeline runs event batches through hooks and withhold
// filters in a fixed order and drives timer wakeups between batches.
//
// Processing is single-threaded and run-to-completion: one batch or one
// wakeup is fully consumed before the next is considered. The only
// asynchronous-looking mechanism is the loopback timer queue, which the
// driver loop polls between inputs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"remapd/internal/event"
	"remapd/internal/hook"
	"remapd/internal/loopback"
	"remapd/internal/stream"
	"remapd/internal/withhold"
)

// Source delivers ordered event batches to the pipeline.
type Source interface {
	// Batches returns the channel batches arrive on. The channel closes
	// when the source is exhausted.
	Batches() <-chan []event.Event
}

// Sink receives the events the pipeline emits, in order.
type Sink interface {
	Write(events []event.Event) error
}

// Pipeline owns the processing stages and the loopback timer queue.
type Pipeline struct {
	hooks     []*hook.Hook
	withholds []*withhold.Withhold
	loopback  *loopback.Loopback
	state     *stream.State
	log       *slog.Logger
}

// New builds an empty pipeline logging through log. A nil logger falls
// back to slog.Default().
func New(log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		loopback: loopback.New(),
		state:    stream.NewState(log),
		log:      log,
	}
}

// AddHook appends a hook stage. Hooks run before withhold filters, in
// the order added.
func (p *Pipeline) AddHook(h *hook.Hook) {
	p.hooks = append(p.hooks, h)
}

// AddWithhold appends a withhold stage. Withhold filters run after all
// hooks, in the order added.
func (p *Pipeline) AddWithhold(w *withhold.Withhold) {
	p.withholds = append(p.withholds, w)
}

// Loopback exposes the timer queue so an embedding driver can poll it.
func (p *Pipeline) Loopback() *loopback.Loopback {
	return p.loopback
}

// RunBatch processes one input batch at the given instant and returns
// the emitted events.
func (p *Pipeline) RunBatch(events []event.Event, now time.Time) []event.Event {
	handle := p.loopback.Handle(now)

	for _, h := range p.hooks {
		h.ApplyToAll(events, p.state)
	}

	// Synthetic events queued by hook effects re-enter the stream after
	// the hook stage, behind the batch that caused them.
	batch := events
	if queued := p.state.Drain(); len(queued) > 0 {
		batch = make([]event.Event, 0, len(events)+len(queued))
		batch = append(batch, events...)
		batch = append(batch, queued...)
	}

	for _, w := range p.withholds {
		out := make([]event.Event, 0, len(batch))
		w.ApplyToAll(batch, &out, handle)
		batch = out
	}
	return batch
}

// Wakeup delivers a due loopback token to every withhold filter and
// returns the events released by expired hold windows.
func (p *Pipeline) Wakeup(token loopback.Token) []event.Event {
	var out []event.Event
	for _, w := range p.withholds {
		w.Wakeup(token, &out)
	}
	return out
}

// Run drives the pipeline from src until the source closes or the
// context is cancelled, multiplexing batches against loopback
// deadlines. Emitted events go to sink in order.
func (p *Pipeline) Run(ctx context.Context, src Source, sink Sink) error {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		var timerC <-chan time.Time
		if deadline, ok := p.loopback.NextDeadline(); ok {
			timer.Reset(time.Until(deadline))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case batch, ok := <-src.Batches():
			if timerC != nil && !timer.Stop() {
				<-timer.C
			}
			if !ok {
				return nil
			}
			if out := p.RunBatch(batch, time.Now()); len(out) > 0 {
				if err := sink.Write(out); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}

		case now := <-timerC:
			for _, token := range p.loopback.Poll(now) {
				out := p.Wakeup(token)
				if len(out) == 0 {
					continue
				}
				if err := sink.Write(out); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
		}
	}
}
