// Package stream holds the mutable processing state shared by hook
// effects during one step. All mutation is confined to the goroutine
// driving the pipeline; there is no locking because there is no
// concurrent access.
package stream

import (
	"log/slog"

	"remapd/internal/event"
)

// State is passed to every hook effect when its hook fires. Effects may
// queue synthetic events that re-enter the stream after the hook stage.
type State struct {
	queue []event.Event
	log   *slog.Logger
}

// NewState creates processing state logging through log. A nil logger
// falls back to slog.Default().
func NewState(log *slog.Logger) *State {
	if log == nil {
		log = slog.Default()
	}
	return &State{log: log}
}

// QueueEvent schedules a synthetic event for injection into the stream
// after the current hook stage.
func (s *State) QueueEvent(ev event.Event) {
	s.queue = append(s.queue, ev)
}

// Drain returns the queued synthetic events and empties the queue.
func (s *State) Drain() []event.Event {
	queued := s.queue
	s.queue = nil
	return queued
}

// Log returns the logger effects should report through.
func (s *State) Log() *slog.Logger {
	return s.log
}
