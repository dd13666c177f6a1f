// Package hook implements edge-triggered all-hold actions and the
// withhold-facing trigger view over their tracker sets.
package hook

import (
	"time"

	"remapd/internal/event"
	"remapd/internal/match"
	"remapd/internal/stream"
	"remapd/internal/subprocess"
)

// Effect is one action fired by a hook. Effects run in registration
// order and fail independently: an effect must never stall the event
// stream or corrupt state owned by other components.
type Effect interface {
	Apply(st *stream.State)
}

// SpawnProcess launches an external command when its hook fires. Spawn
// failures are logged and swallowed.
type SpawnProcess struct {
	Program string
	Args    []string
}

func (e SpawnProcess) Apply(st *stream.State) {
	subprocess.Spawn(e.Program, e.Args...)
}

// SendEvent queues a synthetic event into the processing state; the
// pipeline re-injects it into the stream after the hook stage.
type SendEvent struct {
	Event event.Event
}

func (e SendEvent) Apply(st *stream.State) {
	st.QueueEvent(e.Event)
}

// EffectFunc adapts a plain function to the Effect interface.
type EffectFunc func(st *stream.State)

func (f EffectFunc) Apply(st *stream.State) {
	f(st)
}

// Hook fires a list of ordered effects exactly once per episode in
// which every one of its hold keys is simultaneously held. Firing is
// edge-triggered per hook: with three hold keys it fires when the last
// of the three transitions down, and does not refire while the others
// stay held and repeat events keep arriving.
type Hook struct {
	keys     []match.Key
	trackers []*Tracker
	effects  []Effect
	period   time.Duration
}

// New builds a hook holding on the given keys.
func New(keys []match.Key) *Hook {
	trackers := make([]*Tracker, 0, len(keys))
	for _, key := range keys {
		trackers = append(trackers, NewTracker(key))
	}
	return &Hook{keys: keys, trackers: trackers}
}

// SetPeriod sets the hold window used by triggers derived from this
// hook: if the remaining keys do not arrive within the window of a
// press, the trigger stops withholding that press.
func (h *Hook) SetPeriod(period time.Duration) {
	h.period = period
}

// AddEffect appends an effect to fire when the hook activates.
func (h *Hook) AddEffect(effect Effect) {
	h.effects = append(h.effects, effect)
}

// AddCommand makes the hook spawn an external process when it fires.
func (h *Hook) AddCommand(program string, args ...string) {
	h.AddEffect(SpawnProcess{Program: program, Args: args})
}

// Apply feeds one event to every tracker and fires the effects if this
// event completed the simultaneous-hold condition.
func (h *Hook) Apply(ev event.Event, st *stream.State) {
	rising := false
	for _, tracker := range h.trackers {
		if tracker.Apply(ev) {
			rising = true
		}
	}
	// Only an event that produced a rising edge can complete the hold.
	if !rising {
		return
	}
	for _, tracker := range h.trackers {
		if !tracker.IsDown() {
			return
		}
	}
	h.fire(st)
}

// ApplyToAll processes a batch in order.
func (h *Hook) ApplyToAll(events []event.Event, st *stream.State) {
	for _, ev := range events {
		h.Apply(ev, st)
	}
}

func (h *Hook) fire(st *stream.State) {
	for _, effect := range h.effects {
		effect.Apply(st)
	}
}

// Trigger derives a fresh withhold-facing trigger over this hook's hold
// keys. Each call returns an independent instance with its own
// transition history; a Withhold must own its own copy so its state
// cannot cross-talk with the hook's.
func (h *Hook) Trigger() *Trigger {
	return newTrigger(h.keys, h.period)
}
