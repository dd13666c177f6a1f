package hook

import (
	"remapd/internal/event"
	"remapd/internal/match"
)

// Tracker watches one key and remembers whether it is currently held.
// "Held" means the last matching value fell inside the tracker's range,
// which defaults to 1-or-greater when the key carries no range of its
// own.
type Tracker struct {
	key  match.Key
	held match.Range
	down bool
}

// NewTracker builds a tracker for key, detaching the key's value range
// to serve as the held range.
func NewTracker(key match.Key) *Tracker {
	held, ok := key.PopValue()
	if !ok {
		held = match.Held()
	}
	return &Tracker{key: key, held: held}
}

// Apply feeds one event through the tracker. If the event's code does
// not match the tracker's key, nothing changes and the result is false.
// Otherwise the held state is recomputed and the result is true exactly
// on the rising edge: the value entered the held range while the
// previous matching value was outside it.
func (t *Tracker) Apply(ev event.Event) bool {
	if !t.key.Matches(ev) {
		return false
	}
	wasDown := t.down
	t.down = t.held.Contains(ev.Value)
	return t.down && !wasDown
}

// IsDown reports the current held state without mutating it.
func (t *Tracker) IsDown() bool {
	return t.down
}

// MatchesChannel reports whether the tracker's key covers the channel,
// ignoring current state.
func (t *Tracker) MatchesChannel(ch event.Channel) bool {
	return t.key.MatchesChannel(ch)
}
