// Package withhold implements the delayed-release channel buffer: a
// per-channel state machine that parks withholdable key presses until
// it is known whether a hook will claim them, then either absorbs or
// re-emits them.
package withhold

import (
	"remapd/internal/event"
	"remapd/internal/hook"
	"remapd/internal/loopback"
	"remapd/internal/match"
)

type channelStateKind uint8

const (
	// stateWithheld: a press is parked and has not been forwarded.
	stateWithheld channelStateKind = iota
	// stateResidual: the parked press was claimed by a trigger
	// activation; the matching release must be absorbed when it
	// arrives.
	stateResidual
)

// channelEntry pairs a channel with its state. Entries live in an
// insertion-ordered list so that releases come out oldest first.
type channelEntry struct {
	channel event.Channel
	kind    channelStateKind
	event   event.Event // parked press, valid while kind == stateWithheld
}

// Withhold delays matching key presses while the triggers of the
// associated hooks decide whether to claim them.
type Withhold struct {
	// Only events matching one of these keys are withholdable at all.
	keys []match.Key

	// Independent copies of the triggers of the associated hooks.
	triggers []*hook.Trigger

	channels []channelEntry
}

// New builds a withhold filter over the given keys, coordinated by the
// given triggers. The triggers must be fresh copies (Hook.Trigger) not
// shared with any other consumer.
func New(keys []match.Key, triggers []*hook.Trigger) *Withhold {
	return &Withhold{keys: keys, triggers: triggers}
}

// ApplyToAll processes a batch in order, appending emitted events to
// out.
func (w *Withhold) ApplyToAll(events []event.Event, out *[]event.Event, lb *loopback.Handle) {
	for _, ev := range events {
		w.apply(ev, out, lb)
	}
}

func (w *Withhold) apply(ev event.Event, out *[]event.Event, lb *loopback.Handle) {
	// Events that no preceding hook marked are not ours to touch.
	if !ev.Flags.Has(event.FlagWithholdable) {
		*out = append(*out, ev)
		return
	}
	// Withholding decisions are made at most once per event.
	ev.Flags.Clear(event.FlagWithholdable)

	var activated []*hook.Trigger
	for _, trigger := range w.triggers {
		if trigger.Apply(ev, lb) == hook.ResponseActivates {
			activated = append(activated, trigger)
		}
	}

	// The step's own final event, if any, is appended after all events
	// released below so that older withheld events reach the stream
	// first.
	var final event.Event
	hasFinal := false

	if w.matchesKeys(ev) {
		idx := w.findChannel(ev.Channel())
		switch ev.Value {
		case 1:
			switch {
			case idx < 0:
				w.channels = append(w.channels, channelEntry{
					channel: ev.Channel(),
					kind:    stateWithheld,
					event:   ev,
				})
			case w.channels[idx].kind == stateResidual:
				w.channels[idx] = channelEntry{
					channel: ev.Channel(),
					kind:    stateWithheld,
					event:   ev,
				}
			default:
				// Duplicate press with no intervening release. Correct
				// devices do not send this; leave the parked event as
				// is.
			}
		case 0:
			if idx >= 0 && w.channels[idx].kind == stateResidual {
				// The press was claimed and consumed earlier; absorb
				// its release.
				w.channels = append(w.channels[:idx], w.channels[idx+1:]...)
			} else {
				// Never actually forwarded as held, or nothing claimed
				// it: the release passes through.
				final, hasFinal = ev, true
			}
		default:
			// Repeats carry no information once the state machine owns
			// the channel; drop them.
		}
	} else {
		final, hasFinal = ev, true
	}

	// Presses withheld on a channel of a trigger that just activated
	// are now claimed: they will never re-enter the stream as raw
	// presses, only their eventual release is absorbed.
	if len(activated) > 0 {
		for i := range w.channels {
			entry := &w.channels[i]
			if entry.kind != stateWithheld {
				continue
			}
			for _, trigger := range activated {
				if trigger.HasTrackerMatchingChannel(entry.channel) {
					entry.kind = stateResidual
					break
				}
			}
		}
	}

	w.releaseEvents(out)

	if hasFinal {
		*out = append(*out, final)
	}
}

// Wakeup delivers a due loopback token to every trigger. If at least
// one trigger's window expired, withheld events are re-examined and
// those no longer claimed by anything are released.
func (w *Withhold) Wakeup(token loopback.Token, out *[]event.Event) {
	expired := false
	for _, trigger := range w.triggers {
		if trigger.Wakeup(token) {
			expired = true
		}
	}
	if !expired {
		return
	}
	w.releaseEvents(out)
}

// releaseEvents forwards every withheld event that no trigger is still
// actively withholding, oldest first, and drops their entries.
func (w *Withhold) releaseEvents(out *[]event.Event) {
	kept := w.channels[:0]
	for _, entry := range w.channels {
		if entry.kind == stateWithheld && !w.stillWithheld(entry.channel) {
			*out = append(*out, entry.event)
			continue
		}
		kept = append(kept, entry)
	}
	w.channels = kept
}

func (w *Withhold) stillWithheld(ch event.Channel) bool {
	for _, trigger := range w.triggers {
		if trigger.HasActiveTrackerMatchingChannel(ch) {
			return true
		}
	}
	return false
}

func (w *Withhold) matchesKeys(ev event.Event) bool {
	for _, key := range w.keys {
		if key.Matches(ev) {
			return true
		}
	}
	return false
}

func (w *Withhold) findChannel(ch event.Channel) int {
	for i := range w.channels {
		if w.channels[i].channel == ch {
			return i
		}
	}
	return -1
}
