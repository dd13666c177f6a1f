package hook

import (
	"time"

	"remapd/internal/event"
	"remapd/internal/loopback"
	"remapd/internal/match"
)

// TriggerResponse classifies what one event meant to a trigger.
type TriggerResponse uint8

const (
	// ResponseNone: the event is irrelevant to every tracker of this
	// trigger.
	ResponseNone TriggerResponse = iota
	// ResponseMatches: the event matched a tracker but neither completed
	// an activation nor undid a pending one.
	ResponseMatches
	// ResponseReleases: a key that had contributed to a pending
	// activation was released before the activation completed. Events
	// withheld solely in anticipation of this trigger become eligible
	// for release.
	ResponseReleases
	// ResponseActivates: the event completed the simultaneous-hold
	// condition. Channels belonging to this trigger's trackers are now
	// claimed.
	ResponseActivates
)

// Per-tracker state inside a trigger.
//
//	up --press--> pending --all down--> active
//	                 \--wakeup--> expired
//	any state --release--> up
//
// expired means the key is still physically held but the hold window
// elapsed; it blocks re-activation until the key is released and
// pressed again.
type trackerState uint8

const (
	trackerUp trackerState = iota
	trackerPending
	trackerActive
	trackerExpired
)

type triggerTracker struct {
	key   match.Key
	held  match.Range
	state trackerState
	token loopback.Token
	armed bool
}

func (t *triggerTracker) isDown() bool {
	return t.state != trackerUp
}

// Trigger is the withhold-facing view of one hook's tracker set. It
// reports fine-grained transition outcomes per event and supports
// timer-based expiry of its activation window.
//
// Triggers are deliberately duplicated per consumer at construction
// time (Hook.Trigger returns a fresh instance per call) so that each
// consumer tracks its own transition history.
type Trigger struct {
	trackers []triggerTracker
	period   time.Duration
}

func newTrigger(keys []match.Key, period time.Duration) *Trigger {
	trackers := make([]triggerTracker, 0, len(keys))
	for _, key := range keys {
		held, ok := key.PopValue()
		if !ok {
			held = match.Held()
		}
		trackers = append(trackers, triggerTracker{key: key, held: held})
	}
	return &Trigger{trackers: trackers, period: period}
}

// Apply feeds one event through the trigger's trackers and reports the
// outcome. When the trigger has a hold period, a rising edge arms a
// one-shot loopback timer for that tracker; lb may be nil when no
// scheduling facility is available, in which case no window is armed.
func (tr *Trigger) Apply(ev event.Event, lb *loopback.Handle) TriggerResponse {
	response := ResponseNone
	rising := false

	for i := range tr.trackers {
		t := &tr.trackers[i]
		if !t.key.Matches(ev) {
			continue
		}
		down := t.held.Contains(ev.Value)
		switch {
		case down && t.state == trackerUp:
			t.state = trackerPending
			if tr.period > 0 && lb != nil {
				t.token = lb.Schedule(tr.period)
				t.armed = true
			}
			rising = true
			if response == ResponseNone {
				response = ResponseMatches
			}
		case !down && t.isDown():
			wasPending := t.state == trackerPending
			t.state = trackerUp
			t.armed = false
			if wasPending {
				response = ResponseReleases
			} else if response == ResponseNone {
				response = ResponseMatches
			}
		default:
			// Repeat within the current state, or a release of a key
			// that was already up.
			if response == ResponseNone {
				response = ResponseMatches
			}
		}
	}

	if rising && tr.allDown() {
		for i := range tr.trackers {
			tr.trackers[i].state = trackerActive
			tr.trackers[i].armed = false
		}
		return ResponseActivates
	}
	return response
}

// allDown reports whether every tracker is held inside a live window.
// An expired tracker keeps the trigger from activating until its key is
// released and pressed again.
func (tr *Trigger) allDown() bool {
	for i := range tr.trackers {
		switch tr.trackers[i].state {
		case trackerPending, trackerActive:
		default:
			return false
		}
	}
	return true
}

// Wakeup handles the expiry of a previously armed token. It reports
// whether the expiry invalidated a still-pending activation window, in
// which case events withheld for this trigger may now be releasable.
func (tr *Trigger) Wakeup(token loopback.Token) bool {
	expired := false
	for i := range tr.trackers {
		t := &tr.trackers[i]
		if t.armed && t.token == token && t.state == trackerPending {
			t.state = trackerExpired
			t.armed = false
			expired = true
		}
	}
	return expired
}

// HasTrackerMatchingChannel reports static channel membership, ignoring
// tracker state.
func (tr *Trigger) HasTrackerMatchingChannel(ch event.Channel) bool {
	for i := range tr.trackers {
		if tr.trackers[i].key.MatchesChannel(ch) {
			return true
		}
	}
	return false
}

// HasActiveTrackerMatchingChannel reports whether a tracker covering
// the channel is currently withholding: held and not expired. This is
// the test for "is still legitimately withheld".
func (tr *Trigger) HasActiveTrackerMatchingChannel(ch event.Channel) bool {
	for i := range tr.trackers {
		t := &tr.trackers[i]
		if t.state != trackerPending && t.state != trackerActive {
			continue
		}
		if t.key.MatchesChannel(ch) {
			return true
		}
	}
	return false
}
