// Package match implements the Key and Range predicates that select
// events for hooks and withhold filters.
package match

import (
	"remapd/internal/event"
)

// Range is a closed numeric interval over event values. Either bound may
// be absent.
type Range struct {
	min, max       event.Value
	hasMin, hasMax bool
}

// RangeBetween returns the interval [min, max].
func RangeBetween(min, max event.Value) Range {
	return Range{min: min, max: max, hasMin: true, hasMax: true}
}

// RangeAtLeast returns the interval [min, +inf).
func RangeAtLeast(min event.Value) Range {
	return Range{min: min, hasMin: true}
}

// RangeExactly returns the degenerate interval [v, v].
func RangeExactly(v event.Value) Range {
	return RangeBetween(v, v)
}

// Held is the default range for hold tracking: value 1 or greater.
func Held() Range {
	return RangeAtLeast(1)
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v event.Value) bool {
	if r.hasMin && v < r.min {
		return false
	}
	if r.hasMax && v > r.max {
		return false
	}
	return true
}

// Key matches events against a code pattern, an optional domain, a
// namespace, and an optional value range.
type Key struct {
	code      *event.Code
	domain    *event.Domain
	namespace event.Namespace
	value     *Range
}

// NewKey returns a key matching one code from one domain in the user
// namespace.
func NewKey(code event.Code, domain event.Domain) Key {
	return Key{code: &code, domain: &domain, namespace: event.NamespaceUser}
}

// NewKeyForCode returns a key matching one code from any domain in the
// user namespace.
func NewKeyForCode(code event.Code) Key {
	return Key{code: &code, namespace: event.NamespaceUser}
}

// WithValue returns a copy of the key restricted to values inside r.
func (k Key) WithValue(r Range) Key {
	k.value = &r
	return k
}

// WithNamespace returns a copy of the key confined to ns.
func (k Key) WithNamespace(ns event.Namespace) Key {
	k.namespace = ns
	return k
}

// Matches reports whether the event satisfies every constraint of the
// key. The namespace check is a hard barrier: a key never matches an
// event from another namespace, regardless of its other constraints.
func (k Key) Matches(ev event.Event) bool {
	if ev.Namespace != k.namespace {
		return false
	}
	if k.code != nil && ev.Code != *k.code {
		return false
	}
	if k.domain != nil && ev.Domain != *k.domain {
		return false
	}
	if k.value != nil && !k.value.Contains(ev.Value) {
		return false
	}
	return true
}

// MatchesChannel reports whether the key's code and domain constraints
// match the channel, ignoring value and current state.
func (k Key) MatchesChannel(ch event.Channel) bool {
	if k.code != nil && ch.Code != *k.code {
		return false
	}
	if k.domain != nil && ch.Domain != *k.domain {
		return false
	}
	return true
}

// PopValue detaches the key's value range and returns it. After the
// call the key no longer constrains values. The second result is false
// when no range was attached.
func (k *Key) PopValue() (Range, bool) {
	if k.value == nil {
		return Range{}, false
	}
	r := *k.value
	k.value = nil
	return r, true
}
