// Package loopback provides the one-shot timer facility that lets a
// trigger arrange to be revisited later without new input. The owning
// runtime polls for due tokens and delivers each as a discrete wakeup
// call; nothing here runs on its own goroutine.
package loopback

import (
	"sort"
	"time"
)

// Token identifies one armed timer. Tokens are unique for the lifetime
// of a Loopback.
type Token uint64

type entry struct {
	due   time.Time
	token Token
}

// Loopback is a queue of armed one-shot timers ordered by deadline.
type Loopback struct {
	next    Token
	entries []entry
}

func New() *Loopback {
	return &Loopback{}
}

// Handle returns a scheduling handle pinned to the given instant. All
// delays scheduled through the handle are measured from that instant,
// so every trigger inside one processing step sees the same clock.
func (l *Loopback) Handle(now time.Time) *Handle {
	return &Handle{loopback: l, now: now}
}

// NextDeadline returns the earliest pending deadline, if any.
func (l *Loopback) NextDeadline() (time.Time, bool) {
	if len(l.entries) == 0 {
		return time.Time{}, false
	}
	return l.entries[0].due, true
}

// Poll removes and returns every token whose deadline has passed, in
// deadline order.
func (l *Loopback) Poll(now time.Time) []Token {
	var due []Token
	for len(l.entries) > 0 && !l.entries[0].due.After(now) {
		due = append(due, l.entries[0].token)
		l.entries = l.entries[1:]
	}
	return due
}

// Pending reports how many timers are armed.
func (l *Loopback) Pending() int {
	return len(l.entries)
}

func (l *Loopback) schedule(due time.Time) Token {
	l.next++
	token := l.next
	// Insert after any existing entry with the same deadline so equal
	// deadlines fire in scheduling order.
	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].due.After(due)
	})
	l.entries = append(l.entries, entry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = entry{due: due, token: token}
	return token
}

// Handle schedules timers relative to a fixed instant.
type Handle struct {
	loopback *Loopback
	now      time.Time
}

// Schedule arms a one-shot timer that becomes due delay after the
// handle's instant and returns its token.
func (h *Handle) Schedule(delay time.Duration) Token {
	return h.loopback.schedule(h.now.Add(delay))
}
