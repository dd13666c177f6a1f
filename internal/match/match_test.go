package match

import (
	"testing"

	"remapd/internal/event"
)

var keyA = event.NewCode(event.TypeKey, 30)

func TestRangeContains(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		v    event.Value
		want bool
	}{
		{"between inside", RangeBetween(1, 2), 1, true},
		{"between upper", RangeBetween(1, 2), 2, true},
		{"between below", RangeBetween(1, 2), 0, false},
		{"between above", RangeBetween(1, 2), 3, false},
		{"at least inside", RangeAtLeast(1), 100, true},
		{"at least below", RangeAtLeast(1), 0, false},
		{"exactly match", RangeExactly(0), 0, true},
		{"exactly miss", RangeExactly(0), 1, false},
		{"unbounded", Range{}, -50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Contains(tt.v); got != tt.want {
				t.Errorf("Contains(%d) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestKeyMatches(t *testing.T) {
	domain := event.Domain(7)
	key := NewKey(keyA, domain)

	ev := event.New(keyA, 1, 0, domain, event.NamespaceUser)
	if !key.Matches(ev) {
		t.Error("key should match its own code and domain")
	}

	other := ev.WithDomain(event.Domain(8))
	if key.Matches(other) {
		t.Error("key must not match a different domain")
	}

	wrongCode := event.New(event.NewCode(event.TypeKey, 48), 1, 0, domain, event.NamespaceUser)
	if key.Matches(wrongCode) {
		t.Error("key must not match a different code")
	}
}

func TestKeyNamespaceBarrier(t *testing.T) {
	key := NewKeyForCode(keyA)
	for _, ns := range []event.Namespace{event.NamespaceInput, event.NamespaceYielded, event.NamespaceOutput} {
		ev := event.New(keyA, 1, 0, 0, ns)
		if key.Matches(ev) {
			t.Errorf("user-namespace key must not match namespace %d", ns)
		}
	}
}

func TestKeyValueRange(t *testing.T) {
	key := NewKeyForCode(keyA).WithValue(RangeExactly(1))
	press := event.New(keyA, 1, 0, 0, event.NamespaceUser)
	release := event.New(keyA, 0, 1, 0, event.NamespaceUser)
	if !key.Matches(press) {
		t.Error("value 1 should match")
	}
	if key.Matches(release) {
		t.Error("value 0 should not match")
	}
}

func TestPopValue(t *testing.T) {
	key := NewKeyForCode(keyA).WithValue(RangeExactly(2))
	r, ok := key.PopValue()
	if !ok {
		t.Fatal("expected an attached range")
	}
	if !r.Contains(2) || r.Contains(1) {
		t.Error("detached range does not match the attached one")
	}
	if _, ok := key.PopValue(); ok {
		t.Error("second pop should find nothing")
	}
	// After detaching, the key no longer constrains values.
	release := event.New(keyA, 0, 1, 0, event.NamespaceUser)
	if !key.Matches(release) {
		t.Error("popped key should match any value")
	}
}

func TestMatchesChannel(t *testing.T) {
	domain := event.Domain(3)
	key := NewKey(keyA, domain).WithValue(Held())

	if !key.MatchesChannel(event.Channel{Code: keyA, Domain: domain}) {
		t.Error("channel with same code and domain should match")
	}
	if key.MatchesChannel(event.Channel{Code: keyA, Domain: event.Domain(4)}) {
		t.Error("channel with different domain should not match")
	}
}
