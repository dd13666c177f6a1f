// Package event defines the typed vocabulary of the processing stream:
// kernel event types and codes, the virtual key/button split, domains,
// namespaces, and the Event value that flows through hooks and withhold
// filters.
package event

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Value is the numeric payload of an input event. For key events it is
// 0 (release), 1 (press) or 2 (autorepeat).
type Value = int32

// Type is a kernel-level event category (EV_KEY, EV_ABS, ...).
type Type uint16

const (
	TypeSyn Type = unix.EV_SYN
	TypeKey Type = unix.EV_KEY
	TypeRel Type = unix.EV_REL
	TypeAbs Type = unix.EV_ABS
	TypeMsc Type = unix.EV_MSC
	TypeSw  Type = unix.EV_SW
	TypeLed Type = unix.EV_LED
	TypeSnd Type = unix.EV_SND
	TypeRep Type = unix.EV_REP
)

func (t Type) IsKey() bool { return t == TypeKey }
func (t Type) IsAbs() bool { return t == TypeAbs }
func (t Type) IsRel() bool { return t == TypeRel }
func (t Type) IsRep() bool { return t == TypeRep }
func (t Type) IsSyn() bool { return t == TypeSyn }

// String returns the lowercase kernel name of the type without the EV_
// prefix, or a numeric form for types we have no name for.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type%d", uint16(t))
}

var typeNames = map[Type]string{
	TypeSyn: "syn",
	TypeKey: "key",
	TypeRel: "rel",
	TypeAbs: "abs",
	TypeMsc: "msc",
	TypeSw:  "sw",
	TypeLed: "led",
	TypeSnd: "snd",
	TypeRep: "rep",
}

// Code pairs an event type with a numeric code.
//
// Invariant: the code is a valid code for its type. Constructing a Code
// from a (type, code) pair that does not exist in the kernel tables is
// undefined behaviour by contract and is never checked here; callers
// must only build codes that passed IsValidCode or that were decoded
// from a real device event.
type Code struct {
	typ  Type
	code uint16
}

// NewCode builds a Code from a type and a raw numeric code. See the
// validity invariant on Code.
func NewCode(t Type, code uint16) Code {
	return Code{typ: t, code: code}
}

func (c Code) Type() Type   { return c.typ }
func (c Code) Code() uint16 { return c.code }

// VirtualType reports the user-facing kind of this code. The kernel uses
// EV_KEY for both keyboard keys and buttons; splitting them keeps "key:"
// and "btn:" matching unambiguous even though the kernel type is one and
// the same.
func (c Code) VirtualType() VirtualType {
	if !c.typ.IsKey() {
		return VirtualOther
	}
	if isButtonCode(c.code) {
		return VirtualButton
	}
	return VirtualKey
}

func (c Code) String() string {
	return fmt.Sprintf("%s:%d", c.prefix(), c.code)
}

func (c Code) prefix() string {
	switch c.VirtualType() {
	case VirtualKey:
		return "key"
	case VirtualButton:
		return "btn"
	default:
		return c.typ.String()
	}
}

// VirtualType is the kind of a code as seen by the user: the EV_KEY type
// split into keys and buttons, everything else left as is.
type VirtualType uint8

const (
	VirtualKey VirtualType = iota
	VirtualButton
	VirtualOther
)

// Domain identifies the virtual source that emitted an event. Two events
// with the same code but different domains belong to different channels.
type Domain uint16

var domainCounter atomic.Uint32

// NewDomain hands out a process-unique domain for an event source.
func NewDomain() Domain {
	return Domain(domainCounter.Add(1))
}

// Namespace is a coarse partition of the stream into processing stages.
// It is stronger than domain-based filtering: a filter confined to one
// namespace can never observe or mutate events in another, even if the
// filter matches any domain.
type Namespace uint8

const (
	// NamespaceInput marks events freshly read from a device that have
	// not yet entered the user-visible stream.
	NamespaceInput Namespace = iota
	// NamespaceUser marks events in normal processing.
	NamespaceUser
	// NamespaceYielded marks events re-injected by an explicit re-entry
	// action; they skip the filters that already saw them.
	NamespaceYielded
	// NamespaceOutput marks events already matched for emission.
	NamespaceOutput
)

// Channel is the unit of identity for hold and withhold bookkeeping.
// All per-key-instance state is keyed by channel, never by code alone.
type Channel struct {
	Code   Code
	Domain Domain
}

// Flags carries per-event markers set and consumed during processing.
type Flags uint8

const (
	// FlagWithholdable marks an event as a candidate for withholding.
	// Upstream matching sets it; Withhold clears it on first inspection
	// so the decision is made at most once per event.
	FlagWithholdable Flags = 1 << iota
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }
func (f *Flags) Set(flag Flags)     { *f |= flag }
func (f *Flags) Clear(flag Flags)   { *f &^= flag }

// Event is one discrete hardware or synthetic event in the stream.
type Event struct {
	Code  Code
	Value Value

	// PreviousValue is the value this channel had the last time it was
	// emitted by the originating device. It makes edges detectable even
	// when intermediate values were suppressed upstream.
	PreviousValue Value

	Domain    Domain
	Namespace Namespace
	Flags     Flags
}

// New builds an event. The flag set starts empty.
func New(code Code, value, previous Value, domain Domain, ns Namespace) Event {
	return Event{
		Code:          code,
		Value:         value,
		PreviousValue: previous,
		Domain:        domain,
		Namespace:     ns,
	}
}

func (ev Event) Type() Type { return ev.Code.Type() }

// Channel returns the identity key used for hold/withhold bookkeeping.
func (ev Event) Channel() Channel {
	return Channel{Code: ev.Code, Domain: ev.Domain}
}

// WithDomain returns a copy of the event tagged with a new domain.
func (ev Event) WithDomain(domain Domain) Event {
	ev.Domain = domain
	return ev
}

func (ev Event) String() string {
	return fmt.Sprintf("%s:%d", ev.Code, ev.Value)
}
