package event

import "testing"

const (
	codeKeyA    = 30    // KEY_A
	codeBtnLeft = 0x110 // BTN_LEFT
)

func TestVirtualTypeSplitsKeysAndButtons(t *testing.T) {
	tests := []struct {
		name string
		code Code
		want VirtualType
	}{
		{"letter key", NewCode(TypeKey, codeKeyA), VirtualKey},
		{"mouse button", NewCode(TypeKey, codeBtnLeft), VirtualButton},
		{"first button block start", NewCode(TypeKey, 0x100), VirtualButton},
		{"key after button block", NewCode(TypeKey, 0x160), VirtualKey},
		{"dpad button", NewCode(TypeKey, 0x220), VirtualButton},
		{"trigger happy button", NewCode(TypeKey, 0x2c0), VirtualButton},
		{"relative axis", NewCode(TypeRel, 0), VirtualOther},
		{"absolute axis", NewCode(TypeAbs, 1), VirtualOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.VirtualType(); got != tt.want {
				t.Errorf("VirtualType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidCode(t *testing.T) {
	if !IsValidCode(TypeKey, 0x2ff) {
		t.Error("KEY_MAX should be valid")
	}
	if IsValidCode(TypeKey, 0x300) {
		t.Error("code above KEY_MAX should be invalid")
	}
	if !IsValidCode(TypeRel, 0x0f) {
		t.Error("REL_MAX should be valid")
	}
	if IsValidCode(TypeRel, 0x10) {
		t.Error("code above REL_MAX should be invalid")
	}
	if IsValidCode(Type(0x1e), 0) {
		t.Error("unknown type should have no valid codes")
	}
}

func TestChannelIdentityIncludesDomain(t *testing.T) {
	code := NewCode(TypeKey, codeKeyA)
	a := New(code, 1, 0, Domain(1), NamespaceUser)
	b := New(code, 1, 0, Domain(2), NamespaceUser)

	if a.Channel() == b.Channel() {
		t.Error("events from different domains must not share a channel")
	}
	if a.Channel() != (Channel{Code: code, Domain: Domain(1)}) {
		t.Error("channel must be (code, domain)")
	}
}

func TestFlags(t *testing.T) {
	var f Flags
	if f.Has(FlagWithholdable) {
		t.Error("zero flags should have nothing set")
	}
	f.Set(FlagWithholdable)
	if !f.Has(FlagWithholdable) {
		t.Error("flag should be set")
	}
	f.Clear(FlagWithholdable)
	if f.Has(FlagWithholdable) {
		t.Error("flag should be cleared")
	}
}

func TestNewDomainIsUnique(t *testing.T) {
	seen := make(map[Domain]bool)
	for i := 0; i < 100; i++ {
		d := NewDomain()
		if seen[d] {
			t.Fatalf("domain %d handed out twice", d)
		}
		seen[d] = true
	}
}

func TestEventString(t *testing.T) {
	ev := New(NewCode(TypeKey, codeKeyA), 1, 0, 0, NamespaceUser)
	if got := ev.String(); got != "key:30:1" {
		t.Errorf("String() = %q, want %q", got, "key:30:1")
	}
	btn := New(NewCode(TypeKey, codeBtnLeft), 0, 1, 0, NamespaceUser)
	if got := btn.String(); got != "btn:272:0" {
		t.Errorf("String() = %q, want %q", got, "btn:272:0")
	}
}
