package event

// Per-type code bounds and the button ranges from the kernel's
// input-event-codes.h. golang.org/x/sys/unix exports the EV_* type
// numbers but not the per-type code tables, so the bounds live here.
const (
	synMax uint16 = 0x0f
	keyMax uint16 = 0x2ff
	relMax uint16 = 0x0f
	absMax uint16 = 0x3f
	mscMax uint16 = 0x07
	swMax  uint16 = 0x10
	ledMax uint16 = 0x0f
	sndMax uint16 = 0x07
	repMax uint16 = 0x01

	// The EV_KEY code space interleaves KEY_* and BTN_* blocks.
	btnMisc           uint16 = 0x100 // first button block
	keyOK             uint16 = 0x160 // keys resume here
	btnDpadUp         uint16 = 0x220
	btnDpadRight      uint16 = 0x223
	btnTriggerHappy   uint16 = 0x2c0
	btnTriggerHappy40 uint16 = 0x2e7
)

var codeMax = map[Type]uint16{
	TypeSyn: synMax,
	TypeKey: keyMax,
	TypeRel: relMax,
	TypeAbs: absMax,
	TypeMsc: mscMax,
	TypeSw:  swMax,
	TypeLed: ledMax,
	TypeSnd: sndMax,
	TypeRep: repMax,
}

// IsValidCode reports whether the (type, code) pair exists in the kernel
// tables this build knows about. Codes that fail this check must never
// be turned into a Code value.
func IsValidCode(t Type, code uint16) bool {
	max, ok := codeMax[t]
	return ok && code <= max
}

// isButtonCode reports whether an EV_KEY code falls in one of the BTN_*
// blocks rather than the KEY_* blocks.
func isButtonCode(code uint16) bool {
	switch {
	case code >= btnMisc && code < keyOK:
		return true
	case code >= btnDpadUp && code <= btnDpadRight:
		return true
	case code >= btnTriggerHappy && code <= btnTriggerHappy40:
		return true
	}
	return false
}
