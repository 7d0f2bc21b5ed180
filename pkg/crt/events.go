package crt

// Inbound event reports. After init the deck reports button and knob
// activity on report ID 4 with the layout ACK\x00\x00OK\x00\x00 followed by
// a control code and a state byte. Before init, or after the firmware falls
// back to keyboard emulation, it reports plain key events on report ID 1.
const (
	// EventReportID carries control events (buttons and knobs).
	EventReportID = 0x04
	// KeyReportID carries default-mode keyboard events. A zero key byte is
	// the release that signals the deck has left display mode.
	KeyReportID = 0x01

	// ControlCodeOffset is the report byte holding the control code.
	ControlCodeOffset = 10
	// ControlStateOffset is the report byte holding the press state.
	ControlStateOffset = 11
)

// NumKnobs is the number of rotary knobs on the deck.
const NumKnobs = 3

// Knob turn control codes. The low bit distinguishes direction.
const (
	knob1CW  = 0x51
	knob1CCW = 0x50
	knob2CW  = 0x61
	knob2CCW = 0x60
	knob3CW  = 0x91
	knob3CCW = 0x90
)

// Knob press control codes.
const (
	knob1Press = 0x25
	knob2Press = 0x30
	knob3Press = 0x31
)

var knobTurnCodes = map[byte]struct {
	Knob      int
	Clockwise bool
}{
	knob1CW:  {1, true},
	knob1CCW: {1, false},
	knob2CW:  {2, true},
	knob2CCW: {2, false},
	knob3CW:  {3, true},
	knob3CCW: {3, false},
}

var knobPressCodes = map[byte]int{
	knob1Press: 1,
	knob2Press: 2,
	knob3Press: 3,
}

// KnobTurn reports whether code is a knob turn, and if so which knob (1-3)
// and the direction.
func KnobTurn(code byte) (knob int, clockwise, ok bool) {
	t, ok := knobTurnCodes[code]
	return t.Knob, t.Clockwise, ok
}

// KnobPress reports whether code is a knob press, and if so which knob (1-3).
func KnobPress(code byte) (knob int, ok bool) {
	knob, ok = knobPressCodes[code]
	return knob, ok
}
