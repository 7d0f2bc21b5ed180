package crt

import "fmt"

// NumButtons is the number of image buttons on the deck.
const NumButtons = 6

// buttonIDMap maps a physical button slot (0-5, left to right, top row then
// bottom row) to the device's protocol button ID. The device numbers its
// buttons column-major from the right:
//
//	physical: [B1][B2][B3]    protocol: [5][3][1]
//	          [B4][B5][B6]              [6][4][2]
var buttonIDMap = [NumButtons]byte{5, 3, 1, 6, 4, 2}

// ErrInvalidSlot reports a button slot outside [0, NumButtons).
type ErrInvalidSlot int

func (e ErrInvalidSlot) Error() string {
	return fmt.Sprintf("crt: invalid button slot %d (must be 0-%d)", int(e), NumButtons-1)
}

// ProtocolID translates a physical button slot to its protocol ID.
func ProtocolID(slot int) (byte, error) {
	if slot < 0 || slot >= NumButtons {
		return 0, ErrInvalidSlot(slot)
	}
	return buttonIDMap[slot], nil
}

// SlotForProtocolID is the reverse translation, used when decoding events.
// ok is false if id is not a button protocol ID.
func SlotForProtocolID(id byte) (slot int, ok bool) {
	for s, pid := range buttonIDMap {
		if pid == id {
			return s, true
		}
	}
	return 0, false
}
