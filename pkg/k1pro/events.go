package k1pro

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openvsd/k1pro-crt/pkg/crt"
)

// Event is one decoded report from the event sub-device.
type Event interface{ isEvent() }

// ButtonEvent is a press or release of a physical button slot (0-5).
type ButtonEvent struct {
	Slot    int
	Pressed bool
}

// KnobTurnEvent is one detent of a rotary knob (1-3).
type KnobTurnEvent struct {
	Knob      int
	Clockwise bool
}

// KnobPressEvent is a push on a rotary knob (1-3).
type KnobPressEvent struct {
	Knob int
}

// ModeRevertedEvent means the firmware has dropped back to keyboard
// emulation (a quirk triggered by certain physical button presses). Recover
// with RefreshImages; Listen does this automatically.
type ModeRevertedEvent struct{}

// UnknownEvent carries a report the driver cannot classify.
type UnknownEvent struct {
	Raw []byte
}

func (ButtonEvent) isEvent()       {}
func (KnobTurnEvent) isEvent()     {}
func (KnobPressEvent) isEvent()    {}
func (ModeRevertedEvent) isEvent() {}
func (UnknownEvent) isEvent()      {}

func (e ButtonEvent) String() string {
	if e.Pressed {
		return fmt.Sprintf("button %d pressed", e.Slot)
	}
	return fmt.Sprintf("button %d released", e.Slot)
}

func (e KnobTurnEvent) String() string {
	if e.Clockwise {
		return fmt.Sprintf("knob %d turned clockwise", e.Knob)
	}
	return fmt.Sprintf("knob %d turned counter-clockwise", e.Knob)
}

func (e KnobPressEvent) String() string { return fmt.Sprintf("knob %d pressed", e.Knob) }

func (ModeRevertedEvent) String() string { return "device reverted to keyboard mode" }

func (e UnknownEvent) String() string { return fmt.Sprintf("unknown event % x", e.Raw) }

// decodeEvent classifies one raw input report. The caller has already
// checked for short reads.
func decodeEvent(data []byte) Event {
	switch data[0] {
	case crt.EventReportID:
		if len(data) <= crt.ControlStateOffset {
			return UnknownEvent{Raw: data}
		}
		code := data[crt.ControlCodeOffset]
		state := data[crt.ControlStateOffset]
		if slot, ok := crt.SlotForProtocolID(code); ok {
			return ButtonEvent{Slot: slot, Pressed: state == 1}
		}
		if knob, cw, ok := crt.KnobTurn(code); ok {
			return KnobTurnEvent{Knob: knob, Clockwise: cw}
		}
		if knob, ok := crt.KnobPress(code); ok {
			return KnobPressEvent{Knob: knob}
		}
		return UnknownEvent{Raw: data}

	case crt.KeyReportID:
		// Keyboard-emulation report. The key release (0) is the signal that
		// the deck has left display mode.
		if data[1] == 0 {
			return ModeRevertedEvent{}
		}
		return UnknownEvent{Raw: data}

	default:
		return UnknownEvent{Raw: data}
	}
}

// OpenEvents opens the event sub-device for reading. Opening an already open
// session is a no-op.
func (d *Deck) OpenEvents() error {
	d.eventMu.Lock()
	defer d.eventMu.Unlock()
	if d.eventsWanted {
		return nil
	}
	dev, err := d.openEvents()
	if err != nil {
		return err
	}
	d.event = dev
	d.eventsWanted = true
	return nil
}

// CloseEvents releases the event session.
func (d *Deck) CloseEvents() error {
	d.eventMu.Lock()
	defer d.eventMu.Unlock()
	d.eventsWanted = false
	if d.event == nil {
		return nil
	}
	err := d.event.Close()
	d.event = nil
	return err
}

// ReadEvent reads one report from the event sub-device, waiting up to
// timeout. It returns (nil, nil) on timeout or short read. If a control
// sequence suspended the session in the meantime, ReadEvent reopens it at
// the recorded path first, preserving the caller's polling posture.
func (d *Deck) ReadEvent(timeout time.Duration) (Event, error) {
	d.eventMu.Lock()
	defer d.eventMu.Unlock()
	if !d.eventsWanted {
		return nil, ErrEventsClosed
	}
	if d.event == nil {
		dev, err := d.openEvents()
		if err != nil {
			return nil, err
		}
		d.event = dev
	}

	buf := make([]byte, crt.ReportSize)
	n, err := d.event.ReadWithTimeout(buf, timeout)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	if n < 2 {
		return nil, nil
	}
	return decodeEvent(buf[:n]), nil
}

// Listen polls the event sub-device until ctx is done, invoking handler for
// every decoded event. When the deck reverts to keyboard mode, Listen
// re-sends the cached images before handing the event over.
func (d *Deck) Listen(ctx context.Context, handler func(Event)) error {
	if err := d.OpenEvents(); err != nil {
		return err
	}
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ev, err := d.ReadEvent(100 * time.Millisecond)
		if err != nil {
			return err
		}
		if ev == nil {
			continue
		}
		if _, reverted := ev.(ModeRevertedEvent); reverted {
			if err := d.RefreshImages(); err != nil {
				d.log.Warn("display mode recovery failed", slog.Any("error", err))
			}
		}
		handler(ev)
	}
}
