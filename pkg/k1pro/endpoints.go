package k1pro

import (
	"fmt"
	"time"

	"github.com/openvsd/k1pro-crt/pkg/hid"
)

// discover enumerates the deck's HID interfaces and records the control and
// event paths. Both paths are fixed for the life of the Deck.
func (d *Deck) discover() error {
	infos, err := d.backend.Enumerate(VendorID, ProductID)
	if err != nil {
		return fmt.Errorf("enumerate: %w", err)
	}
	if len(infos) == 0 {
		return fmt.Errorf("%w (VID %04x PID %04x)", ErrDeviceNotFound, VendorID, ProductID)
	}

	for _, info := range infos {
		// A backend may report usage page 0 when it cannot read usages.
		if info.UsagePage != 0 && info.UsagePage != UsagePage {
			continue
		}
		switch info.Usage {
		case usageControl:
			d.controlPath = info.Path
		case usageEvents:
			d.eventPath = info.Path
		}
	}

	if d.controlPath == "" {
		return fmt.Errorf("%w: control interface (usage %d)", ErrEndpointNotFound, usageControl)
	}
	if d.eventPath == "" {
		return fmt.Errorf("%w: event interface (usage %d)", ErrEndpointNotFound, usageEvents)
	}
	return nil
}

// openControl opens the control interface, retrying on failure. The OS can
// hold the node exclusive for a short window after a previous close, so each
// attempt after the first is preceded by a fixed delay.
func (d *Deck) openControl() (hid.Device, error) {
	var lastErr error
	for attempt := 0; attempt < d.openRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(d.openRetryDelay)
		}
		dev, err := d.backend.Open(d.controlPath)
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrEndpointBusy, d.openRetries, lastErr)
}

// openEvents opens the event interface. No retry: the event stream is opened
// once and read continuously, not reopened per operation in the common case.
func (d *Deck) openEvents() (hid.Device, error) {
	dev, err := d.backend.Open(d.eventPath)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	return dev, nil
}

// suspendEventsLocked closes the driver-owned event session so a control
// session can be opened. Callers hold eventMu. The eventsWanted flag stays
// set; the next ReadEvent reopens the same path.
func (d *Deck) suspendEventsLocked() {
	if d.event == nil {
		return
	}
	if err := d.event.Close(); err != nil {
		d.log.Debug("event session close failed", "error", err)
	}
	d.event = nil
}
