package k1pro

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openvsd/k1pro-crt/pkg/crt"
	"github.com/openvsd/k1pro-crt/pkg/hid"
)

// ButtonImage pairs a physical button slot with an encoded image buffer.
type ButtonImage struct {
	Slot  int
	Image []byte
}

// SetButtonImage uploads one encoded 64x64 JPEG to a button. On success the
// image is cached and re-sent by the keepalive daemon; on failure the cache
// keeps its previous value for the slot. The protocol is write-only here:
// the device sends no acknowledgement.
func (d *Deck) SetButtonImage(slot int, image []byte) error {
	if !d.Connected() {
		return ErrNotConnected
	}
	id, err := crt.ProtocolID(slot)
	if err != nil {
		return err
	}
	if len(image) > crt.MaxImageSize {
		return fmt.Errorf("slot %d: %w", slot, crt.ErrImageTooLarge)
	}

	err = d.withControl(func(dev hid.Device) error {
		if err := d.sendImage(dev, id, image); err != nil {
			return err
		}
		d.images[slot] = cloneBytes(image)
		return nil
	})
	if err != nil {
		return &UploadError{Slot: slot, Err: err}
	}
	return nil
}

// SetButtonImages uploads a batch under a single lock acquisition. Items
// with an out-of-range slot are skipped; a failed item does not stop the
// rest. It returns the slots that were uploaded and a joined error for the
// items that failed.
func (d *Deck) SetButtonImages(images []ButtonImage) ([]int, error) {
	if !d.Connected() {
		return nil, ErrNotConnected
	}

	var done []int
	var errs []error
	err := d.withControl(func(dev hid.Device) error {
		for _, bi := range images {
			id, err := crt.ProtocolID(bi.Slot)
			if err != nil {
				d.log.Warn("skipping invalid button slot", slog.Int("slot", bi.Slot))
				continue
			}
			if len(bi.Image) > crt.MaxImageSize {
				errs = append(errs, &UploadError{Slot: bi.Slot, Err: crt.ErrImageTooLarge})
				continue
			}
			if err := d.sendImage(dev, id, bi.Image); err != nil {
				errs = append(errs, &UploadError{Slot: bi.Slot, Err: err})
				continue
			}
			d.images[bi.Slot] = cloneBytes(bi.Image)
			done = append(done, bi.Slot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return done, errors.Join(errs...)
}

// RefreshImages re-sends every cached image, forcing the deck back into
// display mode. This is the recovery action after a ModeRevertedEvent.
func (d *Deck) RefreshImages() error {
	if !d.Connected() {
		return ErrNotConnected
	}
	return d.withControl(func(dev hid.Device) error {
		for slot, img := range d.images {
			id, err := crt.ProtocolID(slot)
			if err != nil {
				return err
			}
			if err := d.sendImage(dev, id, img); err != nil {
				return &UploadError{Slot: slot, Err: err}
			}
		}
		return nil
	})
}

// CachedImage returns the most recently uploaded buffer for a slot.
func (d *Deck) CachedImage(slot int) ([]byte, bool) {
	d.controlMu.Lock()
	defer d.controlMu.Unlock()
	img, ok := d.images[slot]
	if !ok {
		return nil, false
	}
	return cloneBytes(img), true
}

// cacheSize is used by the keepalive loop to skip idle cycles.
func (d *Deck) cacheSize() int {
	d.controlMu.Lock()
	defer d.controlMu.Unlock()
	return len(d.images)
}

// sendImage drives one BAT transfer: header frame, payload chunks, STP. Each
// write is followed by its settle delay; the firmware loses packets sent
// back to back.
func (d *Deck) sendImage(dev hid.Device, protocolID byte, image []byte) error {
	header, err := crt.ImageHeader(len(image), protocolID)
	if err != nil {
		return err
	}
	if err := writeReport(dev, header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	time.Sleep(d.settleHeader)

	for _, chunk := range crt.Chunks(image) {
		if err := writeReport(dev, chunk); err != nil {
			return fmt.Errorf("chunk: %w", err)
		}
		time.Sleep(d.settleChunk)
	}

	if err := writeCommand(dev, crt.CmdStop); err != nil {
		return err
	}
	time.Sleep(d.settleStop)
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
