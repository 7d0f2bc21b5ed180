package k1pro

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openvsd/k1pro-crt/pkg/crt"
	"github.com/openvsd/k1pro-crt/pkg/hid"
)

// StartKeepalive launches the background task that keeps the deck in display
// mode: on every interval it re-sends all cached button images, and at a
// much lower frequency writes the CRT+CONNECT heartbeat. Both happen inside
// one control lock acquisition, so keepalive cycles and caller uploads never
// interleave their writes. Starting twice is a no-op.
func (d *Deck) StartKeepalive() {
	d.kaMu.Lock()
	defer d.kaMu.Unlock()
	if d.kaDone != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.kaCancel = cancel
	d.kaDone = done
	go d.keepaliveLoop(ctx, done)
}

// StopKeepalive signals the daemon and waits for it to exit, bounded by the
// stop timeout.
func (d *Deck) StopKeepalive() error {
	d.kaMu.Lock()
	cancel, done := d.kaCancel, d.kaDone
	d.kaCancel, d.kaDone = nil, nil
	d.kaMu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-time.After(d.stopTimeout):
		return fmt.Errorf("k1pro: keepalive did not stop within %s", d.stopTimeout)
	}
}

// keepaliveLoop is the daemon body. Transient I/O errors are logged and
// swallowed; only cancellation ends the loop.
func (d *Deck) keepaliveLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(d.keepaliveInterval)
	defer ticker.Stop()
	lastBeat := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !d.Connected() || d.cacheSize() == 0 {
			continue
		}

		err := d.withControl(func(dev hid.Device) error {
			for slot, img := range d.images {
				if ctx.Err() != nil {
					return nil
				}
				id, err := crt.ProtocolID(slot)
				if err != nil {
					return err
				}
				if err := d.sendImage(dev, id, img); err != nil {
					return err
				}
			}
			if time.Since(lastBeat) >= d.heartbeatInterval {
				if err := writeCommand(dev, crt.CmdHeartbeat); err != nil {
					return err
				}
				lastBeat = time.Now()
			}
			return nil
		})
		if err != nil {
			d.log.Warn("keepalive cycle failed", slog.Any("error", err))
		}
	}
}
