package k1pro

import (
	"context"
	"fmt"
	"time"

	"github.com/openvsd/k1pro-crt/pkg/crt"
	"github.com/openvsd/k1pro-crt/pkg/hid"
)

// initStep pairs an init command with its settle delay. The delays come from
// the vendor software's USB capture; the firmware drops commands that arrive
// faster.
type initStep struct {
	cmd    crt.Command
	settle time.Duration
}

var initSequence = [...]initStep{
	{crt.CmdDisconnect, time.Millisecond},
	{crt.CmdWake, time.Millisecond},
	{crt.CmdLight, 100 * time.Microsecond},
	{crt.CmdQuery, 100 * time.Microsecond},
	{crt.CmdCursorPos, 2 * time.Millisecond},
	{crt.CmdLight, time.Millisecond},
	{crt.CmdClear, time.Millisecond},
	{crt.CmdStop, 2 * time.Millisecond},
}

// init switches the deck from keyboard emulation into display mode. The
// whole sequence runs under the control lock as one unit; no step is
// individually retried. Any failure leaves the deck disconnected.
func (d *Deck) init(ctx context.Context) error {
	d.state.Store(int32(Initializing))
	err := d.withControl(func(dev hid.Device) error {
		for _, step := range initSequence {
			if err := writeCommand(dev, step.cmd); err != nil {
				return err
			}
			if err := sleepCtx(ctx, step.settle); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.state.Store(int32(Disconnected))
		return fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	d.state.Store(int32(Ready))
	return nil
}

func sleepCtx(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
