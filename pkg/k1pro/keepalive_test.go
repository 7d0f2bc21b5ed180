package k1pro

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openvsd/k1pro-crt/pkg/crt"
	"github.com/openvsd/k1pro-crt/pkg/hid"
)

func isHeartbeat(report []byte) bool {
	frame := crt.CmdHeartbeat.Frame()
	return len(report) > len(frame) && bytes.Equal(report[1:1+len(frame)], frame)
}

func TestKeepaliveResendsCacheAndHeartbeat(t *testing.T) {
	d, ctl, _ := readyDeck(t)
	d.keepaliveInterval = 5 * time.Millisecond
	d.heartbeatInterval = 20 * time.Millisecond

	if err := d.SetButtonImage(1, testImage(40)); err != nil {
		t.Fatal(err)
	}
	before := len(ctl.Writes())

	d.StartKeepalive()
	time.Sleep(120 * time.Millisecond)
	if err := d.StopKeepalive(); err != nil {
		t.Fatalf("StopKeepalive failed: %v", err)
	}

	var resends, beats int
	for _, w := range ctl.Writes()[before:] {
		if _, ok := batHeader(w); ok {
			resends++
		}
		if isHeartbeat(w) {
			beats++
		}
	}
	if resends < 2 {
		t.Errorf("keepalive resent %d images, want at least 2", resends)
	}
	if beats < 1 {
		t.Error("keepalive never sent the CONNECT heartbeat")
	}
}

func TestKeepaliveIdleWithEmptyCache(t *testing.T) {
	d, _, backend := readyDeck(t)
	d.keepaliveInterval = 5 * time.Millisecond

	before := len(backend.Opens())
	d.StartKeepalive()
	time.Sleep(50 * time.Millisecond)
	if err := d.StopKeepalive(); err != nil {
		t.Fatal(err)
	}
	if got := len(backend.Opens()); got != before {
		t.Fatalf("keepalive opened the control device %d times with an empty cache", got-before)
	}
}

func TestKeepaliveSwallowsWriteErrors(t *testing.T) {
	d, ctl, _ := readyDeck(t)
	d.keepaliveInterval = 5 * time.Millisecond

	if err := d.SetButtonImage(0, testImage(20)); err != nil {
		t.Fatal(err)
	}
	ctl.WriteFunc = func(_ int, _ []byte) error {
		return fmt.Errorf("transient I/O error")
	}

	d.StartKeepalive()
	time.Sleep(50 * time.Millisecond)
	// The daemon must still be alive and stoppable after repeated failures.
	if err := d.StopKeepalive(); err != nil {
		t.Fatalf("daemon died or hung on transient errors: %v", err)
	}
}

func TestKeepaliveNeverOverlapsUploads(t *testing.T) {
	var active, maxActive atomic.Int32
	observe := func() {
		cur := active.Add(1)
		for {
			m := maxActive.Load()
			if cur <= m || maxActive.CompareAndSwap(m, cur) {
				break
			}
		}
	}

	backend := &hid.MockBackend{Infos: testInfos()}
	backend.OpenFunc = func(path string) (hid.Device, error) {
		if path != "ctl" {
			return &hid.MockDevice{}, nil
		}
		observe()
		return &hid.MockDevice{CloseFunc: func() { active.Add(-1) }}, nil
	}

	d, err := Open(context.Background(), WithBackend(backend), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	d.settleHeader, d.settleChunk, d.settleStop = 0, 0, 0
	d.keepaliveInterval = time.Millisecond

	if err := d.SetButtonImage(0, testImage(30)); err != nil {
		t.Fatal(err)
	}

	d.StartKeepalive()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_ = d.SetButtonImage(slot, testImage(200))
			}
		}(w % crt.NumButtons)
	}
	wg.Wait()
	if err := d.StopKeepalive(); err != nil {
		t.Fatal(err)
	}

	if maxActive.Load() > 1 {
		t.Fatalf("control device held open by %d writers at once", maxActive.Load())
	}
}

func TestStopKeepaliveWithoutStart(t *testing.T) {
	d := newDeck(WithLogger(testLogger()))
	if err := d.StopKeepalive(); err != nil {
		t.Fatalf("StopKeepalive on idle deck = %v, want nil", err)
	}
}

func TestStartKeepaliveIdempotent(t *testing.T) {
	d, _, _ := readyDeck(t)
	d.keepaliveInterval = 5 * time.Millisecond
	d.StartKeepalive()
	d.StartKeepalive()
	if err := d.StopKeepalive(); err != nil {
		t.Fatal(err)
	}
	if err := d.StopKeepalive(); err != nil {
		t.Fatalf("second stop = %v, want nil", err)
	}
}
