// Package k1pro drives the vsdinside k1-pro macro deck: six JPEG image
// buttons and three rotary knobs behind a vendor HID protocol. The deck
// exposes two logical HID interfaces on usage page 0xFFA0: usage 1 takes
// commands and image data, usage 2 reports button and knob activity.
//
// The firmware falls back to plain keyboard emulation unless it keeps
// receiving image traffic, so a connected deck normally runs the keepalive
// daemon (StartKeepalive) which re-sends every cached button image on a
// short interval plus a low-frequency CRT+CONNECT heartbeat.
package k1pro

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openvsd/k1pro-crt/pkg/crt"
	"github.com/openvsd/k1pro-crt/pkg/hid"
)

const (
	VendorID  uint16 = 0x5548
	ProductID uint16 = 0x1025
	// UsagePage is the vendor usage page carrying both sub-devices.
	UsagePage uint16 = 0xFFA0

	usageControl uint16 = 0x0001
	usageEvents  uint16 = 0x0002
)

// State is the driver's connection state.
type State int32

const (
	Disconnected State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Deck is one k1-pro device. All control traffic is serialized: init, each
// image upload and each keepalive cycle run as one atomic command sequence
// under controlMu. The event interface is logically single-reader and is
// guarded by eventMu.
//
// On at least one platform the two sub-devices cannot be held open at the
// same time, so every control sequence closes the driver-owned event session
// first; the next event read reopens it at the same path. Lock order is
// always controlMu before eventMu.
type Deck struct {
	backend hid.Backend
	log     *slog.Logger

	state atomic.Int32

	controlPath string
	eventPath   string

	controlMu sync.Mutex
	images    map[int][]byte // guarded by controlMu

	eventMu      sync.Mutex
	event        hid.Device // guarded by eventMu
	eventsWanted bool       // guarded by eventMu

	kaMu     sync.Mutex
	kaCancel context.CancelFunc
	kaDone   chan struct{}

	// Timing, fixed by firmware behavior. Fields so tests can shrink them.
	openRetries       int
	openRetryDelay    time.Duration
	settleHeader      time.Duration
	settleChunk       time.Duration
	settleStop        time.Duration
	keepaliveInterval time.Duration
	heartbeatInterval time.Duration
	stopTimeout       time.Duration
}

// Option configures a Deck before discovery.
type Option func(*Deck)

// WithBackend substitutes the HID backend, mainly for tests.
func WithBackend(b hid.Backend) Option {
	return func(d *Deck) { d.backend = b }
}

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deck) { d.log = l }
}

func newDeck(opts ...Option) *Deck {
	d := &Deck{
		log:               slog.Default(),
		images:            make(map[int][]byte),
		openRetries:       5,
		openRetryDelay:    100 * time.Millisecond,
		settleHeader:      10 * time.Millisecond,
		settleChunk:       10 * time.Millisecond,
		settleStop:        10 * time.Millisecond,
		keepaliveInterval: 50 * time.Millisecond,
		heartbeatInterval: 10 * time.Second,
		stopTimeout:       2 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open finds the deck, discovers its two sub-devices and runs the init
// sequence that switches it into display mode.
func Open(ctx context.Context, opts ...Option) (*Deck, error) {
	d := newDeck(opts...)
	if d.backend == nil {
		b, err := hid.NewBackend()
		if err != nil {
			return nil, fmt.Errorf("hid backend: %w", err)
		}
		d.backend = b
	}
	if err := d.discover(); err != nil {
		return nil, err
	}
	if err := d.init(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// State returns the current connection state.
func (d *Deck) State() State {
	return State(d.state.Load())
}

// Connected reports whether the deck is initialized into display mode.
func (d *Deck) Connected() bool {
	return d.State() == Ready
}

// Close stops the keepalive daemon and releases the event session. The deck
// is left disconnected; a later Open rebuilds all device state.
func (d *Deck) Close() error {
	if err := d.StopKeepalive(); err != nil {
		d.log.Warn("keepalive stop failed", slog.Any("error", err))
	}
	d.state.Store(int32(Disconnected))
	return d.CloseEvents()
}

// withControl runs fn against a freshly opened control session, holding the
// control lock for the whole sequence. A driver-owned event session is
// closed first and lazily reopened by the next event read.
func (d *Deck) withControl(fn func(dev hid.Device) error) error {
	d.controlMu.Lock()
	defer d.controlMu.Unlock()
	d.eventMu.Lock()
	defer d.eventMu.Unlock()
	d.suspendEventsLocked()

	dev, err := d.openControl()
	if err != nil {
		return err
	}
	defer dev.Close()
	return fn(dev)
}

// writeReport sends one payload wrapped in a fixed-size report.
func writeReport(dev hid.Device, payload []byte) error {
	report, err := crt.BuildReport(payload)
	if err != nil {
		return err
	}
	if _, err := dev.Write(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeCommand(dev hid.Device, cmd crt.Command) error {
	if err := writeReport(dev, cmd.Frame()); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}
