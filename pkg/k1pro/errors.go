package k1pro

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotFound means no HID interface matched the vendor/product
	// pair. Fatal; there is nothing to retry against.
	ErrDeviceNotFound = errors.New("k1pro: device not found")
	// ErrEndpointNotFound means the device was present but lacked the
	// control or event interface on the expected usage page.
	ErrEndpointNotFound = errors.New("k1pro: endpoint not found")
	// ErrEndpointBusy means the control interface could not be opened after
	// all retry attempts. The caller may try the operation again later.
	ErrEndpointBusy = errors.New("k1pro: control endpoint busy")
	// ErrInitFailed means the init sequence aborted; the deck is left
	// disconnected.
	ErrInitFailed = errors.New("k1pro: init sequence failed")
	// ErrNotConnected means an operation requires display mode first.
	ErrNotConnected = errors.New("k1pro: not connected")
	// ErrEventsClosed means the event session has not been opened.
	ErrEventsClosed = errors.New("k1pro: event endpoint not open")
)

// UploadError reports a failed image upload. The image cache is unchanged
// for the slot; the caller may retry.
type UploadError struct {
	Slot int
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("k1pro: upload to slot %d failed: %v", e.Slot, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
