// Package hid abstracts the raw HID transport the k1-pro driver runs on.
// The driver only needs enumeration with usage filtering, open-by-path,
// output report writes and timed input reads.
package hid

import "time"

// Info describes one enumerated HID interface.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	UsagePage    uint16
	Usage        uint16
	Product      string
	Manufacturer string
}

// Device is an opened HID interface.
type Device interface {
	// Write sends one output report. The report ID is p[0].
	Write(p []byte) (int, error)
	// ReadWithTimeout reads one input report, returning 0 bytes on timeout.
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	Close() error
}

// Backend enumerates and opens HID interfaces.
type Backend interface {
	Enumerate(vendorID, productID uint16) ([]Info, error)
	Open(path string) (Device, error)
}

// NewBackend returns the default platform backend.
func NewBackend() (Backend, error) {
	return newBackend()
}
