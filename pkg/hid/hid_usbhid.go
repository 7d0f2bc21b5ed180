//go:build usbhid

package hid

import (
	"sync"
	"time"

	usbhid "rafaelmartins.com/p/usbhid"
)

// Alternate backend on rafaelmartins.com/p/usbhid, selected with the usbhid
// build tag. The library does not expose HID usage values, so this backend
// synthesizes them from report direction: an interface with output reports is
// the control sub-device (usage 1), an input-only interface is the event
// sub-device (usage 2). UsagePage is reported as 0 (unknown) and the driver
// skips the page check for it.

type usbhidBackend struct{}

func newBackend() (Backend, error) { return &usbhidBackend{}, nil }

func usageFor(d *usbhid.Device) uint16 {
	if d.GetOutputReportLength() > 0 {
		return 1
	}
	if d.GetInputReportLength() > 0 {
		return 2
	}
	return 0
}

func (b *usbhidBackend) Enumerate(vendorID, productID uint16) ([]Info, error) {
	devs, err := usbhid.Enumerate(func(d *usbhid.Device) bool {
		return d.VendorId() == vendorID && d.ProductId() == productID
	})
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(devs))
	for _, d := range devs {
		out = append(out, Info{
			Path:         d.Path(),
			VendorID:     d.VendorId(),
			ProductID:    d.ProductId(),
			UsagePage:    0,
			Usage:        usageFor(d),
			Product:      d.Product(),
			Manufacturer: d.Manufacturer(),
		})
	}
	return out, nil
}

type usbhidDevice struct {
	d *usbhid.Device

	readOnce sync.Once
	reports  chan []byte
	readErr  chan error
}

func (b *usbhidBackend) Open(path string) (Device, error) {
	d, err := usbhid.Get(func(dev *usbhid.Device) bool {
		return dev.Path() == path
	}, true, false)
	if err != nil {
		return nil, err
	}
	return &usbhidDevice{d: d}, nil
}

func (d *usbhidDevice) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := d.d.SetOutputReport(p[0], p[1:]); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ReadWithTimeout adapts the library's blocking GetInputReport to a timed
// read with a single persistent reader goroutine per device.
func (d *usbhidDevice) ReadWithTimeout(p []byte, timeout time.Duration) (int, error) {
	d.readOnce.Do(func() {
		d.reports = make(chan []byte, 8)
		d.readErr = make(chan error, 1)
		go func() {
			for {
				id, buf, err := d.d.GetInputReport()
				if err != nil {
					d.readErr <- err
					return
				}
				report := make([]byte, 0, len(buf)+1)
				report = append(report, id)
				report = append(report, buf...)
				d.reports <- report
			}
		}()
	})

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case report := <-d.reports:
		return copy(p, report), nil
	case err := <-d.readErr:
		return 0, err
	case <-timer.C:
		return 0, nil
	}
}

func (d *usbhidDevice) Close() error { return d.d.Close() }
