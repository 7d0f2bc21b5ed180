//go:build !usbhid

package hid

import (
	"sync"
	"time"

	gohid "github.com/sstallion/go-hid"
)

// Default backend on hidapi via sstallion/go-hid. hidapi exposes the usage
// page and usage of every interface, which the k1-pro needs to tell its
// control and event sub-devices apart.

type hidapiBackend struct{}

var hidapiInit sync.Once

func newBackend() (Backend, error) {
	var err error
	hidapiInit.Do(func() {
		err = gohid.Init()
	})
	if err != nil {
		return nil, err
	}
	return &hidapiBackend{}, nil
}

func (b *hidapiBackend) Enumerate(vendorID, productID uint16) ([]Info, error) {
	var out []Info
	err := gohid.Enumerate(vendorID, productID, func(info *gohid.DeviceInfo) error {
		out = append(out, Info{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			UsagePage:    info.UsagePage,
			Usage:        info.Usage,
			Product:      info.ProductStr,
			Manufacturer: info.MfrStr,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type hidapiDevice struct{ d *gohid.Device }

func (b *hidapiBackend) Open(path string) (Device, error) {
	d, err := gohid.OpenPath(path)
	if err != nil {
		return nil, err
	}
	return &hidapiDevice{d}, nil
}

func (d *hidapiDevice) Write(p []byte) (int, error) {
	return d.d.Write(p)
}

func (d *hidapiDevice) ReadWithTimeout(p []byte, timeout time.Duration) (int, error) {
	return d.d.ReadWithTimeout(p, timeout)
}

func (d *hidapiDevice) Close() error { return d.d.Close() }
