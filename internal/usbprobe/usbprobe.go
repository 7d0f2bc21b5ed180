// Package usbprobe checks for the deck on the raw USB bus. HID enumeration
// can come up empty even with the device plugged in (missing udev rules, a
// kernel driver holding the interface); a raw enumeration distinguishes
// "not plugged in" from "plugged in but inaccessible".
package usbprobe

import (
	"errors"
	"fmt"

	"github.com/karalabe/usb"
)

// Device is one raw USB match.
type Device struct {
	Path      string
	VendorID  uint16
	ProductID uint16
}

var ErrUnsupported = errors.New("usbprobe: raw USB enumeration not supported on this platform")

// Find enumerates raw USB devices matching the vendor/product pair.
func Find(vendorID, productID uint16) ([]Device, error) {
	if !usb.Supported() {
		return nil, ErrUnsupported
	}
	infos, err := usb.Enumerate(vendorID, productID)
	if err != nil {
		return nil, fmt.Errorf("usbprobe: enumerate: %w", err)
	}
	out := make([]Device, 0, len(infos))
	for _, info := range infos {
		out = append(out, Device{
			Path:      info.Path,
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
		})
	}
	return out, nil
}
