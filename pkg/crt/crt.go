// Package crt implements the CRT command protocol spoken by the vsdinside
// k1-pro macro deck (the same CRT+BAT framing used by the Fifine D6, with
// different parameters). All frames were recovered from a USB capture of the
// vendor software.
package crt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// ReportID is the report ID of every outbound command report.
	ReportID = 0x04
	// ReportSize is the fixed outbound report size, report ID included.
	ReportSize = 1024
	// MaxPayload is the payload capacity of one report.
	MaxPayload = ReportSize - 1
	// MaxImageSize is the largest image the 16-bit BAT size field can carry.
	MaxImageSize = 0xFFFF
)

var (
	ErrPayloadTooLarge = errors.New("crt: payload exceeds report capacity")
	ErrImageTooLarge   = errors.New("crt: image exceeds 16-bit size field")
)

// Command is one of the fixed CRT command frames. The image transfer header
// is the only parameterized frame; see ImageHeader.
type Command uint8

const (
	// CmdDisconnect leaves display mode (CRT+DIS).
	CmdDisconnect Command = iota
	// CmdWake wakes the panel (CRT+wake).
	CmdWake
	// CmdLight sets the backlight level (CRT+LIG).
	CmdLight
	// CmdQuery is the vendor software's query command (CRT+QUCMD).
	CmdQuery
	// CmdCursorPos is the cursor position command (CRT+CPOS M).
	CmdCursorPos
	// CmdClear clears the screen (CRT+CLE).
	CmdClear
	// CmdStop terminates a transfer or init sequence (CRT+STP).
	CmdStop
	// CmdHeartbeat is the CRT+CONNECT keepalive.
	CmdHeartbeat
)

var commandFrames = [...][]byte{
	CmdDisconnect: {0x43, 0x52, 0x54, 0x00, 0x00, 0x44, 0x49, 0x53, 0x00, 0x00},
	CmdWake:       {0x43, 0x52, 0x54, 0x00, 0x00, 0x77, 0x61, 0x6b, 0x65, 0x00},
	CmdLight:      {0x43, 0x52, 0x54, 0x00, 0x00, 0x4c, 0x49, 0x47, 0x00, 0x00, 0x00, 0x19},
	CmdQuery:      {0x43, 0x52, 0x54, 0x00, 0x00, 0x51, 0x55, 0x43, 0x4d, 0x44, 0x11, 0x11, 0x00, 0x11, 0x00, 0x11},
	CmdCursorPos:  {0x43, 0x52, 0x54, 0x00, 0x00, 0x43, 0x50, 0x4f, 0x53, 0x00, 0x4d},
	CmdClear:      {0x43, 0x52, 0x54, 0x00, 0x00, 0x43, 0x4c, 0x45, 0x00, 0x00, 0x00, 0xff},
	CmdStop:       {0x43, 0x52, 0x54, 0x00, 0x00, 0x53, 0x54, 0x50, 0x00, 0x00},
	CmdHeartbeat:  {0x43, 0x52, 0x54, 0x00, 0x00, 0x43, 0x4f, 0x4e, 0x4e, 0x45, 0x43, 0x54},
}

var commandNames = [...]string{
	CmdDisconnect: "DIS",
	CmdWake:       "wake",
	CmdLight:      "LIG",
	CmdQuery:      "QUCMD",
	CmdCursorPos:  "CPOS",
	CmdClear:      "CLE",
	CmdStop:       "STP",
	CmdHeartbeat:  "CONNECT",
}

// Frame returns a copy of the command's constant frame bytes.
func (c Command) Frame() []byte {
	frame := commandFrames[c]
	out := make([]byte, len(frame))
	copy(out, frame)
	return out
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// imageHeaderPrefix is the fixed 10-byte ASCII prefix of the BAT transfer
// header: CRT\x00\x00BAT\x00\x00.
var imageHeaderPrefix = []byte{0x43, 0x52, 0x54, 0x00, 0x00, 0x42, 0x41, 0x54, 0x00, 0x00}

// ImageHeader builds the 13-byte BAT header announcing an image transfer of
// size bytes to the button with the given protocol ID.
func ImageHeader(size int, protocolID byte) ([]byte, error) {
	if size < 0 || size > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, size)
	}
	header := make([]byte, 13)
	copy(header, imageHeaderPrefix)
	binary.BigEndian.PutUint16(header[10:12], uint16(size))
	header[12] = protocolID
	return header, nil
}

// BuildReport wraps payload in a fixed-size output report: report ID at byte
// 0, payload at offset 1, zero padding to ReportSize.
func BuildReport(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	report := make([]byte, ReportSize)
	report[0] = ReportID
	copy(report[1:], payload)
	return report, nil
}

// Chunks splits an image buffer into MaxPayload-sized chunks, preserving
// byte order. The last chunk may be shorter. The returned slices alias buf.
func Chunks(buf []byte) [][]byte {
	if len(buf) == 0 {
		return nil
	}
	out := make([][]byte, 0, (len(buf)+MaxPayload-1)/MaxPayload)
	for len(buf) > MaxPayload {
		out = append(out, buf[:MaxPayload])
		buf = buf[MaxPayload:]
	}
	return append(out, buf)
}
