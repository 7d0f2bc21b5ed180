package crt

import (
	"bytes"
	"errors"
	"testing"
)

func TestImageHeader(t *testing.T) {
	header, err := ImageHeader(1500, 3)
	if err != nil {
		t.Fatalf("ImageHeader failed: %v", err)
	}
	if len(header) != 13 {
		t.Fatalf("header length = %d, want 13", len(header))
	}
	if !bytes.Equal(header[:10], []byte("CRT\x00\x00BAT\x00\x00")) {
		t.Errorf("header prefix = % x", header[:10])
	}
	if header[10] != 0x05 || header[11] != 0xDC {
		t.Errorf("size bytes = %02x %02x, want 05 dc", header[10], header[11])
	}
	if header[12] != 0x03 {
		t.Errorf("protocol ID byte = %02x, want 03", header[12])
	}
}

func TestImageHeaderTooLarge(t *testing.T) {
	if _, err := ImageHeader(MaxImageSize+1, 1); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("err = %v, want ErrImageTooLarge", err)
	}
	if _, err := ImageHeader(MaxImageSize, 1); err != nil {
		t.Fatalf("size %d should fit: %v", MaxImageSize, err)
	}
}

func TestBuildReport(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC}
	report, err := BuildReport(payload)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if len(report) != ReportSize {
		t.Fatalf("report length = %d, want %d", len(report), ReportSize)
	}
	if report[0] != ReportID {
		t.Errorf("report ID = %02x, want %02x", report[0], ReportID)
	}
	if !bytes.Equal(report[1:4], payload) {
		t.Errorf("payload = % x, want % x", report[1:4], payload)
	}
	for i, b := range report[4:] {
		if b != 0 {
			t.Fatalf("padding byte %d = %02x, want 00", i+4, b)
		}
	}
}

func TestBuildReportTooLarge(t *testing.T) {
	if _, err := BuildReport(make([]byte, MaxPayload+1)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
	if _, err := BuildReport(make([]byte, MaxPayload)); err != nil {
		t.Fatalf("payload of %d bytes should fit: %v", MaxPayload, err)
	}
}

func TestChunks(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{"empty", 0, 0},
		{"single partial", 100, 1},
		{"exact one", MaxPayload, 1},
		{"one plus partial", MaxPayload + 1, 2},
		{"exact two", 2 * MaxPayload, 2},
		{"typical jpeg", 1500, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.size)
			for i := range buf {
				buf[i] = byte(i)
			}
			chunks := Chunks(buf)
			if len(chunks) != tt.want {
				t.Fatalf("chunk count = %d, want %d", len(chunks), tt.want)
			}
			var joined []byte
			for _, c := range chunks {
				if len(c) > MaxPayload {
					t.Fatalf("chunk of %d bytes exceeds MaxPayload", len(c))
				}
				joined = append(joined, c...)
			}
			if !bytes.Equal(joined, buf) {
				t.Fatal("concatenated chunks do not reproduce the buffer")
			}
		})
	}
}

func TestCommandFrames(t *testing.T) {
	tests := []struct {
		cmd  Command
		want []byte
	}{
		{CmdStop, []byte("CRT\x00\x00STP\x00\x00")},
		{CmdHeartbeat, []byte("CRT\x00\x00CONNECT")},
		{CmdDisconnect, []byte("CRT\x00\x00DIS\x00\x00")},
		{CmdWake, []byte("CRT\x00\x00wake\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			if got := tt.cmd.Frame(); !bytes.Equal(got, tt.want) {
				t.Errorf("frame = % x, want % x", got, tt.want)
			}
		})
	}

	// Frame must hand out copies; mutating one must not poison the table.
	f := CmdStop.Frame()
	f[0] = 0xFF
	if got := CmdStop.Frame(); got[0] != 'C' {
		t.Fatal("Frame returned shared storage")
	}
}

func TestButtonMapBijection(t *testing.T) {
	seen := map[byte]int{}
	for slot := 0; slot < NumButtons; slot++ {
		id, err := ProtocolID(slot)
		if err != nil {
			t.Fatalf("ProtocolID(%d) failed: %v", slot, err)
		}
		if id < 1 || id > NumButtons {
			t.Errorf("ProtocolID(%d) = %d, outside 1-%d", slot, id, NumButtons)
		}
		if prev, dup := seen[id]; dup {
			t.Errorf("protocol ID %d assigned to slots %d and %d", id, prev, slot)
		}
		seen[id] = slot

		back, ok := SlotForProtocolID(id)
		if !ok || back != slot {
			t.Errorf("SlotForProtocolID(%d) = %d,%v, want %d,true", id, back, ok, slot)
		}
	}

	if _, err := ProtocolID(-1); err == nil {
		t.Error("ProtocolID(-1) should fail")
	}
	if _, err := ProtocolID(NumButtons); err == nil {
		t.Errorf("ProtocolID(%d) should fail", NumButtons)
	}
	if _, ok := SlotForProtocolID(0x51); ok {
		t.Error("knob code 0x51 must not reverse-map to a button")
	}
}

func TestKnobCodes(t *testing.T) {
	knob, cw, ok := KnobTurn(0x51)
	if !ok || knob != 1 || !cw {
		t.Errorf("KnobTurn(0x51) = %d,%v,%v, want 1,true,true", knob, cw, ok)
	}
	knob, cw, ok = KnobTurn(0x90)
	if !ok || knob != 3 || cw {
		t.Errorf("KnobTurn(0x90) = %d,%v,%v, want 3,false,true", knob, cw, ok)
	}
	if _, _, ok := KnobTurn(0x05); ok {
		t.Error("button ID 0x05 must not decode as a knob turn")
	}

	if knob, ok := KnobPress(0x30); !ok || knob != 2 {
		t.Errorf("KnobPress(0x30) = %d,%v, want 2,true", knob, ok)
	}
	if _, ok := KnobPress(0x51); ok {
		t.Error("turn code 0x51 must not decode as a knob press")
	}
}
