package deckimage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestRenderProducesDeckJPEG(t *testing.T) {
	buf, err := Render("42", "K1", color.RGBA{R: 0xFF, G: 0x00, B: 0x66, A: 0xFF})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(buf) == 0 {
		t.Fatal("empty image buffer")
	}

	img, err := jpeg.Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("output is not a decodable JPEG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != Size || b.Dy() != Size {
		t.Fatalf("image is %dx%d, want %dx%d", b.Dx(), b.Dy(), Size, Size)
	}
}

func TestRenderEmptyLabels(t *testing.T) {
	buf, err := Render("", "", color.Black)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(buf)); err != nil {
		t.Fatalf("output is not a decodable JPEG: %v", err)
	}
}

func TestRotate90(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, Size, Size))
	red := color.RGBA{R: 0xFF, A: 0xFF}
	src.Set(0, 0, red)

	dst := rotate90(src)
	// Clockwise rotation carries the top-left corner to the top-right.
	if got := dst.RGBAAt(Size-1, 0); got != red {
		t.Fatalf("top-left pixel landed at the wrong place: %v", got)
	}
	if got := dst.RGBAAt(0, 0); got == red {
		t.Fatal("top-left pixel did not move")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0066", color.RGBA{0xFF, 0x00, 0x66, 0xFF}, false},
		{"#00aaff", color.RGBA{0x00, 0xAA, 0xFF, 0xFF}, false},
		{"#000000", color.RGBA{0x00, 0x00, 0x00, 0xFF}, false},
		{"FF0066", color.RGBA{}, true},
		{"#FF006", color.RGBA{}, true},
		{"#GG0066", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHexColor(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHexColor(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
