// Package deckimage renders 64x64 button tiles for the k1-pro display. The
// deck shows images rotated 90 degrees counter-clockwise relative to how it
// is mounted, so every tile is pre-rotated 90 degrees clockwise before JPEG
// encoding.
package deckimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Size is the button raster edge in pixels.
const Size = 64

// Quality is the fixed JPEG encode quality.
const Quality = 90

// Render draws label (and an optional sublabel) centered on a solid
// background and returns the encoded JPEG. The output is what the driver's
// upload path consumes as an opaque buffer.
func Render(label, sublabel string, bg color.Color) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	if label != "" {
		y := 30
		if sublabel != "" {
			y = 24
		}
		drawCentered(img, face, label, y)
	}
	if sublabel != "" {
		drawCentered(img, face, sublabel, 46)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rotate90(img), &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("deckimage: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCentered(dst draw.Image, face font.Face, text string, baseline int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	d.Dot = fixed.P((Size-width)/2, baseline)
	d.DrawString(text)
}

// rotate90 rotates a square image 90 degrees clockwise.
func rotate90(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, src.At(y, w-1-x))
		}
	}
	return dst
}

// ParseHexColor parses a #RRGGBB color string.
func ParseHexColor(s string) (color.RGBA, error) {
	var c color.RGBA
	c.A = 0xFF
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("deckimage: invalid color %q (want #RRGGBB)", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("deckimage: invalid color %q: %w", s, err)
	}
	return c, nil
}
