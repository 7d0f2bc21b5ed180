// Package layout loads the YAML button layout consumed by k1ctl.
package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openvsd/k1pro-crt/pkg/crt"
	"github.com/openvsd/k1pro-crt/pkg/deckimage"
)

type Layout struct {
	Buttons []Button `yaml:"buttons"`
}

type Button struct {
	Slot     int    `yaml:"slot"`
	Label    string `yaml:"label"`
	Sublabel string `yaml:"sublabel"`
	Color    string `yaml:"color"`
}

// Load reads and validates a layout file.
func Load(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("layout: parse %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %s: %w", path, err)
	}
	return &l, nil
}

// Validate checks slot ranges, duplicate slots and color syntax.
func (l *Layout) Validate() error {
	seen := map[int]bool{}
	for i, b := range l.Buttons {
		if b.Slot < 0 || b.Slot >= crt.NumButtons {
			return fmt.Errorf("button %d: slot %d out of range 0-%d", i, b.Slot, crt.NumButtons-1)
		}
		if seen[b.Slot] {
			return fmt.Errorf("button %d: duplicate slot %d", i, b.Slot)
		}
		seen[b.Slot] = true
		if b.Color != "" {
			if _, err := deckimage.ParseHexColor(b.Color); err != nil {
				return fmt.Errorf("button %d: %w", i, err)
			}
		}
	}
	return nil
}

// Default returns the demo layout: six labeled buttons with the palette the
// vendor software ships.
func Default() *Layout {
	colors := []string{"#FF0066", "#00AAFF", "#FF4400", "#FFAA00", "#FF0000", "#00FF00"}
	l := &Layout{}
	for slot := 0; slot < crt.NumButtons; slot++ {
		l.Buttons = append(l.Buttons, Button{
			Slot:     slot,
			Label:    fmt.Sprintf("B%d", slot+1),
			Sublabel: fmt.Sprintf("%d", slot+1),
			Color:    colors[slot],
		})
	}
	return l
}
