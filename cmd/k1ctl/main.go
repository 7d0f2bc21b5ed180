// k1ctl paints a vsdinside k1-pro macro deck from a YAML layout and prints
// its button and knob events until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openvsd/k1pro-crt/internal/layout"
	"github.com/openvsd/k1pro-crt/internal/usbprobe"
	"github.com/openvsd/k1pro-crt/pkg/deckimage"
	"github.com/openvsd/k1pro-crt/pkg/hid"
	"github.com/openvsd/k1pro-crt/pkg/k1pro"
)

func main() {
	var (
		detect     = flag.Bool("detect", false, "probe for the deck and exit")
		layoutPath = flag.String("layout", "", "YAML button layout (default: demo layout)")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if *detect {
		os.Exit(runDetect(log))
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	if err := run(ctx, log, *layoutPath); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("k1ctl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, layoutPath string) error {
	l := layout.Default()
	if layoutPath != "" {
		loaded, err := layout.Load(layoutPath)
		if err != nil {
			return err
		}
		l = loaded
	}

	deck, err := k1pro.Open(ctx, k1pro.WithLogger(log))
	if err != nil {
		return err
	}
	defer deck.Close()
	log.Info("deck connected", slog.String("state", deck.State().String()))

	images, err := renderLayout(l)
	if err != nil {
		return err
	}
	done, err := deck.SetButtonImages(images)
	if err != nil {
		log.Warn("some buttons failed to paint", slog.Any("error", err))
	}
	log.Info("buttons painted", slog.Any("slots", done))

	deck.StartKeepalive()
	log.Info("keepalive started, waiting for events (ctrl-c to exit)")

	return deck.Listen(ctx, func(ev k1pro.Event) {
		fmt.Println(ev)
	})
}

func renderLayout(l *layout.Layout) ([]k1pro.ButtonImage, error) {
	var images []k1pro.ButtonImage
	for _, b := range l.Buttons {
		bg := "#000000"
		if b.Color != "" {
			bg = b.Color
		}
		c, err := deckimage.ParseHexColor(bg)
		if err != nil {
			return nil, err
		}
		img, err := deckimage.Render(b.Label, b.Sublabel, c)
		if err != nil {
			return nil, err
		}
		images = append(images, k1pro.ButtonImage{Slot: b.Slot, Image: img})
	}
	return images, nil
}

func runDetect(log *slog.Logger) int {
	backend, err := hid.NewBackend()
	if err != nil {
		log.Error("hid backend unavailable", slog.Any("error", err))
		return 1
	}
	infos, err := backend.Enumerate(k1pro.VendorID, k1pro.ProductID)
	if err != nil {
		log.Error("hid enumeration failed", slog.Any("error", err))
		return 1
	}
	if len(infos) > 0 {
		for _, info := range infos {
			fmt.Printf("%s  usage_page=%04x usage=%d  %s %s\n",
				info.Path, info.UsagePage, info.Usage, info.Manufacturer, info.Product)
		}
		return 0
	}

	// Nothing visible over HID; check the raw bus before declaring it absent.
	raw, err := usbprobe.Find(k1pro.VendorID, k1pro.ProductID)
	if err != nil {
		log.Warn("raw USB probe unavailable", slog.Any("error", err))
	}
	if len(raw) > 0 {
		fmt.Println("deck is on the USB bus but not visible to HID (permissions or a bound kernel driver?)")
		for _, d := range raw {
			fmt.Printf("  %s  %04x:%04x\n", d.Path, d.VendorID, d.ProductID)
		}
		return 1
	}
	fmt.Printf("no deck found (VID %04x PID %04x)\n", k1pro.VendorID, k1pro.ProductID)
	return 1
}
