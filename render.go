package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pleimann/infodisplay/internal/config"
	"github.com/pleimann/infodisplay/internal/display"
	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/protocol"
	"github.com/pleimann/infodisplay/internal/sink"
	"github.com/pleimann/infodisplay/internal/ui"
)

// renderEpoch is the wall clock the render command starts from, so that
// clock rows come out the same on every run.
var renderEpoch = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// runRender handles the render subcommand
func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	output := fs.String("o", "frame.png", "output PNG file")
	ticks := fs.Int("ticks", 40, "frames to render after the script")
	terminal := fs.Bool("terminal", false, "also print the frame as colored blocks")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	fs.Usage = ui.PrintRenderUsage

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger := newLogger(*verbose)

	cfg, err := loadOrDefault(*configPath, flagSet(fs, "config"))
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}

	var input io.Reader = os.Stdin
	if fs.NArg() > 0 {
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			ui.PrintFatalError("Failed to read script", err.Error())
			os.Exit(1)
		}
		input = bytes.NewReader(data)
	}

	snap := &sink.Snapshot{}
	res, err := renderScript(cfg, configDir(*configPath), input, snap, *ticks, logger)
	if err != nil {
		ui.PrintFatalError("Render failed", err.Error())
		os.Exit(1)
	}

	f, err := os.Create(*output)
	if err != nil {
		ui.PrintFatalError("Failed to create output", err.Error())
		os.Exit(1)
	}
	if err := snap.WritePNG(f); err != nil {
		f.Close()
		ui.PrintFatalError("Failed to write PNG", err.Error())
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		ui.PrintFatalError("Failed to write PNG", err.Error())
		os.Exit(1)
	}

	if *terminal {
		fmt.Println(sink.RenderBlocks(res.overlay.Backbuffer(), sink.StdoutColumns()))
	}
	ui.PrintRendered(*output, res.width, res.height, res.frames)
}

type renderResult struct {
	overlay *overlay.Overlay
	width   int
	height  int
	frames  uint64
}

// renderScript applies each protocol line in turn and renders one tick
// after it, then renders ticks more. The overlay clock advances one update
// interval per tick.
func renderScript(cfg *config.Config, base string, script io.Reader, out display.Sink, ticks int, logger *slog.Logger) (*renderResult, error) {
	width, height := headlessSize(cfg)
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	font := newFont(cfg, height, base, logger)
	if c, ok := font.(io.Closer); ok {
		defer c.Close()
	}

	now := renderEpoch
	opts, err := cfg.OverlayOptions(width, height, font, logger)
	if err != nil {
		return nil, err
	}
	opts.Now = func() time.Time { return now }

	o, err := overlay.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}
	cfg.Apply(o)

	handler := protocol.NewHandler(o, cfg.ProtocolOptions(logger))
	m := display.NewManager(o, handler, out, display.Options{Interval: cfg.UpdateInterval(), Logger: logger})

	step := func() error {
		_, err := m.Step()
		now = now.Add(cfg.UpdateInterval())
		return err
	}

	var stepErr error
	err = protocol.Scan(script, func(line string) {
		if stepErr != nil {
			return
		}
		m.Do(func(*overlay.Overlay) { handler.Apply(line) })
		stepErr = step()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	if stepErr != nil {
		return nil, stepErr
	}

	// Always render at least once so an empty script still produces a frame.
	m.ForceRefresh()
	for i := 0; i < max(ticks, 1); i++ {
		if err := step(); err != nil {
			return nil, err
		}
	}

	return &renderResult{overlay: o, width: width, height: height, frames: m.Frames()}, nil
}

// headlessSize is the overlay size used without a sink that dictates one.
func headlessSize(cfg *config.Config) (int, int) {
	width, height := cfg.Display.Width, cfg.Display.Height
	if width == 0 {
		width = 320
	}
	if height == 0 {
		height = 40
	}
	return width, height
}
