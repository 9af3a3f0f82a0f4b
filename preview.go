package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pleimann/infodisplay/internal/display"
	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/protocol"
	"github.com/pleimann/infodisplay/internal/pty"
	"github.com/pleimann/infodisplay/internal/sink"
	"github.com/pleimann/infodisplay/internal/ui"
	"github.com/pleimann/infodisplay/internal/utils"
)

// runPreview handles the preview subcommand
func runPreview(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Usage = printUsage

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	// The preview owns the terminal.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, err := loadOrDefault(*configPath, flagSet(fs, "config"))
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}
	width, height := headlessSize(cfg)

	// Font problems are reported before the preview takes the terminal.
	font := newFont(cfg, height, configDir(*configPath), slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if c, ok := font.(io.Closer); ok {
		defer c.Close()
	}

	opts, err := cfg.OverlayOptions(width, height, font, logger)
	if err != nil {
		ui.PrintFatalError("Invalid display settings", err.Error())
		os.Exit(1)
	}
	o, err := overlay.New(opts)
	if err != nil {
		ui.PrintFatalError("Failed to create overlay", err.Error())
		os.Exit(1)
	}
	cfg.Apply(o)

	var term *sink.Terminal
	preview := ui.NewPreview(fmt.Sprintf("%s %dx%d", cfg.Sink.Type, width, height), func(cols int) {
		term.SetColumns(cols)
	})
	term = sink.NewTerminal(preview.Show, sink.StdoutColumns())

	handler := protocol.NewHandler(o, cfg.ProtocolOptions(logger))
	m := display.NewManager(o, handler, term, display.Options{Interval: cfg.UpdateInterval(), Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Input.Command != "" {
		producer, err := pty.NewManager(cfg.Input.Command, cfg.Input.Args,
			utils.ExpandPath(cfg.Input.WorkingDir, configDir(*configPath)), logger)
		if err != nil {
			ui.PrintFatalError("Failed to create producer", err.Error())
			os.Exit(1)
		}
		r, err := producer.Start(ctx)
		if err != nil {
			ui.PrintFatalError("Failed to start producer", err.Error())
			os.Exit(1)
		}
		defer producer.Stop()
		m.Feed(r)
	} else {
		m.Feed(os.Stdin)
	}

	go func() {
		preview.InputDone(m.Run(ctx))
	}()

	if err := preview.Run(); err != nil {
		ui.PrintFatalError("Preview failed", err.Error())
		os.Exit(1)
	}
}
