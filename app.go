package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pleimann/infodisplay/internal/config"
	"github.com/pleimann/infodisplay/internal/display"
	"github.com/pleimann/infodisplay/internal/hid"
	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/protocol"
	"github.com/pleimann/infodisplay/internal/pty"
	"github.com/pleimann/infodisplay/internal/sink"
	"github.com/pleimann/infodisplay/internal/text"
	"github.com/pleimann/infodisplay/internal/utils"
)

// App ties the overlay, its frame pump, the sink and the command source
// together for the run command.
type App struct {
	config  *config.Config
	log     *slog.Logger
	overlay *overlay.Overlay
	manager *display.Manager
	window  *sink.Window
	width   int
	height  int

	producer *pty.Manager
	watcher  *config.Watcher
	closers  []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, configPath string, logger *slog.Logger) (*App, error) {
	app := &App{config: cfg, log: logger}

	out, geometry, err := app.openSink()
	if err != nil {
		app.close()
		return nil, err
	}

	width, height := cfg.Display.Width, cfg.Display.Height
	format, err := cfg.Format()
	if err != nil {
		app.close()
		return nil, err
	}
	if geometry.Width > 0 {
		if width != 0 && (width != geometry.Width || height != geometry.Height) {
			logger.Warn("display size overridden by sink",
				"configured", fmt.Sprintf("%dx%d", width, height),
				"sink", fmt.Sprintf("%dx%d", geometry.Width, geometry.Height))
		}
		width, height, format = geometry.Width, geometry.Height, geometry.Format
	}
	app.width, app.height = width, height

	font := newFont(cfg, height, configDir(configPath), logger)
	if c, ok := font.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	opts, err := cfg.OverlayOptions(width, height, font, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	opts.Format = format

	o, err := overlay.New(opts)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}
	cfg.Apply(o)
	app.overlay = o

	handler := protocol.NewHandler(o, cfg.ProtocolOptions(logger))
	if v, ok := out.(protocol.VideoSwitch); ok {
		handler.SetVideoSwitch(v)
	}

	app.manager = display.NewManager(o, handler, out, display.Options{
		Interval: cfg.UpdateInterval(),
		Logger:   logger,
	})

	if cfg.Input.Command != "" {
		producer, err := pty.NewManager(cfg.Input.Command, cfg.Input.Args,
			utils.ExpandPath(cfg.Input.WorkingDir, configDir(configPath)), logger)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to create producer: %w", err)
		}
		r, err := producer.Start(ctx)
		if err != nil {
			app.close()
			return nil, err
		}
		app.producer = producer
		app.manager.Feed(r)
	} else {
		app.manager.Feed(os.Stdin)
	}

	if config.Exists(configPath) {
		watcher, err := config.NewWatcher(configPath, logger)
		if err != nil {
			logger.Warn("config hot reload disabled", "error", err)
		} else {
			watcher.OnReload(func(_, cur *config.Config) {
				app.manager.Do(cur.Apply)
			})
			watcher.Start()
			app.watcher = watcher
		}
	}

	logger.Info("display ready",
		"sink", cfg.Sink.Type, "width", width, "height", height,
		"rows", o.RowCount(), "row_height", o.RowHeight())
	return app, nil
}

// openSink opens the configured output. The returned geometry is non-zero
// when the sink dictates the overlay size.
func (a *App) openSink() (display.Sink, sink.Geometry, error) {
	cfg := a.config
	switch cfg.Sink.Type {
	case config.SinkFramebuffer:
		fb, err := sink.OpenFramebuffer(cfg.Sink.Framebuffer.Device, a.log)
		if err != nil {
			return nil, sink.Geometry{}, err
		}
		a.closers = append(a.closers, fb)
		return fb, fb.Geometry(), nil

	case config.SinkHID:
		dev, err := hid.NewDevice(cfg.Sink.HID.VendorID, cfg.Sink.HID.ProductID)
		if err != nil {
			return nil, sink.Geometry{}, fmt.Errorf("failed to open HID device: %w", err)
		}
		a.closers = append(a.closers, dev)
		format, err := cfg.Format()
		if err != nil {
			return nil, sink.Geometry{}, err
		}
		g := sink.Geometry{Width: cfg.Display.Width, Height: cfg.Display.Height, Format: format}
		return sink.NewHID(dev, g, a.log), sink.Geometry{}, nil

	case config.SinkWindow:
		a.window = sink.NewWindow(cfg.Sink.Window.Title, cfg.Sink.Window.Scale)
		return a.window, sink.Geometry{}, nil

	case config.SinkTerminal:
		cols := cfg.Sink.Terminal.Columns
		if cols == 0 {
			cols = sink.StdoutColumns()
		}
		return sink.NewTerminal(sink.WriterOutput(os.Stdout), cols), sink.Geometry{}, nil

	default:
		return &sink.Snapshot{}, sink.Geometry{}, nil
	}
}

// newFont selects the text renderer named by display.font.
// newFont picks the configured font. A font file that cannot be loaded
// leaves the overlay without text; icons and the progress bar still draw.
func newFont(cfg *config.Config, height int, base string, logger *slog.Logger) overlay.Font {
	switch cfg.Display.Font {
	case config.FontBasic:
		return text.Basic()
	case config.FontTiny:
		return text.DefaultTiny()
	}
	path := utils.ExpandPath(cfg.Display.Font, base)
	face, err := text.Load(path, cfg.FontSize(height))
	if err != nil {
		logger.Warn("font unavailable, text disabled", "font", path, "err", err)
		return nil
	}
	return face
}

// Run pumps frames until the input ends or ctx is cancelled. A window sink
// runs its event loop on the calling goroutine and closing it stops the app.
func (a *App) Run(ctx context.Context, cancel context.CancelFunc) error {
	defer a.shutdown()

	if a.window == nil {
		return a.manager.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.manager.Run(ctx)
		cancel()
	}()
	if err := a.window.Run(ctx, a.width, a.height); err != nil {
		a.log.Warn("window closed", "error", err)
	}
	cancel()
	return <-errCh
}

func (a *App) shutdown() {
	a.log.Debug("shutting down")
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.producer != nil {
		a.producer.Stop()
	}
	a.close()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
