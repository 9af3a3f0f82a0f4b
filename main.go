package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/pleimann/infodisplay/internal/config"
	"github.com/pleimann/infodisplay/internal/hid"
	"github.com/pleimann/infodisplay/internal/raster"
	"github.com/pleimann/infodisplay/internal/ui"
)

const Version = "0.1.0"

const defaultConfigPath = "config.yaml"

func main() {
	args := os.Args[1:]

	// Check for subcommands first
	if len(args) > 0 {
		switch args[0] {
		case "run":
			args = args[1:]
		case "render":
			runRender(args[1:])
			return
		case "preview":
			runPreview(args[1:])
			return
		case "list-devices":
			runListDevices()
			return
		case "set-device", "select-device":
			runSetDevice(args[1:])
			return
		case "help", "-h", "--help":
			printUsage()
			os.Exit(0)
		}
	}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	version := fs.Bool("version", false, "print version and exit")
	fs.Usage = printUsage
	fs.Parse(args)

	if *version {
		ui.PrintVersion(Version)
		os.Exit(0)
	}

	logger := newLogger(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Debug("loaded configuration", "path", *configPath,
		"sink", cfg.Sink.Type, "rows", cfg.Display.Rows, "input", cfg.Input.Command)

	ctx, cancel := signalContext(logger)
	defer cancel()

	app, err := newApp(ctx, cfg, *configPath, logger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx, cancel); err != nil && ctx.Err() == nil {
		log.Fatalf("Application error: %v", err)
	}

	logger.Debug("shutdown complete")
}

func printUsage() {
	ui.PrintUsage(Version)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			logger.Debug("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

// loadOrDefault loads the config file, falling back to the built-in
// defaults when the default path does not exist.
func loadOrDefault(path string, explicit bool) (*config.Config, error) {
	if !explicit && !config.Exists(path) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// runListDevices handles the list-devices subcommand
func runListDevices() {
	devices, err := hid.ListDevices()
	if err != nil {
		ui.PrintFatalError("Failed to list devices", err.Error())
		os.Exit(1)
	}
	ui.PrintDeviceList(toUIDevices(devices))
}

func toUIDevices(devices []hid.DeviceInfo) []ui.DeviceInfo {
	out := make([]ui.DeviceInfo, len(devices))
	for i, d := range devices {
		out[i] = ui.DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Path:         d.Path,
		}
	}
	return out
}

// runSetDevice handles the set-device subcommand
func runSetDevice(args []string) {
	fs := flag.NewFlagSet("set-device", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	width := fs.Int("width", 0, "display width in pixels, 0 for the device size")
	height := fs.Int("height", 0, "display height in pixels, 0 for the device size")
	format := fs.String("format", "", "pixel format ("+strings.Join(raster.FormatNames(), ", ")+")")
	fs.Usage = func() {
		ui.PrintSetDeviceUsage()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	current, err := currentSetup(*configPath)
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}
	geometry := false
	if flagSet(fs, "width") {
		current.Width, geometry = *width, true
	}
	if flagSet(fs, "height") {
		current.Height, geometry = *height, true
	}
	if flagSet(fs, "format") {
		current.PixelFormat, geometry = *format, true
	}

	remaining := fs.Args()
	setup := current

	switch len(remaining) {
	case 0:
		devices, err := listDisplays()
		if err != nil {
			ui.PrintFatalError("Device selection failed", err.Error())
			os.Exit(1)
		}
		chosen, err := ui.SetupDisplay(devices, current, raster.FormatNames())
		if err != nil {
			ui.PrintFatalError("Device selection failed", err.Error())
			os.Exit(1)
		}
		if chosen == nil {
			fmt.Println(ui.Muted("No device selected"))
			os.Exit(0)
		}
		setup, geometry = *chosen, true
	case 1:
		ui.PrintFatalError("Invalid arguments", "Both vendor_id and product_id must be provided, or neither")
		os.Exit(1)
	default:
		vid, err := parseID(remaining[0])
		if err != nil {
			ui.PrintFatalError("Invalid vendor_id", fmt.Sprintf("%q: %v", remaining[0], err))
			os.Exit(1)
		}
		pid, err := parseID(remaining[1])
		if err != nil {
			ui.PrintFatalError("Invalid product_id", fmt.Sprintf("%q: %v", remaining[1], err))
			os.Exit(1)
		}
		setup.Device = ui.DeviceInfo{VendorID: vid, ProductID: pid}
	}

	created, err := saveDisplaySetup(*configPath, setup, geometry)
	if err != nil {
		ui.PrintFatalError("Failed to save config", err.Error())
		os.Exit(1)
	}
	ui.PrintDisplaySaved(*configPath, setup, created)
}

// currentSetup reads the device and geometry from an existing config, or
// the defaults when there is none.
func currentSetup(path string) (ui.DisplaySetup, error) {
	cfg, err := loadOrDefault(path, false)
	if err != nil {
		return ui.DisplaySetup{}, err
	}
	return ui.DisplaySetup{
		Device:      ui.DeviceInfo{VendorID: cfg.Sink.HID.VendorID, ProductID: cfg.Sink.HID.ProductID},
		Width:       cfg.Display.Width,
		Height:      cfg.Display.Height,
		PixelFormat: cfg.Display.PixelFormat,
	}, nil
}

// saveDisplaySetup writes the device IDs to path, creating a HID config
// when the file is missing. The geometry is written only when geometry is
// set. It reports whether the file was created.
func saveDisplaySetup(path string, s ui.DisplaySetup, geometry bool) (bool, error) {
	created := !config.Exists(path)
	if created {
		if err := config.CreateDefaultConfig(path, s.Device.VendorID, s.Device.ProductID); err != nil {
			return false, err
		}
	} else if err := config.UpdateDeviceIDs(path, s.Device.VendorID, s.Device.ProductID); err != nil {
		return false, err
	}
	if geometry {
		if err := config.SetDisplayGeometry(path, s.Width, s.Height, s.PixelFormat); err != nil {
			return created, err
		}
	}
	return created, nil
}

// parseID parses a vendor or product ID from string (supports hex with 0x prefix or decimal)
func parseID(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	var val uint64
	var err error

	if strings.HasPrefix(strings.ToLower(s), "0x") {
		val, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		val, err = strconv.ParseUint(s, 10, 16)
	}

	if err != nil {
		return 0, err
	}

	return uint16(val), nil
}

// listDisplays returns the connected HID devices, one entry per display.
func listDisplays() ([]ui.DeviceInfo, error) {
	devices, err := hid.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no HID devices found")
	}

	unique := hid.Unique(devices)
	if len(unique) == 0 {
		return nil, fmt.Errorf("no identifiable HID devices found")
	}

	return toUIDevices(unique), nil
}

func configDir(path string) string {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return filepath.Dir(path)
	}
	return dir
}
