package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pleimann/infodisplay/internal/config"
	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/sink"
	"github.com/pleimann/infodisplay/internal/ui"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"0x1234", 0x1234, false},
		{"0XABCD", 0xABCD, false},
		{"4660", 4660, false},
		{" 42 ", 42, false},
		{"0x10000", 0, true},
		{"zz", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = 0x%04X, want 0x%04X", tt.in, got, tt.want)
		}
	}
}

func TestHeadlessSize(t *testing.T) {
	cfg := config.Default()
	if w, h := headlessSize(cfg); w != 320 || h != 40 {
		t.Errorf("headlessSize() = %dx%d, want 320x40", w, h)
	}
	cfg.Display.Width, cfg.Display.Height = 128, 32
	if w, h := headlessSize(cfg); w != 128 || h != 32 {
		t.Errorf("headlessSize() = %dx%d, want 128x32", w, h)
	}
}

func TestRenderScript(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Font = config.FontBasic
	row := 2
	cfg.Progress.Row = &row

	script := strings.Join([]string{
		"X1:hello world",
		"X2:second row",
		"P:500",
		"S:2",
		"not a command",
	}, "\n")

	snap := &sink.Snapshot{}
	res, err := renderScript(cfg, "", strings.NewReader(script), snap, 5, nil)
	if err != nil {
		t.Fatalf("renderScript() error = %v", err)
	}

	if res.width != 320 || res.height != 40 {
		t.Errorf("size = %dx%d, want 320x40", res.width, res.height)
	}
	if got := res.overlay.RowText(0); got != "hello world" {
		t.Errorf("RowText(0) = %q, want %q", got, "hello world")
	}
	if _, value, _ := res.overlay.Progress(); value != 0.5 {
		t.Errorf("progress = %v, want 0.5", value)
	}
	if got := res.overlay.RowIcon(1); got != overlay.IconPlaying {
		t.Errorf("RowIcon(1) = %v, want playing", got)
	}
	if res.frames == 0 || snap.Frames() == 0 {
		t.Errorf("frames = %d, snapshot frames = %d, want > 0", res.frames, snap.Frames())
	}
	if snap.Image() == nil {
		t.Error("Image() = nil after render")
	}
}

func TestRenderScriptEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Font = config.FontTiny

	snap := &sink.Snapshot{}
	if _, err := renderScript(cfg, "", strings.NewReader(""), snap, 0, nil); err != nil {
		t.Fatalf("renderScript() error = %v", err)
	}
	if snap.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", snap.Frames())
	}
}

func TestRenderScriptDefaultProgress(t *testing.T) {
	cfg := config.Default()

	snap := &sink.Snapshot{}
	res, err := renderScript(cfg, "", strings.NewReader("P:1000"), snap, 1, nil)
	if err != nil {
		t.Fatalf("renderScript() error = %v", err)
	}

	if row, value, _ := res.overlay.Progress(); row != cfg.Display.Rows || value != 1 {
		t.Errorf("Progress() = %d, %v, want %d, 1", row, value, cfg.Display.Rows)
	}
	bb := res.overlay.Backbuffer()
	y := cfg.Display.Rows * cfg.RowHeight(res.height)
	for _, x := range []int{0, res.width / 2, res.width - 1} {
		if got := bb.Word(x, y); got == 0 {
			t.Errorf("Word(%d, %d) = 0, want progress bar", x, y)
		}
	}
}

func TestRenderScriptMissingFont(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Font = filepath.Join(t.TempDir(), "missing.ttf")

	snap := &sink.Snapshot{}
	res, err := renderScript(cfg, "", strings.NewReader("X2:no font\nS:2"), snap, 1, nil)
	if err != nil {
		t.Fatalf("renderScript() error = %v", err)
	}

	if got := res.overlay.RowIcon(1); got != overlay.IconPlaying {
		t.Errorf("RowIcon(1) = %v, want playing", got)
	}
	bb := res.overlay.Backbuffer()
	rowHeight := cfg.RowHeight(res.height)
	lit := 0
	for y := rowHeight; y < 2*rowHeight; y++ {
		for x := 0; x < rowHeight; x++ {
			if bb.Word(x, y) != 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("no icon pixels drawn without a font")
	}
}

func TestSaveDisplaySetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	setup := ui.DisplaySetup{
		Device:      ui.DeviceInfo{VendorID: 0x1234, ProductID: 0x5678},
		Width:       160,
		Height:      80,
		PixelFormat: "argb8888",
	}
	created, err := saveDisplaySetup(path, setup, true)
	if err != nil {
		t.Fatalf("saveDisplaySetup() error = %v", err)
	}
	if !created {
		t.Error("saveDisplaySetup() created = false for a new file")
	}

	got, err := currentSetup(path)
	if err != nil {
		t.Fatalf("currentSetup() error = %v", err)
	}
	if got != setup {
		t.Errorf("currentSetup() = %+v, want %+v", got, setup)
	}

	// Device only: the geometry already in the file stays.
	setup.Device = ui.DeviceInfo{VendorID: 0x00AB, ProductID: 0x00CD}
	setup.Width = 999
	created, err = saveDisplaySetup(path, setup, false)
	if err != nil {
		t.Fatalf("saveDisplaySetup() error = %v", err)
	}
	if created {
		t.Error("saveDisplaySetup() created = true for an existing file")
	}
	got, err = currentSetup(path)
	if err != nil {
		t.Fatalf("currentSetup() error = %v", err)
	}
	if got.Device != setup.Device || got.Width != 160 || got.Height != 80 {
		t.Errorf("currentSetup() = %+v, want device %+v at 160x80", got, setup.Device)
	}
}

func TestCurrentSetupDefaults(t *testing.T) {
	got, err := currentSetup(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("currentSetup() error = %v", err)
	}
	// The default framebuffer sink reports its own size.
	if got.Width != 0 || got.Height != 0 || got.PixelFormat != "rgb565" {
		t.Errorf("currentSetup() = %+v, want size from device and rgb565", got)
	}
}
