package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/raster"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return configPath
}

func TestLoad(t *testing.T) {
	content := `
display:
  width: 480
  height: 48
  pixel_format: xrgb8888
  rows: 3
  row_height: 14
  update_interval_ms: 40
  font: tiny
  clock_layout: "15:04"
  max_bitmap_bytes: 65536
  icon_tints:
    playing: "#00ff00"

scroll:
  speed: 30
  start_delay_ms: 500
  end_delay_ms: 750

progress:
  row: 0
  height: 3
  color: "#8000ff00"

rows:
  - kind: clock
    bg: "#202020"
  - kind: text
    text: "hello"
    icon: playing
    fg: 0xffff0000

protocol:
  status_row: 1
  times_row: 2

sink:
  type: window
  window:
    scale: 2

input:
  command: "mpc"
  args: ["idle", "--loop"]
  working_dir: "/tmp"
`

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Display.Width != 480 || cfg.Display.Height != 48 {
		t.Errorf("Display size = %dx%d, want 480x48", cfg.Display.Width, cfg.Display.Height)
	}
	format, err := cfg.Format()
	if err != nil || format != raster.XRGB8888 {
		t.Errorf("Format() = %+v, %v, want XRGB8888", format, err)
	}
	if cfg.UpdateInterval() != 40*time.Millisecond {
		t.Errorf("UpdateInterval() = %v, want 40ms", cfg.UpdateInterval())
	}
	if cfg.Display.Font != FontTiny {
		t.Errorf("Display.Font = %q, want %q", cfg.Display.Font, FontTiny)
	}
	if got := cfg.Display.IconTints["playing"]; got != 0xff00ff00 {
		t.Errorf("IconTints[playing] = %v, want 0xff00ff00", got)
	}

	want := overlay.ScrollParams{Speed: 30, StartDelay: 500 * time.Millisecond, EndDelay: 750 * time.Millisecond}
	if got := cfg.ScrollParams(); got != want {
		t.Errorf("ScrollParams() = %+v, want %+v", got, want)
	}

	if cfg.ProgressRow() != 0 {
		t.Errorf("ProgressRow() = %d, want 0", cfg.ProgressRow())
	}
	if cfg.Progress.Color != 0x8000ff00 {
		t.Errorf("Progress.Color = %v, want 0x8000ff00", cfg.Progress.Color)
	}

	if len(cfg.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(cfg.Rows))
	}
	if kind, _ := cfg.Rows[0].RowKind(); kind != overlay.LiveClock {
		t.Errorf("Rows[0] kind = %v, want LiveClock", kind)
	}
	if cfg.Rows[0].FG != overlay.DefaultForeground {
		t.Errorf("Rows[0].FG = %v, want default", cfg.Rows[0].FG)
	}
	if cfg.Rows[1].RowIcon() != overlay.IconPlaying {
		t.Errorf("Rows[1] icon = %v, want playing", cfg.Rows[1].RowIcon())
	}
	if cfg.Rows[1].FG != 0xffff0000 {
		t.Errorf("Rows[1].FG = %v, want 0xffff0000", cfg.Rows[1].FG)
	}

	if cfg.StatusRow() != 1 || cfg.TimesRow() != 2 {
		t.Errorf("protocol rows = %d/%d, want 1/2", cfg.StatusRow(), cfg.TimesRow())
	}

	if cfg.Sink.Type != SinkWindow || cfg.Sink.Window.Scale != 2 {
		t.Errorf("Sink = %+v, want window scale 2", cfg.Sink)
	}
	if cfg.Input.Command != "mpc" || len(cfg.Input.Args) != 2 || cfg.Input.WorkingDir != "/tmp" {
		t.Errorf("Input = %+v", cfg.Input)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sink:\n  type: terminal\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Display.Width != 320 || cfg.Display.Height != 40 {
		t.Errorf("Display size = %dx%d, want default 320x40", cfg.Display.Width, cfg.Display.Height)
	}
	if format, _ := cfg.Format(); format != raster.RGB565 {
		t.Errorf("Format() = %+v, want RGB565", format)
	}
	if cfg.Display.Rows != 2 {
		t.Errorf("Display.Rows = %d, want default 2", cfg.Display.Rows)
	}
	if cfg.UpdateInterval() != 25*time.Millisecond {
		t.Errorf("UpdateInterval() = %v, want default 25ms", cfg.UpdateInterval())
	}
	if got := cfg.ScrollParams(); got != overlay.DefaultScroll() {
		t.Errorf("ScrollParams() = %+v, want %+v", got, overlay.DefaultScroll())
	}
	if cfg.ProgressRow() != cfg.Display.Rows {
		t.Errorf("ProgressRow() = %d, want %d below the last row", cfg.ProgressRow(), cfg.Display.Rows)
	}
	if cfg.Progress.Height != 2 {
		t.Errorf("Progress.Height = %d, want default 2", cfg.Progress.Height)
	}
	if cfg.StatusRow() != -1 || cfg.TimesRow() != -1 {
		t.Errorf("protocol rows = %d/%d, want -1/-1", cfg.StatusRow(), cfg.TimesRow())
	}
}

func TestDefaultFramebufferSize(t *testing.T) {
	cfg := Default()
	if cfg.Sink.Type != SinkFramebuffer {
		t.Errorf("Sink.Type = %q, want %q", cfg.Sink.Type, SinkFramebuffer)
	}
	// fbdev takes the size from the device
	if cfg.Display.Width != 0 || cfg.Display.Height != 0 {
		t.Errorf("Display size = %dx%d, want 0x0", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Sink.Framebuffer.Device != "/dev/fb1" {
		t.Errorf("Framebuffer.Device = %q, want /dev/fb1", cfg.Sink.Framebuffer.Device)
	}
}

func TestCustomChannels(t *testing.T) {
	content := `
display:
  channels:
    r: {offset: 0, bits: 8}
    g: {offset: 8, bits: 8}
    b: {offset: 16, bits: 8}
    bytes_per_pixel: 4
sink:
  type: none
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	format, err := cfg.Format()
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := raster.Format{R: raster.Channel{Offset: 0, Bits: 8}, G: raster.Channel{Offset: 8, Bits: 8}, B: raster.Channel{Offset: 16, Bits: 8}, BytesPerPixel: 4}
	if format != want {
		t.Errorf("Format() = %+v, want %+v", format, want)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "too many display rows",
			content: "display:\n  rows: 10\n",
			wantErr: "display.rows must be between",
		},
		{
			name:    "unknown pixel format",
			content: "display:\n  pixel_format: yuv\n",
			wantErr: "unknown pixel format",
		},
		{
			name: "overlapping channels",
			content: `
display:
  channels:
    r: {offset: 0, bits: 8}
    g: {offset: 4, bits: 8}
    bytes_per_pixel: 2
`,
			wantErr: "overlaps",
		},
		{
			name:    "more rows than display rows",
			content: "rows:\n  - kind: text\n  - kind: text\n  - kind: text\n",
			wantErr: "3 rows configured",
		},
		{
			name:    "unknown row kind",
			content: "rows:\n  - kind: marquee\n",
			wantErr: "unknown row kind",
		},
		{
			name:    "unknown icon",
			content: "rows:\n  - icon: rewinding\n",
			wantErr: "unknown icon",
		},
		{
			name:    "unknown tint icon",
			content: "display:\n  icon_tints:\n    rewinding: \"#ffffff\"\n",
			wantErr: "display.icon_tints",
		},
		{
			name:    "progress row out of range",
			content: "progress:\n  row: 3\n",
			wantErr: "progress.row 3 out of range",
		},
		{
			name:    "status row out of range",
			content: "protocol:\n  status_row: 2\n",
			wantErr: "protocol.status_row",
		},
		{
			name:    "times row out of range",
			content: "protocol:\n  times_row: 5\n",
			wantErr: "protocol.times_row",
		},
		{
			name:    "unknown sink",
			content: "sink:\n  type: vga\n",
			wantErr: "unknown sink type",
		},
		{
			name:    "hid missing vendor_id",
			content: "sink:\n  type: hid\n  hid:\n    product_id: 0x5678\n",
			wantErr: "vendor_id is required",
		},
		{
			name:    "hid missing product_id",
			content: "sink:\n  type: hid\n  hid:\n    vendor_id: 0x1234\n",
			wantErr: "product_id is required",
		},
		{
			name:    "bad color",
			content: "progress:\n  color: \"#zz\"\n",
			wantErr: "invalid color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file, got nil")
	}
}

func TestUpdateDeviceIDs(t *testing.T) {
	content := `# Test config
sink:
  type: hid
  hid:
    vendor_id: 0x1234
    product_id: 0x5678
`
	configPath := writeConfig(t, content)

	if err := UpdateDeviceIDs(configPath, 0xABCD, 0xEF01); err != nil {
		t.Fatalf("UpdateDeviceIDs() error = %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	result := string(data)
	if !strings.Contains(result, "vendor_id: 0xABCD") {
		t.Errorf("vendor_id not updated correctly in: %s", result)
	}
	if !strings.Contains(result, "product_id: 0xEF01") {
		t.Errorf("product_id not updated correctly in: %s", result)
	}
	if !strings.Contains(result, "# Test config") {
		t.Errorf("comment not preserved in: %s", result)
	}
}

func TestUpdateDeviceIDsDecimal(t *testing.T) {
	content := `sink:
  type: hid
  hid:
    vendor_id: 4660
    product_id: 22136
`
	configPath := writeConfig(t, content)

	if err := UpdateDeviceIDs(configPath, 0x1111, 0x2222); err != nil {
		t.Fatalf("UpdateDeviceIDs() error = %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sink.HID.VendorID != 0x1111 || cfg.Sink.HID.ProductID != 0x2222 {
		t.Errorf("IDs = 0x%04X:0x%04X, want 0x1111:0x2222", cfg.Sink.HID.VendorID, cfg.Sink.HID.ProductID)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "new-config.yaml")

	if err := CreateDefaultConfig(configPath, 0x1234, 0x5678); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	if !Exists(configPath) {
		t.Fatal("Config file was not created")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load created config: %v", err)
	}

	if cfg.Sink.Type != SinkHID {
		t.Errorf("Sink.Type = %q, want hid", cfg.Sink.Type)
	}
	if cfg.Sink.HID.VendorID != 0x1234 {
		t.Errorf("VendorID = 0x%04X, want 0x1234", cfg.Sink.HID.VendorID)
	}
	if cfg.Sink.HID.ProductID != 0x5678 {
		t.Errorf("ProductID = 0x%04X, want 0x5678", cfg.Sink.HID.ProductID)
	}
	if cfg.ProgressRow() != cfg.Display.Rows {
		t.Errorf("ProgressRow() = %d, want below last row", cfg.ProgressRow())
	}
}

func TestSetDisplayGeometry(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  string
		want    string
	}{
		{"existing keys", "# panel\ndisplay:\n  width: 320 # wide\n  height: 40\n  pixel_format: rgb565\n  rows: 2\n", "argb8888", "argb8888"},
		{"missing keys", "display:\n  rows: 2\n", "bgr565", "bgr565"},
		{"missing section", "sink:\n  type: terminal\n", "", "rgb565"},
		{"empty file", "", "rgb888", "rgb888"},
	}
	for _, tt := range tests {
		path := writeConfig(t, tt.content)
		if err := SetDisplayGeometry(path, 128, 32, tt.format); err != nil {
			t.Fatalf("%s: SetDisplayGeometry() error = %v", tt.name, err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("%s: Load() error = %v", tt.name, err)
		}
		if cfg.Display.Width != 128 || cfg.Display.Height != 32 {
			t.Errorf("%s: size = %dx%d, want 128x32", tt.name, cfg.Display.Width, cfg.Display.Height)
		}
		if cfg.Display.PixelFormat != tt.want {
			t.Errorf("%s: PixelFormat = %q, want %q", tt.name, cfg.Display.PixelFormat, tt.want)
		}
	}
}

func TestSetDisplayGeometryKeepsComments(t *testing.T) {
	path := writeConfig(t, "# panel settings\ndisplay:\n  width: 320 # measured\n  rows: 2\nsink:\n  type: hid\n  hid:\n    vendor_id: 0x1234\n")
	if err := SetDisplayGeometry(path, 160, 80, ""); err != nil {
		t.Fatalf("SetDisplayGeometry() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# panel settings", "# measured", "vendor_id: 0x1234", "width: 160", "height: 80"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q:\n%s", want, data)
		}
	}
}

func TestSetDisplayGeometryErrors(t *testing.T) {
	path := writeConfig(t, "display:\n  rows: 2\n")
	if err := SetDisplayGeometry(path, 10, 10, "rgb999"); err == nil {
		t.Error("SetDisplayGeometry() accepted unknown pixel format")
	}
	if err := SetDisplayGeometry(path, -1, 10, ""); err == nil {
		t.Error("SetDisplayGeometry() accepted negative width")
	}
	if err := SetDisplayGeometry(filepath.Join(t.TempDir(), "missing.yaml"), 10, 10, ""); err == nil {
		t.Error("SetDisplayGeometry() succeeded on a missing file")
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(filepath.Join(tmpDir, "nonexistent.yaml")) {
		t.Error("Exists() = true for non-existent file")
	}

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	os.WriteFile(existingPath, []byte("test"), 0644)
	if !Exists(existingPath) {
		t.Error("Exists() = false for existing file")
	}
}

func TestApply(t *testing.T) {
	content := `
display:
  icon_tints:
    paused: "#ff8000"
progress:
  row: 1
  color: "#ff0000"
rows:
  - kind: clock
  - text: "now playing"
    icon: playing
    bg: "#101010"
sink:
  type: none
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	opts, err := cfg.OverlayOptions(cfg.Display.Width, cfg.Display.Height, nil, nil)
	if err != nil {
		t.Fatalf("OverlayOptions() error = %v", err)
	}
	o, err := overlay.New(opts)
	if err != nil {
		t.Fatalf("overlay.New() error = %v", err)
	}
	o.SetProgress(overlay.ProgressDisabled, 0.5, 0)

	cfg.Apply(o)

	if got := o.RowText(1); got != "now playing" {
		t.Errorf("RowText(1) = %q, want %q", got, "now playing")
	}
	if got := o.RowIcon(1); got != overlay.IconPlaying {
		t.Errorf("RowIcon(1) = %v, want playing", got)
	}
	row, value, color := o.Progress()
	if row != 1 || value != 0.5 || color != 0xffff0000 {
		t.Errorf("Progress() = %d, %v, %v, want 1, 0.5, 0xffff0000", row, value, color)
	}
}

func TestProgressRow(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"unset", "display:\n  rows: 3\n", 3},
		{"above a row", "progress:\n  row: 1\n", 1},
		{"explicit disable", "progress:\n  row: -1\n", overlay.ProgressDisabled},
	}
	for _, tt := range tests {
		cfg, err := Load(writeConfig(t, tt.content))
		if err != nil {
			t.Fatalf("%s: Load() error = %v", tt.name, err)
		}
		if got := cfg.ProgressRow(); got != tt.want {
			t.Errorf("%s: ProgressRow() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRestartFields(t *testing.T) {
	old := Default()
	cur := Default()
	cur.Scroll.Speed = 99
	cur.Progress.Color = 0xff00ff00
	if fields := RestartFields(old, cur); len(fields) != 0 {
		t.Errorf("RestartFields() = %v, want none for live settings", fields)
	}

	cur.Display.Rows = 3
	cur.Sink.Type = SinkWindow
	fields := RestartFields(old, cur)
	want := []string{"display.rows", "sink"}
	if len(fields) != len(want) {
		t.Fatalf("RestartFields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("RestartFields()[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestWatcherReload(t *testing.T) {
	configPath := writeConfig(t, "sink:\n  type: none\n")

	w, err := NewWatcher(configPath, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	reloaded := make(chan *Config, 4)
	w.OnReload(func(old, cur *Config) { reloaded <- cur })
	w.Start()

	if err := os.WriteFile(configPath, []byte("sink:\n  type: none\nscroll:\n  speed: 55\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Scroll.Speed == 55 {
				if w.Get().Scroll.Speed != 55 {
					t.Errorf("Get().Scroll.Speed = %v, want 55", w.Get().Scroll.Speed)
				}
				return
			}
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}
}

func TestRowHeight(t *testing.T) {
	cfg := Default()
	if got := cfg.RowHeight(40); got != 19 {
		t.Errorf("RowHeight(40) = %d, want 19", got)
	}
	if got := cfg.FontSize(40); got != 14.25 {
		t.Errorf("FontSize(40) = %v, want 14.25", got)
	}

	cfg.Display.RowHeight = 12
	cfg.Display.FontSize = 10
	if got := cfg.RowHeight(40); got != 12 {
		t.Errorf("RowHeight(40) = %d, want 12", got)
	}
	if got := cfg.FontSize(40); got != 10 {
		t.Errorf("FontSize(40) = %v, want 10", got)
	}
}
