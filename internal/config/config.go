package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/raster"
)

// Sink types
const (
	SinkFramebuffer = "fbdev"
	SinkHID         = "hid"
	SinkWindow      = "window"
	SinkTerminal    = "terminal"
	SinkNone        = "none"
)

// Built-in font names accepted by display.font besides a file path.
const (
	FontDefault = ""
	FontBasic   = "basic"
	FontTiny    = "tiny"
)

// MaxRows is the number of rows addressable by the X command.
const MaxRows = 9

type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	Scroll   ScrollConfig   `yaml:"scroll"`
	Progress ProgressConfig `yaml:"progress"`
	Rows     []RowConfig    `yaml:"rows,omitempty"`
	Protocol ProtocolConfig `yaml:"protocol"`
	Sink     SinkConfig     `yaml:"sink"`
	Input    InputConfig    `yaml:"input"`
}

type DisplayConfig struct {
	// Width and Height of 0 take the size from the sink when it has one.
	Width            int                     `yaml:"width"`
	Height           int                     `yaml:"height"`
	PixelFormat      string                  `yaml:"pixel_format"`
	Channels         *raster.Format          `yaml:"channels,omitempty"`
	Rows             int                     `yaml:"rows"`
	RowHeight        int                     `yaml:"row_height"`
	UpdateIntervalMs int                     `yaml:"update_interval_ms"`
	Font             string                  `yaml:"font"`
	FontSize         float64                 `yaml:"font_size"`
	ClockLayout      string                  `yaml:"clock_layout"`
	MaxBitmapBytes   int                     `yaml:"max_bitmap_bytes"`
	IconTints        map[string]raster.Color `yaml:"icon_tints,omitempty"`
}

type ScrollConfig struct {
	Speed        float64 `yaml:"speed"`
	StartDelayMs int     `yaml:"start_delay_ms"`
	EndDelayMs   int     `yaml:"end_delay_ms"`
}

type ProgressConfig struct {
	// Row places the bar above a row; the row count places it below the
	// last row, which is also where an absent row puts it. -1 disables it.
	Row    *int         `yaml:"row,omitempty"`
	Height int          `yaml:"height"`
	Color  raster.Color `yaml:"color"`
}

type RowConfig struct {
	Kind string       `yaml:"kind"`
	Text string       `yaml:"text,omitempty"`
	FG   raster.Color `yaml:"fg"`
	BG   raster.Color `yaml:"bg"`
	Icon string       `yaml:"icon,omitempty"`
}

type ProtocolConfig struct {
	StatusRow *int `yaml:"status_row,omitempty"`
	TimesRow  *int `yaml:"times_row,omitempty"`
}

type SinkConfig struct {
	Type        string            `yaml:"type"`
	Framebuffer FramebufferConfig `yaml:"fbdev"`
	HID         HIDConfig         `yaml:"hid"`
	Window      WindowConfig      `yaml:"window"`
	Terminal    TerminalConfig    `yaml:"terminal"`
}

type FramebufferConfig struct {
	Device string `yaml:"device"`
}

type HIDConfig struct {
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
}

type WindowConfig struct {
	Title string `yaml:"title"`
	Scale int    `yaml:"scale"`
}

type TerminalConfig struct {
	Columns int `yaml:"columns"`
}

type InputConfig struct {
	Command    string   `yaml:"command,omitempty"`
	Args       []string `yaml:"args,omitempty"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and completes a configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) validate() error {
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return fmt.Errorf("display size %dx%d is negative", c.Display.Width, c.Display.Height)
	}
	if c.Display.Rows < 1 || c.Display.Rows > MaxRows {
		return fmt.Errorf("display.rows must be between 1 and %d", MaxRows)
	}
	if _, err := c.Format(); err != nil {
		return err
	}
	if len(c.Rows) > c.Display.Rows {
		return fmt.Errorf("%d rows configured but display.rows is %d", len(c.Rows), c.Display.Rows)
	}
	for i, r := range c.Rows {
		if _, err := r.RowKind(); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
		if _, ok := overlay.IconByName(r.iconName()); !ok {
			return fmt.Errorf("rows[%d]: unknown icon %q", i, r.Icon)
		}
	}
	for name := range c.Display.IconTints {
		if _, ok := overlay.IconByName(name); !ok {
			return fmt.Errorf("display.icon_tints: unknown icon %q", name)
		}
	}

	if row := c.ProgressRow(); row < overlay.ProgressDisabled || row > c.Display.Rows {
		return fmt.Errorf("progress.row %d out of range", row)
	}
	if c.Protocol.StatusRow != nil && *c.Protocol.StatusRow >= c.Display.Rows {
		return fmt.Errorf("protocol.status_row %d out of range", *c.Protocol.StatusRow)
	}
	if c.Protocol.TimesRow != nil && *c.Protocol.TimesRow >= c.Display.Rows {
		return fmt.Errorf("protocol.times_row %d out of range", *c.Protocol.TimesRow)
	}

	switch c.Sink.Type {
	case SinkFramebuffer, SinkWindow, SinkTerminal, SinkNone:
	case SinkHID:
		if c.Sink.HID.VendorID == 0 {
			return fmt.Errorf("sink.hid.vendor_id is required")
		}
		if c.Sink.HID.ProductID == 0 {
			return fmt.Errorf("sink.hid.product_id is required")
		}
	default:
		return fmt.Errorf("unknown sink type %q", c.Sink.Type)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Display.PixelFormat == "" && c.Display.Channels == nil {
		c.Display.PixelFormat = "rgb565"
	}
	if c.Display.Rows == 0 {
		c.Display.Rows = 2
	}
	if c.Display.UpdateIntervalMs == 0 {
		c.Display.UpdateIntervalMs = 25
	}
	if c.Display.ClockLayout == "" {
		c.Display.ClockLayout = "15:04:05"
	}
	if c.Scroll.Speed == 0 {
		c.Scroll.Speed = 20
	}
	if c.Scroll.StartDelayMs == 0 {
		c.Scroll.StartDelayMs = 1000
	}
	if c.Scroll.EndDelayMs == 0 {
		c.Scroll.EndDelayMs = 2000
	}
	if c.Progress.Height == 0 {
		c.Progress.Height = 2
	}
	if c.Progress.Color == 0 {
		c.Progress.Color = 0xffffffff
	}
	for i := range c.Rows {
		if c.Rows[i].FG == 0 {
			c.Rows[i].FG = overlay.DefaultForeground
		}
	}
	if c.Sink.Type == "" {
		c.Sink.Type = SinkFramebuffer
	}
	if c.Sink.Framebuffer.Device == "" {
		c.Sink.Framebuffer.Device = "/dev/fb1"
	}
	if c.Sink.Window.Scale == 0 {
		c.Sink.Window.Scale = 3
	}
	if c.Sink.Window.Title == "" {
		c.Sink.Window.Title = "infodisplay"
	}
	if c.Sink.Type != SinkFramebuffer {
		if c.Display.Width == 0 {
			c.Display.Width = 320
		}
		if c.Display.Height == 0 {
			c.Display.Height = 40
		}
	}
}

// Format returns the configured pixel layout.
func (c *Config) Format() (raster.Format, error) {
	if c.Display.Channels != nil {
		if err := c.Display.Channels.Validate(); err != nil {
			return raster.Format{}, fmt.Errorf("display.channels: %w", err)
		}
		return *c.Display.Channels, nil
	}
	f, ok := raster.FormatByName(c.Display.PixelFormat)
	if !ok {
		return raster.Format{}, fmt.Errorf("unknown pixel format %q", c.Display.PixelFormat)
	}
	return f, nil
}

// UpdateInterval returns the frame pump cadence.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.Display.UpdateIntervalMs) * time.Millisecond
}

// RowHeight returns the row height used for a display of the given height.
func (c *Config) RowHeight(height int) int {
	if c.Display.RowHeight > 0 {
		return c.Display.RowHeight
	}
	return max((height-c.Progress.Height)/c.Display.Rows, 1)
}

// FontSize returns the configured font size, or three quarters of the row
// height.
func (c *Config) FontSize(height int) float64 {
	if c.Display.FontSize > 0 {
		return c.Display.FontSize
	}
	return float64(c.RowHeight(height)) * 0.75
}

// ScrollParams returns the marquee timing.
func (c *Config) ScrollParams() overlay.ScrollParams {
	return overlay.ScrollParams{
		Speed:      c.Scroll.Speed,
		StartDelay: time.Duration(c.Scroll.StartDelayMs) * time.Millisecond,
		EndDelay:   time.Duration(c.Scroll.EndDelayMs) * time.Millisecond,
	}
}

// ProgressRow returns the progress bar slot. Unset means below the last
// row.
func (c *Config) ProgressRow() int {
	if c.Progress.Row == nil {
		return c.Display.Rows
	}
	return *c.Progress.Row
}

// StatusRow returns the row receiving S icons, -1 for the last row.
func (c *Config) StatusRow() int {
	if c.Protocol.StatusRow == nil {
		return -1
	}
	return *c.Protocol.StatusRow
}

// TimesRow returns the row receiving T times, -1 for the last row.
func (c *Config) TimesRow() int {
	if c.Protocol.TimesRow == nil {
		return -1
	}
	return *c.Protocol.TimesRow
}

// RowKind parses the row kind.
func (r RowConfig) RowKind() (overlay.RowKind, error) {
	switch r.Kind {
	case "", "text":
		return overlay.PlainText, nil
	case "clock":
		return overlay.LiveClock, nil
	}
	return overlay.PlainText, fmt.Errorf("unknown row kind %q", r.Kind)
}

func (r RowConfig) iconName() string {
	if r.Icon == "" {
		return overlay.IconNone.String()
	}
	return r.Icon
}

// RowIcon returns the row's icon.
func (r RowConfig) RowIcon() overlay.Icon {
	icon, _ := overlay.IconByName(r.iconName())
	return icon
}

// UpdateDeviceIDs updates the vendor_id and product_id in a config file
// while preserving the rest of the file structure and comments
func UpdateDeviceIDs(path string, vendorID, productID uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(data)

	// Update vendor_id (YAML format: vendor_id: 0x1234 or vendor_id: 1234)
	vendorRegex := regexp.MustCompile(`(?m)^(\s*vendor_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = vendorRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", vendorID))

	// Update product_id
	productRegex := regexp.MustCompile(`(?m)^(\s*product_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = productRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", productID))

	// Write back
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetDisplayGeometry writes display.width, display.height and
// display.pixel_format into a config file, adding the keys when they are
// missing. Comments are kept. An empty pixelFormat leaves that key alone.
func SetDisplayGeometry(path string, width, height int, pixelFormat string) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("display size %dx%d is negative", width, height)
	}
	if pixelFormat != "" {
		if _, ok := raster.FormatByName(pixelFormat); !ok {
			return fmt.Errorf("unknown pixel format %q", pixelFormat)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config file %s is not a mapping", path)
	}

	display := mappingValue(root, "display")
	if display.Kind != yaml.MappingNode {
		display.Kind, display.Tag, display.Value = yaml.MappingNode, "", ""
	}
	setScalar(display, "width", strconv.Itoa(width), "!!int")
	setScalar(display, "height", strconv.Itoa(height), "!!int")
	if pixelFormat != "" {
		setScalar(display, "pixel_format", pixelFormat, "!!str")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// mappingValue returns the value node for key, appending an empty mapping
// when the key is absent.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, k, v)
	return v
}

func setScalar(m *yaml.Node, key, value, tag string) {
	v := mappingValue(m, key)
	v.Kind, v.Tag, v.Value, v.Style, v.Content = yaml.ScalarNode, tag, value, 0, nil
}

// CreateDefaultConfig creates a new config file for a HID display with the
// specified device
func CreateDefaultConfig(path string, vendorID, productID uint16) error {
	content := fmt.Sprintf(`# infodisplay configuration

display:
  width: 320
  height: 40
  pixel_format: rgb565
  rows: 2
  update_interval_ms: 25

progress:
  row: 2
  height: 2
  color: "#ffffffff"

rows:
  - kind: text
    fg: "#ffffff"
  - kind: text
    fg: "#c0c0c0"
    icon: empty

sink:
  type: hid
  hid:
    vendor_id: 0x%04X
    product_id: 0x%04X
`, vendorID, productID)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
