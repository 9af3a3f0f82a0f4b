package config

import (
	"log/slog"

	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/protocol"
)

// OverlayOptions builds the overlay options for a display of the given
// size. The font is chosen by the caller.
func (c *Config) OverlayOptions(width, height int, font overlay.Font, logger *slog.Logger) (overlay.Options, error) {
	format, err := c.Format()
	if err != nil {
		return overlay.Options{}, err
	}
	return overlay.Options{
		Width:          width,
		Height:         height,
		Format:         format,
		Rows:           c.Display.Rows,
		RowHeight:      c.Display.RowHeight,
		Font:           font,
		Scroll:         c.ScrollParams(),
		ProgressHeight: c.Progress.Height,
		ClockLayout:    c.Display.ClockLayout,
		MaxBitmapBytes: c.Display.MaxBitmapBytes,
		Logger:         logger,
	}, nil
}

// ProtocolOptions builds the command handler options.
func (c *Config) ProtocolOptions(logger *slog.Logger) protocol.Options {
	return protocol.Options{
		StatusRow: c.StatusRow(),
		TimesRow:  c.TimesRow(),
		Logger:    logger,
	}
}

// Apply pushes the settings that can change without rebuilding the overlay:
// row kinds, text, icons and colors, icon tints, scroll timing and the
// progress bar placement. Only rows present in the config are touched.
func (c *Config) Apply(o *overlay.Overlay) {
	for i, r := range c.Rows {
		if i >= o.RowCount() {
			break
		}
		kind, _ := r.RowKind()
		if kind == overlay.LiveClock || r.Text != "" {
			if kind != overlay.LiveClock && o.RowText(i) != r.Text {
				o.ResetRowScroll(i)
			}
			o.SetRowText(i, kind, r.Text)
		}
		o.SetRowIcon(i, r.RowIcon())
		o.SetRowColors(i, r.FG, r.BG)
	}
	for name, tint := range c.Display.IconTints {
		if icon, ok := overlay.IconByName(name); ok {
			o.SetIconTint(icon, tint)
		}
	}
	o.SetScroll(c.ScrollParams())

	_, value, _ := o.Progress()
	o.SetProgress(c.ProgressRow(), value, c.Progress.Color)
}

// RestartFields lists the settings that differ between two configs and
// only take effect after a restart.
func RestartFields(old, cur *Config) []string {
	var fields []string
	check := func(name string, changed bool) {
		if changed {
			fields = append(fields, name)
		}
	}
	oldFormat, _ := old.Format()
	curFormat, _ := cur.Format()

	check("display.width", old.Display.Width != cur.Display.Width)
	check("display.height", old.Display.Height != cur.Display.Height)
	check("display.pixel_format", oldFormat != curFormat)
	check("display.rows", old.Display.Rows != cur.Display.Rows)
	check("display.row_height", old.Display.RowHeight != cur.Display.RowHeight)
	check("display.update_interval_ms", old.Display.UpdateIntervalMs != cur.Display.UpdateIntervalMs)
	check("display.font", old.Display.Font != cur.Display.Font || old.Display.FontSize != cur.Display.FontSize)
	check("display.clock_layout", old.Display.ClockLayout != cur.Display.ClockLayout)
	check("display.max_bitmap_bytes", old.Display.MaxBitmapBytes != cur.Display.MaxBitmapBytes)
	check("progress.height", old.Progress.Height != cur.Progress.Height)
	check("protocol", old.StatusRow() != cur.StatusRow() || old.TimesRow() != cur.TimesRow())
	check("sink", old.Sink != cur.Sink)
	check("input", !sameInput(old.Input, cur.Input))
	return fields
}

func sameInput(a, b InputConfig) bool {
	if a.Command != b.Command || a.WorkingDir != b.WorkingDir || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != b.Args[i] {
			return false
		}
	}
	return true
}
