package overlay

import (
	"time"

	"github.com/pleimann/infodisplay/internal/raster"
)

// RowKind selects where a row's text comes from.
type RowKind int

const (
	PlainText RowKind = iota // text set through SetRowText
	LiveClock                // current wall-clock time, re-rendered every tick
)

func (k RowKind) String() string {
	switch k {
	case PlainText:
		return "text"
	case LiveClock:
		return "clock"
	}
	return "unknown"
}

type row struct {
	kind RowKind
	text string

	// rendered is the text currently held in bitmap. failed is the last
	// text that could not be rasterized, so it is not retried every tick.
	rendered string
	failed   string
	bitmap   raster.Bitmap

	icon Icon
	fg   raster.Color
	bg   raster.Color

	scrollElapsed time.Duration
}

// DefaultForeground is the text color of a new row.
const DefaultForeground raster.Color = 0xffffffff

func newRow() row {
	return row{fg: DefaultForeground}
}

func (r *row) filled() bool {
	return r.bg.RGB() != 0
}
