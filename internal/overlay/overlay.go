// Package overlay composes status rows, icons and a progress bar into a
// packed-pixel backbuffer for a small auxiliary screen.
//
// An Overlay is driven from a single goroutine: callers apply mutators
// between ticks and call Update once per tick, then copy out Backbuffer.
// Update reports whether the next tick must render again even without new
// input (scrolling text, animated icons, clock rows).
package overlay

import (
	"image"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/pleimann/infodisplay/internal/raster"
)

// ErrInvalidSize is returned by New for a non-positive width or height.
var ErrInvalidSize = raster.ErrInvalidSize

// ProgressDisabled hides the progress bar and frees its space.
const ProgressDisabled = -1

const (
	defaultRows           = 2
	defaultProgressHeight = 2
	defaultIconGap        = 2
	defaultClockLayout    = "15:04:05"
)

// Font rasterizes single lines of text into luminance bitmaps.
type Font interface {
	// Measure returns the size of the bitmap needed for text.
	Measure(text string) (width, height int)
	// Draw renders text into dst, which has been reserved at the measured
	// size and cleared.
	Draw(dst *raster.Bitmap, text string)
}

// Options configures a new Overlay.
type Options struct {
	Width  int
	Height int
	Format raster.Format

	// Rows is the number of status rows, 2 when zero.
	Rows int
	// RowHeight is the height of one row band. When zero the height left
	// after the progress bar is shared evenly between rows.
	RowHeight int

	// Font renders row text. A nil Font disables text.
	Font Font
	// Icons overrides the generated icon set.
	Icons *IconTable
	// IconGap is the space between an icon and the text, 2 when zero.
	IconGap int

	Scroll ScrollParams

	// ProgressHeight is the height of the progress bar band, 2 when zero.
	ProgressHeight int

	// ClockLayout is the time.Format layout used by LiveClock rows.
	ClockLayout string

	// MaxBitmapBytes caps the size of one row's text bitmap. Text that
	// would need more keeps the previously rendered bitmap. Zero means no cap.
	MaxBitmapBytes int

	// Now is the time source for animation and clock rows.
	Now func() time.Time

	Logger *slog.Logger
}

type progressBar struct {
	row    int
	height int
	value  float64
	color  raster.Color
}

// Overlay is the frame composer. It is not safe for concurrent use.
type Overlay struct {
	buf       *raster.Backbuffer
	rows      []row
	rowHeight int
	iconSize  int
	iconGap   int
	icons     IconTable

	progress progressBar

	font           Font
	scroll         ScrollParams
	clock          *AnimationClock
	clockLayout    string
	maxBitmapBytes int
	now            func() time.Time
	log            *slog.Logger

	lastRefresh bool
}

// New creates an overlay and its backbuffer.
func New(opts Options) (*Overlay, error) {
	buf, err := raster.NewBackbuffer(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rows := opts.Rows
	if rows <= 0 {
		rows = defaultRows
	}
	barHeight := opts.ProgressHeight
	if barHeight <= 0 {
		barHeight = defaultProgressHeight
	}
	rowHeight := opts.RowHeight
	if rowHeight <= 0 {
		rowHeight = max((opts.Height-barHeight)/rows, 1)
	}
	gap := opts.IconGap
	if gap <= 0 {
		gap = defaultIconGap
	}
	layout := opts.ClockLayout
	if layout == "" {
		layout = defaultClockLayout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	o := &Overlay{
		buf:            buf,
		rows:           make([]row, rows),
		rowHeight:      rowHeight,
		iconSize:       max(rowHeight*4/5, 1),
		iconGap:        gap,
		progress:       progressBar{row: ProgressDisabled, height: barHeight, color: 0xffffffff},
		font:           opts.Font,
		scroll:         opts.Scroll.withDefaults(),
		clock:          NewAnimationClock(now),
		clockLayout:    layout,
		maxBitmapBytes: opts.MaxBitmapBytes,
		now:            now,
		log:            logger,
	}
	for i := range o.rows {
		o.rows[i] = newRow()
	}
	if opts.Icons != nil {
		o.icons = *opts.Icons
	} else {
		o.icons = DefaultIcons(o.iconSize)
	}
	if o.font == nil {
		logger.Warn("no font available, text rendering disabled")
	}
	logger.Debug("overlay created",
		"width", opts.Width, "height", opts.Height,
		"rows", rows, "row_height", rowHeight)
	return o, nil
}

// Backbuffer returns the composed frame. It is only valid until the next
// call to Update.
func (o *Overlay) Backbuffer() *raster.Backbuffer {
	return o.buf
}

// RowCount returns the number of rows. Passing it to SetProgress places the
// bar below the last row.
func (o *Overlay) RowCount() int {
	return len(o.rows)
}

// RowHeight returns the height of one row band.
func (o *Overlay) RowHeight() int {
	return o.rowHeight
}

func (o *Overlay) row(i int) *row {
	if i < 0 || i >= len(o.rows) {
		return nil
	}
	return &o.rows[i]
}

// SetRowText sets a row's text source. The text is rasterized on the next
// Update if it differs from what is shown. Scroll position is kept; see
// ResetRowScroll.
func (o *Overlay) SetRowText(i int, kind RowKind, text string) {
	r := o.row(i)
	if r == nil {
		return
	}
	r.kind = kind
	r.text = text
}

// RowText returns the raw text of a row.
func (o *Overlay) RowText(i int) string {
	if r := o.row(i); r != nil {
		return r.text
	}
	return ""
}

// ResetRowScroll restarts a row's marquee from its start position.
func (o *Overlay) ResetRowScroll(i int) {
	if r := o.row(i); r != nil {
		r.scrollElapsed = 0
	}
}

// SetRowIcon sets the icon shown at the left of a row.
func (o *Overlay) SetRowIcon(i int, icon Icon) {
	r := o.row(i)
	if r == nil || !icon.Valid() {
		return
	}
	r.icon = icon
}

// RowIcon returns a row's icon.
func (o *Overlay) RowIcon(i int) Icon {
	if r := o.row(i); r != nil {
		return r.icon
	}
	return IconNone
}

// SetRowColors sets the text and background colors of a row. A background
// with zero RGB is not drawn.
func (o *Overlay) SetRowColors(i int, fg, bg raster.Color) {
	r := o.row(i)
	if r == nil {
		return
	}
	r.fg = fg
	r.bg = bg
}

// SetRowTimes shows a playback position and total length, in milliseconds,
// as the row's text. A negative total is omitted.
func (o *Overlay) SetRowTimes(i int, elapsedMs, totalMs int64) {
	o.SetRowText(i, PlainText, FormatTimes(elapsedMs, totalMs))
}

// SetIconTint changes the tint of one icon.
func (o *Overlay) SetIconTint(icon Icon, c raster.Color) {
	o.icons.SetTint(icon, c)
}

// SetScroll replaces the marquee timing.
func (o *Overlay) SetScroll(p ScrollParams) {
	o.scroll = p.withDefaults()
}

// SetProgress places the progress bar above row, or below the last row when
// row equals RowCount, or hides it with ProgressDisabled. value is clamped
// to [0, 1]. Other row values are ignored.
func (o *Overlay) SetProgress(row int, value float64, color raster.Color) {
	if row != ProgressDisabled && (row < 0 || row > len(o.rows)) {
		return
	}
	if math.IsNaN(value) {
		value = 0
	}
	o.progress.row = row
	o.progress.value = min(max(value, 0), 1)
	o.progress.color = color
}

// ProgressAfterRows is the progress slot below the last row.
func (o *Overlay) ProgressAfterRows() int {
	return len(o.rows)
}

// Progress returns the bar's row, value and color.
func (o *Overlay) Progress() (row int, value float64, color raster.Color) {
	return o.progress.row, o.progress.value, o.progress.color
}

// Update composes a new frame and reports whether another frame is needed
// without further input.
func (o *Overlay) Update() bool {
	anim, delta := o.clock.Tick(o.lastRefresh)
	o.buf.Clear()

	refresh := false
	now := o.now()
	y := 0
	barY := -1
	for i := range o.rows {
		r := &o.rows[i]
		switch {
		case r.kind == LiveClock:
			o.rasterize(r, now.Format(o.clockLayout))
			refresh = true
		case r.text != r.rendered && r.text != r.failed:
			o.rasterize(r, r.text)
		}

		if o.progress.row == i {
			barY = y
			y += o.progress.height
		}
		if o.renderRow(r, y, anim, delta) {
			refresh = true
		}
		y += o.rowHeight
	}
	if o.progress.row == len(o.rows) {
		barY = y
	}
	if barY >= 0 {
		o.drawProgress(barY)
	}

	o.lastRefresh = refresh
	return refresh
}

func (o *Overlay) rasterize(r *row, text string) {
	if o.font == nil {
		return
	}
	if text == r.rendered {
		return
	}
	w, h := o.font.Measure(text)
	if text == "" || w <= 0 || h <= 0 {
		r.bitmap.Reserve(0, 0, 0)
		r.rendered = text
		r.failed = ""
		return
	}
	if !r.bitmap.Reserve(w, h, o.maxBitmapBytes) {
		if r.failed != text {
			o.log.Warn("text bitmap over budget, keeping previous",
				"width", w, "height", h, "max_bytes", o.maxBitmapBytes)
		}
		r.failed = text
		return
	}
	o.font.Draw(&r.bitmap, text)
	r.rendered = text
	r.failed = ""
}

func (o *Overlay) renderRow(r *row, y int, anim, delta time.Duration) bool {
	width := o.buf.Width()
	band := image.Rect(0, y, width, y+o.rowHeight)
	filled := r.filled()
	if filled {
		o.buf.Fill(band, band, r.bg)
	}

	refresh := false
	x := 0
	if r.icon != IconNone {
		art := o.icons[r.icon]
		if bm := art.Frame(anim); bm != nil {
			o.blit(0, y+(o.rowHeight-bm.Height())/2, bm, band, art.Tint, filled)
		}
		if art.Animated() {
			refresh = true
		}
		x = art.Width(o.iconSize) + o.iconGap
	}

	tw, th := r.bitmap.Width(), r.bitmap.Height()
	avail := width - x
	if tw == 0 || avail <= 0 {
		return refresh
	}
	tx := x
	if tw > avail {
		r.scrollElapsed += delta
		tx += int(math.Round(o.scroll.Offset(r.scrollElapsed, tw, avail)))
		refresh = true
	}
	clip := image.Rect(x, y, width, y+o.rowHeight)
	o.blit(tx, y+(o.rowHeight-th)/2, &r.bitmap, clip, r.fg, filled)
	return refresh
}

func (o *Overlay) blit(x, y int, bm *raster.Bitmap, clip image.Rectangle, tint raster.Color, blend bool) {
	if blend {
		o.buf.BlendBitmap(x, y, bm, clip, tint)
	} else {
		o.buf.OrBitmap(x, y, bm, clip, tint)
	}
}

func (o *Overlay) drawProgress(y int) {
	length := int(math.Floor(o.progress.value * float64(o.buf.Width())))
	if length <= 0 {
		return
	}
	r := image.Rect(0, y, length, y+o.progress.height)
	o.buf.BlendFill(r, o.buf.Rect(), o.progress.color)
}
