package text

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/pleimann/infodisplay/internal/raster"
)

// Tiny renders text with a tinyfont bitmap font, which stays crisp on very
// small rows where outline fonts blur.
type Tiny struct {
	font   tinyfont.Fonter
	height int
}

// NewTiny wraps a tinyfont font.
func NewTiny(f tinyfont.Fonter) *Tiny {
	return &Tiny{font: f, height: int(f.GetYAdvance())}
}

// DefaultTiny returns the ProggyTiny font.
func DefaultTiny() *Tiny {
	return NewTiny(&proggy.TinySZ8pt7b)
}

func (t *Tiny) Measure(text string) (int, int) {
	text = Normalize(text)
	if text == "" {
		return 0, 0
	}
	_, outbox := tinyfont.LineWidth(t.font, text)
	return int(outbox), t.height
}

func (t *Tiny) Draw(dst *raster.Bitmap, text string) {
	baseline := t.height - t.height/4
	tinyfont.WriteLine(bitmapDisplay{dst}, t.font, 0, int16(baseline), Normalize(text), color.RGBA{A: 0xff})
}

// bitmapDisplay lets tinyfont draw into a luminance bitmap. Any pixel it
// sets becomes fully lit.
type bitmapDisplay struct {
	bm *raster.Bitmap
}

var _ drivers.Displayer = bitmapDisplay{}

func (d bitmapDisplay) Size() (x, y int16) {
	return int16(d.bm.Width()), int16(d.bm.Height())
}

func (d bitmapDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.bm.Set(int(x), int(y), c.A)
}

func (d bitmapDisplay) Display() error {
	return nil
}
