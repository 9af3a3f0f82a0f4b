// Package text rasterizes single lines of status text into luminance
// bitmaps. Every renderer here satisfies overlay.Font.
package text

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/pleimann/infodisplay/internal/raster"
)

// Normalize prepares text for rendering: invalid UTF-8 is dropped, line
// breaks and tabs become spaces and the result is NFC composed so accents
// land on a single glyph.
func Normalize(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, s)
	return norm.NFC.String(s)
}

// Face renders text with a golang.org/x/image font.Face.
type Face struct {
	face   font.Face
	ascent int
	height int
}

// NewFace wraps a font face.
func NewFace(face font.Face) *Face {
	m := face.Metrics()
	return &Face{
		face:   face,
		ascent: m.Ascent.Ceil(),
		height: (m.Ascent + m.Descent).Ceil(),
	}
}

// Basic returns the built-in 7x13 bitmap font.
func Basic() *Face {
	return NewFace(basicfont.Face7x13)
}

// Measure returns the advance width of text and the line height.
func (f *Face) Measure(text string) (int, int) {
	text = Normalize(text)
	if text == "" {
		return 0, 0
	}
	return font.MeasureString(f.face, text).Ceil(), f.height
}

// Draw renders text with its baseline at the face ascent.
func (f *Face) Draw(dst *raster.Bitmap, text string) {
	img := dst.Image()
	if img == nil {
		return
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: f.face,
		Dot:  fixed.P(0, f.ascent),
	}
	d.DrawString(Normalize(text))
}

// Close releases the underlying face.
func (f *Face) Close() error {
	return f.face.Close()
}
