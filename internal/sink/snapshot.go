package sink

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/pleimann/infodisplay/internal/raster"
)

// ErrNoFrame is returned by WritePNG before any frame was presented.
var ErrNoFrame = errors.New("no frame presented")

// Snapshot keeps the most recent frame in memory.
type Snapshot struct {
	img    *image.NRGBA
	frames int
}

// Present copies a frame.
func (s *Snapshot) Present(bb *raster.Backbuffer) error {
	if s.img == nil || s.img.Rect != bb.Rect() {
		s.img = image.NewNRGBA(bb.Rect())
	}
	toNRGBA(s.img.Pix, bb, false)
	s.frames++
	return nil
}

// Clear does nothing, so the last frame can still be written out after the
// frame pump stops.
func (s *Snapshot) Clear() error {
	return nil
}

// Frames returns how many frames were presented.
func (s *Snapshot) Frames() int {
	return s.frames
}

// Image returns the last frame, or nil.
func (s *Snapshot) Image() *image.NRGBA {
	return s.img
}

// WritePNG encodes the last frame.
func (s *Snapshot) WritePNG(w io.Writer) error {
	if s.img == nil {
		return ErrNoFrame
	}
	return png.Encode(w, s.img)
}
