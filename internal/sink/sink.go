// Package sink delivers composed overlay frames to an output: a Linux
// framebuffer, a USB HID display, a desktop window, a terminal or an
// in-memory snapshot.
package sink

import (
	"errors"

	"github.com/pleimann/infodisplay/internal/raster"
)

// ErrUnsupported is returned when a sink is not available on this platform.
var ErrUnsupported = errors.New("sink not supported on this platform")

// Geometry is the overlay size and pixel layout a sink expects. Sinks that
// accept any size return a zero Geometry.
type Geometry struct {
	Width  int
	Height int
	Format raster.Format
}

// toNRGBA converts a packed backbuffer into 8-bit RGBA bytes. With opaque
// set, or for formats without alpha, every pixel gets full alpha.
func toNRGBA(dst []byte, bb *raster.Backbuffer, opaque bool) {
	f := bb.Format()
	opaque = opaque || f.A.Bits == 0
	i := 0
	for y := 0; y < bb.Height(); y++ {
		for x := 0; x < bb.Width(); x++ {
			r, g, b, a := f.Unpack(bb.Word(x, y))
			if opaque {
				a = 0xff
			}
			dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, b, a
			i += 4
		}
	}
}
