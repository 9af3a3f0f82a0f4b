// Package raster implements software compositing into packed-pixel buffers.
//
// A Backbuffer stores pixels as little-endian words whose channel layout is
// described by a Format. All drawing goes through a single clip routine so
// that no primitive can write outside the buffer.
package raster

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrInvalidFormat is returned when a pixel format cannot be represented.
var ErrInvalidFormat = errors.New("invalid pixel format")

// Channel describes where one color channel lives inside a pixel word.
// A channel with zero Bits is absent.
type Channel struct {
	Offset uint8 `yaml:"offset"`
	Bits   uint8 `yaml:"bits"`
}

func (c Channel) mask() uint32 {
	return (uint32(1)<<c.Bits - 1) << c.Offset
}

// Format is a packed pixel layout.
type Format struct {
	R Channel `yaml:"r"`
	G Channel `yaml:"g"`
	B Channel `yaml:"b"`
	A Channel `yaml:"a"`
	// BytesPerPixel is the pixel word size (1 to 4).
	BytesPerPixel int `yaml:"bytes_per_pixel"`
}

// Common layouts.
var (
	RGB565   = Format{R: Channel{11, 5}, G: Channel{5, 6}, B: Channel{0, 5}, BytesPerPixel: 2}
	BGR565   = Format{R: Channel{0, 5}, G: Channel{5, 6}, B: Channel{11, 5}, BytesPerPixel: 2}
	RGB555   = Format{R: Channel{10, 5}, G: Channel{5, 5}, B: Channel{0, 5}, BytesPerPixel: 2}
	ARGB4444 = Format{R: Channel{8, 4}, G: Channel{4, 4}, B: Channel{0, 4}, A: Channel{12, 4}, BytesPerPixel: 2}
	RGB888   = Format{R: Channel{16, 8}, G: Channel{8, 8}, B: Channel{0, 8}, BytesPerPixel: 3}
	XRGB8888 = Format{R: Channel{16, 8}, G: Channel{8, 8}, B: Channel{0, 8}, BytesPerPixel: 4}
	ARGB8888 = Format{R: Channel{16, 8}, G: Channel{8, 8}, B: Channel{0, 8}, A: Channel{24, 8}, BytesPerPixel: 4}
)

var namedFormats = map[string]Format{
	"rgb565":   RGB565,
	"bgr565":   BGR565,
	"rgb555":   RGB555,
	"argb4444": ARGB4444,
	"rgb888":   RGB888,
	"xrgb8888": XRGB8888,
	"argb8888": ARGB8888,
}

// FormatByName looks up one of the common layouts.
func FormatByName(name string) (Format, bool) {
	f, ok := namedFormats[name]
	return f, ok
}

// FormatNames lists the names FormatByName accepts, sorted.
func FormatNames() []string {
	return slices.Sorted(maps.Keys(namedFormats))
}

// Validate checks that every channel fits in the pixel word and that no two
// channels overlap.
func (f Format) Validate() error {
	if f.BytesPerPixel < 1 || f.BytesPerPixel > 4 {
		return fmt.Errorf("%w: word size %d bytes", ErrInvalidFormat, f.BytesPerPixel)
	}
	wordBits := f.BytesPerPixel * 8
	var used uint32
	for i, c := range f.channels() {
		if c.Bits == 0 {
			continue
		}
		if c.Bits > 8 {
			return fmt.Errorf("%w: channel %c is %d bits wide", ErrInvalidFormat, "RGBA"[i], c.Bits)
		}
		if int(c.Offset)+int(c.Bits) > wordBits {
			return fmt.Errorf("%w: channel %c exceeds %d-bit word", ErrInvalidFormat, "RGBA"[i], wordBits)
		}
		if used&c.mask() != 0 {
			return fmt.Errorf("%w: channel %c overlaps another channel", ErrInvalidFormat, "RGBA"[i])
		}
		used |= c.mask()
	}
	if used == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidFormat)
	}
	return nil
}

func (f Format) channels() [4]Channel {
	return [4]Channel{f.R, f.G, f.B, f.A}
}

// Pack encodes 8-bit logical channel values into a pixel word. Each value
// keeps only its most significant bits.
func (f Format) Pack(r, g, b, a uint8) uint32 {
	return packChannel(r, f.R) | packChannel(g, f.G) | packChannel(b, f.B) | packChannel(a, f.A)
}

func packChannel(v uint8, c Channel) uint32 {
	if c.Bits == 0 {
		return 0
	}
	return uint32(v>>(8-c.Bits)) << c.Offset
}

// Unpack decodes all four channels of w to 8-bit values.
func (f Format) Unpack(w uint32) (r, g, b, a uint8) {
	return unpackChannel(w, f.R), unpackChannel(w, f.G), unpackChannel(w, f.B), unpackChannel(w, f.A)
}

// unpackChannel extracts a channel and widens it to 8 bits by replicating
// its top bits into the vacated low bits, so full scale maps to 0xff.
func unpackChannel(w uint32, c Channel) uint8 {
	if c.Bits == 0 {
		return 0
	}
	x := (w >> c.Offset) & (uint32(1)<<c.Bits - 1)
	v := x << (8 - c.Bits)
	for shift := c.Bits; shift < 8; shift += c.Bits {
		v |= v >> shift
	}
	return uint8(v)
}

// Quantize returns the 8-bit value v maps to after a round trip through a
// channel of the given width.
func Quantize(v uint8, bits uint8) uint8 {
	c := Channel{Bits: bits}
	return unpackChannel(packChannel(v, c), c)
}
