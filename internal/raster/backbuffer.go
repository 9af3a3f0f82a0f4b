package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrInvalidSize is returned for non-positive buffer dimensions.
var ErrInvalidSize = errors.New("invalid buffer size")

// Backbuffer is an off-screen image of packed pixel words stored
// little-endian, row-major, with no padding between rows.
//
// Backbuffer implements image.Image so it can be encoded or previewed.
type Backbuffer struct {
	pix    []byte
	width  int
	height int
	stride int
	format Format
}

// NewBackbuffer allocates a zeroed buffer.
func NewBackbuffer(width, height int, f Format) (*Backbuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	stride := width * f.BytesPerPixel
	return &Backbuffer{
		pix:    make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: f,
	}, nil
}

// Width returns the buffer width in pixels
func (b *Backbuffer) Width() int { return b.width }

// Height returns the buffer height in pixels
func (b *Backbuffer) Height() int { return b.height }

// Stride returns the number of bytes per row.
func (b *Backbuffer) Stride() int { return b.stride }

// Format returns the pixel layout.
func (b *Backbuffer) Format() Format { return b.format }

// Bytes exposes the raw pixel memory. Callers must treat it as read-only.
func (b *Backbuffer) Bytes() []byte { return b.pix }

// Rect returns the buffer bounds.
func (b *Backbuffer) Rect() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Clear zeroes every pixel.
func (b *Backbuffer) Clear() {
	clear(b.pix)
}

// Word returns the pixel word at (x, y). Coordinates must be in bounds.
func (b *Backbuffer) Word(x, y int) uint32 {
	return b.word(y*b.stride + x*b.format.BytesPerPixel)
}

func (b *Backbuffer) word(off int) uint32 {
	var w uint32
	for i := b.format.BytesPerPixel - 1; i >= 0; i-- {
		w = w<<8 | uint32(b.pix[off+i])
	}
	return w
}

func (b *Backbuffer) setWord(off int, w uint32) {
	for i := 0; i < b.format.BytesPerPixel; i++ {
		b.pix[off+i] = byte(w)
		w >>= 8
	}
}

func (b *Backbuffer) offset(x, y int) int {
	return y*b.stride + x*b.format.BytesPerPixel
}

func (b *Backbuffer) Bounds() image.Rectangle { return b.Rect() }
func (b *Backbuffer) ColorModel() color.Model { return color.NRGBAModel }

// At decodes the pixel at (x, y). Formats without an alpha channel report
// opaque pixels.
func (b *Backbuffer) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(b.Rect())) {
		return color.NRGBA{}
	}
	r, g, bl, a := b.format.Unpack(b.word(b.offset(x, y)))
	if b.format.A.Bits == 0 {
		a = 0xff
	}
	return color.NRGBA{R: r, G: g, B: bl, A: a}
}
