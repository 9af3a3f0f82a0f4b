package raster

import (
	"image"
)

// Bitmap is an 8-bit luminance image used as a blit source for text and
// icons. Its backing store only ever grows: Reserve reuses the existing
// allocation whenever the requested content size fits.
type Bitmap struct {
	img    *image.Alpha
	width  int
	height int
}

// NewBitmap allocates a bitmap whose content area is w x h.
func NewBitmap(w, h int) *Bitmap {
	b := &Bitmap{}
	b.Reserve(w, h, 0)
	return b
}

// BitmapFromPix wraps luminance bytes laid out with the given stride.
func BitmapFromPix(pix []uint8, w, h, stride int) *Bitmap {
	return &Bitmap{
		img:    &image.Alpha{Pix: pix, Stride: stride, Rect: image.Rect(0, 0, w, h)},
		width:  w,
		height: h,
	}
}

// Width returns the content width in pixels.
func (b *Bitmap) Width() int {
	if b == nil {
		return 0
	}
	return b.width
}

// Height returns the content height in pixels.
func (b *Bitmap) Height() int {
	if b == nil {
		return 0
	}
	return b.height
}

// Capacity returns the allocated size, which is never smaller than the
// content size.
func (b *Bitmap) Capacity() (w, h int) {
	if b == nil || b.img == nil {
		return 0, 0
	}
	return b.img.Rect.Dx(), b.img.Rect.Dy()
}

// Image returns the backing image, cropped to the content area.
func (b *Bitmap) Image() *image.Alpha {
	if b.img == nil {
		return nil
	}
	return b.img.SubImage(image.Rect(0, 0, b.width, b.height)).(*image.Alpha)
}

// At returns the luminance at (x, y) of the content area.
func (b *Bitmap) At(x, y int) uint8 {
	return b.img.Pix[y*b.img.Stride+x]
}

// Set writes a luminance value, ignoring coordinates outside the content area.
func (b *Bitmap) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.img.Pix[y*b.img.Stride+x] = v
}

// Reserve prepares the bitmap to hold w x h pixels and clears it.
//
// If the current allocation is large enough it is reused. Otherwise a new
// one of max(old, new) in each dimension is made, unless that would exceed
// maxBytes (when maxBytes > 0); in that case Reserve returns false and the
// bitmap, including its pixels, is left untouched.
func (b *Bitmap) Reserve(w, h int, maxBytes int) bool {
	if w < 0 || h < 0 {
		return false
	}
	capW, capH := b.Capacity()
	if b.img != nil && w <= capW && h <= capH {
		clear(b.img.Pix)
		b.width, b.height = w, h
		return true
	}
	newW, newH := max(capW, w), max(capH, h)
	if maxBytes > 0 && newW*newH > maxBytes {
		return false
	}
	b.img = image.NewAlpha(image.Rect(0, 0, newW, newH))
	b.width, b.height = w, h
	return true
}
