package raster

import "image"

// Fill writes the RGB of c into every pixel of r that survives clipping.
// The destination alpha channel, if any, is set to fully opaque.
func (b *Backbuffer) Fill(r, clip image.Rectangle, c Color) {
	span, ok := Clip(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), clip, b.Rect())
	if !ok {
		return
	}
	w := b.format.Pack(c.R(), c.G(), c.B(), 0xff)
	for y := span.Dst.Min.Y; y < span.Dst.Max.Y; y++ {
		off := b.offset(span.Dst.Min.X, y)
		for x := span.Dst.Min.X; x < span.Dst.Max.X; x++ {
			b.setWord(off, w)
			off += b.format.BytesPerPixel
		}
	}
}

// BlendFill composites c over the pixels of r using c's alpha.
func (b *Backbuffer) BlendFill(r, clip image.Rectangle, c Color) {
	alpha := c.A()
	if alpha == 0 {
		return
	}
	span, ok := Clip(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), clip, b.Rect())
	if !ok {
		return
	}
	for y := span.Dst.Min.Y; y < span.Dst.Max.Y; y++ {
		off := b.offset(span.Dst.Min.X, y)
		for x := span.Dst.Min.X; x < span.Dst.Max.X; x++ {
			b.setWord(off, b.blendWord(b.word(off), c, alpha))
			off += b.format.BytesPerPixel
		}
	}
}

// OrBitmap scales each luminance sample of src by tint and ORs it into the
// destination. This is only correct where the destination is still zero,
// which is the case for freshly cleared areas without a background fill.
func (b *Backbuffer) OrBitmap(x, y int, src *Bitmap, clip image.Rectangle, tint Color) {
	if src == nil || src.img == nil {
		return
	}
	span, ok := Clip(x, y, src.width, src.height, clip, b.Rect())
	if !ok {
		return
	}
	tr, tg, tb := uint32(tint.R())+1, uint32(tint.G())+1, uint32(tint.B())+1
	for dy := span.Dst.Min.Y; dy < span.Dst.Max.Y; dy++ {
		sy := span.Src.Y + dy - span.Dst.Min.Y
		row := src.img.Pix[sy*src.img.Stride:]
		off := b.offset(span.Dst.Min.X, dy)
		sx := span.Src.X
		for dx := span.Dst.Min.X; dx < span.Dst.Max.X; dx++ {
			if lum := uint32(row[sx]); lum != 0 {
				w := b.format.Pack(uint8(lum*tr>>8), uint8(lum*tg>>8), uint8(lum*tb>>8), 0xff)
				b.setWord(off, b.word(off)|w)
			}
			sx++
			off += b.format.BytesPerPixel
		}
	}
}

// BlendBitmap composites tint over the destination using each luminance
// sample of src as that pixel's alpha.
func (b *Backbuffer) BlendBitmap(x, y int, src *Bitmap, clip image.Rectangle, tint Color) {
	if src == nil || src.img == nil {
		return
	}
	span, ok := Clip(x, y, src.width, src.height, clip, b.Rect())
	if !ok {
		return
	}
	for dy := span.Dst.Min.Y; dy < span.Dst.Max.Y; dy++ {
		sy := span.Src.Y + dy - span.Dst.Min.Y
		row := src.img.Pix[sy*src.img.Stride:]
		off := b.offset(span.Dst.Min.X, dy)
		sx := span.Src.X
		for dx := span.Dst.Min.X; dx < span.Dst.Max.X; dx++ {
			if lum := row[sx]; lum != 0 {
				b.setWord(off, b.blendWord(b.word(off), tint, lum))
			}
			sx++
			off += b.format.BytesPerPixel
		}
	}
}

// blendWord composites the RGB of src over the pixel word dst with the given
// alpha. The destination is widened to 8 bits per channel first.
func (b *Backbuffer) blendWord(dst uint32, src Color, alpha uint8) uint32 {
	dr, dg, db, da := b.format.Unpack(dst)
	return b.format.Pack(
		Blend(src.R(), dr, alpha),
		Blend(src.G(), dg, alpha),
		Blend(src.B(), db, alpha),
		Blend(0xff, da, alpha),
	)
}

// Blend mixes src over dst without division: with a = alpha+1 the result is
// (a*src + (256-a)*dst) >> 8, which is exactly src at alpha 255.
func Blend(src, dst, alpha uint8) uint8 {
	a := uint32(alpha) + 1
	return uint8((a*uint32(src) + (256-a)*uint32(dst)) >> 8)
}
