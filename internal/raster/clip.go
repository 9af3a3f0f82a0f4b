package raster

import "image"

// Span is the result of clipping a placement: the destination pixels that
// may be written and the matching source origin.
type Span struct {
	Dst image.Rectangle
	// Src is the source pixel that lands on Dst.Min.
	Src image.Point
}

// Clip resolves where a w x h source placed at (x, y) may be drawn.
//
// The clip rectangle is first intersected with bounds; an empty result makes
// the whole operation a no-op. The placement is then intersected with that
// region and the number of source columns and rows skipped on the left and
// top is reported in Span.Src. Placements with zero or negative size, or
// lying completely outside, report false.
//
// Rectangles are top-left inclusive, bottom-right exclusive.
func Clip(x, y, w, h int, clip, bounds image.Rectangle) (Span, bool) {
	region := intersect(clip, bounds)
	if region.Empty() {
		return Span{}, false
	}
	// Built by hand: image.Rect would swap the corners of a negative size.
	target := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+w, y+h)}
	dst := intersect(target, region)
	if dst.Empty() {
		return Span{}, false
	}
	return Span{Dst: dst, Src: dst.Min.Sub(target.Min)}, true
}

func intersect(a, b image.Rectangle) image.Rectangle {
	if a.Empty() || b.Empty() {
		return image.Rectangle{}
	}
	return a.Intersect(b)
}
