// Package icons draws the status icons as antialiased luminance bitmaps.
//
// Shapes are described in a unit square and scaled to the requested size,
// so the same set works for any row height.
package icons

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/pleimann/infodisplay/internal/raster"
)

// SpinnerFrames is the number of frames in the buffering animation.
const SpinnerFrames = 8

// WaitingFrames is the number of frames in the waiting animation.
const WaitingFrames = 4

type point struct{ x, y float32 }

func render(size int, paths ...[]point) *raster.Bitmap {
	if size <= 0 {
		return raster.NewBitmap(0, 0)
	}
	bm := raster.NewBitmap(size, size)
	z := vector.NewRasterizer(size, size)
	s := float32(size)
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		z.MoveTo(p[0].x*s, p[0].y*s)
		for _, q := range p[1:] {
			z.LineTo(q.x*s, q.y*s)
		}
		z.ClosePath()
	}
	dst := bm.Image()
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return bm
}

func rect(x0, y0, x1, y1 float32) []point {
	return []point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// circle approximates a circle of radius r centered on (cx, cy).
func circle(cx, cy, r float32) []point {
	const n = 24
	pts := make([]point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = point{cx + r*float32(math.Cos(a)), cy + r*float32(math.Sin(a))}
	}
	return pts
}

// Play is a right-pointing triangle.
func Play(size int) *raster.Bitmap {
	return render(size, []point{{0.15, 0.1}, {0.9, 0.5}, {0.15, 0.9}})
}

// Pause is two vertical bars.
func Pause(size int) *raster.Bitmap {
	return render(size, rect(0.15, 0.1, 0.4, 0.9), rect(0.6, 0.1, 0.85, 0.9))
}

// Stop is a filled square.
func Stop(size int) *raster.Bitmap {
	return render(size, rect(0.15, 0.15, 0.85, 0.85))
}

// Spinner returns the buffering animation: a ring of dots with one dot
// missing, rotating by one position per frame.
func Spinner(size int) []*raster.Bitmap {
	frames := make([]*raster.Bitmap, SpinnerFrames)
	for f := range frames {
		var dots [][]point
		for i := 0; i < SpinnerFrames; i++ {
			if i == f {
				continue
			}
			a := 2*math.Pi*float64(i)/SpinnerFrames - math.Pi/2
			cx := 0.5 + 0.35*float32(math.Cos(a))
			cy := 0.5 + 0.35*float32(math.Sin(a))
			dots = append(dots, circle(cx, cy, 0.1))
		}
		frames[f] = render(size, dots...)
	}
	return frames
}

// Waiting returns three dots filling in from left to right, then an empty
// frame.
func Waiting(size int) []*raster.Bitmap {
	frames := make([]*raster.Bitmap, WaitingFrames)
	for f := range frames {
		var dots [][]point
		for i := 0; i < f && i < 3; i++ {
			dots = append(dots, circle(0.2+0.3*float32(i), 0.5, 0.12))
		}
		frames[f] = render(size, dots...)
	}
	return frames
}
