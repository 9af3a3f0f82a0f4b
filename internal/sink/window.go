package sink

import (
	"context"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pleimann/infodisplay/internal/raster"
)

// Window previews frames in a desktop window.
//
// Present may be called from any goroutine; Run must be called from the
// main goroutine and blocks until the window closes or ctx is done.
type Window struct {
	title string
	scale int

	mu     sync.Mutex
	pix    []byte
	width  int
	height int
	dirty  bool
}

// NewWindow creates a window sink. The window opens when Run is called.
func NewWindow(title string, scale int) *Window {
	return &Window{title: title, scale: max(scale, 1)}
}

// Present stores a frame for the next redraw.
func (w *Window) Present(bb *raster.Backbuffer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := bb.Width() * bb.Height() * 4
	if len(w.pix) != n {
		w.pix = make([]byte, n)
	}
	w.width, w.height = bb.Width(), bb.Height()
	toNRGBA(w.pix, bb, true)
	w.dirty = true
	return nil
}

// Clear blanks the window.
func (w *Window) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.pix)
	w.dirty = true
	return nil
}

// Run opens a window sized for a width x height overlay and runs its event
// loop.
func (w *Window) Run(ctx context.Context, width, height int) error {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()

	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowSize(width*w.scale, height*w.scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(&windowGame{w: w, ctx: ctx})
}

type windowGame struct {
	w   *Window
	ctx context.Context
	img *ebiten.Image
}

func (g *windowGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	w := g.w
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pix) == 0 {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != w.width || g.img.Bounds().Dy() != w.height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w.width, w.height)
		w.dirty = true
	}
	if w.dirty {
		g.img.WritePixels(w.pix)
		w.dirty = false
	}
	screen.DrawImage(g.img, nil)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.w.mu.Lock()
	defer g.w.mu.Unlock()
	return max(g.w.width, 1), max(g.w.height, 1)
}
