package overlay

import (
	"time"

	"github.com/pleimann/infodisplay/internal/icons"
	"github.com/pleimann/infodisplay/internal/raster"
)

// Icon identifies a status icon shown at the left edge of a row.
type Icon int

const (
	IconNone      Icon = iota // no icon and no indent
	IconEmpty                 // reserves the icon space without drawing
	IconPlaying
	IconPaused
	IconStopped
	IconBuffering
	IconWaiting
	iconCount
)

var iconNames = [...]string{"none", "empty", "playing", "paused", "stopped", "buffering", "waiting"}

func (i Icon) String() string {
	if i < 0 || i >= iconCount {
		return "unknown"
	}
	return iconNames[i]
}

// Valid reports whether i is one of the defined icons.
func (i Icon) Valid() bool {
	return i >= 0 && i < iconCount
}

// IconByName looks up an icon by its String form.
func IconByName(name string) (Icon, bool) {
	for i, n := range iconNames {
		if n == name {
			return Icon(i), true
		}
	}
	return IconNone, false
}

// DefaultAnimationCycle is the time one pass through an animated icon takes.
const DefaultAnimationCycle = time.Second

// IconArt is the artwork for one icon: a single frame for static icons,
// several for animated ones, and the tint they are drawn with.
type IconArt struct {
	Frames []*raster.Bitmap
	Tint   raster.Color
	Cycle  time.Duration
}

// Animated reports whether the icon changes over time.
func (a IconArt) Animated() bool {
	return len(a.Frames) > 1
}

// Width returns the width of the widest frame, or fallback when the icon
// has no artwork.
func (a IconArt) Width(fallback int) int {
	w := 0
	for _, f := range a.Frames {
		w = max(w, f.Width())
	}
	if w == 0 {
		return fallback
	}
	return w
}

// Frame picks the frame to show at the given animation time.
func (a IconArt) Frame(anim time.Duration) *raster.Bitmap {
	n := int64(len(a.Frames))
	switch n {
	case 0:
		return nil
	case 1:
		return a.Frames[0]
	}
	cycle := a.Cycle.Milliseconds()
	if cycle <= 0 {
		cycle = DefaultAnimationCycle.Milliseconds()
	}
	ms := anim.Milliseconds()
	return a.Frames[(ms*n/cycle)%n]
}

// IconTable maps every icon to its artwork.
type IconTable [iconCount]IconArt

// DefaultIcons generates the built-in icon set for icons of the given size.
func DefaultIcons(size int) IconTable {
	var t IconTable
	t[IconPlaying] = IconArt{Frames: []*raster.Bitmap{icons.Play(size)}, Tint: 0xff40ff40}
	t[IconPaused] = IconArt{Frames: []*raster.Bitmap{icons.Pause(size)}, Tint: 0xffffd040}
	t[IconStopped] = IconArt{Frames: []*raster.Bitmap{icons.Stop(size)}, Tint: 0xffff4040}
	t[IconBuffering] = IconArt{Frames: icons.Spinner(size), Tint: 0xff40c0ff, Cycle: DefaultAnimationCycle}
	t[IconWaiting] = IconArt{Frames: icons.Waiting(size), Tint: 0xffc0c0c0, Cycle: DefaultAnimationCycle}
	return t
}

// SetTint replaces the tint of one icon.
func (t *IconTable) SetTint(i Icon, c raster.Color) {
	if i.Valid() {
		t[i].Tint = c
	}
}
