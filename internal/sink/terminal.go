package sink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/pleimann/infodisplay/internal/raster"
)

const halfBlock = "▀"

// Terminal renders frames as colored half-block characters, two pixel rows
// per text line, and hands each rendering to an output function.
type Terminal struct {
	out func(frame string)

	mu   sync.Mutex
	cols int
}

// NewTerminal creates a terminal sink. cols limits the rendering width;
// wider frames are downsampled. Zero means no limit.
func NewTerminal(out func(frame string), cols int) *Terminal {
	return &Terminal{out: out, cols: cols}
}

// WriterOutput returns an output function that redraws in place on w.
func WriterOutput(w io.Writer) func(string) {
	return func(frame string) {
		fmt.Fprint(w, "\x1b[H\x1b[2J"+frame)
	}
}

// StdoutColumns returns the width of the controlling terminal, or 0 when
// stdout is not a terminal.
func StdoutColumns() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// SetColumns changes the rendering width.
func (t *Terminal) SetColumns(cols int) {
	t.mu.Lock()
	t.cols = cols
	t.mu.Unlock()
}

// Present renders a frame.
func (t *Terminal) Present(bb *raster.Backbuffer) error {
	t.mu.Lock()
	cols := t.cols
	t.mu.Unlock()
	t.out(RenderBlocks(bb, cols))
	return nil
}

// Clear renders an empty frame.
func (t *Terminal) Clear() error {
	t.out("")
	return nil
}

// RenderBlocks draws bb with one half-block character per pixel pair,
// sampling every n-th pixel so the result fits in cols columns.
func RenderBlocks(bb *raster.Backbuffer, cols int) string {
	step := 1
	if cols > 0 && bb.Width() > cols {
		step = (bb.Width() + cols - 1) / cols
	}
	f := bb.Format()
	rgb := func(x, y int) string {
		if y >= bb.Height() {
			return "#000000"
		}
		r, g, b, _ := f.Unpack(bb.Word(x, y))
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}

	styles := make(map[[2]string]lipgloss.Style)
	var sb strings.Builder
	for y := 0; y < bb.Height(); y += 2 * step {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < bb.Width(); x += step {
			key := [2]string{rgb(x, y), rgb(x, y+step)}
			st, ok := styles[key]
			if !ok {
				st = lipgloss.NewStyle().
					Foreground(lipgloss.Color(key[0])).
					Background(lipgloss.Color(key[1]))
				styles[key] = st
			}
			sb.WriteString(st.Render(halfBlock))
		}
	}
	return sb.String()
}
