// Package protocol implements the line-oriented control protocol that
// drives the overlay.
//
// Each line is one command: a letter, a colon and a payload.
//
//	X<d>:<text>     text of row d (1-based)
//	P:<0..1000>     progress in permille
//	S:<d>           status icon
//	T:<ms>[,<ms>]   elapsed and optional total time
//	V:<0|1>         live video region off or on
//
// Malformed lines are ignored.
package protocol

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/raster"
)

// Op is a protocol command letter.
type Op byte

const (
	OpText     Op = 'X'
	OpProgress Op = 'P'
	OpStatus   Op = 'S'
	OpTimes    Op = 'T'
	OpVideo    Op = 'V'
)

// Command is one parsed protocol line.
type Command struct {
	Op    Op
	Row   int    // OpText, 0-based
	Text  string // OpText
	Value int64  // progress permille, icon, elapsed ms or video flag
	Total int64  // OpTimes, -1 when absent
}

// Parse decodes a single line, without its line terminator.
func Parse(line string) (Command, bool) {
	if len(line) < 2 {
		return Command{}, false
	}
	op := Op(line[0])
	switch op {
	case OpText:
		if len(line) < 3 || line[1] < '1' || line[1] > '9' || line[2] != ':' {
			return Command{}, false
		}
		return Command{Op: op, Row: int(line[1] - '1'), Text: line[3:]}, true
	}

	if line[1] != ':' {
		return Command{}, false
	}
	payload := strings.TrimSpace(line[2:])
	switch op {
	case OpProgress:
		v, err := strconv.ParseInt(payload, 10, 32)
		if err != nil || v < 0 {
			return Command{}, false
		}
		return Command{Op: op, Value: v}, true

	case OpStatus:
		if len(payload) != 1 || payload[0] < '0' || payload[0] > '9' {
			return Command{}, false
		}
		return Command{Op: op, Value: int64(payload[0] - '0')}, true

	case OpTimes:
		first, second, hasSecond := strings.Cut(payload, ",")
		elapsed, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
		if err != nil {
			return Command{}, false
		}
		total := int64(-1)
		if hasSecond {
			total, err = strconv.ParseInt(strings.TrimSpace(second), 10, 64)
			if err != nil {
				return Command{}, false
			}
		}
		return Command{Op: op, Value: elapsed, Total: total}, true

	case OpVideo:
		switch payload {
		case "0":
			return Command{Op: op, Value: 0}, true
		case "1":
			return Command{Op: op, Value: 1}, true
		}
	}
	return Command{}, false
}

// Target is the set of overlay mutators the protocol drives.
type Target interface {
	RowCount() int
	RowText(row int) string
	SetRowText(row int, kind overlay.RowKind, text string)
	ResetRowScroll(row int)
	SetRowIcon(row int, icon overlay.Icon)
	SetRowTimes(row int, elapsedMs, totalMs int64)
	SetProgress(row int, value float64, color raster.Color)
	Progress() (row int, value float64, color raster.Color)
}

// VideoSwitch receives V commands. Sinks that composite the overlay over
// live video implement it.
type VideoSwitch interface {
	SetVideo(enabled bool)
}

// Options configures a Handler.
type Options struct {
	// StatusRow receives S icons and TimesRow receives T times. Negative
	// values select the last row.
	StatusRow int
	TimesRow  int

	Video  VideoSwitch
	Logger *slog.Logger
}

// Handler applies protocol lines to a Target.
type Handler struct {
	target    Target
	video     VideoSwitch
	statusRow int
	timesRow  int
	log       *slog.Logger
}

// NewHandler creates a handler for t.
func NewHandler(t Target, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	last := t.RowCount() - 1
	h := &Handler{
		target:    t,
		video:     opts.Video,
		statusRow: opts.StatusRow,
		timesRow:  opts.TimesRow,
		log:       logger,
	}
	if h.statusRow < 0 {
		h.statusRow = last
	}
	if h.timesRow < 0 {
		h.timesRow = last
	}
	return h
}

// SetVideoSwitch replaces the receiver of V commands.
func (h *Handler) SetVideoSwitch(v VideoSwitch) {
	h.video = v
}

// Apply parses and executes one line. It reports whether the line was a
// valid command.
func (h *Handler) Apply(line string) bool {
	cmd, ok := Parse(line)
	if !ok {
		h.log.Debug("ignoring malformed line", "line", line)
		return false
	}
	h.Exec(cmd)
	return true
}

// Exec executes a parsed command.
func (h *Handler) Exec(cmd Command) {
	t := h.target
	switch cmd.Op {
	case OpText:
		if t.RowText(cmd.Row) != cmd.Text {
			t.SetRowText(cmd.Row, overlay.PlainText, cmd.Text)
			t.ResetRowScroll(cmd.Row)
		}
	case OpProgress:
		row, _, color := t.Progress()
		t.SetProgress(row, float64(cmd.Value)/1000, color)
	case OpStatus:
		t.SetRowIcon(h.statusRow, overlay.Icon(cmd.Value))
	case OpTimes:
		t.SetRowTimes(h.timesRow, cmd.Value, cmd.Total)
	case OpVideo:
		if h.video != nil {
			h.video.SetVideo(cmd.Value != 0)
		}
	}
}
