package display

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pleimann/infodisplay/internal/overlay"
	"github.com/pleimann/infodisplay/internal/protocol"
	"github.com/pleimann/infodisplay/internal/raster"
)

// DefaultInterval is the frame pump cadence.
const DefaultInterval = 25 * time.Millisecond

// Sink receives composed frames.
type Sink interface {
	Present(bb *raster.Backbuffer) error
	Clear() error
}

// Options configures a Manager.
type Options struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Manager is the frame pump. It owns the overlay: protocol lines and
// scheduled changes are applied on the pump goroutine between ticks, and a
// frame is rendered and pushed to the sink only when something changed or
// the previous frame asked for continuous refresh.
type Manager struct {
	overlay  *overlay.Overlay
	handler  *protocol.Handler
	sink     Sink
	interval time.Duration
	log      *slog.Logger

	lines     chan string
	inputDone chan error
	stopped   chan struct{}
	stopOnce  sync.Once

	mu      sync.Mutex
	pending []func(*overlay.Overlay)
	dirty   bool

	refresh bool
	frames  atomic.Uint64
}

// NewManager creates a frame pump for o, applying protocol lines with h.
func NewManager(o *overlay.Overlay, h *protocol.Handler, sink Sink, opts Options) *Manager {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		overlay:  o,
		handler:  h,
		sink:     sink,
		interval: interval,
		log:      logger,
		lines:    make(chan string, 64),
		stopped:  make(chan struct{}),
		dirty:    true,
	}
}

// Feed starts reading protocol lines from r. Reaching the end of r stops
// Run after the remaining lines have been shown. Once Run has returned the
// rest of r is read and dropped. Feed may be called once.
func (m *Manager) Feed(r io.Reader) {
	done := make(chan error, 1)
	m.inputDone = done
	go func() {
		done <- protocol.Scan(r, func(line string) {
			select {
			case m.lines <- line:
			case <-m.stopped:
			}
		})
		close(done)
	}()
}

// Do schedules fn to run against the overlay on the pump goroutine before
// the next frame. It is safe to call from any goroutine.
func (m *Manager) Do(fn func(o *overlay.Overlay)) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// ForceRefresh renders a frame on the next tick.
func (m *Manager) ForceRefresh() {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

// Frames returns how many frames have been rendered. It is safe to call
// from any goroutine.
func (m *Manager) Frames() uint64 {
	return m.frames.Load()
}

// drain applies every pending line and scheduled change and reports
// whether anything was applied.
func (m *Manager) drain() bool {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	changed := m.dirty || len(pending) > 0
	m.dirty = false
	m.mu.Unlock()

	for _, fn := range pending {
		fn(m.overlay)
	}
	for {
		select {
		case line := <-m.lines:
			m.log.Debug("line", "text", line)
			m.handler.Apply(line)
			changed = true
		default:
			return changed
		}
	}
}

// Step runs one tick: it applies pending input and renders a frame if
// needed. It reports whether a frame was rendered.
func (m *Manager) Step() (bool, error) {
	if !m.drain() && !m.refresh {
		return false, nil
	}
	m.refresh = m.overlay.Update()
	m.frames.Add(1)
	if err := m.sink.Present(m.overlay.Backbuffer()); err != nil {
		return true, fmt.Errorf("failed to present frame: %w", err)
	}
	return true, nil
}

// Run pumps frames until ctx is cancelled or the input fed through Feed
// ends. The sink is cleared on return.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	// Lines read after this point are discarded.
	defer m.stopOnce.Do(func() { close(m.stopped) })
	defer func() {
		if err := m.sink.Clear(); err != nil {
			m.log.Warn("failed to clear display", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-m.inputDone:
			m.step()
			if err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			m.log.Info("input closed")
			return nil
		case <-ticker.C:
			m.step()
		}
	}
}

func (m *Manager) step() {
	if _, err := m.Step(); err != nil {
		// Log error but continue
		m.log.Warn("frame dropped", "err", err)
	}
}
