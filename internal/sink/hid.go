package sink

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pleimann/infodisplay/internal/hid"
	"github.com/pleimann/infodisplay/internal/raster"
)

// FrameSender is the part of a HID device the sink writes to.
type FrameSender interface {
	SendFrame(frame *hid.DisplayFrame) error
	Reconnect() error
}

// HID streams frames to a USB HID display as partial updates, sending only
// the rows that changed since the previous frame.
type HID struct {
	dev      FrameSender
	geometry Geometry
	prev     []byte
	log      *slog.Logger
}

// NewHID creates a sink for a display of the given geometry.
func NewHID(dev FrameSender, g Geometry, logger *slog.Logger) *HID {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HID{dev: dev, geometry: g, log: logger}
}

// Geometry returns the configured display geometry.
func (h *HID) Geometry() Geometry {
	return h.geometry
}

// Present sends the changed rows of bb. After a failed write the device is
// reconnected and the next frame is sent in full.
func (h *HID) Present(bb *raster.Backbuffer) error {
	cur := bb.Bytes()
	y0, y1 := hid.ChangedRows(h.prev, cur, bb.Stride())
	if y0 == y1 {
		return nil
	}
	frames := hid.ChunkRows(cur, bb.Width(), bb.Format().BytesPerPixel, y0, y1)
	for _, f := range frames {
		if err := h.dev.SendFrame(f); err != nil {
			h.prev = nil
			if rerr := h.dev.Reconnect(); rerr != nil {
				h.log.Warn("reconnect failed", "err", rerr)
			}
			return fmt.Errorf("failed to send frame: %w", err)
		}
	}
	h.prev = append(h.prev[:0], cur...)
	h.log.Debug("frame sent", "rows", y1-y0, "reports", len(frames))
	return nil
}

// Clear blanks the display.
func (h *HID) Clear() error {
	h.prev = nil
	return h.dev.SendFrame(hid.NewClearCommand())
}
