//go:build !linux

package sink

import (
	"log/slog"

	"github.com/pleimann/infodisplay/internal/raster"
)

// Framebuffer is only available on Linux.
type Framebuffer struct{}

// OpenFramebuffer always fails on this platform.
func OpenFramebuffer(path string, logger *slog.Logger) (*Framebuffer, error) {
	return nil, ErrUnsupported
}

func (f *Framebuffer) Geometry() Geometry                  { return Geometry{} }
func (f *Framebuffer) Present(bb *raster.Backbuffer) error { return ErrUnsupported }
func (f *Framebuffer) SetVideo(enabled bool)               {}
func (f *Framebuffer) Clear() error                        { return nil }
func (f *Framebuffer) Close() error                        { return nil }
