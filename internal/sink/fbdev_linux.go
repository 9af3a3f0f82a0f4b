//go:build linux

package sink

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/pleimann/infodisplay/internal/raster"
)

const (
	fbiogetVscreeninfo = 0x4600
	fbiogetFscreeninfo = 0x4602
)

// Framebuffer draws the overlay into the lower part of a Linux fbdev
// device, leaving the 16:9 area above it to live video.
type Framebuffer struct {
	fd     int
	mem    []byte
	layout fbLayout
	log    *slog.Logger

	mu sync.Mutex
}

// OpenFramebuffer maps the framebuffer device at path, e.g. /dev/fb1.
func OpenFramebuffer(path string, logger *slog.Logger) (*Framebuffer, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var fix fbFixScreeninfo
	var v fbVarScreeninfo
	if err := ioctl(fd, fbiogetFscreeninfo, unsafe.Pointer(&fix)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to get fixed screen info: %w", err)
	}
	if err := ioctl(fd, fbiogetVscreeninfo, unsafe.Pointer(&v)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to get variable screen info: %w", err)
	}

	layout, err := layoutFor(v, fix)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	mem, err := unix.Mmap(fd, 0, int(fix.SmemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to map framebuffer: %w", err)
	}
	clear(mem)

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("framebuffer opened",
		"path", path,
		"xres", v.Xres, "yres", v.Yres, "bpp", v.BitsPerPixel,
		"overlay_width", layout.Width, "overlay_height", layout.Height)
	return &Framebuffer{fd: fd, mem: mem, layout: layout, log: logger}, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Geometry returns the overlay area of the framebuffer.
func (f *Framebuffer) Geometry() Geometry {
	return f.layout.Geometry
}

// Present copies a frame below the video area.
func (f *Framebuffer) Present(bb *raster.Backbuffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mem == nil {
		return fmt.Errorf("framebuffer closed")
	}
	f.layout.blit(f.mem, bb)
	return nil
}

// SetVideo enables or disables the live video area. When disabled the
// area is blanked.
func (f *Framebuffer) SetVideo(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.Debug("video area", "enabled", enabled)
	if !enabled && f.mem != nil {
		f.layout.blankVideo(f.mem)
	}
}

// Clear blanks the whole framebuffer.
func (f *Framebuffer) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mem != nil {
		clear(f.mem)
	}
	return nil
}

// Close unmaps and closes the device.
func (f *Framebuffer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mem == nil {
		return nil
	}
	err := unix.Munmap(f.mem)
	f.mem = nil
	if cerr := unix.Close(f.fd); err == nil {
		err = cerr
	}
	return err
}
