package sink

import (
	"fmt"

	"github.com/pleimann/infodisplay/internal/raster"
)

const (
	videoAspectW = 16
	videoAspectH = 9
)

// fbBitfield mirrors struct fb_bitfield.
type fbBitfield struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// fbVarScreeninfo mirrors struct fb_var_screeninfo.
type fbVarScreeninfo struct {
	Xres, Yres               uint32
	XresVirtual, YresVirtual uint32
	Xoffset, Yoffset         uint32
	BitsPerPixel             uint32
	Grayscale                uint32
	Red, Green, Blue, Transp fbBitfield
	Nonstd                   uint32
	Activate                 uint32
	Height, Width            uint32
	AccelFlags               uint32
	Pixclock                 uint32
	LeftMargin, RightMargin  uint32
	UpperMargin, LowerMargin uint32
	HsyncLen, VsyncLen       uint32
	Sync                     uint32
	Vmode                    uint32
	Rotate                   uint32
	Colorspace               uint32
	Reserved                 [4]uint32
}

// fbFixScreeninfo mirrors struct fb_fix_screeninfo.
type fbFixScreeninfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	Xpanstep     uint16
	Ypanstep     uint16
	Ywrapstep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// fbLayout splits the framebuffer into a 16:9 video area at the top and
// the overlay below it.
type fbLayout struct {
	Geometry
	VideoHeight int
	LineLength  int
}

func layoutFor(v fbVarScreeninfo, f fbFixScreeninfo) (fbLayout, error) {
	if v.BitsPerPixel == 0 || v.BitsPerPixel%8 != 0 || v.BitsPerPixel > 32 {
		return fbLayout{}, fmt.Errorf("unsupported framebuffer depth %d bpp", v.BitsPerPixel)
	}
	bpp := int(v.BitsPerPixel / 8)
	format := raster.Format{
		R:             raster.Channel{Offset: uint8(v.Red.Offset), Bits: uint8(v.Red.Length)},
		G:             raster.Channel{Offset: uint8(v.Green.Offset), Bits: uint8(v.Green.Length)},
		B:             raster.Channel{Offset: uint8(v.Blue.Offset), Bits: uint8(v.Blue.Length)},
		A:             raster.Channel{Offset: uint8(v.Transp.Offset), Bits: uint8(v.Transp.Length)},
		BytesPerPixel: bpp,
	}
	if err := format.Validate(); err != nil {
		return fbLayout{}, err
	}

	videoHeight := min(int(v.Xres)*videoAspectH/videoAspectW, int(v.Yres))
	height := int(v.Yres) - videoHeight
	if height <= 0 {
		return fbLayout{}, fmt.Errorf("no room below the %dx%d video area on a %dx%d framebuffer",
			v.Xres, videoHeight, v.Xres, v.Yres)
	}
	return fbLayout{
		Geometry: Geometry{
			Width:  int(f.LineLength) / bpp,
			Height: height,
			Format: format,
		},
		VideoHeight: videoHeight,
		LineLength:  int(f.LineLength),
	}, nil
}

// blit copies the backbuffer into mem below the video area.
func (l fbLayout) blit(mem []byte, bb *raster.Backbuffer) {
	src := bb.Bytes()
	n := min(bb.Stride(), l.LineLength)
	for y := 0; y < min(bb.Height(), l.Height); y++ {
		off := (l.VideoHeight + y) * l.LineLength
		if off+n > len(mem) {
			return
		}
		copy(mem[off:off+n], src[y*bb.Stride():])
	}
}

// blankVideo clears the video area.
func (l fbLayout) blankVideo(mem []byte) {
	clear(mem[:min(l.VideoHeight*l.LineLength, len(mem))])
}
