package hid

import (
	"encoding/binary"
)

// ReportIDDisplay is the report ID of every display frame.
const ReportIDDisplay byte = 0x02

// Display commands
const (
	DisplayCmdFullFrame byte = 0x01
	DisplayCmdPartial   byte = 0x02
	DisplayCmdClear     byte = 0x03
)

const (
	// ReportSize is the size of one HID output report.
	ReportSize = 64
	// HeaderSize is the size of the frame header.
	HeaderSize = 11
	// MaxPayload is the largest pixel payload of a single report.
	MaxPayload = ReportSize - HeaderSize
)

// DisplayFrame is one display update sent to the device.
type DisplayFrame struct {
	Command       byte
	X             uint16
	Y             uint16
	Width         uint16
	Height        uint16
	BytesPerPixel byte
	Data          []byte // packed pixel words, row-major
}

// Encode serializes the DisplayFrame for transmission
// Format:
//
//	Byte 0: Report ID (0x02)
//	Byte 1: Command (0x01=full frame, 0x02=partial, 0x03=clear)
//	Byte 2-3: X offset
//	Byte 4-5: Y offset
//	Byte 6-7: Width
//	Byte 8-9: Height
//	Byte 10: Bytes per pixel
//	Byte 11+: Pixel data, little-endian words, row-major
func (f *DisplayFrame) Encode() []byte {
	buf := make([]byte, HeaderSize+len(f.Data))

	buf[0] = ReportIDDisplay
	buf[1] = f.Command
	binary.LittleEndian.PutUint16(buf[2:4], f.X)
	binary.LittleEndian.PutUint16(buf[4:6], f.Y)
	binary.LittleEndian.PutUint16(buf[6:8], f.Width)
	binary.LittleEndian.PutUint16(buf[8:10], f.Height)
	buf[10] = f.BytesPerPixel
	copy(buf[HeaderSize:], f.Data)

	return buf
}

// NewPartialFrame creates a partial frame display update
func NewPartialFrame(x, y, width, height uint16, bpp byte, data []byte) *DisplayFrame {
	return &DisplayFrame{
		Command:       DisplayCmdPartial,
		X:             x,
		Y:             y,
		Width:         width,
		Height:        height,
		BytesPerPixel: bpp,
		Data:          data,
	}
}

// NewClearCommand creates a display clear command
func NewClearCommand() *DisplayFrame {
	return &DisplayFrame{
		Command: DisplayCmdClear,
	}
}

// ChunkRows splits rows [y0, y1) of a packed image into partial frames that
// each fit in one report. Rows wider than a report are split into segments.
func ChunkRows(pix []byte, width, bpp, y0, y1 int) []*DisplayFrame {
	if width <= 0 || bpp <= 0 || y1 <= y0 {
		return nil
	}
	stride := width * bpp
	var frames []*DisplayFrame

	rowsPerChunk := MaxPayload / stride
	if rowsPerChunk > 0 {
		for y := y0; y < y1; y += rowsPerChunk {
			h := min(rowsPerChunk, y1-y)
			data := pix[y*stride : (y+h)*stride]
			frames = append(frames, NewPartialFrame(0, uint16(y), uint16(width), uint16(h), byte(bpp), data))
		}
		return frames
	}

	segment := max(MaxPayload/bpp, 1)
	for y := y0; y < y1; y++ {
		for x := 0; x < width; x += segment {
			w := min(segment, width-x)
			off := y*stride + x*bpp
			data := pix[off : off+w*bpp]
			frames = append(frames, NewPartialFrame(uint16(x), uint16(y), uint16(w), 1, byte(bpp), data))
		}
	}
	return frames
}

// ChangedRows returns the smallest row range [y0, y1) where cur differs
// from prev. Without a previous frame every row counts as changed.
func ChangedRows(prev, cur []byte, stride int) (y0, y1 int) {
	if stride <= 0 {
		return 0, 0
	}
	rows := len(cur) / stride
	if len(prev) != len(cur) {
		return 0, rows
	}
	y0, y1 = -1, 0
	for y := 0; y < rows; y++ {
		a := prev[y*stride : (y+1)*stride]
		b := cur[y*stride : (y+1)*stride]
		if string(a) != string(b) {
			if y0 < 0 {
				y0 = y
			}
			y1 = y + 1
		}
	}
	if y0 < 0 {
		return 0, 0
	}
	return y0, y1
}
