package text

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ParseOpenType builds a face from TrueType or OpenType data at a pixel size.
func ParseOpenType(data []byte, size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return NewFace(face), nil
}

// Load reads a font file. An empty path selects the embedded Go Regular font.
func Load(path string, size float64) (*Face, error) {
	if path == "" {
		return ParseOpenType(goregular.TTF, size)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return ParseOpenType(data, size)
}
