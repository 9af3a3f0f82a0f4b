package raster

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a non-premultiplied 0xAARRGGBB value.
type Color uint32

// ARGB builds a Color from its components.
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// RGB returns the color with the alpha byte cleared.
func (c Color) RGB() uint32 { return uint32(c) & 0x00ffffff }

func (c Color) String() string {
	return fmt.Sprintf("0x%08x", uint32(c))
}

// ParseColor accepts "0xAARRGGBB", "#RRGGBB", "#AARRGGBB" or a decimal value.
// Six hex digits imply full alpha.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	var digits string
	switch {
	case strings.HasPrefix(s, "#"):
		digits = s[1:]
	case strings.HasPrefix(strings.ToLower(s), "0x"):
		digits = s[2:]
	default:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color(v), nil
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(digits) <= 6 {
		v |= 0xff000000
	}
	return Color(v), nil
}

// UnmarshalYAML lets colors be written as strings or integers in config files.
func (c *Color) UnmarshalYAML(unmarshal func(any) error) error {
	var n uint32
	if err := unmarshal(&n); err == nil {
		*c = Color(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
