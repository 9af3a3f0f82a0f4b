package text

import (
	"path/filepath"
	"testing"

	"github.com/pleimann/infodisplay/internal/raster"
)

type renderer interface {
	Measure(string) (int, int)
	Draw(*raster.Bitmap, string)
}

func lit(bm *raster.Bitmap) int {
	n := 0
	for y := 0; y < bm.Height(); y++ {
		for x := 0; x < bm.Width(); x++ {
			if bm.At(x, y) != 0 {
				n++
			}
		}
	}
	return n
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"e\u0301", "\u00e9"},
		{"a\nb\tc\r", "a b c "},
		{"bad\xffbyte", "badbyte"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBasicMeasure(t *testing.T) {
	f := Basic()
	w, h := f.Measure("ab")
	if w != 14 || h != 13 {
		t.Errorf("Measure(ab) = %d, %d, want 14, 13", w, h)
	}
	if w, h := f.Measure(""); w != 0 || h != 0 {
		t.Errorf("Measure(\"\") = %d, %d, want 0, 0", w, h)
	}
}

func TestRenderers(t *testing.T) {
	goRegular, err := Load("", 16)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	tests := []struct {
		name string
		r    renderer
	}{
		{"basic", Basic()},
		{"goregular", goRegular},
		{"tiny", DefaultTiny()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.r.Measure("Hi")
			if w <= 0 || h <= 0 {
				t.Fatalf("Measure(Hi) = %d, %d", w, h)
			}
			long, _ := tt.r.Measure("Hi there")
			if long <= w {
				t.Errorf("Measure(Hi there) = %d, not wider than %d", long, w)
			}
			bm := raster.NewBitmap(w, h)
			tt.r.Draw(bm, "Hi")
			if lit(bm) == 0 {
				t.Error("Draw() left the bitmap empty")
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.ttf"), 12); err == nil {
		t.Error("Load(missing) error = nil")
	}
	if _, err := ParseOpenType([]byte("not a font"), 12); err == nil {
		t.Error("ParseOpenType(garbage) error = nil")
	}
	if _, err := Load("", 0); err == nil {
		t.Error("Load(size 0) error = nil")
	}
}
