package overlay

import (
	"math"
	"testing"
	"time"
)

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestMarqueeScenario(t *testing.T) {
	p := DefaultScroll()
	const avail, excess = 200, 250

	if got := p.Period(excess); got != 28 {
		t.Fatalf("Period(%d) = %v, want 28", excess, got)
	}
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{0.5, 0},
		{1, 0},
		{7.25, -125},
		{13.5, -250},
		{15, -250},
		{15.5, -250},
		{21.75, -125},
		{28, 0},
		{35.25, -125},
	}
	for _, tt := range tests {
		got := p.Offset(seconds(tt.t), avail+excess, avail)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Offset(%vs) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestOffsetZeroWhenTextFits(t *testing.T) {
	p := DefaultScroll()
	for _, el := range []float64{0, 1, 5.5, 100} {
		if got := p.Offset(seconds(el), 100, 100); got != 0 {
			t.Errorf("Offset(%v, fits exactly) = %v, want 0", el, got)
		}
		if got := p.Offset(seconds(el), 40, 100); got != 0 {
			t.Errorf("Offset(%v, narrow) = %v, want 0", el, got)
		}
	}
}

func TestOffsetPeriodic(t *testing.T) {
	p := ScrollParams{Speed: 15, StartDelay: 500 * time.Millisecond, EndDelay: time.Second}
	const textWidth, avail = 137, 80
	period := p.Period(textWidth - avail)
	for _, el := range []float64{0.1, 1.3, 2.9, 4.4, 7.7} {
		a := p.Offset(seconds(el), textWidth, avail)
		b := p.Offset(seconds(el+period), textWidth, avail)
		if math.Abs(a-b) > 1e-6 {
			t.Errorf("Offset(%v) = %v, Offset(%v + period) = %v", el, a, el, b)
		}
		if a > 0 || a < -float64(textWidth-avail) {
			t.Errorf("Offset(%v) = %v out of range", el, a)
		}
	}
}

func TestBoxStep(t *testing.T) {
	tests := []struct {
		t, a, b, want float64
	}{
		{0, 1, 3, 0},
		{1, 1, 3, 0},
		{2, 1, 3, 0.5},
		{3, 1, 3, 1},
		{9, 1, 3, 1},
		{2, 2, 2, 1},
		{1.9, 2, 2, 0},
	}
	for _, tt := range tests {
		if got := boxStep(tt.t, tt.a, tt.b); got != tt.want {
			t.Errorf("boxStep(%v, %v, %v) = %v, want %v", tt.t, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestScrollDefaults(t *testing.T) {
	p := ScrollParams{}.withDefaults()
	if p.Speed != 20 {
		t.Errorf("Speed = %v, want 20", p.Speed)
	}
	p = ScrollParams{Speed: 5, StartDelay: -time.Second}.withDefaults()
	if p.Speed != 5 || p.StartDelay != 0 {
		t.Errorf("withDefaults() = %+v", p)
	}
}
