package overlay

import (
	"math"
	"time"
)

// ScrollParams controls the marquee used for text wider than its row.
//
// One marquee cycle holds at the start for StartDelay, slides left at Speed
// until the end of the text is visible, holds for EndDelay, then slides
// back at the same speed.
type ScrollParams struct {
	Speed      float64 // pixels per second
	StartDelay time.Duration
	EndDelay   time.Duration
}

// DefaultScroll returns the standard marquee timing.
func DefaultScroll() ScrollParams {
	return ScrollParams{
		Speed:      20,
		StartDelay: time.Second,
		EndDelay:   2 * time.Second,
	}
}

func (p ScrollParams) withDefaults() ScrollParams {
	d := DefaultScroll()
	if p.Speed <= 0 {
		p.Speed = d.Speed
	}
	if p.StartDelay < 0 {
		p.StartDelay = 0
	}
	if p.EndDelay < 0 {
		p.EndDelay = 0
	}
	return p
}

// Period returns the length in seconds of one marquee cycle for text that
// overflows by excess pixels.
func (p ScrollParams) Period(excess int) float64 {
	if excess <= 0 || p.Speed <= 0 {
		return 0
	}
	travel := float64(excess) / p.Speed
	return 2*travel + p.StartDelay.Seconds() + p.EndDelay.Seconds()
}

// Offset returns the horizontal displacement, always <= 0, to apply to text
// of width textWidth shown in available pixels after elapsed scroll time.
// Text that fits is never displaced.
func (p ScrollParams) Offset(elapsed time.Duration, textWidth, available int) float64 {
	excess := textWidth - available
	period := p.Period(excess)
	if period <= 0 {
		return 0
	}
	travel := float64(excess) / p.Speed
	u0 := p.StartDelay.Seconds()
	u1 := u0 + travel
	d0 := u1 + p.EndDelay.Seconds()
	d1 := d0 + travel

	t := math.Mod(elapsed.Seconds(), period)
	if t < 0 {
		t += period
	}
	return -boxPulse(t, u0, u1, d0, d1) * float64(excess)
}

// boxStep ramps linearly from 0 at a to 1 at b. When a == b it is a hard step.
func boxStep(t, a, b float64) float64 {
	switch {
	case t < a:
		return 0
	case t >= b:
		return 1
	default:
		return (t - a) / (b - a)
	}
}

// boxPulse rises over [u0, u1], holds at 1 and falls back over [d0, d1].
func boxPulse(t, u0, u1, d0, d1 float64) float64 {
	return boxStep(t, u0, u1) - boxStep(t, d0, d1)
}
