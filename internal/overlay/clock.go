package overlay

import "time"

// DayRollover is how long the animation epoch is kept before restarting
// from zero, which keeps animation timestamps small.
const DayRollover = 24 * time.Hour

// AnimationClock turns a wall-clock source into an animation phase and a
// per-frame delta.
//
// The phase drives icon frame cycling. The delta drives marquee scrolling
// and is zero for the first tick after an idle period, so rows never jump
// ahead by the time nobody was watching.
type AnimationClock struct {
	now      func() time.Time
	epoch    time.Time
	current  time.Duration
	previous time.Duration
}

// NewAnimationClock creates a clock reading time from now, or time.Now when
// now is nil.
func NewAnimationClock(now func() time.Time) *AnimationClock {
	if now == nil {
		now = time.Now
	}
	return &AnimationClock{now: now}
}

// Tick samples the clock. continuous reports whether the previous frame
// requested continuous refresh; if not, the delta is reset.
func (c *AnimationClock) Tick(continuous bool) (phase, delta time.Duration) {
	t := c.now()
	if c.epoch.IsZero() || t.Before(c.epoch) || t.Sub(c.epoch) > DayRollover {
		c.epoch = t
		continuous = false
	}
	c.current = t.Sub(c.epoch)
	if !continuous {
		c.previous = c.current
	}
	delta = c.current - c.previous
	c.previous = c.current
	return c.current, delta
}

// Phase returns the animation time of the last tick.
func (c *AnimationClock) Phase() time.Duration {
	return c.current
}
