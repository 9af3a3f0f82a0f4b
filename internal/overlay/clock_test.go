package overlay

import (
	"testing"
	"time"
)

func TestAnimationClock(t *testing.T) {
	ft := newFakeTime()
	c := NewAnimationClock(ft.now)

	phase, delta := c.Tick(false)
	if phase != 0 || delta != 0 {
		t.Fatalf("first Tick() = %v, %v, want 0, 0", phase, delta)
	}

	ft.advance(40 * time.Millisecond)
	phase, delta = c.Tick(true)
	if phase != 40*time.Millisecond || delta != 40*time.Millisecond {
		t.Errorf("continuous Tick() = %v, %v, want 40ms, 40ms", phase, delta)
	}

	ft.advance(time.Second)
	phase, delta = c.Tick(false)
	if phase != 1040*time.Millisecond || delta != 0 {
		t.Errorf("Tick() after idle = %v, %v, want 1.04s, 0", phase, delta)
	}

	ft.advance(25 * time.Millisecond)
	if _, delta = c.Tick(true); delta != 25*time.Millisecond {
		t.Errorf("Tick() delta = %v, want 25ms", delta)
	}
}

func TestAnimationClockRollover(t *testing.T) {
	ft := newFakeTime()
	c := NewAnimationClock(ft.now)
	c.Tick(false)

	ft.advance(DayRollover + time.Minute)
	phase, delta := c.Tick(true)
	if phase != 0 || delta != 0 {
		t.Errorf("Tick() after rollover = %v, %v, want 0, 0", phase, delta)
	}

	ft.advance(-time.Hour)
	phase, delta = c.Tick(true)
	if phase != 0 || delta != 0 {
		t.Errorf("Tick() after clock went back = %v, %v, want 0, 0", phase, delta)
	}
	if c.Phase() != 0 {
		t.Errorf("Phase() = %v, want 0", c.Phase())
	}
}

func TestIconFrame(t *testing.T) {
	art := DefaultIcons(8)[IconBuffering]
	tests := []struct {
		anim time.Duration
		want int
	}{
		{0, 0},
		{124 * time.Millisecond, 0},
		{125 * time.Millisecond, 1},
		{999 * time.Millisecond, 7},
		{time.Second, 0},
		{1250 * time.Millisecond, 2},
	}
	for _, tt := range tests {
		got := art.Frame(tt.anim)
		if got != art.Frames[tt.want] {
			t.Errorf("Frame(%v) is not frame %d", tt.anim, tt.want)
		}
	}
	if !art.Animated() {
		t.Error("buffering icon should be animated")
	}
	if DefaultIcons(8)[IconPlaying].Animated() {
		t.Error("playing icon should be static")
	}
	if DefaultIcons(8)[IconEmpty].Frame(0) != nil {
		t.Error("empty icon should have no frame")
	}
}

func TestIconByName(t *testing.T) {
	for i := IconNone; i < iconCount; i++ {
		got, ok := IconByName(i.String())
		if !ok || got != i {
			t.Errorf("IconByName(%q) = %v, %v", i.String(), got, ok)
		}
	}
	if _, ok := IconByName("bogus"); ok {
		t.Error("IconByName(bogus) ok = true")
	}
}
