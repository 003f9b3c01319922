// Package anim interpolates display values over a duration with an
// easing function. It is independent of any rendering loop so hosts
// without a frame callback can drive it from their own tick.
package anim

import (
	"math"
	"time"
)

// Easing maps linear progress in [0,1] to eased progress in [0,1].
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

// EaseOutQuart decelerates hard toward the end, the curve the counter
// animations use.
func EaseOutQuart(t float64) float64 {
	return 1 - math.Pow(1-t, 4)
}

// Interpolate returns the eased value between from and to at the given
// progress. Progress outside [0,1] clamps to the endpoints, so the
// final value is exact.
func Interpolate(from, to, progress float64, ease Easing) float64 {
	if progress <= 0 {
		return from
	}
	if progress >= 1 {
		return to
	}
	if ease == nil {
		ease = Linear
	}
	return from + (to-from)*ease(progress)
}

// DefaultCountDuration matches the interest counter animation.
const DefaultCountDuration = 1500 * time.Millisecond

// Counter animates an integer from zero to a target value. Value is a
// pure function of the clock, so redraws at any cadence stay smooth.
type Counter struct {
	target   int
	duration time.Duration
	ease     Easing
	started  time.Time

	now func() time.Time
}

func NewCounter(target int, duration time.Duration, ease Easing) *Counter {
	if duration <= 0 {
		duration = DefaultCountDuration
	}
	if ease == nil {
		ease = EaseOutQuart
	}
	c := &Counter{
		target:   target,
		duration: duration,
		ease:     ease,
		now:      time.Now,
	}
	c.started = c.now()
	return c
}

// Value returns the current display value.
func (c *Counter) Value() int {
	progress := float64(c.now().Sub(c.started)) / float64(c.duration)
	return int(math.Floor(Interpolate(0, float64(c.target), progress, c.ease)))
}

// Done reports whether the animation has reached its target.
func (c *Counter) Done() bool {
	return c.now().Sub(c.started) >= c.duration
}
