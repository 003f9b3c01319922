// Package gesture implements the pull-to-refresh state machine. It is
// decoupled from any input device: a host feeds it drag events (touch,
// mouse, or programmatic) and it decides when the bound refresh runs.
package gesture

import (
	"context"
	"sync"
	"time"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePulling
	PhaseRefreshing
)

func (p Phase) String() string {
	switch p {
	case PhasePulling:
		return "pulling"
	case PhaseRefreshing:
		return "refreshing"
	default:
		return "idle"
	}
}

// Config holds the gesture tunables. These are deployment configuration,
// not constants of the state machine.
type Config struct {
	// Threshold is the pull distance that must be exceeded (strictly)
	// for a release to trigger a refresh.
	Threshold float64
	// MaxDistance clamps the pull indicator travel.
	MaxDistance float64
	// Damping scales raw drag delta into pull distance.
	Damping float64
	// MinIndicator is the minimum time the refreshing state is held so
	// the indicator never flashes imperceptibly.
	MinIndicator time.Duration
}

// DefaultConfig mirrors the production tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:    80,
		MaxDistance:  120,
		Damping:      0.5,
		MinIndicator: time.Second,
	}
}

// RefreshFunc is invoked when a release past the threshold commits a
// refresh cycle.
type RefreshFunc func(ctx context.Context) error

type Controller struct {
	mu        sync.Mutex
	cfg       Config
	onRefresh RefreshFunc

	phase    Phase
	startY   float64
	distance float64

	// injectable clock, for tests
	now   func() time.Time
	sleep func(time.Duration)
}

func NewController(cfg Config, onRefresh RefreshFunc) *Controller {
	if cfg.Damping == 0 {
		cfg.Damping = 0.5
	}
	return &Controller{
		cfg:       cfg,
		onRefresh: onRefresh,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// DragStart begins a pull. It is accepted only while idle and only when
// the scrollable region sits at its origin offset; a drag started while
// a refresh cycle is in flight is ignored.
func (c *Controller) DragStart(scrollOffset, y float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle || scrollOffset != 0 {
		return false
	}
	c.phase = PhasePulling
	c.startY = y
	c.distance = 0
	return true
}

// DragMove updates the pull distance from the current pointer position.
// consume reports whether the host must suppress the underlying scroll's
// default handling (the gesture owns the viewport while pulling down).
func (c *Controller) DragMove(y float64) (distance float64, consume bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePulling {
		return 0, false
	}
	delta := y - c.startY
	if delta <= 0 {
		c.distance = 0
		return 0, false
	}
	d := delta * c.cfg.Damping
	if d > c.cfg.MaxDistance {
		d = c.cfg.MaxDistance
	}
	c.distance = d
	return d, true
}

// Release ends the drag. Past the threshold it runs the bound refresh
// and holds the refreshing phase for at least MinIndicator; otherwise it
// simply returns to idle. The refresh error propagates to the caller.
func (c *Controller) Release(ctx context.Context) (refreshed bool, err error) {
	c.mu.Lock()
	if c.phase != PhasePulling {
		c.mu.Unlock()
		return false, nil
	}
	if c.distance <= c.cfg.Threshold {
		c.reset()
		c.mu.Unlock()
		return false, nil
	}
	c.phase = PhaseRefreshing
	c.mu.Unlock()

	started := c.now()
	if c.onRefresh != nil {
		err = c.onRefresh(ctx)
	}

	// The refresh has settled: the viewport snaps back now. The floor
	// below holds only the Refreshing phase, not the displacement.
	c.mu.Lock()
	c.distance = 0
	c.mu.Unlock()

	if elapsed := c.now().Sub(started); elapsed < c.cfg.MinIndicator {
		c.sleep(c.cfg.MinIndicator - elapsed)
	}

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	return true, err
}

// Cancel abandons an in-progress pull without refreshing. A refresh
// cycle already committed is not interrupted.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePulling {
		c.reset()
	}
}

// reset is called with the mutex held.
func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.startY = 0
	c.distance = 0
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Distance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance
}

// Armed reports the derived display condition: still dragging, with the
// threshold exceeded, so a release would refresh.
func (c *Controller) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhasePulling && c.distance > c.cfg.Threshold
}
