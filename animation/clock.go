// Package animation interpolates vectors and matrices over time and
// sequences those interpolations on a shared timeline.
package animation

import (
	"math"

	"github.com/matt-g-everett/linviz/easing"
)

// Default durations in seconds.
const (
	DefaultVectorDuration = 1.0
	DefaultGridDuration   = 2.0
)

// State is the lifecycle position of a Clock.
type State int

const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Clock tracks elapsed time against a duration and shapes it with an
// easing curve. It is embedded by every animation kind.
type Clock struct {
	duration float64
	elapsed  float64
	curve    easing.Func
	finished bool
}

func newClock(duration float64, curve easing.Func) Clock {
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	if curve == nil {
		curve = easing.Default
	}
	return Clock{duration: duration, curve: curve}
}

// Update advances the clock by dt. It does nothing once finished.
// Negative dt counts as 0.
func (c *Clock) Update(dt float64) {
	if c.finished {
		return
	}
	if dt > 0 {
		c.elapsed += dt
	}
	if c.elapsed >= c.duration {
		c.elapsed = c.duration
		c.finished = true
	}
}

// Reset returns the clock to Idle.
func (c *Clock) Reset() {
	c.elapsed = 0
	c.finished = false
}

func (c *Clock) Duration() float64 { return c.duration }
func (c *Clock) Elapsed() float64  { return c.elapsed }
func (c *Clock) Finished() bool    { return c.finished }

// Progress is elapsed/duration saturating at 1. A zero duration is
// complete immediately.
func (c *Clock) Progress() float64 {
	if c.duration == 0 {
		return 1
	}
	return math.Min(1, c.elapsed/c.duration)
}

// EasedProgress applies the easing curve to Progress. Overshooting curves
// may return values outside [0,1].
func (c *Clock) EasedProgress() float64 {
	return c.curve(c.Progress())
}

func (c *Clock) State() State {
	switch {
	case c.finished:
		return Finished
	case c.elapsed > 0:
		return Running
	}
	return Idle
}
