package core

import (
	"fmt"
	"math"
)

// DefaultMaxSubSteps bounds the physics work done for a single frame. When a
// frame stalls or the time scale spikes, the excess owed simulation time is
// discarded instead of executed, trading short-term drift for responsiveness.
const DefaultMaxSubSteps = 50

// StepClock converts elapsed frame time and a user-selected time-scale
// multiplier into a whole number of fixed-dt physics sub-steps. Fractional
// step time carries over to the next frame in an accumulator, so the
// simulation rate stays exact over time regardless of frame jitter.
type StepClock struct {
	dt          float64
	maxSubSteps int
	remainder   float64
}

// NewStepClock validates dt and the sub-step cap. A non-positive cap falls
// back to DefaultMaxSubSteps.
func NewStepClock(dt float64, maxSubSteps int) (*StepClock, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("time step %v must be positive and finite: %w", dt, ErrInvalidParameter)
	}
	if maxSubSteps <= 0 {
		maxSubSteps = DefaultMaxSubSteps
	}
	return &StepClock{dt: dt, maxSubSteps: maxSubSteps}, nil
}

// Dt returns the fixed physical step size in seconds.
func (c *StepClock) Dt() float64 { return c.dt }

// MaxSubSteps returns the per-frame sub-step cap.
func (c *StepClock) MaxSubSteps() int { return c.maxSubSteps }

// Advance accumulates frameDelta·timeScale seconds of owed simulation time
// and returns how many whole sub-steps to execute now, capped at
// MaxSubSteps. When the cap is hit, the leftover owed time is dropped so a
// slow frame cannot snowball into ever longer frames.
func (c *StepClock) Advance(frameDelta, timeScale float64) (int, error) {
	if frameDelta <= 0 || math.IsNaN(frameDelta) || math.IsInf(frameDelta, 0) {
		return 0, fmt.Errorf("frame delta %v must be positive and finite: %w", frameDelta, ErrInvalidParameter)
	}
	if timeScale <= 0 || math.IsNaN(timeScale) || math.IsInf(timeScale, 0) {
		return 0, fmt.Errorf("time scale %v must be positive and finite: %w", timeScale, ErrInvalidParameter)
	}

	c.remainder += frameDelta * timeScale
	// Compare in float space before converting: a huge owed time (stalled
	// frame at an extreme time scale) would overflow the int conversion and
	// slip past the cap.
	if c.remainder/c.dt > float64(c.maxSubSteps) {
		c.remainder = 0
		return c.maxSubSteps, nil
	}
	steps := int(c.remainder / c.dt)
	c.remainder -= float64(steps) * c.dt
	return steps, nil
}

// Reset drops any accumulated owed time. Called on engine reset so a stale
// remainder cannot leak into the restored run.
func (c *StepClock) Reset() {
	c.remainder = 0
}
