// Package timectrl drives a physics engine from wall-clock time. The engine
// itself never blocks or sleeps; this package owns the one real-time loop
// and feeds measured frame deltas into Step.
package timectrl

import (
	"context"
	"time"

	"github.com/signalsfoundry/orbital-simulator/internal/logging"
)

// Stepper is the engine-facing contract the driver exercises every frame.
// Implemented by core.PhysicsEngine.
type Stepper interface {
	// Step advances by frameDelta seconds of wall time at the given time
	// scale and returns the number of executed sub-steps.
	Step(frameDelta, timeScale float64) (int, error)
	// Running reports the play/pause flag. The driver does not call Step
	// while paused; the engine itself never gates on this.
	Running() bool
	// TimeScale returns the currently selected multiplier.
	TimeScale() float64
}

// Driver runs a fixed-interval frame loop against a Stepper. Listeners run
// on the loop goroutine after each frame, so they observe a fully committed
// engine state (the single-writer discipline the engine requires).
type Driver struct {
	stepper   Stepper
	frame     time.Duration
	log       logging.Logger
	listeners []func(now time.Time)
}

// NewDriver constructs a driver ticking every frame interval. A nil logger
// falls back to the noop logger.
func NewDriver(stepper Stepper, frame time.Duration, log logging.Logger) *Driver {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Driver{stepper: stepper, frame: frame, log: log}
}

// AddListener registers a callback invoked after every frame, whether or not
// any sub-steps ran. Must be called before Start.
func (d *Driver) AddListener(fn func(now time.Time)) {
	d.listeners = append(d.listeners, fn)
}

// Start runs the frame loop on its own goroutine until the context is
// cancelled or the optional duration (when > 0) elapses. The returned
// channel is closed when the loop exits.
//
// A singular-geometry failure does not stop the loop: committed sub-steps
// stay valid and the caller is expected to deactivate or remove the
// offending body. The error is logged once per frame it occurs in.
func (d *Driver) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(d.frame)
		defer ticker.Stop()

		start := time.Now()
		last := start

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if duration > 0 && now.Sub(start) >= duration {
					return
				}

				delta := now.Sub(last).Seconds()
				last = now
				if delta <= 0 {
					continue
				}

				if d.stepper.Running() {
					if _, err := d.stepper.Step(delta, d.stepper.TimeScale()); err != nil {
						d.log.Error(ctx, "physics step failed",
							logging.String("error", err.Error()))
					}
				}

				for _, fn := range d.listeners {
					fn(now)
				}
			}
		}
	}()
	return done
}
