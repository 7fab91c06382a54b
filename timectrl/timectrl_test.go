package timectrl

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeStepper records calls so the loop behaviour can be asserted without a
// real engine.
type fakeStepper struct {
	mu      sync.Mutex
	running bool
	scale   float64
	calls   int
	deltas  []float64
}

func (f *fakeStepper) Step(frameDelta, timeScale float64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.deltas = append(f.deltas, frameDelta)
	return 1, nil
}

func (f *fakeStepper) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeStepper) TimeScale() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scale
}

func (f *fakeStepper) stats() (int, []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]float64(nil), f.deltas...)
}

func TestDriver_StepsWhileRunning(t *testing.T) {
	stepper := &fakeStepper{running: true, scale: 360}
	d := NewDriver(stepper, 5*time.Millisecond, nil)

	done := d.Start(context.Background(), 60*time.Millisecond)
	<-done

	calls, deltas := stepper.stats()
	if calls == 0 {
		t.Fatalf("driver never stepped a running engine")
	}
	for i, delta := range deltas {
		if delta <= 0 {
			t.Fatalf("frame delta %d = %v, want > 0", i, delta)
		}
	}
}

func TestDriver_DoesNotStepWhilePaused(t *testing.T) {
	stepper := &fakeStepper{running: false, scale: 360}
	d := NewDriver(stepper, 5*time.Millisecond, nil)

	done := d.Start(context.Background(), 40*time.Millisecond)
	<-done

	if calls, _ := stepper.stats(); calls != 0 {
		t.Fatalf("driver stepped a paused engine %d times", calls)
	}
}

func TestDriver_ListenersRunEveryFrame(t *testing.T) {
	stepper := &fakeStepper{running: false}
	d := NewDriver(stepper, 5*time.Millisecond, nil)

	var mu sync.Mutex
	frames := 0
	d.AddListener(func(time.Time) {
		mu.Lock()
		frames++
		mu.Unlock()
	})

	done := d.Start(context.Background(), 40*time.Millisecond)
	<-done

	mu.Lock()
	defer mu.Unlock()
	// Listeners fire even while paused; that is how the UI keeps redrawing.
	if frames == 0 {
		t.Fatalf("listener never invoked")
	}
}

func TestDriver_StopsOnContextCancel(t *testing.T) {
	stepper := &fakeStepper{running: true, scale: 1}
	d := NewDriver(stepper, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx, 0) // no duration bound
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("driver did not stop on context cancellation")
	}
}
