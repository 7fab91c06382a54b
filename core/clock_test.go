package core

import (
	"errors"
	"math"
	"testing"
)

func TestStepClock_AccumulatesRemainder(t *testing.T) {
	c, err := NewStepClock(0.1, 0)
	if err != nil {
		t.Fatalf("NewStepClock: %v", err)
	}

	// 0.25 s owed → 2 whole steps, 0.05 s carried over.
	steps, err := c.Advance(0.25, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 2 {
		t.Fatalf("steps = %d, want 2", steps)
	}

	// Another 0.06 s owed: together with the ~0.05 s carry that clears one
	// more step.
	steps, err = c.Advance(0.06, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 1 {
		t.Fatalf("carry-over not applied: steps = %d, want 1", steps)
	}
}

func TestStepClock_TimeScaleMultiplies(t *testing.T) {
	c, err := NewStepClock(0.1, 1000)
	if err != nil {
		t.Fatalf("NewStepClock: %v", err)
	}

	// One 16 ms frame at 360× owes 5.76 s → 57 steps.
	steps, err := c.Advance(0.016, 360)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 57 {
		t.Fatalf("steps = %d, want 57", steps)
	}
}

func TestStepClock_CapDiscardsExcess(t *testing.T) {
	c, err := NewStepClock(0.1, 50)
	if err != nil {
		t.Fatalf("NewStepClock: %v", err)
	}

	// A stalled 2 s frame at 1440× owes 2880 s → far beyond the cap.
	steps, err := c.Advance(2, 1440)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 50 {
		t.Fatalf("steps = %d, want the cap of 50", steps)
	}

	// Excess owed time was dropped, not carried: the next tiny frame owes
	// only its own time.
	steps, err = c.Advance(0.001, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 0 {
		t.Fatalf("discarded debt leaked into the next frame: steps = %d", steps)
	}
}

func TestStepClock_CapHoldsAtExtremeTimeScales(t *testing.T) {
	c, err := NewStepClock(0.1, 50)
	if err != nil {
		t.Fatalf("NewStepClock: %v", err)
	}

	// A 1 s frame at an extreme multiplier owes ~1e20 s. The owed step count
	// does not fit in an int; the cap must still hold and the excess must be
	// dropped like any other over-budget frame.
	steps, err := c.Advance(1.0, 1e20)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 50 {
		t.Fatalf("steps = %d, want the cap of 50", steps)
	}

	steps, err = c.Advance(0.001, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 0 {
		t.Fatalf("discarded debt leaked into the next frame: steps = %d", steps)
	}
}

func TestStepClock_RejectsBadInputs(t *testing.T) {
	c, err := NewStepClock(0.1, 0)
	if err != nil {
		t.Fatalf("NewStepClock: %v", err)
	}

	cases := []struct {
		name       string
		frameDelta float64
		timeScale  float64
	}{
		{"zero delta", 0, 1},
		{"negative delta", -0.01, 1},
		{"NaN delta", math.NaN(), 1},
		{"zero scale", 0.016, 0},
		{"negative scale", 0.016, -360},
		{"Inf scale", 0.016, math.Inf(1)},
	}
	for _, tc := range cases {
		if _, err := c.Advance(tc.frameDelta, tc.timeScale); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: err = %v, want ErrInvalidParameter", tc.name, err)
		}
	}
}

func TestStepClock_ResetDropsRemainder(t *testing.T) {
	c, err := NewStepClock(0.1, 0)
	if err != nil {
		t.Fatalf("NewStepClock: %v", err)
	}

	if _, err := c.Advance(0.09, 1); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	c.Reset()

	steps, err := c.Advance(0.01, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if steps != 0 {
		t.Fatalf("remainder survived Reset: steps = %d", steps)
	}
}
