package model

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 12}
	if got := v.Norm(); got != 13 {
		t.Fatalf("Norm() = %v, want 13", got)
	}
}

func TestVec3CrossIsOrthogonal(t *testing.T) {
	a := Vec3{X: 1.5, Y: -2, Z: 0.25}
	b := Vec3{X: 0.5, Y: 3, Z: -1}

	c := a.Cross(b)
	if got := math.Abs(c.Dot(a)); got > 1e-12 {
		t.Errorf("cross product not orthogonal to a: dot = %v", got)
	}
	if got := math.Abs(c.Dot(b)); got > 1e-12 {
		t.Errorf("cross product not orthogonal to b: dot = %v", got)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Fatalf("Normalize of zero vector = %v, want zero", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Errorf("finite vector reported non-finite")
	}
	if (Vec3{X: math.NaN()}).IsFinite() {
		t.Errorf("NaN component reported finite")
	}
	if (Vec3{Z: math.Inf(-1)}).IsFinite() {
		t.Errorf("Inf component reported finite")
	}
}

func TestBodyStateRoundTrip(t *testing.T) {
	b := &Body{
		ID:       "body-1",
		Mass:     1000,
		Position: Vec3{X: 7e6},
		Velocity: Vec3{Y: 7500},
		Active:   true,
	}

	saved := b.State()
	b.Position = Vec3{X: 1, Y: 2, Z: 3}
	b.Velocity = Vec3{}
	b.Active = false

	b.Restore(saved)
	if b.Position != (Vec3{X: 7e6}) || b.Velocity != (Vec3{Y: 7500}) {
		t.Fatalf("Restore did not bring back kinematic state: %+v", b)
	}
	if b.Active {
		t.Fatalf("Restore must not touch the Active flag")
	}
}
