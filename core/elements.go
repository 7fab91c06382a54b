package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/orbital-simulator/model"
)

// Elements are classical orbital elements derived from an instantaneous
// state vector via vis-viva. They are recomputed on demand for display and
// never stored, so they always reflect the current state.
type Elements struct {
	SemiMajorAxis float64 `json:"semi_major_axis"` // metres
	Eccentricity  float64 `json:"eccentricity"`
	Apogee        float64 `json:"apogee"`  // metres from the primary's centre
	Perigee       float64 `json:"perigee"` // metres from the primary's centre
	Period        float64 `json:"period"`  // seconds
}

// DeriveElements computes the elements of the orbit passing through the
// given position with the given velocity around a primary of the given mass.
//
// Derivation: with μ = G·M, specific orbital energy ε = |v|²/2 − μ/|r| and
// specific angular momentum h = |r × v|, the semi-major axis is a = −μ/(2ε)
// and the eccentricity e = √(1 + 2εh²/μ²). Apogee and perigee follow as
// a(1±e) and the period as 2π·√(a³/μ).
//
// A non-negative ε (escape or parabolic trajectory) or |r| = 0 has no finite
// period or apogee and fails with ErrDegenerateOrbit.
func DeriveElements(pos, vel model.Vec3, primaryMass float64) (Elements, error) {
	r := pos.Norm()
	if r == 0 {
		return Elements{}, fmt.Errorf("zero distance from primary centre: %w", ErrDegenerateOrbit)
	}
	if primaryMass <= 0 {
		return Elements{}, fmt.Errorf("primary mass %v must be positive: %w", primaryMass, ErrInvalidParameter)
	}

	mu := model.G * primaryMass
	energy := vel.Dot(vel)/2 - mu/r
	if energy >= 0 {
		return Elements{}, fmt.Errorf(
			"specific orbital energy %.6g J/kg is non-negative (escape trajectory): %w",
			energy, ErrDegenerateOrbit)
	}

	a := -mu / (2 * energy)
	h := pos.Cross(vel).Norm()

	// Floating-point noise can push the radicand a hair below zero for
	// near-circular orbits; clamp rather than produce NaN.
	ecc2 := 1 + 2*energy*h*h/(mu*mu)
	if ecc2 < 0 {
		ecc2 = 0
	}
	e := math.Sqrt(ecc2)

	return Elements{
		SemiMajorAxis: a,
		Eccentricity:  e,
		Apogee:        a * (1 + e),
		Perigee:       a * (1 - e),
		Period:        2 * math.Pi * math.Sqrt(a*a*a/mu),
	}, nil
}

// CircularSpeed returns the speed of a circular orbit of radius r around a
// primary with gravitational parameter mu: √(μ/r).
func CircularSpeed(mu, r float64) float64 {
	return math.Sqrt(mu / r)
}

// SpecificEnergy returns |v|²/2 − μ/|r|, negative for bound orbits. Exposed
// for the engine's diagnostics and the stability tests.
func SpecificEnergy(pos, vel model.Vec3, mu float64) float64 {
	return vel.Dot(vel)/2 - mu/pos.Norm()
}
