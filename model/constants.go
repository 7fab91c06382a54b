package model

// Universal constants.
const (
	// G is the gravitational constant in m³/(kg·s²).
	G = 6.67430e-11
)

// Earth constants.
const (
	EarthRadius = 6_371_000.0 // metres
	EarthMass   = 5.972e24    // kg
)

// Moon constants.
const (
	MoonMass          = 7.34767309e22    // kg
	MoonRadius        = 1_737_100.0      // metres
	MoonOrbitalRadius = 384_400_000.0    // metres, mean distance from Earth's centre
)

// ISS constants.
const (
	ISSMass     = 419_725.0 // kg
	ISSAltitude = 408_000.0 // metres above Earth's surface
)

// Simulation defaults. The fixed step is small relative to one orbital
// period at LEO altitudes so that Verlet stays stable under high time scales.
const (
	DefaultTimeStep  = 0.1    // seconds of physics per sub-step
	DefaultTimeScale = 1440.0 // 24 simulated hours per real minute
)
