package model

// Body is one simulated orbiting object. All kinematic fields are expressed
// in the primary-centred inertial frame.
type Body struct {
	// ID is a stable identifier, unique within one engine.
	ID string
	// Name is a human-readable label for display and logging.
	Name string
	// Mass in kilograms. Always > 0; the engine rejects anything else.
	Mass float64
	// Radius in metres. Carried through for the rendering collaborator only;
	// the physics never consults it.
	Radius float64

	Position     Vec3 // metres
	Velocity     Vec3 // m/s
	Acceleration Vec3 // m/s²

	// Active controls participation in stepping and trajectory recording.
	// Inactive bodies keep their last state untouched.
	Active bool
}

// State is the kinematic portion of a body. The engine snapshots one per
// body at creation time so Reset can restore it without touching identity,
// mass, or the Active flag.
type State struct {
	Position     Vec3
	Velocity     Vec3
	Acceleration Vec3
}

// State returns the body's current kinematic state.
func (b *Body) State() State {
	return State{
		Position:     b.Position,
		Velocity:     b.Velocity,
		Acceleration: b.Acceleration,
	}
}

// Restore overwrites the body's kinematic state. Identity, mass, radius, and
// the Active flag are left alone.
func (b *Body) Restore(s State) {
	b.Position = s.Position
	b.Velocity = s.Velocity
	b.Acceleration = s.Acceleration
}

// Primary is the central attracting mass, fixed at the coordinate origin for
// the lifetime of a simulation run.
type Primary struct {
	Name   string
	Mass   float64 // kg
	Radius float64 // metres
}

// Mu returns the standard gravitational parameter G*M of the primary.
func (p Primary) Mu() float64 {
	return G * p.Mass
}

// Earth returns the default primary used by the stock scenarios.
func Earth() Primary {
	return Primary{Name: "Earth", Mass: EarthMass, Radius: EarthRadius}
}
