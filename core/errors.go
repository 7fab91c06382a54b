package core

import "errors"

// Sentinel errors for the engine surface. Callers classify failures with
// errors.Is; the API layer maps them onto HTTP status codes.
var (
	// ErrInvalidParameter indicates a rejected input: non-positive mass,
	// non-positive dt or time scale, malformed initial vectors. Inputs are
	// never silently clamped.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrSingularGeometry indicates a body's separation from an attractor
	// collapsed to ~0. Fatal to the sub-step in progress for that body; the
	// caller is expected to deactivate or remove it.
	ErrSingularGeometry = errors.New("singular geometry")
	// ErrDegenerateOrbit indicates a non-negative specific orbital energy
	// (escape or parabolic trajectory). Fatal only to element derivation,
	// never to stepping.
	ErrDegenerateOrbit = errors.New("degenerate orbit")
	// ErrBodyNotFound indicates an unknown body ID.
	ErrBodyNotFound = errors.New("body not found")
)
