package core

import (
	"fmt"

	"github.com/signalsfoundry/orbital-simulator/model"
)

// Attractor is a point mass contributing to the gravitational field. The
// default configuration passes exactly one (the primary, at the origin), but
// nothing here assumes that: coupled N-body modes hand in a longer list and
// share the same code path.
type Attractor struct {
	Mass     float64
	Position model.Vec3
}

// GravityModel computes the gravitational acceleration exerted on a body at
// the given position by a set of attractors.
type GravityModel interface {
	Acceleration(pos model.Vec3, attractors []Attractor) (model.Vec3, error)
}

// singularSeparation is the separation below which the inverse-square law is
// considered to have collapsed. One metre is far inside any attractor we
// model, so hitting it means the geometry is already unphysical.
const singularSeparation = 1.0

// PointMassGravity is the standard Newtonian point-mass model:
// a += -G*M*r/|r|³ summed over all attractors.
type PointMassGravity struct{}

// Acceleration implements GravityModel. A separation below the epsilon is a
// fatal condition: it returns ErrSingularGeometry instead of letting Inf or
// NaN leak into body state.
func (PointMassGravity) Acceleration(pos model.Vec3, attractors []Attractor) (model.Vec3, error) {
	var acc model.Vec3
	for _, att := range attractors {
		r := pos.Sub(att.Position)
		dist := r.Norm()
		if dist < singularSeparation {
			return model.Vec3{}, fmt.Errorf(
				"separation %.3g m from attractor of mass %.3g kg: %w",
				dist, att.Mass, ErrSingularGeometry)
		}
		acc = acc.Add(r.Scale(-model.G * att.Mass / (dist * dist * dist)))
	}
	return acc, nil
}
