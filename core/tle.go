package core

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/orbital-simulator/model"
)

// StateFromTLE propagates a two-line element set to the given epoch with
// SGP4 and returns the ECI position and velocity.
// go-satellite works in kilometres; the engine works in metres.
func StateFromTLE(line1, line2 string, epoch time.Time) (model.Vec3, model.Vec3, error) {
	if line1 == "" || line2 == "" {
		return model.Vec3{}, model.Vec3{}, fmt.Errorf("both TLE lines are required: %w", ErrInvalidParameter)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)

	epoch = epoch.UTC()
	year, month, day := epoch.Date()
	hour, min, sec := epoch.Clock()

	posECI, velECI := satellite.Propagate(sat, year, int(month), day, hour, min, sec)

	const kmToM = 1000.0
	pos := model.Vec3{X: posECI.X * kmToM, Y: posECI.Y * kmToM, Z: posECI.Z * kmToM}
	vel := model.Vec3{X: velECI.X * kmToM, Y: velECI.Y * kmToM, Z: velECI.Z * kmToM}

	if !pos.IsFinite() || !vel.IsFinite() || pos.Norm() == 0 {
		return model.Vec3{}, model.Vec3{}, fmt.Errorf("SGP4 propagation produced no usable state: %w", ErrInvalidParameter)
	}
	return pos, vel, nil
}
