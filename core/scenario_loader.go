package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/signalsfoundry/orbital-simulator/model"
)

// Scenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging from main().
type Scenario struct {
	Name    string
	BodyIDs []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type scenarioJSON struct {
	Name   string     `json:"name"`
	Bodies []bodyJSON `json:"bodies"`
}

type bodyJSON struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"` // "state" | "circular" | "tle"
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`

	// kind == "state"
	Position *vecJSON `json:"position"`
	Velocity *vecJSON `json:"velocity"`

	// kind == "circular"
	Altitude  float64  `json:"altitude"`
	Direction *vecJSON `json:"direction"`

	// kind == "tle"
	TLELine1 string `json:"tle_line1"`
	TLELine2 string `json:"tle_line2"`
	Epoch    string `json:"epoch"` // RFC 3339; defaults to now

	Inactive bool `json:"inactive"`
}

type vecJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v *vecJSON) toVec() *model.Vec3 {
	if v == nil {
		return nil
	}
	return &model.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// LoadScenario reads a JSON scenario from r and creates its bodies on the
// engine, translating each entry into an AddBody call. Scenario files are
// caller-level convenience; the engine itself has no notion of presets.
func LoadScenario(e *PhysicsEngine, r io.Reader) (*Scenario, error) {
	if e == nil {
		return nil, fmt.Errorf("LoadScenario: engine is nil")
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	result := &Scenario{
		Name:    payload.Name,
		BodyIDs: make([]string, 0, len(payload.Bodies)),
	}

	for i, jb := range payload.Bodies {
		spec, err := specFromJSON(jb)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: body %d (%q): %w", i, jb.Name, err)
		}

		id, err := e.AddBody(spec)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: body %d (%q): %w", i, jb.Name, err)
		}
		result.BodyIDs = append(result.BodyIDs, id)
	}

	return result, nil
}

func specFromJSON(jb bodyJSON) (BodySpec, error) {
	spec := BodySpec{
		Name:     jb.Name,
		Mass:     jb.Mass,
		Radius:   jb.Radius,
		Inactive: jb.Inactive,
	}

	switch strings.ToLower(strings.TrimSpace(jb.Kind)) {
	case "state":
		spec.Position = jb.Position.toVec()
		spec.Velocity = jb.Velocity.toVec()

	case "circular", "":
		// Default kind: most scenario entries are circular orbits given by
		// altitude alone.
		spec.Altitude = jb.Altitude
		spec.Direction = jb.Direction.toVec()

	case "tle":
		epoch := time.Now()
		if jb.Epoch != "" {
			parsed, err := time.Parse(time.RFC3339, jb.Epoch)
			if err != nil {
				return BodySpec{}, fmt.Errorf("bad epoch %q: %w", jb.Epoch, ErrInvalidParameter)
			}
			epoch = parsed
		}
		pos, vel, err := StateFromTLE(jb.TLELine1, jb.TLELine2, epoch)
		if err != nil {
			return BodySpec{}, err
		}
		spec.Position = &pos
		spec.Velocity = &vel

	default:
		return BodySpec{}, fmt.Errorf("unknown body kind %q: %w", jb.Kind, ErrInvalidParameter)
	}

	return spec, nil
}
