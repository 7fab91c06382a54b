package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/signalsfoundry/orbital-simulator/internal/logging"
	"github.com/signalsfoundry/orbital-simulator/model"
)

// MetricsRecorder receives engine-level measurements. Implemented by
// observability.EngineCollector; a nil recorder disables publication.
type MetricsRecorder interface {
	RecordStep(subSteps int, elapsed time.Duration)
	RecordStepError(kind string)
	SetBodyCount(n int)
	SetTrajectoryPoints(n int)
}

// BodySpec describes a body to create. Exactly one seeding style applies:
// explicit Position+Velocity vectors, or an Altitude above the primary's
// surface from which a circular orbit is constructed.
type BodySpec struct {
	Name   string
	Mass   float64 // kg, must be > 0
	Radius float64 // metres, display only

	// Explicit seeding. Both must be set together.
	Position *model.Vec3
	Velocity *model.Vec3

	// Circular-orbit seeding: the body is placed at Altitude metres above
	// the surface and given the circular speed √(μ/r) along Direction.
	// Direction defaults to +X with the body on the +Y axis.
	Altitude  float64
	Direction *model.Vec3

	// Inactive bodies are created excluded from stepping and recording.
	Inactive bool
}

// Snapshot is a read-only view of a body plus its derived orbital elements,
// taken strictly between Step calls.
type Snapshot struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position model.Vec3 `json:"position"`
	Velocity model.Vec3 `json:"velocity"`
	Altitude float64    `json:"altitude"` // |position| − primary radius
	Speed    float64    `json:"speed"`    // |velocity|
	Active   bool       `json:"active"`
	Elements Elements   `json:"elements"`
}

// EngineOption customises a PhysicsEngine at construction.
type EngineOption func(*PhysicsEngine)

// WithLogger attaches a structured logger. Default is the noop logger.
func WithLogger(log logging.Logger) EngineOption {
	return func(e *PhysicsEngine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) EngineOption {
	return func(e *PhysicsEngine) { e.metrics = m }
}

// WithGravityModel swaps the gravity model, e.g. to couple bodies to each
// other in an N-body configuration.
func WithGravityModel(g GravityModel) EngineOption {
	return func(e *PhysicsEngine) {
		if g != nil {
			e.gravity = g
		}
	}
}

// WithMaxSubSteps overrides the per-frame sub-step cap.
func WithMaxSubSteps(n int) EngineOption {
	return func(e *PhysicsEngine) { e.maxSubSteps = n }
}

// WithTrajectoryCapacity overrides the per-body trajectory capacity.
func WithTrajectoryCapacity(n int) EngineOption {
	return func(e *PhysicsEngine) { e.trajectoryCapacity = n }
}

// WithAllowedTimeScales restricts SetTimeScale to the given multipliers. An
// empty set accepts any positive finite value.
func WithAllowedTimeScales(scales []float64) EngineOption {
	return func(e *PhysicsEngine) { e.allowedScales = scales }
}

// PhysicsEngine orchestrates the bodies, the gravity model, the step clock,
// and the trajectory recorder. It is the only interface the rendering/UI
// collaborators consume.
//
// All operations take the engine mutex for their whole duration, so on a
// multi-threaded host readers can never observe a body mid-update. There is
// still logically one writer: the frame loop.
type PhysicsEngine struct {
	mu sync.RWMutex

	primary    model.Primary
	gravity    GravityModel
	integrator *VerletIntegrator
	clock      *StepClock
	recorder   *TrajectoryRecorder

	bodies  map[string]*model.Body
	order   []string // insertion order, drives per-sub-step processing
	initial map[string]model.State

	simTime   float64 // accumulated simulation seconds
	running   bool
	timeScale float64

	allowedScales      []float64
	maxSubSteps        int
	trajectoryCapacity int
	nextID             int

	log     logging.Logger
	metrics MetricsRecorder
}

// NewPhysicsEngine constructs an engine around the given primary with the
// fixed physical step dt.
func NewPhysicsEngine(primary model.Primary, dt float64, opts ...EngineOption) (*PhysicsEngine, error) {
	if primary.Mass <= 0 {
		return nil, fmt.Errorf("primary mass %v must be positive: %w", primary.Mass, ErrInvalidParameter)
	}
	if primary.Radius < 0 {
		return nil, fmt.Errorf("primary radius %v must be non-negative: %w", primary.Radius, ErrInvalidParameter)
	}

	e := &PhysicsEngine{
		primary:   primary,
		gravity:   PointMassGravity{},
		bodies:    make(map[string]*model.Body),
		initial:   make(map[string]model.State),
		timeScale: model.DefaultTimeScale,
		log:       logging.Noop(),
		nextID:    1,
	}
	for _, opt := range opts {
		opt(e)
	}

	integ, err := NewVerletIntegrator(dt, e.gravity)
	if err != nil {
		return nil, err
	}
	clock, err := NewStepClock(dt, e.maxSubSteps)
	if err != nil {
		return nil, err
	}
	e.integrator = integ
	e.clock = clock
	e.recorder = NewTrajectoryRecorder(e.trajectoryCapacity)

	if len(e.allowedScales) > 0 {
		e.timeScale = e.allowedScales[0]
	}
	return e, nil
}

// Primary returns the central body configuration.
func (e *PhysicsEngine) Primary() model.Primary { return e.primary }

// Dt returns the fixed physical step in seconds.
func (e *PhysicsEngine) Dt() float64 { return e.integrator.Dt() }

// AddBody validates the spec, seeds the initial state, snapshots it for
// Reset, and returns the generated body ID.
func (e *PhysicsEngine) AddBody(spec BodySpec) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if spec.Mass <= 0 || math.IsNaN(spec.Mass) || math.IsInf(spec.Mass, 0) {
		return "", fmt.Errorf("body mass %v must be positive and finite: %w", spec.Mass, ErrInvalidParameter)
	}

	pos, vel, err := e.seedState(spec)
	if err != nil {
		return "", err
	}

	id := fmt.Sprintf("body-%d", e.nextID)
	e.nextID++

	b := &model.Body{
		ID:       id,
		Name:     spec.Name,
		Mass:     spec.Mass,
		Radius:   spec.Radius,
		Position: pos,
		Velocity: vel,
		Active:   !spec.Inactive,
	}

	// Seed the acceleration so the first Verlet step starts from a
	// consistent state. A body created inside the singular radius keeps a
	// zero acceleration; the failure then surfaces on the first Step, which
	// is where the caller is prepared to handle it.
	if acc, err := e.gravity.Acceleration(pos, e.attractors()); err == nil {
		b.Acceleration = acc
	}

	e.bodies[id] = b
	e.order = append(e.order, id)
	e.initial[id] = b.State()

	if e.metrics != nil {
		e.metrics.SetBodyCount(len(e.bodies))
	}
	e.log.Debug(context.Background(), "body added",
		logging.String("id", id),
		logging.String("name", spec.Name),
		logging.Float64("altitude_m", pos.Norm()-e.primary.Radius))
	return id, nil
}

// seedState turns a BodySpec into an initial position and velocity.
func (e *PhysicsEngine) seedState(spec BodySpec) (model.Vec3, model.Vec3, error) {
	if spec.Position != nil || spec.Velocity != nil {
		if spec.Position == nil || spec.Velocity == nil {
			return model.Vec3{}, model.Vec3{}, fmt.Errorf(
				"explicit seeding needs both position and velocity: %w", ErrInvalidParameter)
		}
		if !spec.Position.IsFinite() || !spec.Velocity.IsFinite() {
			return model.Vec3{}, model.Vec3{}, fmt.Errorf(
				"initial vectors must be finite: %w", ErrInvalidParameter)
		}
		return *spec.Position, *spec.Velocity, nil
	}

	if spec.Altitude < 0 || math.IsNaN(spec.Altitude) || math.IsInf(spec.Altitude, 0) {
		return model.Vec3{}, model.Vec3{}, fmt.Errorf(
			"altitude %v must be non-negative and finite: %w", spec.Altitude, ErrInvalidParameter)
	}

	r := e.primary.Radius + spec.Altitude
	pos := model.Vec3{Y: r}

	dir := model.Vec3{X: 1}
	if spec.Direction != nil {
		if !spec.Direction.IsFinite() || spec.Direction.Norm() == 0 {
			return model.Vec3{}, model.Vec3{}, fmt.Errorf(
				"direction must be a finite non-zero vector: %w", ErrInvalidParameter)
		}
		dir = spec.Direction.Normalize()
	}

	vel := dir.Scale(CircularSpeed(e.primary.Mu(), r))
	return pos, vel, nil
}

// RemoveBody discards the body and its trajectory.
func (e *PhysicsEngine) RemoveBody(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.bodies[id]; !ok {
		return fmt.Errorf("remove %q: %w", id, ErrBodyNotFound)
	}
	delete(e.bodies, id)
	delete(e.initial, id)
	e.recorder.Drop(id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}

	if e.metrics != nil {
		e.metrics.SetBodyCount(len(e.bodies))
		e.metrics.SetTrajectoryPoints(e.recorder.TotalPoints())
	}
	return nil
}

// SetActive toggles stepping and recording participation without altering
// the body's stored state.
func (e *PhysicsEngine) SetActive(id string, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.bodies[id]
	if !ok {
		return fmt.Errorf("set active %q: %w", id, ErrBodyNotFound)
	}
	b.Active = active
	return nil
}

// ApplyImpulse adds an instantaneous velocity change to a body, the
// manoeuvring hook the UI's arrow-key controls map onto.
func (e *PhysicsEngine) ApplyImpulse(id string, dv model.Vec3) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !dv.IsFinite() {
		return fmt.Errorf("impulse must be finite: %w", ErrInvalidParameter)
	}
	b, ok := e.bodies[id]
	if !ok {
		return fmt.Errorf("impulse %q: %w", id, ErrBodyNotFound)
	}
	b.Velocity = b.Velocity.Add(dv)
	return nil
}

// attractors returns the gravitating set for the default decoupled
// configuration: the fixed primary at the origin.
func (e *PhysicsEngine) attractors() []Attractor {
	return []Attractor{{Mass: e.primary.Mass, Position: model.Vec3{}}}
}

// Step converts the frame delta and time scale into whole sub-steps and
// applies the integrator to every active body in insertion order, recording
// each updated position. It returns the number of fully executed sub-steps.
//
// The first integrator failure halts the remaining sub-steps for this call,
// but already-applied sub-steps stay committed; this is a real-time
// simulation, later state is not invalidated by one body's singular
// geometry. The failing body itself keeps its pre-step state.
func (e *PhysicsEngine) Step(frameDelta, timeScale float64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	steps, err := e.clock.Advance(frameDelta, timeScale)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordStepError("invalid_parameter")
		}
		return 0, err
	}

	attractors := e.attractors()
	executed := 0
	for i := 0; i < steps; i++ {
		for _, id := range e.order {
			b := e.bodies[id]
			if !b.Active {
				continue
			}
			if err := e.integrator.Step(b, attractors); err != nil {
				if e.metrics != nil {
					e.metrics.RecordStepError("singular_geometry")
					e.metrics.RecordStep(executed, time.Since(start))
					e.metrics.SetTrajectoryPoints(e.recorder.TotalPoints())
				}
				return executed, fmt.Errorf("sub-step %d, body %q: %w", i, id, err)
			}
			e.recorder.Record(id, b.Position)
		}
		e.simTime += e.clock.Dt()
		executed++
	}

	if e.metrics != nil {
		e.metrics.RecordStep(executed, time.Since(start))
		e.metrics.SetTrajectoryPoints(e.recorder.TotalPoints())
	}
	return executed, nil
}

// Reset restores every body to its initial snapshot, clears all
// trajectories, and zeroes accumulated simulation time. Active flags and the
// time-scale selection are deliberately left untouched, and body identities
// survive.
func (e *PhysicsEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, b := range e.bodies {
		b.Restore(e.initial[id])
		e.recorder.Clear(id)
	}
	e.simTime = 0
	e.clock.Reset()

	if e.metrics != nil {
		e.metrics.SetTrajectoryPoints(0)
	}
	e.log.Info(context.Background(), "simulation reset",
		logging.Int("bodies", len(e.bodies)))
}

// Snapshot derives the body's current orbital elements. On an escape
// trajectory it fails with ErrDegenerateOrbit; the display layer is expected
// to fall back to State and show the elements as unavailable.
func (e *PhysicsEngine) Snapshot(id string) (Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.bodies[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("snapshot %q: %w", id, ErrBodyNotFound)
	}

	elems, err := DeriveElements(b.Position, b.Velocity, e.primary.Mass)
	if err != nil {
		return Snapshot{}, err
	}
	return e.snapshotLocked(b, elems), nil
}

// State returns the kinematic readouts without deriving elements, so it
// succeeds even for degenerate (escaping) bodies.
func (e *PhysicsEngine) State(id string) (Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.bodies[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("state %q: %w", id, ErrBodyNotFound)
	}
	return e.snapshotLocked(b, Elements{}), nil
}

func (e *PhysicsEngine) snapshotLocked(b *model.Body, elems Elements) Snapshot {
	return Snapshot{
		ID:       b.ID,
		Name:     b.Name,
		Position: b.Position,
		Velocity: b.Velocity,
		Altitude: b.Position.Norm() - e.primary.Radius,
		Speed:    b.Velocity.Norm(),
		Active:   b.Active,
		Elements: elems,
	}
}

// Trajectory returns the body's recorded positions oldest-first. The slice
// is a copy; iterate it as often as needed.
func (e *PhysicsEngine) Trajectory(id string) ([]model.Vec3, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, ok := e.bodies[id]; !ok {
		return nil, fmt.Errorf("trajectory %q: %w", id, ErrBodyNotFound)
	}
	return e.recorder.Snapshot(id), nil
}

// BodyIDs returns all body IDs in insertion order.
func (e *PhysicsEngine) BodyIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// SimTime returns accumulated simulation seconds.
func (e *PhysicsEngine) SimTime() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.simTime
}

// Play marks the engine running. The flag is presentation state tracked for
// the caller's convenience; Step itself never consults it.
func (e *PhysicsEngine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
}

// Pause marks the engine paused.
func (e *PhysicsEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Running reports the play/pause flag.
func (e *PhysicsEngine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// SetTimeScale selects the multiplier used by the frame loop. When an
// allowed set was configured the value must be one of its members; otherwise
// any positive finite value is accepted.
func (e *PhysicsEngine) SetTimeScale(scale float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("time scale %v must be positive and finite: %w", scale, ErrInvalidParameter)
	}
	if len(e.allowedScales) > 0 {
		allowed := false
		for _, s := range e.allowedScales {
			if s == scale {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("time scale %v is not in the configured set %v: %w",
				scale, e.allowedScales, ErrInvalidParameter)
		}
	}
	e.timeScale = scale
	return nil
}

// TimeScale returns the currently selected multiplier.
func (e *PhysicsEngine) TimeScale() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.timeScale
}
