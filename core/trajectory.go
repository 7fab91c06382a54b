package core

import "github.com/signalsfoundry/orbital-simulator/model"

// positionRing is a fixed-capacity ring buffer of past positions. Eviction
// is FIFO via a wrap-around cursor, so appends stay O(1) regardless of how
// long the simulation has been running.
type positionRing struct {
	points []model.Vec3
	head   int // index of the oldest entry
	size   int
}

func newPositionRing(capacity int) *positionRing {
	return &positionRing{points: make([]model.Vec3, capacity)}
}

func (r *positionRing) push(p model.Vec3) {
	if r.size < len(r.points) {
		r.points[(r.head+r.size)%len(r.points)] = p
		r.size++
		return
	}
	// Full: overwrite the oldest and advance the cursor.
	r.points[r.head] = p
	r.head = (r.head + 1) % len(r.points)
}

// snapshot returns the history oldest-first as a fresh slice. Callers can
// iterate it as often as they like without touching the ring.
func (r *positionRing) snapshot() []model.Vec3 {
	out := make([]model.Vec3, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.points[(r.head+i)%len(r.points)]
	}
	return out
}

// TrajectoryCapacity is the default number of past positions retained per
// body.
const TrajectoryCapacity = 1000

// TrajectoryRecorder keeps a bounded ordered history of past positions per
// body for path rendering. It is not safe for concurrent use on its own; the
// engine's single-writer discipline covers it.
type TrajectoryRecorder struct {
	capacity  int
	histories map[string]*positionRing
}

// NewTrajectoryRecorder constructs a recorder. A non-positive capacity falls
// back to TrajectoryCapacity.
func NewTrajectoryRecorder(capacity int) *TrajectoryRecorder {
	if capacity <= 0 {
		capacity = TrajectoryCapacity
	}
	return &TrajectoryRecorder{
		capacity:  capacity,
		histories: make(map[string]*positionRing),
	}
}

// Record appends a position to the body's history, evicting the oldest entry
// once the capacity is exceeded.
func (tr *TrajectoryRecorder) Record(bodyID string, pos model.Vec3) {
	ring, ok := tr.histories[bodyID]
	if !ok {
		ring = newPositionRing(tr.capacity)
		tr.histories[bodyID] = ring
	}
	ring.push(pos)
}

// Snapshot returns a read-only copy of the body's history, oldest first.
// Unknown bodies yield an empty slice.
func (tr *TrajectoryRecorder) Snapshot(bodyID string) []model.Vec3 {
	ring, ok := tr.histories[bodyID]
	if !ok {
		return nil
	}
	return ring.snapshot()
}

// Len returns the number of recorded points for the body.
func (tr *TrajectoryRecorder) Len(bodyID string) int {
	ring, ok := tr.histories[bodyID]
	if !ok {
		return 0
	}
	return ring.size
}

// Clear empties the body's history without forgetting the body. Used on
// engine reset.
func (tr *TrajectoryRecorder) Clear(bodyID string) {
	if ring, ok := tr.histories[bodyID]; ok {
		ring.head = 0
		ring.size = 0
	}
}

// Drop discards the body's history entirely. Used when a body is removed.
func (tr *TrajectoryRecorder) Drop(bodyID string) {
	delete(tr.histories, bodyID)
}

// TotalPoints returns the number of points currently held across all bodies.
func (tr *TrajectoryRecorder) TotalPoints() int {
	total := 0
	for _, ring := range tr.histories {
		total += ring.size
	}
	return total
}
