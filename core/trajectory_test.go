package core

import (
	"testing"

	"github.com/signalsfoundry/orbital-simulator/model"
)

func TestTrajectoryRecorder_BoundedFIFO(t *testing.T) {
	tr := NewTrajectoryRecorder(1000)

	// Record 1500 points; only the most recent 1000 may survive.
	for i := 0; i < 1500; i++ {
		tr.Record("body-1", model.Vec3{X: float64(i)})
	}

	if got := tr.Len("body-1"); got != 1000 {
		t.Fatalf("Len = %d, want 1000", got)
	}

	points := tr.Snapshot("body-1")
	if len(points) != 1000 {
		t.Fatalf("Snapshot length = %d, want 1000", len(points))
	}
	if points[0].X != 500 {
		t.Errorf("oldest surviving point = %v, want 500 (oldest evicted first)", points[0].X)
	}
	if points[999].X != 1499 {
		t.Errorf("newest point = %v, want 1499", points[999].X)
	}
	for i := 1; i < len(points); i++ {
		if points[i].X != points[i-1].X+1 {
			t.Fatalf("chronological order broken at index %d: %v after %v", i, points[i].X, points[i-1].X)
		}
	}
}

func TestTrajectoryRecorder_SnapshotIsACopy(t *testing.T) {
	tr := NewTrajectoryRecorder(10)
	tr.Record("body-1", model.Vec3{X: 1})

	points := tr.Snapshot("body-1")
	points[0].X = 42

	if got := tr.Snapshot("body-1")[0].X; got != 1 {
		t.Fatalf("recorder history mutated through a snapshot: %v", got)
	}
}

func TestTrajectoryRecorder_ClearKeepsBody(t *testing.T) {
	tr := NewTrajectoryRecorder(10)
	for i := 0; i < 5; i++ {
		tr.Record("body-1", model.Vec3{X: float64(i)})
	}

	tr.Clear("body-1")
	if got := tr.Len("body-1"); got != 0 {
		t.Fatalf("Len after Clear = %d, want 0", got)
	}

	// Recording continues from an empty, consistent ring.
	tr.Record("body-1", model.Vec3{X: 9})
	points := tr.Snapshot("body-1")
	if len(points) != 1 || points[0].X != 9 {
		t.Fatalf("post-Clear history = %+v, want single point 9", points)
	}
}

func TestTrajectoryRecorder_UnknownBody(t *testing.T) {
	tr := NewTrajectoryRecorder(10)
	if got := tr.Snapshot("ghost"); len(got) != 0 {
		t.Fatalf("Snapshot of unknown body = %v, want empty", got)
	}
	if got := tr.Len("ghost"); got != 0 {
		t.Fatalf("Len of unknown body = %d, want 0", got)
	}
}

func TestTrajectoryRecorder_TotalPoints(t *testing.T) {
	tr := NewTrajectoryRecorder(3)
	tr.Record("a", model.Vec3{})
	tr.Record("a", model.Vec3{})
	tr.Record("b", model.Vec3{})
	if got := tr.TotalPoints(); got != 3 {
		t.Fatalf("TotalPoints = %d, want 3", got)
	}

	tr.Drop("a")
	if got := tr.TotalPoints(); got != 1 {
		t.Fatalf("TotalPoints after Drop = %d, want 1", got)
	}
}
