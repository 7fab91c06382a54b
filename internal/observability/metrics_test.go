package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineCollectorRecordsSteps(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.RecordStep(50, 2*time.Millisecond)
	collector.RecordStep(10, time.Millisecond)

	if got := testutil.ToFloat64(collector.SubSteps); got != 60 {
		t.Fatalf("engine_substeps_total = %v, want 60", got)
	}
}

func TestEngineCollectorRecordsErrorsAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.RecordStepError("singular_geometry")
	collector.RecordStepError("singular_geometry")
	collector.SetBodyCount(3)
	collector.SetTrajectoryPoints(1500)

	if got := testutil.ToFloat64(collector.StepErrors.WithLabelValues("singular_geometry")); got != 2 {
		t.Fatalf("engine_step_errors_total{kind=singular_geometry} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Bodies); got != 3 {
		t.Fatalf("engine_bodies = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.TrajectoryPoints); got != 1500 {
		t.Fatalf("engine_trajectory_points = %v, want 1500", got)
	}
}

func TestEngineCollectorDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewEngineCollector(reg); err != nil {
		t.Fatalf("first NewEngineCollector: %v", err)
	}
	// Re-registering against the same registry reuses the existing
	// collectors instead of failing.
	if _, err := NewEngineCollector(reg); err != nil {
		t.Fatalf("second NewEngineCollector: %v", err)
	}
}

func TestEngineCollectorHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	collector.SetBodyCount(2)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), "engine_bodies 2") {
		t.Fatalf("metrics output missing engine_bodies gauge:\n%s", buf.String())
	}
}
