// Command simulator runs the physics engine headless for a fixed duration
// and prints periodic orbit readouts. It is the quickest way to sanity-check
// a scenario file or watch energy behaviour without standing up orbitd.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/signalsfoundry/orbital-simulator/core"
	"github.com/signalsfoundry/orbital-simulator/internal/config"
	"github.com/signalsfoundry/orbital-simulator/internal/logging"
	"github.com/signalsfoundry/orbital-simulator/internal/observability"
	"github.com/signalsfoundry/orbital-simulator/timectrl"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (empty for defaults)")
	scenarioPath := flag.String("scenario", "configs/scenario_iss.json", "path to a JSON scenario file")
	duration := flag.Duration("duration", 60*time.Second, "total wall-clock run duration")
	report := flag.Duration("report", 5*time.Second, "interval between printed readouts")
	metricsAddr := flag.String("metrics-addr", "", "optional HTTP address for Prometheus /metrics")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Parse(*configPath)
	if err != nil {
		log.Error(ctx, "failed to load config", logging.String("error", err.Error()))
		os.Exit(1)
	}

	opts := []core.EngineOption{
		core.WithLogger(log),
		core.WithMaxSubSteps(cfg.MaxSubSteps),
		core.WithTrajectoryCapacity(cfg.TrajectoryCapacity),
		core.WithAllowedTimeScales(cfg.TimeScales),
	}
	if *metricsAddr != "" {
		collector, err := observability.NewEngineCollector(nil)
		if err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
			os.Exit(1)
		}
		opts = append(opts, core.WithMetrics(collector))
		serveMetrics(*metricsAddr, collector, log)
	}

	engine, err := core.NewPhysicsEngine(cfg.PrimaryBody(), cfg.Dt, opts...)
	if err != nil {
		log.Error(ctx, "failed to build engine", logging.String("error", err.Error()))
		os.Exit(1)
	}

	scenario := loadScenario(log, engine, *scenarioPath)
	if len(engine.BodyIDs()) == 0 {
		log.Error(ctx, "no bodies to simulate; pass -scenario")
		os.Exit(1)
	}

	driver := timectrl.NewDriver(engine, time.Duration(cfg.FrameMillis)*time.Millisecond, log)

	var lastReport time.Time
	driver.AddListener(func(now time.Time) {
		if now.Sub(lastReport) < *report {
			return
		}
		lastReport = now
		printReadouts(engine)
	})

	fmt.Printf("Running %q for %s at %.0fx (dt=%gs, %d bodies)\n",
		scenario.Name, *duration, engine.TimeScale(), engine.Dt(), len(engine.BodyIDs()))

	engine.Play()
	done := driver.Start(ctx, *duration)
	<-done

	printReadouts(engine)
	fmt.Printf("Simulation complete: %.0f simulated seconds elapsed.\n", engine.SimTime())
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
}

func loadScenario(log logging.Logger, engine *core.PhysicsEngine, path string) *core.Scenario {
	ctx := context.Background()
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	scenario, err := core.LoadScenario(engine, f)
	if err != nil {
		log.Error(ctx, "failed to load scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("name", scenario.Name),
		logging.Int("bodies", len(scenario.BodyIDs)))
	return scenario
}

func printReadouts(engine *core.PhysicsEngine) {
	fmt.Printf("t=%.0fs\n", engine.SimTime())
	for _, id := range engine.BodyIDs() {
		snap, err := engine.Snapshot(id)
		if errors.Is(err, core.ErrDegenerateOrbit) {
			st, stErr := engine.State(id)
			if stErr != nil {
				continue
			}
			fmt.Printf("  %-12s alt=%8.1f km  v=%7.1f m/s  elements: N/A (escape trajectory)\n",
				st.Name, st.Altitude/1000, st.Speed)
			continue
		}
		if err != nil {
			continue
		}
		fmt.Printf("  %-12s alt=%8.1f km  v=%7.1f m/s  a=%8.1f km  e=%.4f  T=%6.1f min\n",
			snap.Name, snap.Altitude/1000, snap.Speed,
			snap.Elements.SemiMajorAxis/1000, snap.Elements.Eccentricity,
			snap.Elements.Period/60)
	}
}
