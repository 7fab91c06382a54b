// Command orbitd is the long-running simulation daemon: it hosts the physics
// engine behind the HTTP JSON API and websocket stream, serves Prometheus
// metrics, and drives the frame loop until interrupted.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/orbital-simulator/core"
	"github.com/signalsfoundry/orbital-simulator/internal/api"
	"github.com/signalsfoundry/orbital-simulator/internal/config"
	"github.com/signalsfoundry/orbital-simulator/internal/logging"
	"github.com/signalsfoundry/orbital-simulator/internal/observability"
	"github.com/signalsfoundry/orbital-simulator/timectrl"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (empty for defaults)")
	scenarioPath := flag.String("scenario", "", "optional JSON scenario loaded at startup")
	httpAddr := flag.String("http-addr", "", "override the configured API listen address")
	metricsAddr := flag.String("metrics-addr", "", "override the configured metrics address")
	autoplay := flag.Bool("autoplay", false, "start the clock running instead of paused")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Parse(*configPath)
	if err != nil {
		log.Error(ctx, "failed to load config", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	engine, err := core.NewPhysicsEngine(cfg.PrimaryBody(), cfg.Dt,
		core.WithLogger(log),
		core.WithMetrics(collector),
		core.WithMaxSubSteps(cfg.MaxSubSteps),
		core.WithTrajectoryCapacity(cfg.TrajectoryCapacity),
		core.WithAllowedTimeScales(cfg.TimeScales),
	)
	if err != nil {
		log.Error(ctx, "failed to build engine", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if *scenarioPath != "" {
		loadScenario(log, engine, *scenarioPath)
	}
	if *autoplay {
		engine.Play()
	}

	metricsSrv := serveMetrics(cfg.MetricsAddr, collector, log)

	apiSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewServer(engine, log).Routes(),
	}
	go func() {
		log.Info(ctx, "serving simulation API", logging.String("addr", cfg.HTTPAddr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "API server exited", logging.String("error", err.Error()))
		}
	}()

	loopCtx, cancelLoop := context.WithCancel(ctx)
	driver := timectrl.NewDriver(engine, time.Duration(cfg.FrameMillis)*time.Millisecond, log)
	done := driver.Start(loopCtx, 0)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down orbitd")
	cancelLoop()
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func loadScenario(log logging.Logger, engine *core.PhysicsEngine, path string) {
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
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
