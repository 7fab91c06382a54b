// Package config holds the runtime configuration shared by the simulator
// binaries. Scenario files (which bodies to create) are separate JSON
// documents handled by core.LoadScenario; this package covers everything
// else: integration step, frame pacing, time scales, the primary, and
// listen addresses.
package config

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"

	"github.com/signalsfoundry/orbital-simulator/model"
)

// PrimaryConfig describes the central attracting body.
type PrimaryConfig struct {
	Name   string  `toml:"name"`
	Mass   float64 `toml:"mass"`   // kg
	Radius float64 `toml:"radius"` // metres
}

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Dt is the fixed physical step in seconds.
	Dt float64 `toml:"dt"`
	// MaxSubSteps bounds physics work per rendered frame.
	MaxSubSteps int `toml:"max_substeps"`
	// FrameMillis is the frame-loop tick interval in milliseconds.
	FrameMillis int `toml:"frame_millis"`
	// TrajectoryCapacity is the per-body trajectory history bound.
	TrajectoryCapacity int `toml:"trajectory_capacity"`

	// TimeScales is the selectable multiplier set. The first entry is the
	// startup selection. Empty means any positive finite value is accepted.
	TimeScales []float64 `toml:"time_scales"`

	Primary PrimaryConfig `toml:"primary"`

	// HTTPAddr is where orbitd serves its JSON API and websocket stream.
	HTTPAddr string `toml:"http_addr"`
	// MetricsAddr is where Prometheus metrics are served. Empty disables.
	MetricsAddr string `toml:"metrics_addr"`
}

// Default returns the stock parameters: Earth as the primary, dt = 0.1 s,
// and the control panel's time-scale ladder.
func Default() *Config {
	return &Config{
		Dt:                 model.DefaultTimeStep,
		MaxSubSteps:        50,
		FrameMillis:        16,
		TrajectoryCapacity: 1000,
		TimeScales:         []float64{360, 720, 1440, 2880},
		Primary: PrimaryConfig{
			Name:   "Earth",
			Mass:   model.EarthMass,
			Radius: model.EarthRadius,
		},
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// Parse reads the TOML config file at path over the defaults. An empty path
// returns the defaults untouched.
func Parse(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine would refuse anyway, with
// friendlier messages.
func (c *Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt %v must be positive and finite", c.Dt)
	}
	if c.MaxSubSteps <= 0 {
		return fmt.Errorf("max_substeps %d must be positive", c.MaxSubSteps)
	}
	if c.FrameMillis <= 0 {
		return fmt.Errorf("frame_millis %d must be positive", c.FrameMillis)
	}
	if c.Primary.Mass <= 0 {
		return fmt.Errorf("primary mass %v must be positive", c.Primary.Mass)
	}
	if c.Primary.Radius < 0 {
		return fmt.Errorf("primary radius %v must be non-negative", c.Primary.Radius)
	}
	for _, s := range c.TimeScales {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("time scale %v must be positive and finite", s)
		}
	}
	return nil
}

// PrimaryBody converts the primary section into the engine's model type.
func (c *Config) PrimaryBody() model.Primary {
	return model.Primary{
		Name:   c.Primary.Name,
		Mass:   c.Primary.Mass,
		Radius: c.Primary.Radius,
	}
}
