// Package config holds the run-time fit configuration. What the reference
// implementation toggled at compile time (stress fitting, adaptive force
// weighting, contribution masking, distributed execution) is an explicit
// field here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/objective"
)

// #region fit-config
// FitConfig bundles every switch and weight of one fitting run.
type FitConfig struct {
	// EnergyWeight scales squared energy residuals globally.
	EnergyWeight float64 `yaml:"energy_weight"`

	// StressWeight scales squared stress residuals globally.
	StressWeight float64 `yaml:"stress_weight"`

	// StressFitting enables stress residuals for configurations that carry
	// reference stresses.
	StressFitting bool `yaml:"stress_fitting"`

	// AdaptiveForceWeighting scales each atom's force residual by
	// 1/(force_epsilon + reference force magnitude).
	AdaptiveForceWeighting bool `yaml:"adaptive_force_weighting"`

	// ForceEpsilon guards the adaptive weighting near zero reference force.
	ForceEpsilon float64 `yaml:"force_epsilon"`

	// ContributionMasking restricts force residuals to atoms flagged as
	// contributing.
	ContributionMasking bool `yaml:"contribution_masking"`

	// Distributed enables the worker collective. With Distributed false or
	// Workers <= 1 the coordinator evaluates everything itself.
	Distributed bool `yaml:"distributed"`

	// Workers is the fixed worker count of the collective.
	Workers int `yaml:"workers"`
}

// DefaultFitConfig returns the settings of a plain serial energy+force fit.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		EnergyWeight: 1.0,
		StressWeight: 1.0,
		ForceEpsilon: 0.1,
		Workers:      1,
	}
}

// ObjectiveOptions projects the residual-relevant fields.
func (c FitConfig) ObjectiveOptions() objective.Options {
	return objective.Options{
		EnergyWeight:           c.EnergyWeight,
		StressWeight:           c.StressWeight,
		StressFitting:          c.StressFitting,
		AdaptiveForceWeighting: c.AdaptiveForceWeighting,
		ForceEpsilon:           c.ForceEpsilon,
		ContributionMasking:    c.ContributionMasking,
	}
}

// Validate rejects configurations the evaluation loop cannot run.
func (c FitConfig) Validate() error {
	if c.EnergyWeight < 0 || c.StressWeight < 0 {
		return fmt.Errorf("config: residual weights must be non-negative")
	}
	if c.AdaptiveForceWeighting && c.ForceEpsilon <= 0 {
		return fmt.Errorf("config: adaptive force weighting needs force_epsilon > 0")
	}
	if c.Distributed && c.Workers < 1 {
		return fmt.Errorf("config: distributed mode needs workers >= 1")
	}
	return nil
}

// #endregion fit-config

// #region load
// Load reads a FitConfig from a YAML file, starting from defaults so a
// partial file only overrides what it names.
func Load(path string) (FitConfig, error) {
	cfg := DefaultFitConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// #endregion load
