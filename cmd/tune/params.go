package main

import (
	"github.com/pthm-cable/sanctuary/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of decision-core parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Arbiter
			{Name: "switch_threshold", Path: "arbiter.switch_threshold", Min: 0.5, Max: 0.98, Default: 0.8},
			{Name: "min_score", Path: "arbiter.min_score", Min: 0.001, Max: 0.1, Default: 0.01},
			{Name: "decision_interval", Path: "arbiter.decision_interval", Min: 0.1, Max: 2.0, Default: 0.5},
			// Scoring
			{Name: "pressure_exponent", Path: "scoring.pressure_exponent", Min: 1.0, Max: 4.0, Default: 2.0},
			{Name: "falloff_floor", Path: "scoring.falloff_floor", Min: 0.01, Max: 0.5, Default: 0.05},
			// Behavior
			{Name: "panic_threshold", Path: "behavior.panic_threshold", Min: 0.15, Max: 0.8, Default: 0.3},
			{Name: "satisfied_level", Path: "behavior.satisfied_level", Min: 0.02, Max: 0.4, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Arbiter.SwitchThreshold = clamped[0]
	cfg.Arbiter.MinScore = clamped[1]
	cfg.Arbiter.DecisionInterval = clamped[2]

	cfg.Scoring.PressureExponent = clamped[3]
	cfg.Scoring.FalloffFloor = clamped[4]

	cfg.Behavior.PanicThreshold = clamped[5]
	cfg.Behavior.SatisfiedLevel = clamped[6]

	cfg.Refresh()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Arbiter.SwitchThreshold,
		cfg.Arbiter.MinScore,
		cfg.Arbiter.DecisionInterval,
		cfg.Scoring.PressureExponent,
		cfg.Scoring.FalloffFloor,
		cfg.Behavior.PanicThreshold,
		cfg.Behavior.SatisfiedLevel,
	}
}
