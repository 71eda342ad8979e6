package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/sanctuary/config"
	"github.com/pthm-cable/sanctuary/telemetry"
)

func TestParamVector_ApplyAndExtract(t *testing.T) {
	pv := NewParamVector()
	cfg := config.MustLoad("")

	if got := pv.ExtractFromConfig(cfg); len(got) != pv.Dim() {
		t.Fatalf("extract length %d, dim %d", len(got), pv.Dim())
	}

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = spec.Max + 1 // out of range on purpose
	}
	pv.ApplyToConfig(cfg, values)

	for i, v := range pv.ExtractFromConfig(cfg) {
		if v != pv.Specs[i].Max {
			t.Errorf("%s: got %v, want clamped to %v", pv.Specs[i].Name, v, pv.Specs[i].Max)
		}
	}
}

func TestParamVector_DefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	for i, v := range pv.Normalize(pv.DefaultVector()) {
		if v < 0 || v > 1 {
			t.Errorf("%s default normalizes to %v", pv.Specs[i].Name, v)
		}
	}
}

func TestComputeScore(t *testing.T) {
	t.Run("too few windows", func(t *testing.T) {
		if got := computeScore(nil).Fitness(); got <= 0 {
			t.Errorf("empty run should score worst, got %v", got)
		}
	})

	t.Run("churn and unmet", func(t *testing.T) {
		w := telemetry.WindowStats{Birds: 10, Wandering: 5, Retargets: 20, HungerMean: 0.3, ThirstMean: 0.3, EnergyMean: 0.3}
		windows := []telemetry.WindowStats{w, w, w, w}
		s := computeScore(windows)

		if math.Abs(s.Unmet-0.3) > 1e-9 {
			t.Errorf("Unmet: got %v, want 0.3", s.Unmet)
		}
		if math.Abs(s.Churn-2) > 1e-9 {
			t.Errorf("Churn: got %v, want 2", s.Churn)
		}
		if math.Abs(s.Idle-0.5) > 1e-9 {
			t.Errorf("Idle: got %v, want 0.5", s.Idle)
		}
		if s.Stability > 1e-9 {
			t.Errorf("constant hunger should be perfectly stable, got %v", s.Stability)
		}
	})

	t.Run("less churn is better", func(t *testing.T) {
		calm := telemetry.WindowStats{Birds: 10, Retargets: 1, HungerMean: 0.3}
		busy := calm
		busy.Retargets = 30
		a := computeScore([]telemetry.WindowStats{calm, calm, calm, calm}).Fitness()
		b := computeScore([]telemetry.WindowStats{busy, busy, busy, busy}).Fitness()
		if a >= b {
			t.Errorf("calm flock should score lower: %v vs %v", a, b)
		}
	})
}
