package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	eat, ok := cfg.Actions["eat"]
	if !ok {
		t.Fatal("defaults missing eat action")
	}
	if eat.RestoreRate <= 0 || eat.ConsumeRate <= 0 {
		t.Errorf("eat defaults: %+v", eat)
	}
	if cfg.Derived.DT32 <= 0 {
		t.Errorf("derived dt not computed: %v", cfg.Derived.DT32)
	}
}

func TestLoad_PartialActionOverride(t *testing.T) {
	defaults, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	path := writeConfig(t, "actions:\n  eat:\n    cooldown: 5\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := defaults.Actions["eat"]
	want.Cooldown = 5
	if got := cfg.Actions["eat"]; got != want {
		t.Errorf("eat: got %+v, want %+v", got, want)
	}
	// Untouched actions keep their defaults
	if got, want := cfg.Actions["play"], defaults.Actions["play"]; got != want {
		t.Errorf("play: got %+v, want %+v", got, want)
	}
	if !cfg.Actions["play"].Inverse {
		t.Error("play lost its inverse flag")
	}
}

func TestLoad_NewActionEntry(t *testing.T) {
	path := writeConfig(t, "actions:\n  forage:\n    need: hunger\n    restore_rate: 0.2\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Actions["forage"]; got.Need != "hunger" || got.RestoreRate != 0.2 {
		t.Errorf("forage: got %+v", got)
	}
	if _, ok := cfg.Actions["eat"]; !ok {
		t.Error("defaults dropped when adding a new action")
	}
}

func TestLoad_ScalarOverride(t *testing.T) {
	defaults, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	path := writeConfig(t, "arbiter:\n  switch_threshold: 0.9\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Arbiter.SwitchThreshold != 0.9 {
		t.Errorf("switch_threshold: got %v", cfg.Arbiter.SwitchThreshold)
	}
	if cfg.Arbiter.DecisionInterval != defaults.Arbiter.DecisionInterval {
		t.Errorf("decision_interval changed: got %v, want %v",
			cfg.Arbiter.DecisionInterval, defaults.Arbiter.DecisionInterval)
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := MustLoad("")
	clone := cfg.Clone()

	eat := clone.Actions["eat"]
	eat.Cooldown = 99
	clone.Actions["eat"] = eat
	clone.Arbiter.MinScore = 0.5

	if cfg.Actions["eat"].Cooldown == 99 || cfg.Arbiter.MinScore == 0.5 {
		t.Error("mutating the clone changed the original")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
