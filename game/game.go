// Package game runs the bird decision core as a headless sanctuary simulation.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
	"github.com/pthm-cable/sanctuary/systems"
	"github.com/pthm-cable/sanctuary/telemetry"
)

// Options configures a sanctuary run.
type Options struct {
	Seed        int64
	StatsWindow float64 // seconds, 0 = use config
	OutputDir   string  // CSV output root, empty = disabled
	RunID       string  // empty = generated
	FactsDB     string  // SQLite fact journal path, empty = disabled
	LogStats    bool
}

// phase is one named step of the tick pipeline.
type phase struct {
	id  string
	run func()
}

// Sanctuary holds the complete simulation state.
type Sanctuary struct {
	cfg *config.Config
	rng *rand.Rand
	dt  float32

	species *systems.SpeciesTable
	actions systems.ActionTable
	scorer  systems.Scorer
	arbiter systems.Arbiter
	mover   *systems.MovementResolver

	flock     *Flock
	providers *systems.ProviderRegistry
	threats   *systems.ThreatField

	refills []refill
	patrols []patrol
	stale   int // providers removed since the last prune

	// Per-tick scratch
	facts      []telemetry.Fact
	candidates []systems.Candidate
	steering   []systems.Steering

	phases   *systems.SystemRegistry
	pipeline []phase

	// Telemetry
	collector     *telemetry.Collector
	sample        telemetry.FlockSample
	lifetimes     *telemetry.LifetimeTracker
	bookmarks     *telemetry.BookmarkDetector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	store         *telemetry.FactStore
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	tick int32
	now  float64
}

// NewSanctuary creates an empty sanctuary. Call SeedScenario to populate
// it from the scenario config section.
func NewSanctuary(cfg *config.Config, opts Options) (*Sanctuary, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		statsWindow = opts.StatsWindow
	}

	actions := systems.BuildActionTable(cfg)
	s := &Sanctuary{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		dt:        cfg.Derived.DT32,
		species:   systems.BuildSpeciesTable(cfg),
		actions:   actions,
		scorer:    systems.NewScorer(cfg, actions),
		arbiter:   systems.NewArbiter(cfg),
		mover:     systems.NewMovementResolver(cfg, opts.Seed),
		flock:     NewFlock(),
		providers: systems.NewProviderRegistry(cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(cfg.Physics.GridCellSize)),
		threats:   systems.NewThreatField(cfg),
		phases:    systems.NewSystemRegistry(),
		collector: telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		lifetimes: telemetry.NewLifetimeTracker(),
		bookmarks: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:  opts.LogStats,
	}

	s.pipeline = []phase{
		{telemetry.PhasePrune, s.updateProviders},
		{telemetry.PhaseAlerts, s.updateAlerts},
		{telemetry.PhaseNeeds, s.updateNeeds},
		{telemetry.PhaseThreats, s.updateThreats},
		{telemetry.PhaseInterrupt, s.updateInterrupts},
		{telemetry.PhaseValidate, s.validateTargets},
		{telemetry.PhaseServicing, s.updateServicing},
		{telemetry.PhaseArrival, s.updateArrivals},
		{telemetry.PhaseArbitration, s.updateArbitration},
		{telemetry.PhaseSteering, s.updateSteering},
		{telemetry.PhaseIntegration, s.updateIntegration},
		{telemetry.PhaseTelemetry, s.updateTelemetry},
	}
	for _, ph := range s.pipeline {
		if _, ok := s.phases.Get(ph.id); !ok {
			return nil, fmt.Errorf("phase %q missing from system registry", ph.id)
		}
	}

	runID := opts.RunID
	if runID == "" {
		runID = telemetry.NewRunID()
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir, runID)
	if err != nil {
		return nil, fmt.Errorf("output manager: %w", err)
	}
	s.output = output
	if err := s.output.WriteConfig(cfg); err != nil {
		s.output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	store, err := telemetry.OpenFactStore(opts.FactsDB, runID, cfg.Telemetry.FactBatchSize)
	if err != nil {
		s.output.Close()
		return nil, fmt.Errorf("fact store: %w", err)
	}
	s.store = store
	if err := s.store.SaveMeta("seed", fmt.Sprint(opts.Seed)); err != nil {
		slog.Error("failed to save run metadata", "error", err)
	}

	return s, nil
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (s *Sanctuary) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// Config returns the sanctuary's configuration.
func (s *Sanctuary) Config() *config.Config {
	return s.cfg
}

// Tick returns the number of completed steps.
func (s *Sanctuary) Tick() int32 {
	return s.tick
}

// Now returns the simulation time in seconds.
func (s *Sanctuary) Now() float64 {
	return s.now
}

// Facts returns the facts produced by the last Step.
// The slice is reused by the next Step.
func (s *Sanctuary) Facts() []telemetry.Fact {
	return s.facts
}

// Bird returns the bird with the given ID, or nil.
// The pointer is valid until the next spawn or despawn.
func (s *Sanctuary) Bird(id components.BirdID) *components.Bird {
	return s.flock.Get(id)
}

// BirdCount returns the number of birds.
func (s *Sanctuary) BirdCount() int {
	return s.flock.Len()
}

// Providers returns the provider registry.
func (s *Sanctuary) Providers() *systems.ProviderRegistry {
	return s.providers
}

// Threats returns the predator field.
func (s *Sanctuary) Threats() *systems.ThreatField {
	return s.threats
}

// Species returns the species table.
func (s *Sanctuary) Species() *systems.SpeciesTable {
	return s.species
}

// Lifetimes returns the per-bird lifetime tracker.
func (s *Sanctuary) Lifetimes() *telemetry.LifetimeTracker {
	return s.lifetimes
}

// Phases returns the tick phase metadata.
func (s *Sanctuary) Phases() *systems.SystemRegistry {
	return s.phases
}

// Close writes lifetime records for remaining birds and releases outputs.
func (s *Sanctuary) Close() error {
	ids := make([]components.BirdID, 0, s.flock.Len())
	for i := 0; i < s.flock.Len(); i++ {
		ids = append(ids, s.flock.At(i).ID)
	}
	slices.Sort(ids)
	for _, id := range ids {
		s.writeLifetime(id, s.flock.Get(id).Species)
	}

	var errs []error
	if err := s.store.SaveMeta("ticks", fmt.Sprint(s.tick)); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.output.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
