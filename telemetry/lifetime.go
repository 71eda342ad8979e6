package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/sanctuary/components"
)

// LifetimeStats tracks per-bird statistics from spawn to despawn.
type LifetimeStats struct {
	SpawnTick int32
	Species   components.SpeciesID
	AgeSec    float32

	// Decisions
	TargetsChosen int
	Retargets     int
	TargetsLost   int
	Completions   [components.NumActions]int
	Panics        int

	// Need reduction received, per need
	Served [components.NumNeeds]float32

	// Peaks
	PeakHunger float32
	PeakFear   float32
}

// LogValue implements slog.LogValuer for structured logging.
func (s *LifetimeStats) LogValue() slog.Value {
	total := 0
	for _, c := range s.Completions {
		total += c
	}
	return slog.GroupValue(
		slog.Int("spawn_tick", int(s.SpawnTick)),
		slog.Float64("age_sec", float64(s.AgeSec)),
		slog.Int("targets_chosen", s.TargetsChosen),
		slog.Int("retargets", s.Retargets),
		slog.Int("targets_lost", s.TargetsLost),
		slog.Int("completed", total),
		slog.Int("panics", s.Panics),
		slog.Float64("hunger_served", float64(s.Served[components.NeedHunger])),
		slog.Float64("peak_hunger", float64(s.PeakHunger)),
		slog.Float64("peak_fear", float64(s.PeakFear)),
	)
}

// LifetimeTracker manages per-bird lifetime statistics.
type LifetimeTracker struct {
	stats map[components.BirdID]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[components.BirdID]*LifetimeStats),
	}
}

// Register creates lifetime stats for a newly spawned bird.
func (lt *LifetimeTracker) Register(id components.BirdID, spawnTick int32, species components.SpeciesID) {
	lt.stats[id] = &LifetimeStats{
		SpawnTick: spawnTick,
		Species:   species,
	}
}

// Get returns the lifetime stats for a bird, or nil if not found.
func (lt *LifetimeTracker) Get(id components.BirdID) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes a bird's stats and returns them (for logging).
func (lt *LifetimeTracker) Remove(id components.BirdID) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// Record applies a fact to the bird it concerns.
func (lt *LifetimeTracker) Record(f Fact) {
	s := lt.stats[f.BirdID]
	if s == nil {
		return
	}
	switch f.Type {
	case FactTargetChosen:
		s.TargetsChosen++
	case FactRetargeted:
		s.TargetsChosen++
		s.Retargets++
	case FactTargetLost:
		s.TargetsLost++
	case FactActionCompleted:
		if f.Action < components.NumActions {
			s.Completions[f.Action]++
		}
	case FactPanicked:
		s.Panics++
	}
}

// RecordServed adds need reduction received by a bird.
func (lt *LifetimeTracker) RecordServed(id components.BirdID, need components.Need, amount float32) {
	if s := lt.stats[id]; s != nil && need < components.NumNeeds {
		s.Served[need] += amount
	}
}

// UpdateNeeds tracks peak hunger and fear.
func (lt *LifetimeTracker) UpdateNeeds(id components.BirdID, needs *components.Needs) {
	if s := lt.stats[id]; s != nil {
		if h := needs[components.NeedHunger]; h > s.PeakHunger {
			s.PeakHunger = h
		}
		if f := needs[components.NeedFear]; f > s.PeakFear {
			s.PeakFear = f
		}
	}
}

// UpdateAge updates the bird's age based on current tick.
func (lt *LifetimeTracker) UpdateAge(id components.BirdID, currentTick int32, dt float32) {
	if s := lt.stats[id]; s != nil {
		s.AgeSec = float32(currentTick-s.SpawnTick) * dt
	}
}

// All returns all tracked stats.
func (lt *LifetimeTracker) All() map[components.BirdID]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked birds.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
