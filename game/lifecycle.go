package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
	"github.com/pthm-cable/sanctuary/systems"
	"github.com/pthm-cable/sanctuary/telemetry"
)

// refill restores a limited provider on a fixed schedule.
type refill struct {
	provider ecs.Entity
	every    float64
	next     float64
}

// patrol moves a predator around a circle during scheduled visits.
type patrol struct {
	cfg    config.ThreatConfig
	id     systems.ThreatID
	active bool
}

// SeedScenario populates the sanctuary from the scenario config section.
// Bird positions come from the seeded RNG.
func (s *Sanctuary) SeedScenario() {
	sc := &s.cfg.Scenario

	for _, pc := range sc.Providers {
		action, ok := components.ParseAction(pc.Action)
		if !ok {
			slog.Warn("unknown provider action in scenario", "action", pc.Action)
			continue
		}
		p := components.Provider{
			Action:      action,
			Kind:        pc.Kind,
			BaseUtility: float32(pc.BaseUtility),
			Range:       float32(pc.Range),
			Capacity:    float32(pc.Capacity),
			MaxCapacity: float32(pc.Capacity),
		}
		e := s.AddProvider(components.Position{X: float32(pc.X), Y: float32(pc.Y)}, p)
		if pc.RefillEvery > 0 && pc.Capacity > 0 {
			s.refills = append(s.refills, refill{provider: e, every: pc.RefillEvery, next: s.now + pc.RefillEvery})
		}
	}

	interval := s.cfg.Arbiter.DecisionInterval
	for _, bc := range sc.Birds {
		species, ok := s.species.Lookup(bc.Species)
		if !ok {
			slog.Warn("unknown species in scenario, using defaults", "species", bc.Species)
		}
		for i := 0; i < bc.Count; i++ {
			pos := components.Position{
				X: s.rng.Float32() * s.cfg.Derived.WorldW32,
				Y: s.rng.Float32() * s.cfg.Derived.WorldH32,
			}
			id := s.SpawnBird(species, pos)
			// Stagger first decisions so the flock doesn't arbitrate in lockstep
			b := s.flock.Get(id)
			b.NextDecision = s.now + interval*float64(id%16)/16
		}
	}

	for _, tc := range sc.Threats {
		s.patrols = append(s.patrols, patrol{cfg: tc})
	}

	slog.Info("scenario seeded",
		"birds", s.flock.Len(),
		"providers", s.providers.Len(),
		"patrols", len(s.patrols),
	)
}

// SpawnBird adds a bird at pos. It arbitrates on its next tick.
func (s *Sanctuary) SpawnBird(species components.SpeciesID, pos components.Position) components.BirdID {
	b := s.flock.Spawn(species, pos)
	b.NextDecision = s.now
	s.lifetimes.Register(b.ID, s.tick, species)
	return b.ID
}

// DespawnBird removes a bird and writes its lifetime record.
func (s *Sanctuary) DespawnBird(id components.BirdID) bool {
	b, ok := s.flock.Despawn(id)
	if !ok {
		return false
	}
	s.writeLifetime(id, b.Species)
	return true
}

// writeLifetime finalizes and outputs a bird's lifetime stats.
func (s *Sanctuary) writeLifetime(id components.BirdID, species components.SpeciesID) {
	stats := s.lifetimes.Remove(id)
	if stats == nil {
		return
	}
	if s.logStats {
		slog.Info("bird lifetime", "bird", id, "species", s.species.Get(species).Name, "stats", stats)
	}
	if err := s.output.WriteLifetime(telemetry.NewLifetimeRecord(id, s.species.Get(species).Name, stats)); err != nil {
		slog.Error("failed to write lifetime", "error", err)
	}
}

// AddProvider registers a utility provider and returns its handle.
func (s *Sanctuary) AddProvider(pos components.Position, p components.Provider) ecs.Entity {
	if p.MaxCapacity > 0 && p.Capacity > p.MaxCapacity {
		p.Capacity = p.MaxCapacity
	}
	return s.providers.Add(pos, p)
}

// RemoveProvider despawns a provider. Birds targeting it lose their target
// on their next tick.
func (s *Sanctuary) RemoveProvider(e ecs.Entity) bool {
	if !s.providers.Remove(e) {
		return false
	}
	s.stale++
	return true
}

// RefillProvider adds supply to a provider; amount <= 0 refills it fully.
func (s *Sanctuary) RefillProvider(e ecs.Entity, amount float32) bool {
	return s.providers.Refill(e, amount)
}

// AddThreat places a predator.
func (s *Sanctuary) AddThreat(pos components.Position) systems.ThreatID {
	return s.threats.Add(pos)
}

// MoveThreat relocates a predator.
func (s *Sanctuary) MoveThreat(id systems.ThreatID, pos components.Position) bool {
	return s.threats.Move(id, pos)
}

// RemoveThreat removes a predator.
func (s *Sanctuary) RemoveThreat(id systems.ThreatID) bool {
	return s.threats.Remove(id)
}

// updatePatrols adds, moves and removes scheduled predators.
func (s *Sanctuary) updatePatrols() {
	for i := range s.patrols {
		p := &s.patrols[i]
		present := p.present(s.now)
		switch {
		case present && !p.active:
			p.id = s.threats.Add(p.position(s.now))
			p.active = true
			slog.Debug("predator arrived", "tick", s.tick, "threat", p.id)
		case present:
			s.threats.Move(p.id, p.position(s.now))
		case p.active:
			s.threats.Remove(p.id)
			p.active = false
			slog.Debug("predator left", "tick", s.tick, "threat", p.id)
		}
	}
}

// present reports whether the patrol is in the sanctuary at time t.
func (p *patrol) present(t float64) bool {
	c := &p.cfg
	if t < c.Start {
		return false
	}
	if c.Duration <= 0 {
		return true
	}
	elapsed := t - c.Start
	if c.Every > 0 {
		elapsed = math.Mod(elapsed, c.Every)
	}
	return elapsed < c.Duration
}

// position returns the patrol's point on its circle at time t.
func (p *patrol) position(t float64) components.Position {
	c := &p.cfg
	angle := 0.0
	if c.Period > 0 {
		angle = 2 * math.Pi * (t - c.Start) / c.Period
	}
	return components.Position{
		X: float32(c.CenterX + c.Radius*math.Cos(angle)),
		Y: float32(c.CenterY + c.Radius*math.Sin(angle)),
	}
}

// updateRefills restores providers whose refill time has come.
// Schedules for removed providers are dropped.
func (s *Sanctuary) updateRefills() {
	kept := s.refills[:0]
	for _, r := range s.refills {
		if !s.providers.Alive(r.provider) {
			continue
		}
		if s.now >= r.next {
			s.providers.Refill(r.provider, 0)
			r.next += r.every
		}
		kept = append(kept, r)
	}
	s.refills = kept
}
