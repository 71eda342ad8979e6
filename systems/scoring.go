package systems

import (
	"math"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
)

// NeedPressure maps a need level to motivation: level^k with k >= 1, so a
// nearly satisfied need produces almost no pull.
func NeedPressure(level, k float32) float32 {
	level = clamp01(level)
	if !(k >= 1) {
		k = 1
	}
	if k == 1 {
		return level
	}
	if k == 2 {
		return level * level
	}
	return float32(math.Pow(float64(level), float64(k)))
}

// DistanceFalloff is linear from 1 at distance 0 down to floor at rng.
// Beyond rng, and for non-positive or NaN ranges, it is 0.
func DistanceFalloff(d, rng, floor float32) float32 {
	if !(rng > 0) || math.IsInf(float64(rng), 0) {
		return 0
	}
	if math.IsNaN(float64(d)) {
		return 0
	}
	if d < 0 {
		d = 0
	}
	if d > rng {
		return 0
	}
	floor = clamp01(floor)
	return 1 - (1-floor)*(d/rng)
}

// Scorer computes utility scores. It holds only immutable tables and is
// safe to share between birds.
type Scorer struct {
	Actions          ActionTable
	PressureExponent float32
	FalloffFloor     float32
}

// NewScorer builds a scorer from config.
func NewScorer(cfg *config.Config, actions ActionTable) Scorer {
	return Scorer{
		Actions:          actions,
		PressureExponent: float32(cfg.Scoring.PressureExponent),
		FalloffFloor:     float32(cfg.Scoring.FalloffFloor),
	}
}

// Pressure returns the bird's motivation toward an action, before any
// provider or distance terms.
func (s *Scorer) Pressure(b *components.Bird, a components.Action) float32 {
	if a >= components.NumActions {
		return 0
	}
	prof := &s.Actions[a]
	if prof.Need >= components.NumNeeds {
		return 0
	}
	level := clamp01(b.Needs[prof.Need])
	if prof.Inverse {
		level = 1 - level
	}
	return NeedPressure(level, s.PressureExponent) * prof.Weight
}

// Score rates one (bird, provider) pairing at the given distance:
//
//	pressure(need) * effective utility * falloff(distance, range) * affinity
//
// Affinity includes the species' preference for the provider kind.
// Degenerate inputs score 0. Score does not mutate its arguments.
func (s *Scorer) Score(b *components.Bird, sp *SpeciesProfile, p *components.Provider, dist float32) float32 {
	if p.Action >= components.NumActions || p.Depleted() {
		return 0
	}
	pressure := s.Pressure(b, p.Action)
	if !(pressure > 0) {
		return 0
	}
	util := p.EffectiveUtility()
	if !(util > 0) {
		return 0
	}
	falloff := DistanceFalloff(dist, p.Range, s.FalloffFloor)
	if falloff == 0 {
		return 0
	}
	affinity := sp.Affinity[p.Action] * sp.FoodPreference(p.Kind)
	if !(affinity > 0) {
		return 0
	}

	score := pressure * util * falloff * affinity
	if !(score > 0) || math.IsInf(float64(score), 1) {
		return 0
	}
	return score
}

// Candidates scores every live provider the bird can perceive and appends
// the positive ones to dst. Cooldowns are left to the arbiter.
func (s *Scorer) Candidates(dst []Candidate, reg *ProviderRegistry, b *components.Bird, sp *SpeciesProfile) []Candidate {
	radius := sp.PerceptionRadius
	for a := components.Action(0); a < components.NumActions; a++ {
		if !(s.Pressure(b, a) > 0) || !(sp.Affinity[a] > 0) {
			continue
		}
		for hit := range reg.Query(b.Pos, a, radius) {
			score := s.Score(b, sp, &hit.Provider, hit.Distance)
			if score <= 0 {
				continue
			}
			dst = append(dst, Candidate{
				Provider: hit.Entity,
				Action:   a,
				Pos:      hit.Pos,
				Distance: hit.Distance,
				Score:    score,
			})
		}
	}
	return dst
}
