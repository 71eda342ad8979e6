package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
)

// Candidate is one scored (action, provider) option for a bird.
type Candidate struct {
	Provider ecs.Entity
	Action   components.Action
	Pos      components.Position
	Distance float32
	Score    float32
}

// Decision is the arbiter's result. Found is false when nothing scored
// above the minimum; Kept is true when hysteresis held the current target.
type Decision struct {
	Candidate
	Found bool
	Kept  bool
}

// Arbiter picks one candidate per decision cycle.
type Arbiter struct {
	// SwitchThreshold is the fraction of the best score the current target
	// must retain to be kept.
	SwitchThreshold float32
	// MinScore is the score a candidate must exceed to be chosen at all.
	MinScore float32
}

// NewArbiter builds an arbiter from config.
func NewArbiter(cfg *config.Config) Arbiter {
	return Arbiter{
		SwitchThreshold: float32(cfg.Arbiter.SwitchThreshold),
		MinScore:        float32(cfg.Arbiter.MinScore),
	}
}

// Arbitrate selects the bird's next action among candidates.
//
// Actions in cooldown score 0. The best candidate is the highest score,
// then the closest, then the lowest species priority rank, then the lowest
// provider id. If the bird's current target is among the candidates and
// still scores at least SwitchThreshold of the best, it is kept.
// Arbitrate is deterministic and does not modify the bird or candidates.
func (a Arbiter) Arbitrate(b *components.Bird, sp *SpeciesProfile, candidates []Candidate, now float64) Decision {
	var best, current Candidate
	haveBest, haveCurrent := false, false

	for _, c := range candidates {
		if c.Action >= components.NumActions {
			continue
		}
		if b.InCooldown(c.Action, now) || !(c.Score > 0) {
			c.Score = 0
		}
		if b.HasTarget() && c.Provider == b.Target && c.Action == b.TargetAction {
			current, haveCurrent = c, true
		}
		if c.Score <= 0 {
			continue
		}
		if !haveBest || better(c, best, sp) {
			best, haveBest = c, true
		}
	}

	if !haveBest || best.Score <= a.MinScore {
		return Decision{}
	}
	if haveCurrent && current.Score > 0 && current.Score >= best.Score*a.SwitchThreshold {
		return Decision{Candidate: current, Found: true, Kept: true}
	}
	return Decision{Candidate: best, Found: true}
}

// better reports whether x beats y.
func better(x, y Candidate, sp *SpeciesProfile) bool {
	if x.Score != y.Score {
		return x.Score > y.Score
	}
	if x.Distance != y.Distance {
		return x.Distance < y.Distance
	}
	if x.Action != y.Action {
		return sp.Rank[x.Action] < sp.Rank[y.Action]
	}
	return x.Provider.ID() < y.Provider.ID()
}
