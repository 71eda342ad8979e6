package systems

import (
	"math"

	"github.com/pthm-cable/sanctuary/components"
)

// TickNeeds advances a bird's drives by dt seconds.
// Hunger, thirst and energy deficit grow linearly at the species rates;
// fear decays exponentially toward zero. All levels stay in [0,1].
func TickNeeds(b *components.Bird, sp *SpeciesProfile, dt float32) {
	if !(dt > 0) {
		return
	}
	n := &b.Needs
	n[components.NeedHunger] = clamp01(n[components.NeedHunger] + sp.Rates[components.NeedHunger]*dt)
	n[components.NeedThirst] = clamp01(n[components.NeedThirst] + sp.Rates[components.NeedThirst]*dt)
	n[components.NeedEnergy] = clamp01(n[components.NeedEnergy] + sp.Rates[components.NeedEnergy]*dt)

	decay := sp.Rates[components.NeedFear]
	if decay > 0 {
		n[components.NeedFear] = clamp01(n[components.NeedFear] * float32(math.Exp(-float64(decay*dt))))
	} else {
		n[components.NeedFear] = clamp01(n[components.NeedFear])
	}
}

// Satisfy reduces a need by amount, clamped at 0, and returns the
// reduction actually applied. Negative amounts are ignored.
func Satisfy(b *components.Bird, need components.Need, amount float32) float32 {
	if need >= components.NumNeeds || !(amount > 0) {
		return 0
	}
	before := b.Needs[need]
	after := before - amount
	if after < 0 {
		after = 0
	}
	b.Needs[need] = after
	return before - after
}

// RaiseFear adds to a bird's fear, clamped at 1.
func RaiseFear(b *components.Bird, amount float32) {
	if !(amount > 0) {
		return
	}
	b.Needs[components.NeedFear] = clamp01(b.Needs[components.NeedFear] + amount)
}
