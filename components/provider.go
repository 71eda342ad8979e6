package components

// Provider is a world object offering one action to nearby birds.
type Provider struct {
	Action      Action
	Kind        string  // feeder kind ("seed", "nectar", ...); empty for non-feeders
	BaseUtility float32 // desirability before supply scaling
	Range       float32 // effective interaction radius

	// Supply. MaxCapacity == 0 means the provider never runs out.
	Capacity    float32
	MaxCapacity float32
}

// Unlimited reports whether the provider has no supply limit.
func (p *Provider) Unlimited() bool {
	return p.MaxCapacity <= 0
}

// Depleted reports whether a limited provider has nothing left.
func (p *Provider) Depleted() bool {
	return !p.Unlimited() && p.Capacity <= 0
}

// EffectiveUtility returns the base utility scaled by remaining supply.
// Never negative.
func (p *Provider) EffectiveUtility() float32 {
	u := p.BaseUtility
	if !p.Unlimited() {
		fill := p.Capacity / p.MaxCapacity
		if fill > 1 {
			fill = 1
		}
		u *= fill
	}
	if u < 0 {
		return 0
	}
	return u
}
