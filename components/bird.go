package components

import "github.com/mlange-42/ark/ecs"

// BirdID is a stable identifier for a bird. Zero is never assigned.
type BirdID uint32

// SpeciesID indexes the species table built at startup.
type SpeciesID uint8

// Bird holds the decision state of one autonomous bird.
// The target is a non-owning provider handle that must be revalidated
// against the registry before use.
type Bird struct {
	ID      BirdID
	Species SpeciesID

	Pos Position
	Vel Velocity

	Needs Needs
	State State

	Target       ecs.Entity // zero entity = no target
	TargetAction Action

	StateTime float32 // seconds spent in the current state
	Serviced  float32 // need reduction accumulated during the current activity

	// Cooldowns holds, per action, the sim time (seconds) until which the
	// action is suppressed for this bird.
	Cooldowns [NumActions]float64

	NextDecision float64 // sim time of the next scheduled arbitration

	// Last known threat position, used for flee steering.
	Threat    Position
	HasThreat bool

	// Fear queued by alert calls from other birds, applied next tick.
	PendingAlarm float32
}

// HasTarget reports whether the bird currently references a provider.
func (b *Bird) HasTarget() bool {
	return !b.Target.IsZero()
}

// ClearTarget drops the bird's provider reference.
func (b *Bird) ClearTarget() {
	b.Target = ecs.Entity{}
	b.TargetAction = ActionNone
}

// InCooldown reports whether the action is suppressed at the given sim time.
func (b *Bird) InCooldown(a Action, now float64) bool {
	if a >= NumActions {
		return false
	}
	return now < b.Cooldowns[a]
}
