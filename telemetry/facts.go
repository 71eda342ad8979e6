// Package telemetry provides sanctuary observation: per-tick facts, window
// stats, bookmarks, perf tracking and output sinks.
package telemetry

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sanctuary/components"
)

// FactType identifies what happened.
type FactType uint8

const (
	FactStateChanged FactType = iota
	FactTargetChosen
	FactRetargeted
	FactTargetLost
	FactActionStarted
	FactActionCompleted
	FactNeedSatisfied
	FactPanicked
	FactCalmed
	FactProviderDepleted
	NumFactTypes
)

var factNames = [NumFactTypes]string{
	"state_changed",
	"target_chosen",
	"retargeted",
	"target_lost",
	"action_started",
	"action_completed",
	"need_satisfied",
	"panicked",
	"calmed",
	"provider_depleted",
}

func (t FactType) String() string {
	if t < NumFactTypes {
		return factNames[t]
	}
	return "unknown"
}

// Fact is one observation produced during a tick. Collaborators read facts
// after the tick; the decision core never calls into them.
type Fact struct {
	Type    FactType
	Tick    int32
	BirdID  components.BirdID
	Species components.SpeciesID

	// Optional fields depending on fact type
	Provider    uint32 // provider entity id, 0 when none
	ProviderGen uint32 // generation of the provider handle; slots are reused
	Action      components.Action
	From        components.State
	To          components.State
	Need        components.Need
	Amount      float32 // need reduction, fear level or remaining supply
}

// NewStateChangedFact records a state transition.
func NewStateChangedFact(tick int32, b *components.Bird, from, to components.State) Fact {
	return Fact{
		Type:    FactStateChanged,
		Tick:    tick,
		BirdID:  b.ID,
		Species: b.Species,
		Action:  b.TargetAction,
		From:    from,
		To:      to,
	}
}

// NewTargetChosenFact records a fresh target selection.
// Retargeted is set when the bird abandoned a previous target for it.
func NewTargetChosenFact(tick int32, b *components.Bird, provider ecs.Entity, action components.Action, score float32, retargeted bool) Fact {
	t := FactTargetChosen
	if retargeted {
		t = FactRetargeted
	}
	return Fact{
		Type:        t,
		Tick:        tick,
		BirdID:      b.ID,
		Species:     b.Species,
		Provider:    provider.ID(),
		ProviderGen: provider.Gen(),
		Action:      action,
		Amount:      score,
	}
}

// NewTargetLostFact records a target that was removed or depleted.
func NewTargetLostFact(tick int32, b *components.Bird, provider ecs.Entity) Fact {
	return Fact{
		Type:        FactTargetLost,
		Tick:        tick,
		BirdID:      b.ID,
		Species:     b.Species,
		Provider:    provider.ID(),
		ProviderGen: provider.Gen(),
		Action:      b.TargetAction,
	}
}

// NewActionStartedFact records a bird beginning to use a provider.
func NewActionStartedFact(tick int32, b *components.Bird, provider ecs.Entity) Fact {
	return Fact{
		Type:        FactActionStarted,
		Tick:        tick,
		BirdID:      b.ID,
		Species:     b.Species,
		Provider:    provider.ID(),
		ProviderGen: provider.Gen(),
		Action:      b.TargetAction,
	}
}

// NewActionCompletedFact records a finished activity and the total need
// reduction it delivered.
func NewActionCompletedFact(tick int32, b *components.Bird, provider ecs.Entity, action components.Action, serviced float32) Fact {
	return Fact{
		Type:        FactActionCompleted,
		Tick:        tick,
		BirdID:      b.ID,
		Species:     b.Species,
		Provider:    provider.ID(),
		ProviderGen: provider.Gen(),
		Action:      action,
		Amount:      serviced,
	}
}

// NewNeedSatisfiedFact records a need reaching the satisfied level.
func NewNeedSatisfiedFact(tick int32, b *components.Bird, need components.Need, level float32) Fact {
	return Fact{
		Type:    FactNeedSatisfied,
		Tick:    tick,
		BirdID:  b.ID,
		Species: b.Species,
		Need:    need,
		Amount:  level,
	}
}

// NewPanickedFact records a bird entering Fleeing.
func NewPanickedFact(tick int32, b *components.Bird) Fact {
	return Fact{
		Type:    FactPanicked,
		Tick:    tick,
		BirdID:  b.ID,
		Species: b.Species,
		Need:    components.NeedFear,
		Amount:  b.Needs[components.NeedFear],
	}
}

// NewCalmedFact records a bird leaving Fleeing.
func NewCalmedFact(tick int32, b *components.Bird) Fact {
	return Fact{
		Type:    FactCalmed,
		Tick:    tick,
		BirdID:  b.ID,
		Species: b.Species,
		Need:    components.NeedFear,
		Amount:  b.Needs[components.NeedFear],
	}
}

// NewProviderDepletedFact records a provider running out of supply.
// BirdID is the bird whose use emptied it.
func NewProviderDepletedFact(tick int32, b *components.Bird, provider ecs.Entity, action components.Action) Fact {
	return Fact{
		Type:        FactProviderDepleted,
		Tick:        tick,
		BirdID:      b.ID,
		Species:     b.Species,
		Provider:    provider.ID(),
		ProviderGen: provider.Gen(),
		Action:      action,
	}
}
