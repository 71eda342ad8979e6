package game

import (
	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/systems"
	"github.com/pthm-cable/sanctuary/telemetry"
)

// Step advances the sanctuary by one tick.
// Facts produced during the tick are available from Facts until the next Step.
func (s *Sanctuary) Step() {
	s.tick++
	s.now = float64(s.tick) * s.cfg.Physics.DT
	s.facts = s.facts[:0]

	s.perf.StartTick()
	for _, ph := range s.pipeline {
		s.perf.StartPhase(ph.id)
		ph.run()
	}
	s.perf.EndTick()
}

// emit appends a fact to this tick's outbox.
func (s *Sanctuary) emit(f telemetry.Fact) {
	s.facts = append(s.facts, f)
}

// transition applies a state machine event and records a state change.
func (s *Sanctuary) transition(b *components.Bird, ev systems.Event, action components.Action) bool {
	next, ok := systems.Transition(b.State, ev, action)
	if !ok {
		return false
	}
	if next != b.State {
		s.emit(telemetry.NewStateChangedFact(s.tick, b, b.State, next))
		b.State = next
		b.StateTime = 0
	}
	return true
}

// loseTarget drops an invalid target and schedules re-arbitration this tick.
func (s *Sanctuary) loseTarget(b *components.Bird) {
	s.emit(telemetry.NewTargetLostFact(s.tick, b, b.Target))
	s.transition(b, systems.EventTargetLost, b.TargetAction)
	b.ClearTarget()
	b.Serviced = 0
	b.NextDecision = s.now
}

// finishActivity ends the bird's current activity and starts the action's cooldown.
func (s *Sanctuary) finishActivity(b *components.Bird) {
	action := b.TargetAction
	prof := &s.actions[action]

	s.emit(telemetry.NewActionCompletedFact(s.tick, b, b.Target, action, b.Serviced))
	if !prof.Inverse && b.Serviced > 0 {
		s.emit(telemetry.NewNeedSatisfiedFact(s.tick, b, prof.Need, b.Needs[prof.Need]))
	}
	b.Cooldowns[action] = s.now + float64(prof.Cooldown)

	s.transition(b, systems.EventActionDone, action)
	b.ClearTarget()
	b.Serviced = 0
	b.NextDecision = s.now
}

// updateProviders runs refill schedules and prunes removed providers.
func (s *Sanctuary) updateProviders() {
	s.updateRefills()
	if s.stale > 0 {
		s.providers.Prune()
		s.stale = 0
	}
}

// updateAlerts applies alarm calls queued during the previous tick.
func (s *Sanctuary) updateAlerts() {
	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		if b.PendingAlarm > 0 {
			systems.RaiseFear(b, b.PendingAlarm)
			b.PendingAlarm = 0
		}
	}
}

// updateNeeds advances every bird's drives.
func (s *Sanctuary) updateNeeds() {
	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		systems.TickNeeds(b, s.species.Get(b.Species), s.dt)
		b.StateTime += s.dt
	}
}

// updateThreats moves patrols and raises fear near predators.
func (s *Sanctuary) updateThreats() {
	s.updatePatrols()
	if s.threats.Len() == 0 {
		for i := 0; i < s.flock.Len(); i++ {
			s.flock.At(i).HasThreat = false
		}
		return
	}
	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		systems.RaiseFear(b, s.threats.Exposure(b.Pos, s.dt))
		pos, _, ok := s.threats.Nearest(b.Pos)
		if ok {
			b.Threat = pos
		}
		b.HasThreat = ok
	}
}

// updateInterrupts forces panicked birds to flee and calms the rest.
// A bird that panics calls an alarm heard by nearby birds next tick.
func (s *Sanctuary) updateInterrupts() {
	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		sp := s.species.Get(b.Species)
		fear := b.Needs[components.NeedFear]

		if b.State != components.StateFleeing {
			if fear > sp.PanicThreshold {
				s.transition(b, systems.EventPanic, components.ActionNone)
				b.ClearTarget()
				b.Serviced = 0
				s.emit(telemetry.NewPanickedFact(s.tick, b))
				s.alarm(i)
			}
			continue
		}

		if fear < sp.PanicThreshold && !b.HasThreat {
			s.transition(b, systems.EventCalm, components.ActionNone)
			s.emit(telemetry.NewCalmedFact(s.tick, b))
			b.NextDecision = s.now
		}
	}
}

// alarm queues fear for birds within alert range of the caller.
func (s *Sanctuary) alarm(caller int) {
	from := s.flock.At(caller).Pos
	for j := 0; j < s.flock.Len(); j++ {
		if j == caller {
			continue
		}
		other := s.flock.At(j)
		if f := s.threats.AlertFearAt(from.Dist(other.Pos)); f > 0 {
			other.PendingAlarm += f
		}
	}
}

// validateTargets drops targets that were despawned or ran dry.
func (s *Sanctuary) validateTargets() {
	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		if !b.HasTarget() {
			continue
		}
		_, p, ok := s.providers.Get(b.Target)
		if !ok || p.Depleted() || p.Action != b.TargetAction {
			s.loseTarget(b)
		}
	}
}

// updateServicing applies need reduction and provider depletion for birds
// in an activity, and ends activities that are done.
func (s *Sanctuary) updateServicing() {
	satisfied := float32(s.cfg.Behavior.SatisfiedLevel)

	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		if !b.State.IsActivity() || !b.HasTarget() {
			continue
		}
		_, p, ok := s.providers.Get(b.Target)
		if !ok || p.Depleted() {
			// Emptied by another bird earlier this tick
			s.loseTarget(b)
			continue
		}

		prof := &s.actions[b.TargetAction]
		if !prof.Inverse && prof.RestoreRate > 0 {
			served := systems.Satisfy(b, prof.Need, prof.RestoreRate*s.dt)
			if served > 0 {
				b.Serviced += served
				s.collector.RecordServed(prof.Need, served)
				s.lifetimes.RecordServed(b.ID, prof.Need, served)
			}
		}

		done := b.StateTime >= prof.Duration
		if !prof.Inverse && prof.RestoreRate > 0 && b.Needs[prof.Need] <= satisfied {
			done = true
		}

		exhausted := false
		if prof.ConsumeRate > 0 && !p.Unlimited() {
			if _, depleted := s.providers.Deplete(b.Target, prof.ConsumeRate*s.dt); depleted {
				s.emit(telemetry.NewProviderDepletedFact(s.tick, b, b.Target, b.TargetAction))
				exhausted = true
			}
		}

		// Running dry is a lost target for every bird at the provider,
		// including the one that emptied it. Only duration and satiety complete.
		switch {
		case done:
			s.finishActivity(b)
		case exhausted:
			s.loseTarget(b)
		}
	}
}

// updateArrivals starts the activity for birds that reached their target.
func (s *Sanctuary) updateArrivals() {
	reach := float32(s.cfg.Behavior.InteractionDistance)

	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		if b.State != components.StateMovingToTarget || !b.HasTarget() {
			continue
		}
		pos, _, ok := s.providers.Get(b.Target)
		if !ok || b.Pos.Dist(pos) > reach {
			continue
		}
		if s.transition(b, systems.EventArrived, b.TargetAction) && b.State.IsActivity() {
			b.Serviced = 0
			s.emit(telemetry.NewActionStartedFact(s.tick, b, b.Target))
		}
	}
}

// updateArbitration picks targets for idle and travelling birds whose
// decision is due.
func (s *Sanctuary) updateArbitration() {
	interval := s.cfg.Arbiter.DecisionInterval

	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		if b.State != components.StateWandering && b.State != components.StateMovingToTarget {
			continue
		}
		if b.NextDecision > s.now {
			continue
		}
		b.NextDecision = s.now + interval

		sp := s.species.Get(b.Species)
		s.candidates = s.scorer.Candidates(s.candidates[:0], s.providers, b, sp)
		d := s.arbiter.Arbitrate(b, sp, s.candidates, s.now)

		switch {
		case !d.Found:
			s.transition(b, systems.EventNoAction, components.ActionNone)
			b.ClearTarget()
		case d.Kept:
		default:
			retargeted := b.HasTarget()
			b.Target = d.Provider
			b.TargetAction = d.Action
			s.emit(telemetry.NewTargetChosenFact(s.tick, b, d.Provider, d.Action, d.Score, retargeted))
			s.transition(b, systems.EventTargetChosen, d.Action)
		}
	}
}

// updateSteering resolves a steering destination for every bird.
func (s *Sanctuary) updateSteering() {
	n := s.flock.Len()
	if cap(s.steering) < n {
		s.steering = make([]systems.Steering, n)
	}
	s.steering = s.steering[:n]

	for i := 0; i < n; i++ {
		b := s.flock.At(i)
		var target components.Position
		hasTarget := false
		if b.HasTarget() {
			target, _, hasTarget = s.providers.Get(b.Target)
		}
		s.steering[i] = s.mover.Resolve(b, target, hasTarget, s.now)
	}
}

// updateIntegration moves birds along their steering.
func (s *Sanctuary) updateIntegration() {
	bounds := s.mover.Bounds()
	resp := float32(s.cfg.Movement.Responsiveness)
	for i := 0; i < s.flock.Len(); i++ {
		systems.Integrate(s.flock.At(i), s.steering[i], bounds, resp, s.dt)
	}
}
