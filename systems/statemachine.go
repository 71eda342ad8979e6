package systems

import "github.com/pthm-cable/sanctuary/components"

// Event is a condition that can move a bird between states.
type Event uint8

const (
	EventTargetChosen Event = iota // arbiter returned a target
	EventNoAction                  // arbiter found nothing worth doing
	EventArrived                   // within interaction distance of the target
	EventActionDone                // duration elapsed or need satiated
	EventTargetLost                // target removed or depleted
	EventPanic                     // fear crossed the panic threshold
	EventCalm                      // fear below threshold and no threat in range
	NumEvents
)

var eventNames = [NumEvents]string{
	"target_chosen", "no_action", "arrived", "action_done", "target_lost", "panic", "calm",
}

func (e Event) String() string {
	if e < NumEvents {
		return eventNames[e]
	}
	return "unknown"
}

type ruleKind uint8

const (
	ruleNone     ruleKind = iota // no-op
	ruleTo                       // fixed next state
	ruleByAction                 // next state from the target's action
)

type rule struct {
	kind ruleKind
	to   components.State
}

var transitions [components.NumStates][NumEvents]rule

func init() {
	to := func(s components.State) rule { return rule{kind: ruleTo, to: s} }

	for s := components.State(0); s < components.NumStates; s++ {
		// Panic preempts everything
		transitions[s][EventPanic] = to(components.StateFleeing)

		switch {
		case s == components.StateWandering:
			transitions[s][EventTargetChosen] = to(components.StateMovingToTarget)
			transitions[s][EventNoAction] = to(components.StateWandering)
		case s == components.StateMovingToTarget:
			transitions[s][EventTargetChosen] = to(components.StateMovingToTarget)
			transitions[s][EventNoAction] = to(components.StateWandering)
			transitions[s][EventArrived] = rule{kind: ruleByAction}
			transitions[s][EventTargetLost] = to(components.StateWandering)
		case s == components.StateFleeing:
			transitions[s][EventCalm] = to(components.StateWandering)
		case s.IsActivity():
			transitions[s][EventActionDone] = to(components.StateWandering)
			transitions[s][EventTargetLost] = to(components.StateWandering)
		}
	}
}

// Transition returns the next state for (state, event). The action is the
// bird's target action and only matters on arrival. Pairs with no rule
// return the input state and false.
func Transition(s components.State, e Event, action components.Action) (components.State, bool) {
	if s >= components.NumStates || e >= NumEvents {
		return s, false
	}
	r := transitions[s][e]
	switch r.kind {
	case ruleTo:
		return r.to, true
	case ruleByAction:
		return components.StateFor(action), true
	}
	return s, false
}
