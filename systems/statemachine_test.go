package systems

import (
	"testing"

	"github.com/pthm-cable/sanctuary/components"
)

func TestTransition_Totality(t *testing.T) {
	actions := []components.Action{components.ActionNone}
	for a := components.Action(0); a < components.NumActions; a++ {
		actions = append(actions, a)
	}

	for s := components.State(0); s < components.NumStates+2; s++ {
		for e := Event(0); e < NumEvents+2; e++ {
			for _, a := range actions {
				next, ok := Transition(s, e, a)
				if ok && next >= components.NumStates {
					t.Errorf("(%s, %s, %s) produced invalid state %d", s, e, a, next)
				}
				if !ok && next != s {
					t.Errorf("(%s, %s, %s) unhandled but changed state to %s", s, e, a, next)
				}
			}
		}
	}
}

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		from   components.State
		event  Event
		action components.Action
		want   components.State
		ok     bool
	}{
		{components.StateWandering, EventTargetChosen, components.ActionEat, components.StateMovingToTarget, true},
		{components.StateWandering, EventNoAction, components.ActionNone, components.StateWandering, true},
		{components.StateMovingToTarget, EventTargetChosen, components.ActionDrink, components.StateMovingToTarget, true},
		{components.StateMovingToTarget, EventNoAction, components.ActionNone, components.StateWandering, true},
		{components.StateMovingToTarget, EventTargetLost, components.ActionEat, components.StateWandering, true},
		{components.StateMovingToTarget, EventArrived, components.ActionEat, components.StateEating, true},
		{components.StateMovingToTarget, EventArrived, components.ActionDrink, components.StateDrinking, true},
		{components.StateMovingToTarget, EventArrived, components.ActionBathe, components.StateBathing, true},
		{components.StateMovingToTarget, EventArrived, components.ActionPerch, components.StatePerching, true},
		{components.StateMovingToTarget, EventArrived, components.ActionNest, components.StateNesting, true},
		{components.StateMovingToTarget, EventArrived, components.ActionExplore, components.StateExploring, true},
		{components.StateMovingToTarget, EventArrived, components.ActionPlay, components.StatePlaying, true},
		{components.StateMovingToTarget, EventArrived, components.ActionNone, components.StateWandering, true},
		{components.StateEating, EventActionDone, components.ActionEat, components.StateWandering, true},
		{components.StateDrinking, EventTargetLost, components.ActionDrink, components.StateWandering, true},
		{components.StateFleeing, EventCalm, components.ActionNone, components.StateWandering, true},

		// No-ops
		{components.StateWandering, EventCalm, components.ActionNone, components.StateWandering, false},
		{components.StateWandering, EventArrived, components.ActionEat, components.StateWandering, false},
		{components.StateEating, EventTargetChosen, components.ActionDrink, components.StateEating, false},
		{components.StateFleeing, EventTargetChosen, components.ActionEat, components.StateFleeing, false},
		{components.StateFleeing, EventActionDone, components.ActionEat, components.StateFleeing, false},
		{components.StatePerching, EventArrived, components.ActionPerch, components.StatePerching, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.event.String(), func(t *testing.T) {
			got, ok := Transition(tt.from, tt.event, tt.action)
			if got != tt.want || ok != tt.ok {
				t.Errorf("got (%s, %v), want (%s, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTransition_PanicFromAnyState(t *testing.T) {
	for s := components.State(0); s < components.NumStates; s++ {
		got, ok := Transition(s, EventPanic, components.ActionNone)
		if !ok || got != components.StateFleeing {
			t.Errorf("%s + panic: got (%s, %v), want fleeing", s, got, ok)
		}
	}
}
