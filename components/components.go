// Package components defines the data carried by birds and utility providers.
package components

// Need identifies one of a bird's internal drives.
type Need uint8

const (
	NeedHunger Need = iota
	NeedThirst
	NeedEnergy // stored as energy deficit: 0 = rested, 1 = exhausted
	NeedFear

	NumNeeds
)

var needNames = [NumNeeds]string{"hunger", "thirst", "energy", "fear"}

// String returns the config name of the need.
func (n Need) String() string {
	if n < NumNeeds {
		return needNames[n]
	}
	return "unknown"
}

// ParseNeed maps a config name to a Need.
func ParseNeed(s string) (Need, bool) {
	for i, name := range needNames {
		if name == s {
			return Need(i), true
		}
	}
	return 0, false
}

// Needs holds the drive levels of one bird, each in [0,1].
type Needs [NumNeeds]float32

// Action is what a utility provider offers a bird.
type Action uint8

const (
	ActionEat Action = iota
	ActionDrink
	ActionBathe
	ActionPerch
	ActionNest
	ActionExplore
	ActionPlay

	NumActions
)

// ActionNone marks the absence of an action.
const ActionNone Action = 255

var actionNames = [NumActions]string{"eat", "drink", "bathe", "perch", "nest", "explore", "play"}

// String returns the config name of the action.
func (a Action) String() string {
	if a < NumActions {
		return actionNames[a]
	}
	return "none"
}

// ParseAction maps a config name to an Action.
func ParseAction(s string) (Action, bool) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), true
		}
	}
	return ActionNone, false
}

// State is a bird's behavioral state.
type State uint8

const (
	StateWandering State = iota
	StateMovingToTarget
	StateEating
	StateDrinking
	StateBathing
	StatePerching
	StateNesting
	StateFleeing
	StateExploring
	StatePlaying

	NumStates
)

var stateNames = [NumStates]string{
	"wandering", "moving_to_target", "eating", "drinking", "bathing",
	"perching", "nesting", "fleeing", "exploring", "playing",
}

// String returns the snake_case name of the state.
func (s State) String() string {
	if s < NumStates {
		return stateNames[s]
	}
	return "unknown"
}

// actionStates maps each action to the state a bird enters while performing it.
var actionStates = [NumActions]State{
	ActionEat:     StateEating,
	ActionDrink:   StateDrinking,
	ActionBathe:   StateBathing,
	ActionPerch:   StatePerching,
	ActionNest:    StateNesting,
	ActionExplore: StateExploring,
	ActionPlay:    StatePlaying,
}

// StateFor returns the activity state for an action.
// Unknown actions map to Wandering.
func StateFor(a Action) State {
	if a < NumActions {
		return actionStates[a]
	}
	return StateWandering
}

// IsActivity reports whether the state is one where the bird is using a provider.
func (s State) IsActivity() bool {
	switch s {
	case StateEating, StateDrinking, StateBathing, StatePerching,
		StateNesting, StateExploring, StatePlaying:
		return true
	}
	return false
}
