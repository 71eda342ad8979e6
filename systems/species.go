package systems

import (
	"log/slog"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
)

// ActionProfile describes how an action relates to a bird's needs.
type ActionProfile struct {
	Need        components.Need
	Inverse     bool    // pressure derives from 1 - need level
	Weight      float32 // multiplier on need pressure
	RestoreRate float32 // need reduction per second while active
	ConsumeRate float32 // provider supply used per second
	Duration    float32 // seconds until the activity completes
	Cooldown    float32 // seconds the action is suppressed after completing
}

// ActionTable holds one profile per action.
type ActionTable [components.NumActions]ActionProfile

// defaultActionTable is used for actions missing from config.
func defaultActionTable() ActionTable {
	return ActionTable{
		components.ActionEat:     {Need: components.NeedHunger, Weight: 1, RestoreRate: 0.5, ConsumeRate: 1, Duration: 6, Cooldown: 10},
		components.ActionDrink:   {Need: components.NeedThirst, Weight: 1, RestoreRate: 0.6, ConsumeRate: 0.5, Duration: 4, Cooldown: 8},
		components.ActionBathe:   {Need: components.NeedEnergy, Weight: 0.8, RestoreRate: 0.3, Duration: 5, Cooldown: 20},
		components.ActionPerch:   {Need: components.NeedEnergy, Weight: 1, RestoreRate: 0.4, Duration: 8, Cooldown: 6},
		components.ActionNest:    {Need: components.NeedEnergy, Weight: 0.6, RestoreRate: 0.2, Duration: 12, Cooldown: 30},
		components.ActionExplore: {Need: components.NeedEnergy, Inverse: true, Weight: 0.3, Duration: 5, Cooldown: 25},
		components.ActionPlay:    {Need: components.NeedEnergy, Inverse: true, Weight: 0.25, Duration: 4, Cooldown: 30},
	}
}

// BuildActionTable converts the actions config section into a lookup table.
func BuildActionTable(cfg *config.Config) ActionTable {
	table := defaultActionTable()
	for name, ac := range cfg.Actions {
		action, ok := components.ParseAction(name)
		if !ok {
			slog.Warn("unknown action in config", "action", name)
			continue
		}
		prof := table[action]
		if need, ok := components.ParseNeed(ac.Need); ok {
			prof.Need = need
		}
		prof.Inverse = ac.Inverse
		if ac.Weight > 0 {
			prof.Weight = float32(ac.Weight)
		}
		prof.RestoreRate = float32(ac.RestoreRate)
		prof.ConsumeRate = float32(ac.ConsumeRate)
		if ac.Duration > 0 {
			prof.Duration = float32(ac.Duration)
		}
		prof.Cooldown = float32(ac.Cooldown)
		table[action] = prof
	}
	return table
}

// SpeciesProfile is the runtime behavior table for one species.
type SpeciesProfile struct {
	Name             string
	SizeClass        int
	FlockSize        int
	TerritoryRadius  float32
	Aggression       float32
	PerceptionRadius float32
	PanicThreshold   float32

	// Rates holds per-need rates: linear growth for hunger, thirst and
	// energy deficit, exponential decay constant for fear.
	Rates [components.NumNeeds]float32

	Affinity [components.NumActions]float32
	// Rank orders actions for tie-breaking; lower wins.
	Rank [components.NumActions]int

	FoodPreferences map[string]float32
}

// FoodPreference returns the multiplier for a provider kind.
// Kinds not listed (and empty kinds) are neutral.
func (sp *SpeciesProfile) FoodPreference(kind string) float32 {
	if kind == "" || sp.FoodPreferences == nil {
		return 1
	}
	if v, ok := sp.FoodPreferences[kind]; ok {
		return v
	}
	return 1
}

// MaxSpecies is the number of distinct SpeciesID values.
const MaxSpecies = 1 << 8

// SpeciesTable holds all species profiles, indexed by SpeciesID.
type SpeciesTable struct {
	profiles []SpeciesProfile
	byName   map[string]components.SpeciesID
	fallback SpeciesProfile
}

// BuildSpeciesTable populates the species table from config.
// Missing affinities fall back to scoring.default_affinity and missing
// rates fall back to the needs section.
func BuildSpeciesTable(cfg *config.Config) *SpeciesTable {
	defAff := float32(cfg.Scoring.DefaultAffinity)
	if defAff <= 0 {
		defAff = 0.5
	}
	baseRates := [components.NumNeeds]float32{
		components.NeedHunger: float32(cfg.Needs.HungerRate),
		components.NeedThirst: float32(cfg.Needs.ThirstRate),
		components.NeedEnergy: float32(cfg.Needs.EnergyRate),
		components.NeedFear:   float32(cfg.Needs.FearDecay),
	}

	t := &SpeciesTable{
		byName:   make(map[string]components.SpeciesID, len(cfg.Species)),
		fallback: neutralProfile("unknown", baseRates, defAff, float32(cfg.Behavior.PanicThreshold)),
	}

	for i, sc := range cfg.Species {
		if i >= MaxSpecies {
			slog.Warn("too many species, ignoring the rest", "max", MaxSpecies, "dropped", len(cfg.Species)-MaxSpecies)
			break
		}
		p := neutralProfile(sc.Name, baseRates, defAff, float32(cfg.Behavior.PanicThreshold))
		p.SizeClass = sc.SizeClass
		p.FlockSize = sc.FlockSize
		p.TerritoryRadius = float32(sc.TerritoryRadius)
		p.Aggression = float32(sc.Aggression)
		if sc.PerceptionRadius > 0 {
			p.PerceptionRadius = float32(sc.PerceptionRadius)
		}
		if sc.PanicThreshold > 0 {
			p.PanicThreshold = float32(sc.PanicThreshold)
		}
		for name, rate := range sc.NeedRates {
			if need, ok := components.ParseNeed(name); ok {
				p.Rates[need] = float32(rate)
			}
		}
		for name, aff := range sc.Affinities {
			if action, ok := components.ParseAction(name); ok {
				p.Affinity[action] = float32(aff)
			}
		}
		if len(sc.FoodPreferences) > 0 {
			p.FoodPreferences = make(map[string]float32, len(sc.FoodPreferences))
			for kind, v := range sc.FoodPreferences {
				p.FoodPreferences[kind] = float32(v)
			}
		}
		applyPriority(&p, sc.Priority)

		t.byName[sc.Name] = components.SpeciesID(len(t.profiles))
		t.profiles = append(t.profiles, p)
	}

	return t
}

func neutralProfile(name string, rates [components.NumNeeds]float32, affinity, panicAt float32) SpeciesProfile {
	p := SpeciesProfile{
		Name:             name,
		PerceptionRadius: 300,
		PanicThreshold:   panicAt,
		Rates:            rates,
	}
	for a := range p.Affinity {
		p.Affinity[a] = affinity
		p.Rank[a] = a
	}
	return p
}

// applyPriority ranks listed actions first, in order; unlisted actions
// keep their enum order after them.
func applyPriority(p *SpeciesProfile, order []string) {
	next := 0
	var seen [components.NumActions]bool
	for _, name := range order {
		action, ok := components.ParseAction(name)
		if !ok || seen[action] {
			continue
		}
		seen[action] = true
		p.Rank[action] = next
		next++
	}
	for a := range p.Rank {
		if !seen[a] {
			p.Rank[a] = next
			next++
		}
	}
}

// Get returns the profile for a species id. Unknown ids get a neutral
// profile with default affinities.
func (t *SpeciesTable) Get(id components.SpeciesID) *SpeciesProfile {
	if int(id) < len(t.profiles) {
		return &t.profiles[id]
	}
	return &t.fallback
}

// Lookup returns the species id for a name.
func (t *SpeciesTable) Lookup(name string) (components.SpeciesID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Len returns the number of configured species.
func (t *SpeciesTable) Len() int {
	return len(t.profiles)
}
