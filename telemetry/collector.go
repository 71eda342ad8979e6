package telemetry

import "github.com/pthm-cable/sanctuary/components"

// FlockSample is the end-of-window snapshot the collector cannot derive
// from facts alone.
type FlockSample struct {
	StateCounts [components.NumStates]int
	Needs       [components.NumNeeds][]float64

	Providers         int
	ProvidersDepleted int
	ProviderFillMean  float64
	Threats           int
}

// Birds returns the number of sampled birds.
func (s *FlockSample) Birds() int {
	n := 0
	for _, c := range s.StateCounts {
		n += c
	}
	return n
}

// Reset clears the sample, keeping slice capacity.
func (s *FlockSample) Reset() {
	s.StateCounts = [components.NumStates]int{}
	for i := range s.Needs {
		s.Needs[i] = s.Needs[i][:0]
	}
	s.Providers, s.ProvidersDepleted, s.ProviderFillMean, s.Threats = 0, 0, 0, 0
}

// Collector accumulates facts within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Fact counters for current window
	targetsChosen int
	retargets     int
	targetsLost   int
	started       int
	completed     int
	panics        int
	calms         int
	depletions    int
	completions   [components.NumActions]int
	served        [components.NumNeeds]float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts one fact.
func (c *Collector) Record(f Fact) {
	switch f.Type {
	case FactTargetChosen:
		c.targetsChosen++
	case FactRetargeted:
		c.targetsChosen++
		c.retargets++
	case FactTargetLost:
		c.targetsLost++
	case FactActionStarted:
		c.started++
	case FactActionCompleted:
		c.completed++
		if f.Action < components.NumActions {
			c.completions[f.Action]++
		}
	case FactNeedSatisfied:
		// Counted through completions
	case FactPanicked:
		c.panics++
	case FactCalmed:
		c.calms++
	case FactProviderDepleted:
		c.depletions++
	}
}

// RecordServed adds need reduction delivered by an activity tick.
func (c *Collector) RecordServed(need components.Need, amount float32) {
	if need < components.NumNeeds {
		c.served[need] += float64(amount)
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample *FlockSample) WindowStats {
	hunger := ComputeNeedStats(sample.Needs[components.NeedHunger])
	thirst := ComputeNeedStats(sample.Needs[components.NeedThirst])
	energy := ComputeNeedStats(sample.Needs[components.NeedEnergy])
	fear := ComputeNeedStats(sample.Needs[components.NeedFear])
	sc := &sample.StateCounts

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Birds:     sample.Birds(),
		Wandering: sc[components.StateWandering],
		Moving:    sc[components.StateMovingToTarget],
		Eating:    sc[components.StateEating],
		Drinking:  sc[components.StateDrinking],
		Bathing:   sc[components.StateBathing],
		Perching:  sc[components.StatePerching],
		Nesting:   sc[components.StateNesting],
		Fleeing:   sc[components.StateFleeing],
		Exploring: sc[components.StateExploring],
		Playing:   sc[components.StatePlaying],

		TargetsChosen: c.targetsChosen,
		Retargets:     c.retargets,
		TargetsLost:   c.targetsLost,
		Started:       c.started,
		Completed:     c.completed,
		Panics:        c.panics,
		Calms:         c.calms,
		Depletions:    c.depletions,

		EatDone:     c.completions[components.ActionEat],
		DrinkDone:   c.completions[components.ActionDrink],
		BatheDone:   c.completions[components.ActionBathe],
		PerchDone:   c.completions[components.ActionPerch],
		NestDone:    c.completions[components.ActionNest],
		ExploreDone: c.completions[components.ActionExplore],
		PlayDone:    c.completions[components.ActionPlay],

		HungerServed: c.served[components.NeedHunger],
		ThirstServed: c.served[components.NeedThirst],
		EnergyServed: c.served[components.NeedEnergy],

		HungerMean: hunger.Mean,
		HungerP10:  hunger.P10,
		HungerP50:  hunger.P50,
		HungerP90:  hunger.P90,

		ThirstMean: thirst.Mean,
		ThirstP50:  thirst.P50,
		ThirstP90:  thirst.P90,

		EnergyMean: energy.Mean,
		EnergyP90:  energy.P90,

		FearMean: fear.Mean,
		FearStd:  fear.Std,
		FearP90:  fear.P90,

		Providers:         sample.Providers,
		ProvidersDepleted: sample.ProvidersDepleted,
		ProviderFillMean:  sample.ProviderFillMean,
		Threats:           sample.Threats,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.targetsChosen = 0
	c.retargets = 0
	c.targetsLost = 0
	c.started = 0
	c.completed = 0
	c.panics = 0
	c.calms = 0
	c.depletions = 0
	c.completions = [components.NumActions]int{}
	c.served = [components.NumNeeds]float64{}

	return stats
}
