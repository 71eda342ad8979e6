package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/sanctuary/components"
)

func testScorer() *Scorer {
	return &Scorer{Actions: defaultActionTable(), PressureExponent: 2, FalloffFloor: 0.05}
}

// ---------- NeedPressure ----------

func TestNeedPressure(t *testing.T) {
	tests := []struct {
		level, k, want float32
	}{
		{0.5, 2, 0.25},
		{0.9, 1, 0.9},
		{0.5, 0.5, 0.5}, // k < 1 is treated as 1
		{1.5, 2, 1},
		{-1, 2, 0},
		{0, 3, 0},
		{0.5, 3, 0.125},
	}
	for _, tt := range tests {
		if got := NeedPressure(tt.level, tt.k); !approx(got, tt.want, 1e-6) {
			t.Errorf("NeedPressure(%v, %v) = %v, want %v", tt.level, tt.k, got, tt.want)
		}
	}
}

func TestNeedPressure_Monotonic(t *testing.T) {
	prev := float32(-1)
	for i := 0; i <= 100; i++ {
		p := NeedPressure(float32(i)/100, 2)
		if p < prev {
			t.Fatalf("pressure decreased at level %v: %v < %v", float32(i)/100, p, prev)
		}
		prev = p
	}
}

// ---------- DistanceFalloff ----------

func TestDistanceFalloff(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name          string
		d, rng, floor float32
		want          float32
	}{
		{"at provider", 0, 100, 0.05, 1},
		{"halfway", 50, 100, 0.05, 0.525},
		{"at range", 100, 100, 0.05, 0.05},
		{"beyond range", 100.5, 100, 0.05, 0},
		{"zero range", 0, 0, 0.05, 0},
		{"negative range", 5, -10, 0.05, 0},
		{"nan range", 5, nan, 0.05, 0},
		{"nan distance", nan, 100, 0.05, 0},
		{"negative distance", -3, 100, 0.05, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistanceFalloff(tt.d, tt.rng, tt.floor); !approx(got, tt.want, 1e-5) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistanceFalloff_PositiveWithinRange(t *testing.T) {
	for d := float32(0); d <= 200; d += 7 {
		if f := DistanceFalloff(d, 200, 0.05); f <= 0 {
			t.Errorf("falloff at %v within range should be positive, got %v", d, f)
		}
	}
}

// ---------- Score ----------

func TestScore_HungryBirdNearFeeder(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	b := &components.Bird{}
	b.Needs[components.NeedHunger] = 0.9
	feeder := &components.Provider{Action: components.ActionEat, BaseUtility: 0.7, Range: 150}

	got := s.Score(b, sp, feeder, 10)

	want := float32(0.81 * 0.7 * (1 - 0.95*10.0/150.0))
	if !approx(got, want, 1e-5) {
		t.Errorf("score: got %v, want %v", got, want)
	}
}

func TestScore_DegenerateInputsScoreZero(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	hungry := &components.Bird{}
	hungry.Needs[components.NeedHunger] = 0.8
	sated := &components.Bird{}

	feeder := components.Provider{Action: components.ActionEat, BaseUtility: 0.7, Range: 150}

	depleted := feeder
	depleted.MaxCapacity, depleted.Capacity = 10, 0

	negative := feeder
	negative.BaseUtility = -0.5

	nanUtil := feeder
	nanUtil.BaseUtility = float32(math.NaN())

	noRange := feeder
	noRange.Range = 0

	badAction := feeder
	badAction.Action = components.ActionNone

	tests := []struct {
		name string
		bird *components.Bird
		prov components.Provider
		dist float32
	}{
		{"zero need", sated, feeder, 10},
		{"depleted provider", hungry, depleted, 10},
		{"beyond range", hungry, feeder, 151},
		{"negative utility", hungry, negative, 10},
		{"nan utility", hungry, nanUtil, 10},
		{"zero range", hungry, noRange, 0},
		{"unknown action", hungry, badAction, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.bird, sp, &tt.prov, tt.dist); got != 0 {
				t.Errorf("expected 0, got %v", got)
			}
		})
	}
}

func TestScore_ZeroAffinityScoresZero(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	sp.Affinity[components.ActionEat] = 0
	b := &components.Bird{}
	b.Needs[components.NeedHunger] = 1
	p := &components.Provider{Action: components.ActionEat, BaseUtility: 1, Range: 100}

	if got := s.Score(b, sp, p, 0); got != 0 {
		t.Errorf("expected 0 with zero affinity, got %v", got)
	}
}

func TestScore_SupplyScalesUtility(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	b := &components.Bird{}
	b.Needs[components.NeedHunger] = 1

	full := &components.Provider{Action: components.ActionEat, BaseUtility: 0.8, Range: 100, Capacity: 20, MaxCapacity: 20}
	half := &components.Provider{Action: components.ActionEat, BaseUtility: 0.8, Range: 100, Capacity: 10, MaxCapacity: 20}

	sf := s.Score(b, sp, full, 0)
	sh := s.Score(b, sp, half, 0)
	if !approx(sh, sf/2, 1e-6) {
		t.Errorf("half-full feeder should score half: full=%v half=%v", sf, sh)
	}
}

func TestScore_FoodPreference(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	sp.FoodPreferences = map[string]float32{"nectar": 1.0, "seed": 0.05}
	b := &components.Bird{}
	b.Needs[components.NeedHunger] = 0.9

	nectar := &components.Provider{Action: components.ActionEat, Kind: "nectar", BaseUtility: 0.5, Range: 200}
	seed := &components.Provider{Action: components.ActionEat, Kind: "seed", BaseUtility: 0.9, Range: 200}

	if sn, ss := s.Score(b, sp, nectar, 50), s.Score(b, sp, seed, 50); sn <= ss {
		t.Errorf("nectar should outscore seed for a nectar feeder: nectar=%v seed=%v", sn, ss)
	}
}

func TestScore_InverseDriveFavorsRestedBirds(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	p := &components.Provider{Action: components.ActionExplore, BaseUtility: 1, Range: 100}

	rested := &components.Bird{}
	tired := &components.Bird{}
	tired.Needs[components.NeedEnergy] = 0.9

	if sr, st := s.Score(rested, sp, p, 0), s.Score(tired, sp, p, 0); sr <= st {
		t.Errorf("rested bird should want to explore more: rested=%v tired=%v", sr, st)
	}
}

func TestScore_Pure(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	b := &components.Bird{}
	b.Needs[components.NeedHunger] = 0.6
	p := &components.Provider{Action: components.ActionEat, BaseUtility: 0.7, Range: 150, Capacity: 5, MaxCapacity: 10}

	beforeBird, beforeProv := *b, *p
	first := s.Score(b, sp, p, 40)
	for i := 0; i < 10; i++ {
		if got := s.Score(b, sp, p, 40); got != first {
			t.Fatalf("score changed between calls: %v vs %v", got, first)
		}
	}
	if *b != beforeBird || *p != beforeProv {
		t.Error("Score mutated its inputs")
	}
}

// ---------- Candidates ----------

func TestCandidates_OnlyPositiveScores(t *testing.T) {
	s := testScorer()
	sp := testProfile()
	reg := NewProviderRegistry(1000, 1000, 64)

	reg.Add(components.Position{X: 110, Y: 100}, components.Provider{Action: components.ActionEat, BaseUtility: 0.7, Range: 150})
	reg.Add(components.Position{X: 120, Y: 100}, components.Provider{Action: components.ActionDrink, BaseUtility: 0.7, Range: 150})
	reg.Add(components.Position{X: 130, Y: 100}, components.Provider{Action: components.ActionEat, BaseUtility: 0.7, Range: 150, MaxCapacity: 10})
	reg.Add(components.Position{X: 900, Y: 900}, components.Provider{Action: components.ActionEat, BaseUtility: 0.7, Range: 150})

	b := &components.Bird{Pos: components.Position{X: 100, Y: 100}}
	b.Needs[components.NeedHunger] = 0.9
	// Fully rested, so explore/play would be wanted, but none exist

	cands := s.Candidates(nil, reg, b, sp)

	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(cands), cands)
	}
	c := cands[0]
	if c.Action != components.ActionEat || !approx(c.Distance, 10, 1e-4) || c.Score <= 0 {
		t.Errorf("unexpected candidate %+v", c)
	}
}
