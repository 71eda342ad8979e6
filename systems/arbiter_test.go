package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sanctuary/components"
)

// testEntities allocates n live provider handles in creation order.
func testEntities(n int) []ecs.Entity {
	reg := NewProviderRegistry(1000, 1000, 64)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = reg.Add(components.Position{}, components.Provider{Action: components.ActionEat, BaseUtility: 1, Range: 100})
	}
	return out
}

func testArbiter() Arbiter {
	return Arbiter{SwitchThreshold: 0.8, MinScore: 0.01}
}

// ---------- basic selection ----------

func TestArbitrate_PicksHighestScore(t *testing.T) {
	es := testEntities(3)
	b := &components.Bird{}
	cands := []Candidate{
		{Provider: es[0], Action: components.ActionEat, Distance: 10, Score: 0.3},
		{Provider: es[1], Action: components.ActionDrink, Distance: 50, Score: 0.6},
		{Provider: es[2], Action: components.ActionPerch, Distance: 5, Score: 0.2},
	}

	d := testArbiter().Arbitrate(b, testProfile(), cands, 0)

	if !d.Found || d.Provider != es[1] || d.Kept {
		t.Errorf("expected es[1] selected fresh, got %+v", d)
	}
}

func TestArbitrate_NoCandidates(t *testing.T) {
	d := testArbiter().Arbitrate(&components.Bird{}, testProfile(), nil, 0)
	if d.Found {
		t.Errorf("expected no action, got %+v", d)
	}
}

func TestArbitrate_BelowMinScore(t *testing.T) {
	es := testEntities(1)
	cands := []Candidate{{Provider: es[0], Action: components.ActionEat, Score: 0.005}}
	d := testArbiter().Arbitrate(&components.Bird{}, testProfile(), cands, 0)
	if d.Found {
		t.Errorf("score below minimum should yield no action, got %+v", d)
	}
}

func TestArbitrate_NeverSelectsNonPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	es := testEntities(6)
	arb := Arbiter{SwitchThreshold: 0.8} // no minimum, so only the sign guards
	sp := testProfile()

	for trial := 0; trial < 2000; trial++ {
		b := &components.Bird{}
		if rng.Intn(2) == 0 {
			b.Target = es[rng.Intn(len(es))]
			b.TargetAction = components.Action(rng.Intn(int(components.NumActions)))
		}
		n := rng.Intn(len(es) + 1)
		cands := make([]Candidate, n)
		for i := range cands {
			cands[i] = Candidate{
				Provider: es[i],
				Action:   components.Action(rng.Intn(int(components.NumActions))),
				Distance: rng.Float32() * 100,
				Score:    rng.Float32()*2 - 1.2, // mostly non-positive
			}
		}
		d := arb.Arbitrate(b, sp, cands, 0)
		if d.Found && d.Score <= 0 {
			t.Fatalf("trial %d: selected non-positive candidate %+v", trial, d)
		}
	}
}

// ---------- hysteresis ----------

func TestArbitrate_HysteresisKeepsCurrent(t *testing.T) {
	es := testEntities(2)
	sp := testProfile()

	for _, threshold := range []float32{0.5, 0.8, 1.0} {
		arb := Arbiter{SwitchThreshold: threshold, MinScore: 0.01}
		for _, best := range []float32{0.05, 0.2, 0.5, 1, 3} {
			for _, frac := range []float32{1.0, 1.01, 1.5} {
				current := best * threshold * frac
				if current > best {
					// current would simply be the best; still must be kept
					current = best
				}
				if current < best*threshold {
					continue
				}
				b := &components.Bird{Target: es[0], TargetAction: components.ActionEat}
				cands := []Candidate{
					{Provider: es[1], Action: components.ActionEat, Distance: 1, Score: best},
					{Provider: es[0], Action: components.ActionEat, Distance: 90, Score: current},
				}
				d := arb.Arbitrate(b, sp, cands, 0)
				if !d.Found || d.Provider != es[0] {
					t.Errorf("threshold=%v best=%v current=%v: expected current kept, got %+v",
						threshold, best, current, d)
				}
			}
		}
	}
}

func TestArbitrate_HysteresisSwitchesBelowThreshold(t *testing.T) {
	es := testEntities(2)
	b := &components.Bird{Target: es[0], TargetAction: components.ActionEat}
	cands := []Candidate{
		{Provider: es[0], Action: components.ActionEat, Distance: 10, Score: 0.79},
		{Provider: es[1], Action: components.ActionEat, Distance: 10, Score: 1.0},
	}

	d := testArbiter().Arbitrate(b, testProfile(), cands, 0)

	if !d.Found || d.Provider != es[1] || d.Kept {
		t.Errorf("expected switch to es[1], got %+v", d)
	}
}

func TestArbitrate_KeptFlag(t *testing.T) {
	es := testEntities(1)
	b := &components.Bird{Target: es[0], TargetAction: components.ActionEat}
	cands := []Candidate{{Provider: es[0], Action: components.ActionEat, Score: 0.5}}

	d := testArbiter().Arbitrate(b, testProfile(), cands, 0)
	if !d.Found || !d.Kept {
		t.Errorf("sole current candidate should be kept, got %+v", d)
	}
}

// ---------- cooldown ----------

func TestArbitrate_CooldownSuppressesAction(t *testing.T) {
	es := testEntities(2)
	b := &components.Bird{}
	b.Cooldowns[components.ActionEat] = 10

	cands := []Candidate{
		{Provider: es[0], Action: components.ActionEat, Score: 0.9},
		{Provider: es[1], Action: components.ActionDrink, Score: 0.2},
	}

	d := testArbiter().Arbitrate(b, testProfile(), cands, 5)
	if !d.Found || d.Action != components.ActionDrink {
		t.Errorf("eat is cooling down, expected drink, got %+v", d)
	}

	// After the window, eat wins again
	d = testArbiter().Arbitrate(b, testProfile(), cands, 10)
	if !d.Found || d.Action != components.ActionEat {
		t.Errorf("cooldown expired, expected eat, got %+v", d)
	}
}

func TestArbitrate_CooldownDropsCurrentTarget(t *testing.T) {
	es := testEntities(2)
	b := &components.Bird{Target: es[0], TargetAction: components.ActionEat}
	b.Cooldowns[components.ActionEat] = 100

	cands := []Candidate{
		{Provider: es[0], Action: components.ActionEat, Score: 0.9},
		{Provider: es[1], Action: components.ActionPerch, Score: 0.3},
	}

	d := testArbiter().Arbitrate(b, testProfile(), cands, 1)
	if !d.Found || d.Provider != es[1] {
		t.Errorf("expected perch, got %+v", d)
	}
}

// ---------- tie-breaking ----------

func TestArbitrate_TieBreakByDistance(t *testing.T) {
	es := testEntities(2)
	cands := []Candidate{
		{Provider: es[0], Action: components.ActionEat, Distance: 40, Score: 0.5},
		{Provider: es[1], Action: components.ActionEat, Distance: 20, Score: 0.5},
	}
	d := testArbiter().Arbitrate(&components.Bird{}, testProfile(), cands, 0)
	if d.Provider != es[1] {
		t.Errorf("expected the closer provider, got %+v", d)
	}
}

func TestArbitrate_TieBreakBySpeciesPriority(t *testing.T) {
	es := testEntities(2)
	sp := testProfile()
	applyPriority(sp, []string{"drink", "eat"})

	cands := []Candidate{
		{Provider: es[0], Action: components.ActionEat, Distance: 20, Score: 0.5},
		{Provider: es[1], Action: components.ActionDrink, Distance: 20, Score: 0.5},
	}
	d := testArbiter().Arbitrate(&components.Bird{}, sp, cands, 0)
	if d.Action != components.ActionDrink {
		t.Errorf("drink ranks first for this species, got %+v", d)
	}
}

func TestArbitrate_TieBreakByProviderID(t *testing.T) {
	es := testEntities(2)
	cands := []Candidate{
		{Provider: es[1], Action: components.ActionEat, Distance: 20, Score: 0.5},
		{Provider: es[0], Action: components.ActionEat, Distance: 20, Score: 0.5},
	}
	d := testArbiter().Arbitrate(&components.Bird{}, testProfile(), cands, 0)
	if d.Provider != es[0] {
		t.Errorf("expected the lower provider id, got %+v", d)
	}
}

// ---------- determinism ----------

func TestArbitrate_DeterministicUnderReordering(t *testing.T) {
	es := testEntities(5)
	rng := rand.New(rand.NewSource(11))
	sp := testProfile()
	b := &components.Bird{Target: es[3], TargetAction: components.ActionPerch}

	cands := []Candidate{
		{Provider: es[0], Action: components.ActionEat, Distance: 20, Score: 0.5},
		{Provider: es[1], Action: components.ActionDrink, Distance: 20, Score: 0.5},
		{Provider: es[2], Action: components.ActionEat, Distance: 20, Score: 0.5},
		{Provider: es[3], Action: components.ActionPerch, Distance: 5, Score: 0.3},
		{Provider: es[4], Action: components.ActionBathe, Distance: 10, Score: 0.5},
	}

	want := testArbiter().Arbitrate(b, sp, cands, 0)
	for i := 0; i < 200; i++ {
		shuffled := append([]Candidate(nil), cands...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if got := testArbiter().Arbitrate(b, sp, shuffled, 0); got != want {
			t.Fatalf("iteration %d: got %+v, want %+v", i, got, want)
		}
	}
	if want.Provider != es[4] {
		t.Errorf("expected the closest of the tied best, got %+v", want)
	}
}
