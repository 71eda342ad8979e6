package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sanctuary/config"
	"github.com/pthm-cable/sanctuary/game"
	"github.com/pthm-cable/sanctuary/telemetry"
)

// FitnessEvaluator runs headless sanctuaries and scores decision quality.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	lastScore   Score // breakdown from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the score breakdown from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Score is the per-run breakdown of the fitness terms.
type Score struct {
	Unmet     float64 // mean need level across windows
	Churn     float64 // retargets per bird per window
	Lost      float64 // lost targets per bird per window
	Idle      float64 // fraction of birds wandering
	Stability float64 // coefficient of variation of mean hunger
}

// Fitness weights.
const (
	weightUnmet     = 1.0
	weightChurn     = 0.5
	weightLost      = 0.2
	weightIdle      = 0.1
	weightStability = 0.2

	warmupWindows = 2 // skip first N windows
)

// Fitness combines the terms into a scalar (lower = better).
func (s Score) Fitness() float64 {
	return weightUnmet*s.Unmet +
		weightChurn*s.Churn +
		weightLost*s.Lost +
		weightIdle*s.Idle +
		weightStability*s.Stability
}

// Evaluate computes fitness for a parameter vector (lower = better),
// averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	scores := make([]Score, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx] = computeScore(fe.runSimulation(x, s))
		}(i, seed)
	}
	wg.Wait()

	var avg Score
	for _, s := range scores {
		avg.Unmet += s.Unmet
		avg.Churn += s.Churn
		avg.Lost += s.Lost
		avg.Idle += s.Idle
		avg.Stability += s.Stability
	}
	n := float64(len(scores))
	avg.Unmet /= n
	avg.Churn /= n
	avg.Lost /= n
	avg.Idle /= n
	avg.Stability /= n

	fitness := avg.Fitness()

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
	}
	fe.lastScore = avg
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run and returns its windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	s, err := game.NewSanctuary(cfg, game.Options{Seed: seed, StatsWindow: fe.statsWindow})
	if err != nil {
		slog.Error("failed to create sanctuary", "error", err)
		return nil
	}
	s.SetStatsCallback(func(ws telemetry.WindowStats) {
		windows = append(windows, ws)
	})
	s.SeedScenario()

	for s.Tick() < fe.maxTicks {
		s.Step()
	}
	if err := s.Close(); err != nil {
		slog.Error("failed to close sanctuary", "error", err)
	}
	return windows
}

// computeScore derives the fitness terms from window stats.
// Runs without usable windows get the worst score.
func computeScore(windows []telemetry.WindowStats) Score {
	worst := Score{Unmet: 1, Churn: 1, Lost: 1, Idle: 1, Stability: 1}
	if len(windows) <= warmupWindows {
		return worst
	}

	var s Score
	hunger := make([]float64, 0, len(windows))
	count := 0
	for _, w := range windows[warmupWindows:] {
		if w.Birds == 0 {
			continue
		}
		birds := float64(w.Birds)
		s.Unmet += (w.HungerMean + w.ThirstMean + w.EnergyMean) / 3
		s.Churn += float64(w.Retargets) / birds
		s.Lost += float64(w.TargetsLost) / birds
		s.Idle += float64(w.Wandering) / birds
		hunger = append(hunger, w.HungerMean)
		count++
	}
	if count == 0 {
		return worst
	}

	n := float64(count)
	s.Unmet /= n
	s.Churn /= n
	s.Lost /= n
	s.Idle /= n

	if len(hunger) >= 2 {
		mean, std := stat.MeanStdDev(hunger, nil)
		if mean > 0 {
			s.Stability = std / mean
		}
	}
	return s
}
