package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population and state occupancy at window end
	Birds     int `csv:"birds"`
	Wandering int `csv:"wandering"`
	Moving    int `csv:"moving"`
	Eating    int `csv:"eating"`
	Drinking  int `csv:"drinking"`
	Bathing   int `csv:"bathing"`
	Perching  int `csv:"perching"`
	Nesting   int `csv:"nesting"`
	Fleeing   int `csv:"fleeing"`
	Exploring int `csv:"exploring"`
	Playing   int `csv:"playing"`

	// Decisions during window
	TargetsChosen int `csv:"targets_chosen"`
	Retargets     int `csv:"retargets"`
	TargetsLost   int `csv:"targets_lost"`
	Started       int `csv:"started"`
	Completed     int `csv:"completed"`
	Panics        int `csv:"panics"`
	Calms         int `csv:"calms"`
	Depletions    int `csv:"depletions"`

	// Completions by action
	EatDone     int `csv:"eat_done"`
	DrinkDone   int `csv:"drink_done"`
	BatheDone   int `csv:"bathe_done"`
	PerchDone   int `csv:"perch_done"`
	NestDone    int `csv:"nest_done"`
	ExploreDone int `csv:"explore_done"`
	PlayDone    int `csv:"play_done"`

	// Total need reduction delivered during window
	HungerServed float64 `csv:"hunger_served"`
	ThirstServed float64 `csv:"thirst_served"`
	EnergyServed float64 `csv:"energy_served"`

	// Need distributions (sampled at window end)
	HungerMean float64 `csv:"hunger_mean"`
	HungerP10  float64 `csv:"hunger_p10"`
	HungerP50  float64 `csv:"hunger_p50"`
	HungerP90  float64 `csv:"hunger_p90"`

	ThirstMean float64 `csv:"thirst_mean"`
	ThirstP50  float64 `csv:"thirst_p50"`
	ThirstP90  float64 `csv:"thirst_p90"`

	EnergyMean float64 `csv:"energy_deficit_mean"`
	EnergyP90  float64 `csv:"energy_deficit_p90"`

	FearMean float64 `csv:"fear_mean"`
	FearStd  float64 `csv:"fear_std"`
	FearP90  float64 `csv:"fear_p90"`

	// Providers
	Providers         int     `csv:"providers"`
	ProvidersDepleted int     `csv:"providers_depleted"`
	ProviderFillMean  float64 `csv:"provider_fill_mean"`
	Threats           int     `csv:"threats"`
}

// NeedStats summarizes one need across the flock.
type NeedStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeNeedStats calculates mean, std and empirical quantiles.
// Returns zeros for an empty slice. values is not modified.
func ComputeNeedStats(values []float64) NeedStats {
	n := len(values)
	if n == 0 {
		return NeedStats{}
	}

	var ns NeedStats
	if n == 1 {
		ns.Mean = values[0]
	} else {
		ns.Mean, ns.Std = stat.MeanStdDev(values, nil)
	}

	// Quantile needs sorted input
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	ns.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	ns.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	ns.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return ns
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("birds", s.Birds),
		slog.Int("wandering", s.Wandering),
		slog.Int("moving", s.Moving),
		slog.Int("eating", s.Eating),
		slog.Int("drinking", s.Drinking),
		slog.Int("fleeing", s.Fleeing),
		slog.Int("targets_chosen", s.TargetsChosen),
		slog.Int("retargets", s.Retargets),
		slog.Int("targets_lost", s.TargetsLost),
		slog.Int("completed", s.Completed),
		slog.Int("panics", s.Panics),
		slog.Int("depletions", s.Depletions),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("hunger_p90", s.HungerP90),
		slog.Float64("thirst_mean", s.ThirstMean),
		slog.Float64("energy_deficit_mean", s.EnergyMean),
		slog.Float64("fear_mean", s.FearMean),
		slog.Float64("fear_p90", s.FearP90),
		slog.Int("providers_depleted", s.ProvidersDepleted),
		slog.Float64("provider_fill_mean", s.ProviderFillMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"birds", s.Birds,
		"wandering", s.Wandering,
		"moving", s.Moving,
		"eating", s.Eating,
		"drinking", s.Drinking,
		"bathing", s.Bathing,
		"perching", s.Perching,
		"nesting", s.Nesting,
		"fleeing", s.Fleeing,
		"exploring", s.Exploring,
		"playing", s.Playing,
		"targets_chosen", s.TargetsChosen,
		"retargets", s.Retargets,
		"targets_lost", s.TargetsLost,
		"started", s.Started,
		"completed", s.Completed,
		"panics", s.Panics,
		"calms", s.Calms,
		"depletions", s.Depletions,
		"hunger_served", s.HungerServed,
		"thirst_served", s.ThirstServed,
		"energy_served", s.EnergyServed,
		"hunger_mean", s.HungerMean,
		"hunger_p50", s.HungerP50,
		"hunger_p90", s.HungerP90,
		"thirst_mean", s.ThirstMean,
		"thirst_p90", s.ThirstP90,
		"energy_deficit_mean", s.EnergyMean,
		"fear_mean", s.FearMean,
		"fear_p90", s.FearP90,
		"providers", s.Providers,
		"providers_depleted", s.ProvidersDepleted,
		"provider_fill_mean", s.ProviderFillMean,
		"threats", s.Threats,
	)
}
