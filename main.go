package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/sanctuary/config"
	"github.com/pthm-cable/sanctuary/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	factsDB := flag.String("facts-db", "", "SQLite file to journal facts into (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := game.NewSanctuary(cfg, game.Options{
		Seed:        rngSeed,
		StatsWindow: *statsWindow,
		OutputDir:   *outputDir,
		FactsDB:     *factsDB,
		LogStats:    *logStats,
	})
	if err != nil {
		slog.Error("failed to create sanctuary", "error", err)
		os.Exit(1)
	}
	s.SeedScenario()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"stats_window", *statsWindow,
		"max_ticks", *maxTicks,
	)
	for _, info := range s.Phases().All() {
		slog.Debug("phase", "id", info.ID, "name", info.Name, "category", info.Category)
	}

	// Stop cleanly on Ctrl-C so outputs get flushed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	for ctx.Err() == nil && (*maxTicks <= 0 || int(s.Tick()) < *maxTicks) {
		s.Step()
	}
	slog.Info("simulation stopped",
		"tick", s.Tick(),
		"sim_time", s.Now(),
		"elapsed", time.Since(start).String(),
	)

	if err := s.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
		os.Exit(1)
	}
}
