package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sanctuary/components"
)

// updateTelemetry feeds this tick's facts to the collectors and flushes
// the stats window when it is due.
func (s *Sanctuary) updateTelemetry() {
	for _, f := range s.facts {
		s.collector.Record(f)
		s.lifetimes.Record(f)
	}
	if err := s.store.Append(s.facts); err != nil {
		slog.Error("failed to journal facts", "error", err)
	}

	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		s.lifetimes.UpdateNeeds(b.ID, &b.Needs)
		s.lifetimes.UpdateAge(b.ID, s.tick, s.dt)
	}

	s.flushTelemetry()
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Sanctuary) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	s.sampleFlock()
	stats := s.collector.Flush(s.tick, &s.sample)
	perfStats := s.perf.Stats(s.flock.Len())

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if err := s.store.SaveMeta("bookmark_"+string(bm.Type), bm.Description); err != nil {
			slog.Error("failed to save bookmark", "error", err)
		}
	}
}

// sampleFlock fills the end-of-window snapshot from current state.
func (s *Sanctuary) sampleFlock() {
	smp := &s.sample
	smp.Reset()

	for i := 0; i < s.flock.Len(); i++ {
		b := s.flock.At(i)
		if b.State < components.NumStates {
			smp.StateCounts[b.State]++
		}
		for n := components.Need(0); n < components.NumNeeds; n++ {
			smp.Needs[n] = append(smp.Needs[n], float64(b.Needs[n]))
		}
	}

	var fillSum float64
	var limited int
	s.providers.Each(func(_ ecs.Entity, _ components.Position, p components.Provider) bool {
		smp.Providers++
		if p.Unlimited() {
			return true
		}
		limited++
		fillSum += float64(p.Capacity / p.MaxCapacity)
		if p.Depleted() {
			smp.ProvidersDepleted++
		}
		return true
	})
	if limited > 0 {
		smp.ProviderFillMean = fillSum / float64(limited)
	}
	smp.Threats = s.threats.Len()
}
