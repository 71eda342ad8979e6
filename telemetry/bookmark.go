package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkMassPanic     BookmarkType = "mass_panic"
	BookmarkFeederRush    BookmarkType = "feeder_rush"
	BookmarkCalmSanctuary BookmarkType = "calm_sanctuary"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// Thresholds for bookmark detection.
const (
	massPanicFraction = 0.4 // fraction of the flock fleeing at window end
	massPanicMinBirds = 3
	rushFactor        = 2.0 // eating count vs rolling average
	rushMinEating     = 4
	calmFearMax       = 0.05
	calmHungerMax     = 0.5
	calmWindows       = 5
)

// BookmarkDetector detects interesting moments in the sanctuary.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	panicking        bool // last window was a mass panic
	calmWindowsCount int  // consecutive calm windows
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < calmWindows {
		historySize = calmWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Mass panic: large share of the flock fleeing at once
	if b := bd.checkMassPanic(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Feeder rush: eating count spikes above the rolling average
	if b := bd.checkFeederRush(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Calm sanctuary: no panics and well-fed birds over several windows
	if b := bd.checkCalmSanctuary(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkMassPanic(stats WindowStats) *Bookmark {
	if stats.Birds == 0 {
		bd.panicking = false
		return nil
	}
	frac := float64(stats.Fleeing) / float64(stats.Birds)
	now := frac >= massPanicFraction && stats.Fleeing >= massPanicMinBirds
	// Edge triggered: one bookmark per panic episode
	fire := now && !bd.panicking
	bd.panicking = now
	if !fire {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkMassPanic,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d of %d birds fleeing (%.0f%%), %d panics this window", stats.Fleeing, stats.Birds, frac*100, stats.Panics),
	}
}

func (bd *BookmarkDetector) checkFeederRush(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Eating
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Eating) > avg*rushFactor && stats.Eating >= rushMinEating {
		return &Bookmark{
			Type:        BookmarkFeederRush,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d birds eating, %.1fx average (%.1f)", stats.Eating, float64(stats.Eating)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCalmSanctuary(stats WindowStats) *Bookmark {
	if stats.Birds == 0 || stats.Panics > 0 || stats.FearMean > calmFearMax || stats.HungerMean > calmHungerMax {
		bd.calmWindowsCount = 0
		return nil
	}

	bd.calmWindowsCount++
	if bd.calmWindowsCount == calmWindows { // trigger exactly once per calm stretch
		return &Bookmark{
			Type:        BookmarkCalmSanctuary,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Calm sanctuary with %d birds over %d windows (hunger %.2f, fear %.2f)", stats.Birds, calmWindows, stats.HungerMean, stats.FearMean),
		}
	}
	return nil
}
