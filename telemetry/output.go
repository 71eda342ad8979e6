package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
)

// OutputManager handles structured experiment output with CSV logging.
// Each run writes into its own subdirectory named by a fresh run id.
type OutputManager struct {
	dir           string
	runID         string
	telemetryFile *os.File
	perfFile      *os.File
	bookmarkFile  *os.File
	lifetimeFile  *os.File

	// Track if headers have been written
	telemetryHeaderWritten bool
	perfHeaderWritten      bool
	bookmarkHeaderWritten  bool
	lifetimeHeaderWritten  bool
}

// LifetimeRecord is the CSV row written when a bird leaves the sanctuary.
type LifetimeRecord struct {
	BirdID        uint32  `csv:"bird_id"`
	Species       string  `csv:"species"`
	SpawnTick     int32   `csv:"spawn_tick"`
	AgeSec        float32 `csv:"age_sec"`
	TargetsChosen int     `csv:"targets_chosen"`
	Retargets     int     `csv:"retargets"`
	TargetsLost   int     `csv:"targets_lost"`
	Completed     int     `csv:"completed"`
	Panics        int     `csv:"panics"`
	HungerServed  float32 `csv:"hunger_served"`
	ThirstServed  float32 `csv:"thirst_served"`
	EnergyServed  float32 `csv:"energy_served"`
	PeakHunger    float32 `csv:"peak_hunger"`
	PeakFear      float32 `csv:"peak_fear"`
}

// NewLifetimeRecord flattens lifetime stats for CSV export.
func NewLifetimeRecord(id components.BirdID, species string, s *LifetimeStats) LifetimeRecord {
	completed := 0
	for _, c := range s.Completions {
		completed += c
	}
	return LifetimeRecord{
		BirdID:        uint32(id),
		Species:       species,
		SpawnTick:     s.SpawnTick,
		AgeSec:        s.AgeSec,
		TargetsChosen: s.TargetsChosen,
		Retargets:     s.Retargets,
		TargetsLost:   s.TargetsLost,
		Completed:     completed,
		Panics:        s.Panics,
		HungerServed:  s.Served[components.NeedHunger],
		ThirstServed:  s.Served[components.NeedThirst],
		EnergyServed:  s.Served[components.NeedEnergy],
		PeakHunger:    s.PeakHunger,
		PeakFear:      s.PeakFear,
	}
}

// NewRunID returns a fresh identifier for a simulation run.
func NewRunID() string {
	return uuid.NewString()
}

// NewOutputManager creates a new output manager under dir/runID.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir, runID string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if runID == "" {
		runID = NewRunID()
	}
	dir = filepath.Join(dir, runID)

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: runID}

	// Open telemetry.csv
	telemetryPath := filepath.Join(dir, "telemetry.csv")
	f, err := os.Create(telemetryPath)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	om.telemetryFile = f

	// Open perf.csv
	perfPath := filepath.Join(dir, "perf.csv")
	f, err = os.Create(perfPath)
	if err != nil {
		om.telemetryFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	// Open bookmarks.csv
	bookmarkPath := filepath.Join(dir, "bookmarks.csv")
	f, err = os.Create(bookmarkPath)
	if err != nil {
		om.telemetryFile.Close()
		om.perfFile.Close()
		return nil, fmt.Errorf("creating bookmarks.csv: %w", err)
	}
	om.bookmarkFile = f

	// Open lifetimes.csv
	lifetimePath := filepath.Join(dir, "lifetimes.csv")
	f, err = os.Create(lifetimePath)
	if err != nil {
		om.telemetryFile.Close()
		om.perfFile.Close()
		om.bookmarkFile.Close()
		return nil, fmt.Errorf("creating lifetimes.csv: %w", err)
	}
	om.lifetimeFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.telemetryHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.telemetryHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}

	csvRecord := stats.ToCSV(windowEnd)
	records := []PerfStatsCSV{csvRecord}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}

	records := []Bookmark{b}

	if !om.bookmarkHeaderWritten {
		if err := gocsv.Marshal(records, om.bookmarkFile); err != nil {
			return fmt.Errorf("writing bookmark: %w", err)
		}
		om.bookmarkHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.bookmarkFile); err != nil {
			return fmt.Errorf("writing bookmark: %w", err)
		}
	}

	return nil
}

// WriteLifetime writes a per-bird lifetime record to lifetimes.csv.
func (om *OutputManager) WriteLifetime(rec LifetimeRecord) error {
	if om == nil {
		return nil
	}

	records := []LifetimeRecord{rec}

	if !om.lifetimeHeaderWritten {
		if err := gocsv.Marshal(records, om.lifetimeFile); err != nil {
			return fmt.Errorf("writing lifetime: %w", err)
		}
		om.lifetimeHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.lifetimeFile); err != nil {
			return fmt.Errorf("writing lifetime: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// RunID returns the identifier of the run being written.
func (om *OutputManager) RunID() string {
	if om == nil {
		return ""
	}
	return om.runID
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.telemetryFile != nil {
		if err := om.telemetryFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.bookmarkFile != nil {
		if err := om.bookmarkFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.lifetimeFile != nil {
		if err := om.lifetimeFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
