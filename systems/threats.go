package systems

import (
	"math"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
)

// ThreatID identifies a registered predator.
type ThreatID uint32

type threat struct {
	id  ThreatID
	pos components.Position
}

// ThreatField tracks predators and converts proximity into fear.
// Threat counts are small, so lookups scan a slice in insertion order.
type ThreatField struct {
	threats []threat
	nextID  ThreatID

	DetectionRadius float32
	FearGain        float32
	AlertRadius     float32
	AlertFear       float32
}

// NewThreatField creates an empty threat field from the predator config.
func NewThreatField(cfg *config.Config) *ThreatField {
	return &ThreatField{
		nextID:          1,
		DetectionRadius: float32(cfg.Predator.DetectionRadius),
		FearGain:        float32(cfg.Predator.FearGain),
		AlertRadius:     float32(cfg.Predator.AlertRadius),
		AlertFear:       float32(cfg.Predator.AlertFear),
	}
}

// Add registers a predator at pos.
func (f *ThreatField) Add(pos components.Position) ThreatID {
	id := f.nextID
	f.nextID++
	f.threats = append(f.threats, threat{id: id, pos: pos})
	return id
}

// Move updates a predator's position.
func (f *ThreatField) Move(id ThreatID, pos components.Position) bool {
	for i := range f.threats {
		if f.threats[i].id == id {
			f.threats[i].pos = pos
			return true
		}
	}
	return false
}

// Remove unregisters a predator.
func (f *ThreatField) Remove(id ThreatID) bool {
	for i := range f.threats {
		if f.threats[i].id == id {
			f.threats = append(f.threats[:i], f.threats[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of active predators.
func (f *ThreatField) Len() int {
	return len(f.threats)
}

// Nearest returns the closest predator within the detection radius.
func (f *ThreatField) Nearest(pos components.Position) (components.Position, float32, bool) {
	var (
		best  components.Position
		bestD = float32(math.MaxFloat32)
		found bool
	)
	r := f.DetectionRadius
	for _, t := range f.threats {
		d := pos.Dist(t.pos)
		if d < r && d < bestD {
			best, bestD, found = t.pos, d, true
		}
	}
	return best, bestD, found
}

// Exposure returns the fear a bird at pos gains over dt from all predators
// in range: gain * (1 - d/r) * dt per predator.
func (f *ThreatField) Exposure(pos components.Position, dt float32) float32 {
	r := f.DetectionRadius
	if !(r > 0) || !(dt > 0) {
		return 0
	}
	var total float32
	for _, t := range f.threats {
		d := pos.Dist(t.pos)
		if d < r {
			total += f.FearGain * (1 - d/r) * dt
		}
	}
	return total
}

// AlertFearAt returns the fear an alert call at distance d induces.
func (f *ThreatField) AlertFearAt(d float32) float32 {
	r := f.AlertRadius
	if !(r > 0) || !(d < r) {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return f.AlertFear * (1 - d/r)
}
