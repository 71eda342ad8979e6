package systems

import (
	"testing"

	"github.com/pthm-cable/sanctuary/components"
)

func testThreatField() *ThreatField {
	return &ThreatField{nextID: 1, DetectionRadius: 300, FearGain: 2, AlertRadius: 150, AlertFear: 0.25}
}

func TestThreatField_Exposure(t *testing.T) {
	f := testThreatField()
	f.Add(components.Position{X: 0, Y: 0})

	tests := []struct {
		name string
		pos  components.Position
		want float32
	}{
		{"on top", components.Position{}, 2 * 0.5},
		{"halfway", components.Position{X: 150}, 2 * 0.5 * 0.5},
		{"edge", components.Position{X: 300}, 0},
		{"outside", components.Position{X: 500}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Exposure(tt.pos, 0.5); !approx(got, tt.want, 1e-5) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThreatField_ExposureSums(t *testing.T) {
	f := testThreatField()
	f.Add(components.Position{X: 0, Y: 0})
	f.Add(components.Position{X: 0, Y: 0})
	if got := f.Exposure(components.Position{}, 1); !approx(got, 4, 1e-5) {
		t.Errorf("two predators: got %v, want 4", got)
	}
}

func TestThreatField_NearestAndLifecycle(t *testing.T) {
	f := testThreatField()
	far := f.Add(components.Position{X: 250, Y: 0})
	near := f.Add(components.Position{X: 50, Y: 0})

	pos, d, ok := f.Nearest(components.Position{})
	if !ok || pos.X != 50 || !approx(d, 50, 1e-5) {
		t.Errorf("nearest: got %+v d=%v ok=%v", pos, d, ok)
	}

	f.Move(near, components.Position{X: 1000, Y: 0})
	if pos, _, _ := f.Nearest(components.Position{}); pos.X != 250 {
		t.Errorf("after move, nearest should be the far predator, got %+v", pos)
	}

	f.Remove(far)
	if _, _, ok := f.Nearest(components.Position{}); ok {
		t.Error("no predator should remain in range")
	}
	if f.Remove(far) {
		t.Error("removing twice should report false")
	}
	if f.Len() != 1 {
		t.Errorf("Len: got %d, want 1", f.Len())
	}
}

func TestThreatField_AlertFearAt(t *testing.T) {
	f := testThreatField()
	if got := f.AlertFearAt(0); !approx(got, 0.25, 1e-6) {
		t.Errorf("at caller: got %v", got)
	}
	if got := f.AlertFearAt(75); !approx(got, 0.125, 1e-6) {
		t.Errorf("halfway: got %v", got)
	}
	if got := f.AlertFearAt(150); got != 0 {
		t.Errorf("at radius: got %v, want 0", got)
	}
}
