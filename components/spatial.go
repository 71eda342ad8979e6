package components

import "math"

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y float32
}

// DistSq returns the squared distance between two positions.
func (p Position) DistSq(o Position) float32 {
	dx := o.X - p.X
	dy := o.Y - p.Y
	return dx*dx + dy*dy
}

// Dist returns the distance between two positions.
func (p Position) Dist(o Position) float32 {
	return float32(math.Sqrt(float64(p.DistSq(o))))
}
