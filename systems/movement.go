package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/sanctuary/components"
	"github.com/pthm-cable/sanctuary/config"
)

// Steering is the destination the movement layer should head for.
type Steering struct {
	Dest  components.Position
	Speed float32 // desired speed; 0 means hold position
}

// Bounds represents the sanctuary extents.
type Bounds struct {
	Width, Height float32
}

// MovementResolver turns a bird's state and target into a steering
// destination. It does no path following or collision handling.
type MovementResolver struct {
	noise  opensimplex.Noise
	bounds Bounds

	wanderSpeed  float32
	moveSpeed    float32
	fleeSpeed    float32
	lookahead    float32
	noiseScale   float64
	fleeDistance float32
}

// NewMovementResolver creates a resolver. Wander headings come from
// seeded simplex noise so runs are reproducible.
func NewMovementResolver(cfg *config.Config, seed int64) *MovementResolver {
	return &MovementResolver{
		noise:        opensimplex.NewNormalized(seed),
		bounds:       Bounds{Width: cfg.Derived.WorldW32, Height: cfg.Derived.WorldH32},
		wanderSpeed:  float32(cfg.Movement.WanderSpeed),
		moveSpeed:    float32(cfg.Movement.MoveSpeed),
		fleeSpeed:    float32(cfg.Movement.FleeSpeed),
		lookahead:    float32(cfg.Movement.WanderLookahead),
		noiseScale:   cfg.Movement.WanderNoise,
		fleeDistance: float32(cfg.Movement.FleeDistance),
	}
}

// Bounds returns the world extents the resolver clamps to.
func (m *MovementResolver) Bounds() Bounds {
	return m.bounds
}

// Resolve computes steering for a bird. target is the position of the
// bird's validated target; hasTarget is false when it has none.
func (m *MovementResolver) Resolve(b *components.Bird, target components.Position, hasTarget bool, now float64) Steering {
	switch {
	case b.State == components.StateFleeing:
		if b.HasThreat {
			dx, dy := normalize(b.Pos.X-b.Threat.X, b.Pos.Y-b.Threat.Y)
			if dx == 0 && dy == 0 {
				dx, dy = m.wanderHeading(b, now)
			}
			return Steering{Dest: m.clampDest(b.Pos.X+dx*m.fleeDistance, b.Pos.Y+dy*m.fleeDistance), Speed: m.fleeSpeed}
		}
		dx, dy := m.wanderHeading(b, now)
		return Steering{Dest: m.clampDest(b.Pos.X+dx*m.fleeDistance, b.Pos.Y+dy*m.fleeDistance), Speed: m.fleeSpeed}

	case b.State == components.StateMovingToTarget && hasTarget:
		return Steering{Dest: target, Speed: m.moveSpeed}

	case b.State.IsActivity():
		if hasTarget {
			return Steering{Dest: target}
		}
		return Steering{Dest: b.Pos}
	}

	dx, dy := m.wanderHeading(b, now)
	return Steering{Dest: m.clampDest(b.Pos.X+dx*m.lookahead, b.Pos.Y+dy*m.lookahead), Speed: m.wanderSpeed}
}

// wanderHeading samples a unit heading from noise along the bird's own
// track, so each bird drifts smoothly and independently.
func (m *MovementResolver) wanderHeading(b *components.Bird, now float64) (float32, float32) {
	v := m.noise.Eval2(float64(b.ID)*7.31, now*m.noiseScale)
	angle := v * 4 * math.Pi
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

func (m *MovementResolver) clampDest(x, y float32) components.Position {
	return components.Position{
		X: clampFloat(x, 0, m.bounds.Width),
		Y: clampFloat(y, 0, m.bounds.Height),
	}
}

// Integrate moves a bird toward its steering destination. Velocity blends
// toward the desired velocity at the given responsiveness, slowing on
// approach; positions stay inside bounds.
func Integrate(b *components.Bird, st Steering, bounds Bounds, responsiveness, dt float32) {
	if !(dt > 0) {
		return
	}

	var desiredX, desiredY float32
	dx := st.Dest.X - b.Pos.X
	dy := st.Dest.Y - b.Pos.Y
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if st.Speed > 0 && dist > 1e-3 {
		speed := st.Speed
		// Arrive: slow down inside the last second of travel
		if dist < speed {
			speed = dist
		}
		desiredX = dx / dist * speed
		desiredY = dy / dist * speed
	}

	blend := clampFloat(responsiveness*dt, 0, 1)
	b.Vel.X += (desiredX - b.Vel.X) * blend
	b.Vel.Y += (desiredY - b.Vel.Y) * blend

	// Limit velocity
	if st.Speed > 0 {
		velMag := velocityMagnitude(b.Vel.X, b.Vel.Y)
		if velMag > st.Speed {
			scale := st.Speed / velMag
			b.Vel.X *= scale
			b.Vel.Y *= scale
		}
	}

	b.Pos.X += b.Vel.X * dt
	b.Pos.Y += b.Vel.Y * dt

	// Walls on all sides
	if b.Pos.X < 0 {
		b.Pos.X = 0
		b.Vel.X *= -0.3
	}
	if b.Pos.X > bounds.Width {
		b.Pos.X = bounds.Width
		b.Vel.X *= -0.3
	}
	if b.Pos.Y < 0 {
		b.Pos.Y = 0
		b.Vel.Y *= -0.3
	}
	if b.Pos.Y > bounds.Height {
		b.Pos.Y = bounds.Height
		b.Vel.Y *= -0.3
	}
}
