package systems

import (
	"iter"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sanctuary/components"
)

// ProviderHit is one provider returned by a registry query.
// Provider is a copy; mutate through the registry.
type ProviderHit struct {
	Entity   ecs.Entity
	Pos      components.Position
	Provider components.Provider
	Distance float32
}

// ProviderRegistry answers spatial queries over utility providers.
// Providers are ark entities, so handles are generational: a handle to a
// removed provider stays detectably dead even if its slot is reused.
// The spatial index holds non-owning handles and is pruned lazily.
type ProviderRegistry struct {
	world   *ecs.World
	mapper  *ecs.Map2[components.Position, components.Provider]
	posMap  *ecs.Map[components.Position]
	provMap *ecs.Map[components.Provider]
	filter  *ecs.Filter2[components.Position, components.Provider]
	grid    *SpatialGrid
	live    int
}

// NewProviderRegistry creates a registry covering the given world size.
func NewProviderRegistry(width, height, cellSize float32) *ProviderRegistry {
	world := ecs.NewWorld()
	return &ProviderRegistry{
		world:   world,
		mapper:  ecs.NewMap2[components.Position, components.Provider](world),
		posMap:  ecs.NewMap[components.Position](world),
		provMap: ecs.NewMap[components.Provider](world),
		filter:  ecs.NewFilter2[components.Position, components.Provider](world),
		grid:    NewSpatialGrid(width, height, cellSize),
	}
}

// Add registers a provider at pos and returns its handle.
func (r *ProviderRegistry) Add(pos components.Position, p components.Provider) ecs.Entity {
	e := r.mapper.NewEntity(&pos, &p)
	r.grid.Insert(e, pos.X, pos.Y)
	r.live++
	return e
}

// Remove unregisters a provider. The spatial index keeps a stale entry
// until the next Prune; queries skip it. Returns false for unknown or
// already removed handles.
func (r *ProviderRegistry) Remove(e ecs.Entity) bool {
	if !r.Alive(e) {
		return false
	}
	r.world.RemoveEntity(e)
	r.live--
	return true
}

// Alive reports whether the handle refers to a registered provider.
func (r *ProviderRegistry) Alive(e ecs.Entity) bool {
	if e.IsZero() || !r.world.Alive(e) {
		return false
	}
	return r.provMap.Has(e)
}

// Get returns a provider's position and a copy of its data.
func (r *ProviderRegistry) Get(e ecs.Entity) (components.Position, components.Provider, bool) {
	if !r.Alive(e) {
		return components.Position{}, components.Provider{}, false
	}
	pos, prov := r.mapper.Get(e)
	return *pos, *prov, true
}

// Query returns the live providers of the given action within maxRange of
// pos. The sequence is lazy and unordered; it reflects registry state at
// iteration time, so callers re-query every decision cycle.
func (r *ProviderRegistry) Query(pos components.Position, action components.Action, maxRange float32) iter.Seq[ProviderHit] {
	return func(yield func(ProviderHit) bool) {
		if !(maxRange > 0) {
			return
		}
		r.grid.Visit(pos.X, pos.Y, maxRange, func(n Neighbor) bool {
			if !r.Alive(n.E) {
				return true
			}
			prov := r.provMap.Get(n.E)
			if prov.Action != action {
				return true
			}
			return yield(ProviderHit{
				Entity:   n.E,
				Pos:      components.Position{X: n.X, Y: n.Y},
				Provider: *prov,
				Distance: float32(math.Sqrt(float64(n.DistSq))),
			})
		})
	}
}

// Deplete removes up to amount of supply from a limited provider and
// returns the remaining capacity. Unlimited and dead providers are
// untouched; depleted reports whether the provider is now empty.
func (r *ProviderRegistry) Deplete(e ecs.Entity, amount float32) (remaining float32, depleted bool) {
	if !r.Alive(e) {
		return 0, true
	}
	prov := r.provMap.Get(e)
	if prov.Unlimited() {
		return 0, false
	}
	if amount > 0 {
		prov.Capacity -= amount
		if prov.Capacity < 0 {
			prov.Capacity = 0
		}
	}
	return prov.Capacity, prov.Capacity <= 0
}

// Refill adds supply to a limited provider, up to its maximum.
// A non-positive amount refills completely.
func (r *ProviderRegistry) Refill(e ecs.Entity, amount float32) bool {
	if !r.Alive(e) {
		return false
	}
	prov := r.provMap.Get(e)
	if prov.Unlimited() {
		return true
	}
	if amount <= 0 {
		prov.Capacity = prov.MaxCapacity
	} else {
		prov.Capacity = clampFloat(prov.Capacity+amount, 0, prov.MaxCapacity)
	}
	return true
}

// SetBaseUtility adjusts a provider's desirability (upgrades, seasonal changes).
func (r *ProviderRegistry) SetBaseUtility(e ecs.Entity, u float32) bool {
	if !r.Alive(e) {
		return false
	}
	r.provMap.Get(e).BaseUtility = u
	return true
}

// Move relocates a provider and updates the spatial index.
func (r *ProviderRegistry) Move(e ecs.Entity, pos components.Position) bool {
	if !r.Alive(e) {
		return false
	}
	cur := r.posMap.Get(e)
	r.grid.Remove(e, cur.X, cur.Y)
	*cur = pos
	r.grid.Insert(e, pos.X, pos.Y)
	return true
}

// Prune drops stale handles from the spatial index.
func (r *ProviderRegistry) Prune() int {
	return r.grid.Prune(r.Alive)
}

// Len returns the number of registered providers.
func (r *ProviderRegistry) Len() int {
	return r.live
}

// Each calls fn for every registered provider until fn returns false.
func (r *ProviderRegistry) Each(fn func(e ecs.Entity, pos components.Position, p components.Provider) bool) {
	query := r.filter.Query()
	for query.Next() {
		pos, prov := query.Get()
		if !fn(query.Entity(), *pos, *prov) {
			query.Close()
			return
		}
	}
}
