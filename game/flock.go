package game

import "github.com/pthm-cable/sanctuary/components"

// Flock is a dense arena of birds with a stable-ID index.
// Pointers returned by Get are valid until the next Spawn or Despawn.
type Flock struct {
	birds  []components.Bird
	index  map[components.BirdID]int
	nextID components.BirdID
}

// NewFlock creates an empty flock.
func NewFlock() *Flock {
	return &Flock{
		index:  make(map[components.BirdID]int),
		nextID: 1,
	}
}

// Spawn adds a bird in the Wandering state and returns it.
func (f *Flock) Spawn(species components.SpeciesID, pos components.Position) *components.Bird {
	id := f.nextID
	f.nextID++

	f.birds = append(f.birds, components.Bird{
		ID:           id,
		Species:      species,
		Pos:          pos,
		State:        components.StateWandering,
		TargetAction: components.ActionNone,
	})
	f.index[id] = len(f.birds) - 1
	return &f.birds[len(f.birds)-1]
}

// Despawn removes a bird and returns its final state.
// The last bird takes the freed slot.
func (f *Flock) Despawn(id components.BirdID) (components.Bird, bool) {
	i, ok := f.index[id]
	if !ok {
		return components.Bird{}, false
	}
	gone := f.birds[i]
	last := len(f.birds) - 1
	if i != last {
		f.birds[i] = f.birds[last]
		f.index[f.birds[i].ID] = i
	}
	f.birds = f.birds[:last]
	delete(f.index, id)
	return gone, true
}

// Get returns the bird with the given ID, or nil.
func (f *Flock) Get(id components.BirdID) *components.Bird {
	if i, ok := f.index[id]; ok {
		return &f.birds[i]
	}
	return nil
}

// At returns the bird in slot i.
func (f *Flock) At(i int) *components.Bird {
	return &f.birds[i]
}

// Len returns the number of birds.
func (f *Flock) Len() int {
	return len(f.birds)
}
