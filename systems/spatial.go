// Package systems provides the bird decision core: needs, provider registry,
// utility scoring, arbitration, the behavior state machine and steering.
package systems

import (
	"github.com/mlange-42/ark/ecs"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	X, Y   float32 // entity position
	DX, DY float32 // delta from query origin
	DistSq float32 // squared distance (avoid sqrt in hot path)
}

type gridEntry struct {
	e    ecs.Entity
	x, y float32
}

// SpatialGrid provides cell-based neighbor lookups over a bounded world.
// Entries are non-owning; callers filter dead entities themselves.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	height   float32
	cells    [][]gridEntry
	count    int
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]gridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Len returns the number of entries, including stale ones not yet pruned.
func (g *SpatialGrid) Len() int {
	return g.count
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], gridEntry{e: e, x: x, y: y})
	g.count++
}

// Remove deletes an entity previously inserted at (x, y).
// Returns false if it was not found in that cell.
func (g *SpatialGrid) Remove(e ecs.Entity, x, y float32) bool {
	idx := g.cellIndex(x, y)
	cell := g.cells[idx]
	for i := range cell {
		if cell[i].e == e {
			last := len(cell) - 1
			cell[i] = cell[last]
			g.cells[idx] = cell[:last]
			g.count--
			return true
		}
	}
	return false
}

// Prune drops entries for which alive returns false and returns how many
// were removed.
func (g *SpatialGrid) Prune(alive func(ecs.Entity) bool) int {
	removed := 0
	for idx, cell := range g.cells {
		kept := cell[:0]
		for _, entry := range cell {
			if alive(entry.e) {
				kept = append(kept, entry)
			} else {
				removed++
			}
		}
		// Zero the tail so dropped handles don't linger in the backing array
		for i := len(kept); i < len(cell); i++ {
			cell[i] = gridEntry{}
		}
		g.cells[idx] = kept
	}
	g.count -= removed
	return removed
}

// Visit calls fn for every entry within radius of (x, y).
// Iteration stops early when fn returns false. Order is by cell, then
// insertion; callers must not rely on it.
func (g *SpatialGrid) Visit(x, y, radius float32, fn func(Neighbor) bool) {
	if radius < 0 {
		return
	}
	radiusSq := radius * radius

	minCol, minRow := g.cellCoords(x-radius, y-radius)
	maxCol, maxRow := g.cellCoords(x+radius, y+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, entry := range g.cells[row*g.cols+col] {
				dx := entry.x - x
				dy := entry.y - y
				distSq := dx*dx + dy*dy
				if distSq > radiusSq {
					continue
				}
				if !fn(Neighbor{E: entry.e, X: entry.x, Y: entry.y, DX: dx, DY: dy, DistSq: distSq}) {
					return
				}
			}
		}
	}
}

// cellCoords returns the clamped column and row for a world position.
func (g *SpatialGrid) cellCoords(x, y float32) (col, row int) {
	// NaN and negative coordinates land in the first cell
	if x >= 0 && x < g.width+g.cellSize {
		col = int(x / g.cellSize)
	} else if x >= g.width+g.cellSize {
		col = g.cols - 1
	}
	if y >= 0 && y < g.height+g.cellSize {
		row = int(y / g.cellSize)
	} else if y >= g.height+g.cellSize {
		row = g.rows - 1
	}

	if col >= g.cols {
		col = g.cols - 1
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}
