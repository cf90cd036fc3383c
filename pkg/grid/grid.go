// Package grid implements the sparse, unbounded cell store for the engine.
// Only cells whose state differs from the default are held in memory, so the
// cost of a generation scales with the active region, never with the area of
// the bounding box.
package grid

import "sparse-ca/pkg/geom"

// Grid maps coordinates to non-default states and tracks two derived
// structures incrementally: the tight bounding box of the stored cells and
// the evaluation frontier, the set of coordinates that must be re-evaluated
// on the next generation.
//
// Grid is not safe for concurrent mutation. The engine contract is a strict
// read/compute/apply split per generation: Evaluate only reads, Apply
// mutates once, from a single goroutine.
type Grid struct {
	cells        map[geom.Point]int
	defaultState int

	hood    geom.Neighborhood
	closure []geom.Point

	frontier map[geom.Point]struct{}

	bounds   geom.Rect
	hasCells bool
}

// New creates an empty grid. Cells not explicitly set hold defaultState.
// The neighborhood fixes both the order of NeighborStates and, through its
// Minkowski self-sum, how far a single change dirties the frontier.
func New(defaultState int, hood geom.Neighborhood) *Grid {
	return &Grid{
		cells:        make(map[geom.Point]int),
		defaultState: defaultState,
		hood:         hood,
		closure:      hood.Closure(),
		frontier:     make(map[geom.Point]struct{}),
	}
}

// DefaultState returns the state of every coordinate not stored explicitly.
func (g *Grid) DefaultState() int { return g.defaultState }

// Neighborhood returns the configured offset list.
func (g *Grid) Neighborhood() geom.Neighborhood { return g.hood }

// Len returns the number of non-default cells.
func (g *Grid) Len() int { return len(g.cells) }

// State returns the stored state at p, or the default state if absent.
func (g *Grid) State(p geom.Point) int {
	if s, ok := g.cells[p]; ok {
		return s
	}
	return g.defaultState
}

// Cells exposes the backing map of non-default cells so collaborators
// (snapshots, streaming) can iterate without a copy. Callers must not
// mutate it.
func (g *Grid) Cells() map[geom.Point]int { return g.cells }

// Frontier exposes the set of coordinates pending re-evaluation. Read-only
// to callers; it is rebuilt wholesale by the next Apply.
func (g *Grid) Frontier() map[geom.Point]struct{} { return g.frontier }

// Bounds returns the tight bounding box of the stored cells. ok is false
// when the grid is empty; the Rect is meaningless then.
func (g *Grid) Bounds() (r geom.Rect, ok bool) { return g.bounds, g.hasCells }

// NeighborStates appends the states at p + offset for every configured
// offset, in order, to dst and returns it. The result always has exactly
// len(Neighborhood()) entries beyond the input. Pass a reused buffer to
// avoid per-cell allocation.
func (g *Grid) NeighborStates(p geom.Point, dst []int) []int {
	for _, off := range g.hood {
		dst = append(dst, g.State(p.Add(off)))
	}
	return dst
}

// dirty marks every cell reachable from p within the neighborhood closure
// as needing re-evaluation.
func (g *Grid) dirty(p geom.Point) {
	for _, off := range g.closure {
		g.frontier[p.Add(off)] = struct{}{}
	}
}

// SetState writes state at p. Setting the default state removes the cell.
// Any genuine change, including removal, dirties the closure of p: the
// neighbors need re-evaluation whether the cell appeared, changed color, or
// vanished.
func (g *Grid) SetState(p geom.Point, state int) {
	cur := g.State(p)
	if cur == state {
		return
	}
	g.dirty(p)
	if state == g.defaultState {
		delete(g.cells, p)
		g.shrinkAfterRemoval(p)
		return
	}
	g.cells[p] = state
	g.growBounds(p)
}

// Apply commits one generation's worth of changes as a single batch. The
// frontier is cleared first, so after Apply it holds exactly the closure of
// the cells that changed in this batch; an empty delta leaves an empty
// frontier and the automaton goes quiescent.
func (g *Grid) Apply(delta map[geom.Point]int) {
	clear(g.frontier)

	removedBoundary := false
	for p, state := range delta {
		cur := g.State(p)
		if cur == state {
			continue
		}
		g.dirty(p)
		if state == g.defaultState {
			delete(g.cells, p)
			if g.hasCells && g.onBoundary(p) {
				removedBoundary = true
			}
			continue
		}
		g.cells[p] = state
		g.growBounds(p)
	}

	if len(g.cells) == 0 {
		g.hasCells = false
	} else if removedBoundary {
		g.rescanBounds()
	}
}

// Load replaces the grid contents wholesale, typically from a snapshot.
// Entries already at the default state are pruned. The min/max hints from
// the caller are not trusted: bounds are re-derived from the cells so the
// tightness invariant holds even against a stale snapshot. The frontier
// becomes the closure of every loaded cell, so the first generation after a
// load evaluates everything that could matter.
func (g *Grid) Load(cells map[geom.Point]int, minHint, maxHint geom.Point) {
	_ = minHint
	_ = maxHint
	g.cells = make(map[geom.Point]int, len(cells))
	clear(g.frontier)
	g.hasCells = false
	for p, s := range cells {
		if s == g.defaultState {
			continue
		}
		g.cells[p] = s
		g.growBounds(p)
		g.dirty(p)
	}
}

// Clear empties the grid, the frontier, and invalidates the bounds.
func (g *Grid) Clear() {
	clear(g.cells)
	clear(g.frontier)
	g.hasCells = false
}

func (g *Grid) growBounds(p geom.Point) {
	if !g.hasCells {
		g.bounds = geom.Rect{Min: p, Max: p}
		g.hasCells = true
		return
	}
	g.bounds = g.bounds.Expand(p)
}

func (g *Grid) onBoundary(p geom.Point) bool {
	return p.X == g.bounds.Min.X || p.X == g.bounds.Max.X ||
		p.Y == g.bounds.Min.Y || p.Y == g.bounds.Max.Y
}

// shrinkAfterRemoval restores the bounds invariant after p was deleted.
// Removals interior to the box cannot change it; a boundary removal forces
// a full rescan so the box stays tight.
func (g *Grid) shrinkAfterRemoval(p geom.Point) {
	if len(g.cells) == 0 {
		g.hasCells = false
		return
	}
	if g.onBoundary(p) {
		g.rescanBounds()
	}
}

func (g *Grid) rescanBounds() {
	g.hasCells = false
	for p := range g.cells {
		g.growBounds(p)
	}
}
