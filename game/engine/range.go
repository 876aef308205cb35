package engine

import (
	"container/heap"
	"errors"
	"fmt"
)

// ErrOutOfBounds reports a query position outside the grid. Unlike an
// unreachable goal, which is a normal tactical state, an out-of-bounds
// origin or goal is a caller bug.
var ErrOutOfBounds = errors.New("position outside map bounds")

// neighborOffsets is the fixed 4-directional expansion order: up, right,
// down, left. FindPath's tie-break contract depends on this order — an
// equal-cost route discovered later never replaces one discovered
// earlier, so two runs over the same inputs reconstruct the same path.
var neighborOffsets = [4]struct{ DX, DY int }{
	{0, -1}, // up
	{1, 0},  // right
	{0, 1},  // down
	{-1, 0}, // left
}

// frontierNode is one priority queue entry in the uniform-cost search
type frontierNode struct {
	pos  Position
	cost int
}

// frontier is a min-cost priority queue over positions. Equal costs are
// ordered by (y, x) so that settle order, and therefore path
// reconstruction, is reproducible across runs.
type frontier []frontierNode

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	if f[i].pos.Y != f[j].pos.Y {
		return f[i].pos.Y < f[j].pos.Y
	}
	return f[i].pos.X < f[j].pos.X
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(frontierNode)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// ComputeRange returns every tile the unit at origin can legally stop on
// this turn, mapped to the minimum movement cost to reach it.
//
// The search is a uniform-cost (Dijkstra) frontier expansion: terrain
// costs are heterogeneous, so plain breadth-first search would report
// wrong minimum costs. Neighbors outside the grid, impassable per the
// cost table, held by another unit, or costing more than the remaining
// budget are skipped. The origin itself is never treated as occupied,
// even if the supplied snapshot contains it.
//
// The result always contains origin with cost 0: a unit can always stay
// put. A budget of 0 or a fully boxed-in origin yields only the origin.
// None of the inputs are mutated.
//
// An out-of-bounds origin, a negative budget, or an unmapped terrain
// classification is a contract violation and returns an error.
func ComputeRange(origin Position, budget int, grid *Grid, costs CostTable, occupied map[Position]bool) (Reachability, error) {
	if !grid.InBounds(origin) {
		return nil, fmt.Errorf("compute range: origin (%d,%d) on %dx%d map: %w",
			origin.X, origin.Y, grid.Width(), grid.Height(), ErrOutOfBounds)
	}
	if budget < 0 {
		return nil, fmt.Errorf("compute range: movement budget must be non-negative, got %d", budget)
	}

	best := Reachability{origin: 0}
	open := &frontier{{pos: origin, cost: 0}}
	heap.Init(open)

	for open.Len() > 0 {
		cur := heap.Pop(open).(frontierNode)
		if cur.cost > best[cur.pos] {
			continue // stale queue entry, already improved
		}

		for _, d := range neighborOffsets {
			next := Position{X: cur.pos.X + d.DX, Y: cur.pos.Y + d.DY}
			if !grid.InBounds(next) {
				continue
			}
			if occupied[next] && next != origin {
				continue
			}
			stepCost, passable, err := costs.Cost(grid.TerrainAt(next))
			if err != nil {
				return nil, fmt.Errorf("compute range: tile (%d,%d): %w", next.X, next.Y, err)
			}
			if !passable {
				continue
			}
			candidate := cur.cost + stepCost
			if candidate > budget {
				continue
			}
			if known, seen := best[next]; seen && candidate >= known {
				continue
			}
			best[next] = candidate
			heap.Push(open, frontierNode{pos: next, cost: candidate})
		}
	}

	return best, nil
}
