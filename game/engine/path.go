package engine

import (
	"container/heap"
	"fmt"
)

// FindPath returns a minimum-cost route from start to goal within the
// movement budget, or an empty path when no such route exists. "No path"
// is a normal tactical outcome, not an error: the goal may be out of
// budget, impassable, occupied by another unit, or cut off.
//
// The search is the same uniform-cost expansion as ComputeRange,
// augmented with a predecessor map and early termination when goal is
// popped from the frontier — popped, not merely recorded, so the cost is
// final under the settle-on-pop invariant. The reconstructed path's
// cumulative terrain cost therefore always equals the cost ComputeRange
// reports for the goal.
//
// Tie-break: neighbors expand in the fixed up, right, down, left order
// and an equal-cost candidate never replaces an earlier predecessor, so
// among equally cheap routes the one found first in that order wins.
// Replays and path-equality tests rely on this.
//
// A goal occupied by another unit is always unreachable, even when
// adjacent tiles are free; there is no swap or displace semantics.
// start == goal returns the single-element path [start]. Out-of-bounds
// start or goal and negative budgets are contract violations and return
// an error.
func FindPath(start, goal Position, budget int, grid *Grid, costs CostTable, occupied map[Position]bool) (Path, error) {
	if !grid.InBounds(start) {
		return nil, fmt.Errorf("find path: start (%d,%d) on %dx%d map: %w",
			start.X, start.Y, grid.Width(), grid.Height(), ErrOutOfBounds)
	}
	if !grid.InBounds(goal) {
		return nil, fmt.Errorf("find path: goal (%d,%d) on %dx%d map: %w",
			goal.X, goal.Y, grid.Width(), grid.Height(), ErrOutOfBounds)
	}
	if budget < 0 {
		return nil, fmt.Errorf("find path: movement budget must be non-negative, got %d", budget)
	}

	if start == goal {
		return Path{start}, nil
	}
	if occupied[goal] {
		return nil, nil
	}

	best := map[Position]int{start: 0}
	prev := make(map[Position]Position)
	settled := make(map[Position]bool)
	open := &frontier{{pos: start, cost: 0}}
	heap.Init(open)

	for open.Len() > 0 {
		cur := heap.Pop(open).(frontierNode)
		if settled[cur.pos] {
			continue
		}
		settled[cur.pos] = true

		if cur.pos == goal {
			return reconstructPath(prev, start, goal), nil
		}

		for _, d := range neighborOffsets {
			next := Position{X: cur.pos.X + d.DX, Y: cur.pos.Y + d.DY}
			if !grid.InBounds(next) {
				continue
			}
			if occupied[next] && next != start {
				continue
			}
			stepCost, passable, err := costs.Cost(grid.TerrainAt(next))
			if err != nil {
				return nil, fmt.Errorf("find path: tile (%d,%d): %w", next.X, next.Y, err)
			}
			if !passable {
				continue
			}
			candidate := cur.cost + stepCost
			if candidate > budget {
				continue
			}
			// Strict improvement only: at equal cost the predecessor
			// recorded first (earlier in expansion order) stays.
			if known, seen := best[next]; seen && candidate >= known {
				continue
			}
			best[next] = candidate
			prev[next] = cur.pos
			heap.Push(open, frontierNode{pos: next, cost: candidate})
		}
	}

	return nil, nil
}

// PathCost sums the terrain cost of entering each tile after the first.
// It mirrors the cost model of the frontier search: the start tile is
// free, every subsequent tile charges its entering cost.
func PathCost(p Path, grid *Grid, costs CostTable) (int, error) {
	total := 0
	for i := 1; i < len(p); i++ {
		stepCost, passable, err := costs.Cost(grid.TerrainAt(p[i]))
		if err != nil {
			return 0, err
		}
		if !passable {
			return 0, fmt.Errorf("path cost: tile (%d,%d) is impassable", p[i].X, p[i].Y)
		}
		total += stepCost
	}
	return total, nil
}

// reconstructPath walks the predecessor map backward from goal to start,
// then reverses the sequence.
func reconstructPath(prev map[Position]Position, start, goal Position) Path {
	path := Path{goal}
	for cur := goal; cur != start; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
