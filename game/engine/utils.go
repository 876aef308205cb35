package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountTerrain counts the tiles of a given classification on the grid
func CountTerrain(grid *Grid, terrain Terrain) int {
	count := 0
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if grid.TerrainAt(Position{X: x, Y: y}) == terrain {
				count++
			}
		}
	}
	return count
}

// CountPassable counts the tiles a unit could in principle enter,
// ignoring occupancy and budgets. Unmapped terrain is counted as
// impassable here; stage validation guarantees it cannot occur in a
// loaded stage.
func CountPassable(grid *Grid, costs CostTable) int {
	count := 0
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if ok, err := costs.Passable(grid.TerrainAt(Position{X: x, Y: y})); err == nil && ok {
				count++
			}
		}
	}
	return count
}

// NearestUnit finds the closest unit (by Manhattan distance) on the given
// team, excluding the unit with fromID. Returns false if the team has no
// other units.
func NearestUnit(state *BattleState, from Position, fromID string, team Team) (*Unit, int, bool) {
	minDistance := -1
	var nearest *Unit

	for _, u := range state.Units {
		if u.ID == fromID || u.Team != team {
			continue
		}
		distance := ManhattanDistance(from, u.Pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = u
		}
	}

	return nearest, minDistance, nearest != nil
}
