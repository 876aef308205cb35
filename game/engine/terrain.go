package engine

import (
	"errors"
	"fmt"
)

// ErrUnmappedTerrain reports a terrain classification with no cost table
// entry. This is a data bug: silently defaulting a missing cost would
// corrupt tactical balance, so lookups fail fast instead.
var ErrUnmappedTerrain = errors.New("terrain has no cost table entry")

// TerrainCost is a single cost table entry. Impassable is a distinct
// marker rather than a very large cost, so no movement budget can ever
// afford an impassable tile.
type TerrainCost struct {
	Cost       int  `json:"cost,omitempty"`
	Impassable bool `json:"impassable,omitempty"`
}

// CostTable maps terrain classifications to movement costs. It must be
// total over every classification the stage layout can produce; stage
// validation enforces this before a battle starts.
type CostTable map[Terrain]TerrainCost

// Cost returns the movement-point cost of entering terrain tr. The
// second return is false when the terrain is impassable. An unmapped
// classification returns ErrUnmappedTerrain.
func (t CostTable) Cost(tr Terrain) (int, bool, error) {
	entry, ok := t[tr]
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrUnmappedTerrain, tr)
	}
	if entry.Impassable {
		return 0, false, nil
	}
	return entry.Cost, true, nil
}

// Passable reports whether terrain tr can be entered at all. Unmapped
// terrain is reported as impassable along with the lookup error.
func (t CostTable) Passable(tr Terrain) (bool, error) {
	_, ok, err := t.Cost(tr)
	return ok, err
}

// Validate checks that every entry is well-formed: passable terrain must
// have a positive cost.
func (t CostTable) Validate() error {
	for tr, entry := range t {
		if entry.Impassable {
			continue
		}
		if entry.Cost < 1 {
			return fmt.Errorf("cost table: terrain %q must have a positive cost, got %d", tr, entry.Cost)
		}
	}
	return nil
}

// DefaultCostTable returns the standard cost table covering every built-in
// terrain classification.
func DefaultCostTable() CostTable {
	return CostTable{
		Plain:    {Cost: 1},
		Road:     {Cost: 1},
		Forest:   {Cost: 2},
		Mountain: {Cost: 3},
		Fort:     {Cost: 2},
		Water:    {Impassable: true},
		Wall:     {Impassable: true},
	}
}
