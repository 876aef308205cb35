package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnitNotFound reports a unit ID with no matching unit in the battle
var ErrUnitNotFound = errors.New("unit not found")

// Engine provides the main interface for battle movement operations
type Engine interface {
	// Battle state management
	GetState() *BattleState
	SetState(state *BattleState) error
	Reset() *BattleState

	// Roster access
	Units() []*Unit
	GetUnit(unitID string) (*Unit, error)
	UnitAt(pos Position) (*Unit, bool)

	// Movement queries (pure, never mutate battle state)
	OccupiedBy(unitID string) (map[Position]bool, error)
	ComputeRange(unitID string) (Reachability, error)
	FindPath(unitID string, goal Position) (Path, error)

	// Committed movement
	MoveUnit(unitID string, goal Position) (*MoveOutcome, error)

	// Configuration
	GetConfig() *StageConfig
	Grid() *Grid
	CostTable() CostTable

	// History
	GetMoveHistory() []MoveRecord
	GetLastMove() *MoveRecord
}

// BattleEngine implements the Engine interface
type BattleEngine struct {
	grid   *Grid
	costs  CostTable
	config *StageConfig
	state  *BattleState
}

// NewEngine creates a new battle engine from a stage definition
func NewEngine(config *StageConfig) (*BattleEngine, error) {
	if err := ValidateStageConfig(config); err != nil {
		return nil, err
	}

	grid, err := GridFromConfig(config)
	if err != nil {
		return nil, err
	}

	return &BattleEngine{
		grid:   grid,
		costs:  CostTable(config.TerrainCosts),
		config: config,
		state:  InitBattleStateFromConfig(config),
	}, nil
}

// GetState returns the current battle state
func (e *BattleEngine) GetState() *BattleState {
	return e.state
}

// SetState sets the battle state (used for persistence loading)
func (e *BattleEngine) SetState(state *BattleState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	for _, u := range state.Units {
		if !e.grid.InBounds(u.Pos) {
			return fmt.Errorf("set state: unit %q at (%d,%d): %w", u.ID, u.Pos.X, u.Pos.Y, ErrOutOfBounds)
		}
	}
	e.state = state
	return nil
}

// Reset restores the battle to its initial deployment. Cumulative history
// and totals survive the reset; only the current segment is cleared.
func (e *BattleEngine) Reset() *BattleState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitBattleStateFromConfig(e.config)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveRecord{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// Units returns the current unit roster
func (e *BattleEngine) Units() []*Unit {
	return e.state.Units
}

// GetUnit returns the unit with the given ID
func (e *BattleEngine) GetUnit(unitID string) (*Unit, error) {
	for _, u := range e.state.Units {
		if u.ID == unitID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnitNotFound, unitID)
}

// UnitAt returns the unit standing on pos, if any
func (e *BattleEngine) UnitAt(pos Position) (*Unit, bool) {
	for _, u := range e.state.Units {
		if u.Pos == pos {
			return u, true
		}
	}
	return nil, false
}

// OccupiedBy returns a fresh occupancy snapshot for a query by the given
// unit: the positions held by every *other* unit, allies and enemies
// alike. The querying unit's own tile is never in the snapshot. Callers
// must not reuse a snapshot after any unit has moved.
func (e *BattleEngine) OccupiedBy(unitID string) (map[Position]bool, error) {
	if _, err := e.GetUnit(unitID); err != nil {
		return nil, err
	}
	occupied := make(map[Position]bool, len(e.state.Units))
	for _, u := range e.state.Units {
		if u.ID == unitID {
			continue
		}
		occupied[u.Pos] = true
	}
	return occupied, nil
}

// ComputeRange returns every tile the unit can stop on this turn with the
// minimum cost to reach it. Pure query: battle state is untouched.
func (e *BattleEngine) ComputeRange(unitID string) (Reachability, error) {
	unit, err := e.GetUnit(unitID)
	if err != nil {
		return nil, err
	}
	occupied, err := e.OccupiedBy(unitID)
	if err != nil {
		return nil, err
	}
	return ComputeRange(unit.Pos, unit.Move, e.grid, e.costs, occupied)
}

// FindPath returns the minimum-cost route from the unit's position to
// goal, or an empty path when the goal cannot be reached this turn. Pure
// query: battle state is untouched.
func (e *BattleEngine) FindPath(unitID string, goal Position) (Path, error) {
	unit, err := e.GetUnit(unitID)
	if err != nil {
		return nil, err
	}
	occupied, err := e.OccupiedBy(unitID)
	if err != nil {
		return nil, err
	}
	return FindPath(unit.Pos, goal, unit.Move, e.grid, e.costs, occupied)
}

// MoveUnit commits a move: it finds the route to goal and, if one exists
// within the unit's budget, relocates the unit and records the move. A
// failed attempt is also recorded, with the reason, so replays show what
// was tried.
func (e *BattleEngine) MoveUnit(unitID string, goal Position) (*MoveOutcome, error) {
	unit, err := e.GetUnit(unitID)
	if err != nil {
		return nil, err
	}
	occupied, err := e.OccupiedBy(unitID)
	if err != nil {
		return nil, err
	}

	from := unit.Pos
	path, err := FindPath(from, goal, unit.Move, e.grid, e.costs, occupied)
	if err != nil {
		return nil, err
	}

	outcome := &MoveOutcome{
		UnitID: unitID,
		From:   from,
		To:     goal,
	}

	if len(path) == 0 {
		outcome.Success = false
		if occupied[goal] {
			outcome.Reason = "occupied_goal"
		} else {
			outcome.Reason = "no_path"
		}
		e.state.addMoveRecord(unitID, from, goal, nil, 0, false)
		e.state.Message = fmt.Sprintf("%s cannot reach (%d,%d)", unit.Name, goal.X, goal.Y)
		return outcome, nil
	}

	cost, err := PathCost(path, e.grid, e.costs)
	if err != nil {
		return nil, err
	}

	unit.Pos = goal
	outcome.Success = true
	outcome.Path = path
	outcome.Cost = cost
	e.state.addMoveRecord(unitID, from, goal, path, cost, true)
	e.state.Message = fmt.Sprintf("%s moved to (%d,%d) for %d movement", unit.Name, goal.X, goal.Y, cost)

	return outcome, nil
}

// GetConfig returns the stage definition this battle was created from
func (e *BattleEngine) GetConfig() *StageConfig {
	return e.config
}

// Grid returns the battle's tile grid
func (e *BattleEngine) Grid() *Grid {
	return e.grid
}

// CostTable returns the battle's terrain cost table
func (e *BattleEngine) CostTable() CostTable {
	return e.costs
}

// GetMoveHistory returns the complete cumulative move history
func (e *BattleEngine) GetMoveHistory() []MoveRecord {
	return e.state.MoveHistory
}

// GetLastMove returns the last recorded move, or nil if none
func (e *BattleEngine) GetLastMove() *MoveRecord {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// addMoveRecord appends a move to both the cumulative history and the
// current segment
func (bs *BattleState) addMoveRecord(unitID string, from, to Position, path Path, cost int, success bool) {
	entry := MoveRecord{
		UnitID:     unitID,
		From:       from,
		To:         to,
		Path:       path,
		Cost:       cost,
		Timestamp:  time.Now().Unix(),
		Success:    success,
		MoveNumber: bs.TotalMoves + 1,
	}
	bs.MoveHistory = append(bs.MoveHistory, entry)
	bs.TotalMoves++
	bs.CurrentMoves = append(bs.CurrentMoves, entry)
	bs.CurrentMovesCount++
}
