// Package engine provides the core movement logic for Trail of Thorns.
//
// The engine package implements the tactical movement rules:
//   - Terrain classification and the movement cost table
//   - Movement range calculation (which tiles a unit can stop on this turn)
//   - Pathfinding (a concrete minimum-cost route to a chosen destination)
//   - Battle state management and stage loading/validation
//
// Core Types:
//
// The Engine interface defines the main contract for battle operations,
// implemented by BattleEngine. BattleState represents the current battle
// snapshot, while StageConfig defines the map, terrain costs, and unit
// roster loaded from JSON files.
//
// Usage:
//
//	stage, err := engine.LoadStageByName("crossing")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	battle, err := engine.NewEngine(stage)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Where can the knight move this turn?
//	reach, err := battle.ComputeRange("knight")
//
//	// Commit a destination
//	outcome, err := battle.MoveUnit("knight", engine.Position{X: 4, Y: 2})
//
// Movement Rules:
//
// Units move 4-directionally on a grid of heterogeneous terrain. Entering
// a tile costs movement points per the stage's terrain cost table; a unit
// may spend at most its movement budget per turn. Tiles held by other
// units block traversal entirely and can never be a destination. Range
// and path queries share one cost model, so a tile reported reachable is
// always pathable at the same cost.
//
// ComputeRange and FindPath are pure queries: they never mutate the grid,
// the cost table, or the occupied-position snapshot, and they allocate
// only query-local state. They are safe to run concurrently as long as
// each query gets a stable occupancy snapshot.
package engine
