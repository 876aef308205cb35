package engine

import (
	"errors"
	"testing"
)

func newTestEngine(t *testing.T) *BattleEngine {
	t.Helper()
	eng, err := NewEngine(testStageConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return eng
}

func TestNewEngine_RejectsInvalidStage(t *testing.T) {
	config := testStageConfig()
	config.Units = nil

	if _, err := NewEngine(config); err == nil {
		t.Error("expected error for invalid stage")
	}
}

func TestEngine_GetUnit(t *testing.T) {
	eng := newTestEngine(t)

	unit, err := eng.GetUnit("hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unit.Name != "Hero" || unit.Team != TeamPlayer {
		t.Errorf("unexpected unit: %+v", unit)
	}

	_, err = eng.GetUnit("ghost")
	if !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestEngine_UnitAt(t *testing.T) {
	eng := newTestEngine(t)

	unit, ok := eng.UnitAt(Position{X: 4, Y: 2})
	if !ok || unit.ID != "brigand" {
		t.Errorf("expected brigand at (4,2), got %v ok=%v", unit, ok)
	}
	if _, ok := eng.UnitAt(Position{X: 5, Y: 4}); ok {
		t.Error("expected no unit at (5,4)")
	}
}

func TestEngine_OccupiedByExcludesSelf(t *testing.T) {
	eng := newTestEngine(t)

	occupied, err := eng.OccupiedBy("hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if occupied[Position{X: 0, Y: 0}] {
		t.Error("a unit's own tile must not appear in its occupancy snapshot")
	}
	if !occupied[Position{X: 4, Y: 2}] {
		t.Error("the brigand's tile should appear in the hero's snapshot")
	}

	if _, err := eng.OccupiedBy("ghost"); !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestEngine_ComputeRange(t *testing.T) {
	eng := newTestEngine(t)

	reach, err := eng.ComputeRange("hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cost := reach[Position{X: 0, Y: 0}]; cost != 0 {
		t.Errorf("origin cost should be 0, got %d", cost)
	}
	// (3,0) is forest: two plains then a forest entry, 1+1+2.
	if cost, ok := reach[Position{X: 3, Y: 0}]; !ok || cost != 4 {
		t.Errorf("forest at (3,0) should cost 4, got cost=%d ok=%v", cost, ok)
	}
	if _, ok := reach[Position{X: 1, Y: 2}]; ok {
		t.Error("water at (1,2) should never be in range")
	}
	for pos, cost := range reach {
		if cost > 5 {
			t.Errorf("(%d,%d) exceeds the hero's budget: %d", pos.X, pos.Y, cost)
		}
	}
}

func TestEngine_MoveUnit_Success(t *testing.T) {
	eng := newTestEngine(t)

	outcome, err := eng.MoveUnit("hero", Position{X: 2, Y: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got reason %q", outcome.Reason)
	}
	if outcome.Cost != 2 {
		t.Errorf("expected cost 2, got %d", outcome.Cost)
	}
	if len(outcome.Path) != 3 {
		t.Errorf("expected 3-tile path, got %v", outcome.Path)
	}

	unit, err := eng.GetUnit("hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unit.Pos != (Position{X: 2, Y: 0}) {
		t.Errorf("hero should stand on (2,0), got %v", unit.Pos)
	}

	last := eng.GetLastMove()
	if last == nil {
		t.Fatal("expected a move record")
	}
	if !last.Success || last.UnitID != "hero" || last.Cost != 2 || last.MoveNumber != 1 {
		t.Errorf("unexpected move record: %+v", last)
	}
}

func TestEngine_MoveUnit_OccupiedGoal(t *testing.T) {
	eng := newTestEngine(t)

	// Walk the hero toward the brigand first so the goal is in budget.
	setup, err := eng.MoveUnit("hero", Position{X: 2, Y: 3})
	if err != nil {
		t.Fatalf("setup move failed: %v", err)
	}
	if !setup.Success {
		t.Fatalf("setup move should succeed, got reason %q", setup.Reason)
	}

	outcome, err := eng.MoveUnit("hero", Position{X: 4, Y: 2})
	if err != nil {
		t.Fatalf("a blocked move is an outcome, not an error: %v", err)
	}
	if outcome.Success {
		t.Fatal("moving onto an occupied tile should fail")
	}
	if outcome.Reason != "occupied_goal" {
		t.Errorf("expected reason occupied_goal, got %q", outcome.Reason)
	}

	unit, _ := eng.GetUnit("hero")
	if unit.Pos != (Position{X: 2, Y: 3}) {
		t.Errorf("failed move must not relocate the unit, got %v", unit.Pos)
	}

	last := eng.GetLastMove()
	if last == nil || last.Success {
		t.Error("failed attempts must still be recorded")
	}
}

func TestEngine_MoveUnit_NoPath(t *testing.T) {
	eng := newTestEngine(t)

	outcome, err := eng.MoveUnit("hero", Position{X: 5, Y: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Success {
		t.Fatal("goal beyond the budget should fail")
	}
	if outcome.Reason != "no_path" {
		t.Errorf("expected reason no_path, got %q", outcome.Reason)
	}
}

func TestEngine_MoveUnit_OutOfBoundsGoal(t *testing.T) {
	eng := newTestEngine(t)

	if _, err := eng.MoveUnit("hero", Position{X: -1, Y: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestEngine_MoveUnit_UnknownUnit(t *testing.T) {
	eng := newTestEngine(t)

	if _, err := eng.MoveUnit("ghost", Position{X: 1, Y: 0}); !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestEngine_QueriesDoNotMutateState(t *testing.T) {
	eng := newTestEngine(t)

	if _, err := eng.ComputeRange("hero"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := eng.FindPath("hero", Position{X: 2, Y: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unit, _ := eng.GetUnit("hero")
	if unit.Pos != (Position{X: 0, Y: 0}) {
		t.Errorf("queries moved the hero to %v", unit.Pos)
	}
	if eng.GetState().TotalMoves != 0 {
		t.Errorf("queries recorded moves: %d", eng.GetState().TotalMoves)
	}
}

func TestEngine_ResetPreservesHistory(t *testing.T) {
	eng := newTestEngine(t)

	if _, err := eng.MoveUnit("hero", Position{X: 2, Y: 0}); err != nil {
		t.Fatalf("setup move failed: %v", err)
	}
	if _, err := eng.MoveUnit("brigand", Position{X: 4, Y: 3}); err != nil {
		t.Fatalf("setup move failed: %v", err)
	}

	state := eng.Reset()

	if len(state.MoveHistory) != 2 {
		t.Errorf("cumulative history should survive reset, got %d records", len(state.MoveHistory))
	}
	if state.TotalMoves != 2 {
		t.Errorf("total move count should survive reset, got %d", state.TotalMoves)
	}
	if len(state.CurrentMoves) != 0 || state.CurrentMovesCount != 0 {
		t.Error("current segment should be cleared on reset")
	}

	hero, _ := eng.GetUnit("hero")
	if hero.Pos != (Position{X: 0, Y: 0}) {
		t.Errorf("hero should redeploy at (0,0), got %v", hero.Pos)
	}

	// Move numbering keeps counting across resets.
	if _, err := eng.MoveUnit("hero", Position{X: 1, Y: 0}); err != nil {
		t.Fatalf("post-reset move failed: %v", err)
	}
	if last := eng.GetLastMove(); last == nil || last.MoveNumber != 3 {
		t.Errorf("expected move number 3 after reset, got %+v", last)
	}
}

func TestEngine_SetState(t *testing.T) {
	eng := newTestEngine(t)

	state := InitBattleStateFromConfig(eng.GetConfig())
	state.Units[0].Pos = Position{X: 2, Y: 4}
	if err := eng.SetState(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hero, _ := eng.GetUnit("hero")
	if hero.Pos != (Position{X: 2, Y: 4}) {
		t.Errorf("restored hero should stand on (2,4), got %v", hero.Pos)
	}

	bad := InitBattleStateFromConfig(eng.GetConfig())
	bad.Units[0].Pos = Position{X: 99, Y: 0}
	if err := eng.SetState(bad); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds for off-map unit, got %v", err)
	}
	if err := eng.SetState(nil); err == nil {
		t.Error("nil state should be rejected")
	}
}

func TestEngine_GetLastMove_Empty(t *testing.T) {
	eng := newTestEngine(t)
	if last := eng.GetLastMove(); last != nil {
		t.Errorf("fresh battle should have no last move, got %+v", last)
	}
}
