// Command planner suggests a move for a unit on a stage file. It ranks
// every tile the unit can reach this turn by how close it ends up to the
// nearest opposing unit, breaking ties by lower movement cost, and prints
// the recommended destination with its route.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
)

var (
	stageDir  = flag.String("stage-dir", "configs", "directory containing stage JSON files")
	stageName = flag.String("stage", "", "stage file name (required)")
	unitID    = flag.String("unit", "", "unit ID to plan for (required)")
	topN      = flag.Int("top", 5, "number of candidate destinations to show")
)

// candidate is one reachable destination with its ranking inputs
type candidate struct {
	pos      engine.Position
	cost     int
	distance int // Manhattan distance to the nearest opposing unit
}

func main() {
	flag.Parse()

	if *stageName == "" || *unitID == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*stageDir, *stageName, *unitID, *topN); err != nil {
		log.Fatal(err)
	}
}

func run(dir, stageFile, unit string, top int) error {
	if !strings.HasSuffix(stageFile, ".json") {
		stageFile += ".json"
	}

	stage, err := engine.LoadStageConfig(filepath.Join(dir, stageFile))
	if err != nil {
		return err
	}

	grid, err := engine.GridFromConfig(stage)
	if err != nil {
		return err
	}
	costs := engine.CostTable(stage.TerrainCosts)
	state := engine.InitBattleStateFromConfig(stage)

	candidates, mover, err := rankDestinations(state, unit, grid, costs)
	if err != nil {
		return err
	}

	fmt.Printf("Plan for %q (%s) at (%d,%d), budget %d on %s\n\n",
		mover.ID, mover.Team, mover.Pos.X, mover.Pos.Y, mover.Move, stage.Name)

	if len(candidates) == 0 {
		fmt.Println("No opposing units on the map; nothing to approach.")
		return nil
	}

	if top > len(candidates) {
		top = len(candidates)
	}

	occupied := occupiedExcept(state, mover.ID)
	for i := 0; i < top; i++ {
		c := candidates[i]
		route, err := engine.FindPath(mover.Pos, c.pos, mover.Move, grid, costs, occupied)
		if err != nil {
			return err
		}

		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Printf("%s %d. (%d,%d) cost=%d distance-to-enemy=%d route=%s\n",
			marker, i+1, c.pos.X, c.pos.Y, c.cost, c.distance, formatRoute(route))
	}

	best := candidates[0]
	fmt.Printf("\nRecommended: move %q to (%d,%d) for %d movement\n",
		mover.ID, best.pos.X, best.pos.Y, best.cost)

	return nil
}

// rankDestinations computes the unit's full movement range and orders the
// reachable tiles by proximity to the nearest opposing unit, then by cost,
// then row-major for stability.
func rankDestinations(state *engine.BattleState, unitID string, grid *engine.Grid, costs engine.CostTable) ([]candidate, *engine.Unit, error) {
	var mover *engine.Unit
	for _, u := range state.Units {
		if u.ID == unitID {
			mover = u
			break
		}
	}
	if mover == nil {
		return nil, nil, fmt.Errorf("unit %q not found", unitID)
	}

	// No opponents means nothing to rank against
	if _, _, found := engine.NearestUnit(state, mover.Pos, mover.ID, opposingTeam(mover.Team)); !found {
		return nil, mover, nil
	}

	occupied := occupiedExcept(state, mover.ID)
	reach, err := engine.ComputeRange(mover.Pos, mover.Move, grid, costs, occupied)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]candidate, 0, len(reach))
	for pos, cost := range reach {
		_, distance, _ := engine.NearestUnit(state, pos, mover.ID, opposingTeam(mover.Team))
		candidates = append(candidates, candidate{pos: pos, cost: cost, distance: distance})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if candidates[i].cost != candidates[j].cost {
			return candidates[i].cost < candidates[j].cost
		}
		if candidates[i].pos.Y != candidates[j].pos.Y {
			return candidates[i].pos.Y < candidates[j].pos.Y
		}
		return candidates[i].pos.X < candidates[j].pos.X
	})

	return candidates, mover, nil
}

// opposingTeam returns the team whose units the mover wants to approach.
// Allies plan against enemies and vice versa.
func opposingTeam(team engine.Team) engine.Team {
	if team == engine.TeamEnemy {
		return engine.TeamPlayer
	}
	return engine.TeamEnemy
}

// occupiedExcept snapshots every unit position except the moving unit's own
func occupiedExcept(state *engine.BattleState, moverID string) map[engine.Position]bool {
	occupied := make(map[engine.Position]bool, len(state.Units))
	for _, u := range state.Units {
		if u.ID != moverID {
			occupied[u.Pos] = true
		}
	}
	return occupied
}

func formatRoute(route engine.Path) string {
	if len(route) == 0 {
		return "(none)"
	}
	steps := make([]string, 0, len(route))
	for _, p := range route {
		steps = append(steps, fmt.Sprintf("(%d,%d)", p.X, p.Y))
	}
	return strings.Join(steps, "->")
}
