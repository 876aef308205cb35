// Command analyze audits stage definition files with the real movement
// engine. It validates each file, reports terrain and unit statistics, and
// runs reachability checks: per-unit movement range at deployment, and a
// full-budget flood to find passable tiles no unit can ever reach.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "audit stage files with the movement engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "stage-dir",
				Value: "configs",
				Usage: "directory containing stage JSON files",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "audit",
				Usage: "validate every stage file and report reachability statistics",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return auditStages(cmd.String("stage-dir"))
				},
			},
			{
				Name:  "range",
				Usage: "render a unit's movement range on a stage map",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stage", Required: true, Usage: "stage file name"},
					&cli.StringFlag{Name: "unit", Required: true, Usage: "unit ID to query"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return showRange(cmd.String("stage-dir"), cmd.String("stage"), cmd.String("unit"))
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return auditStages(cmd.String("stage-dir"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// auditStages validates and analyzes every stage file in dir
func auditStages(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list stage files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no stage files found in %s", dir)
	}

	sort.Strings(files)

	allValid := true
	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeStage(file); err != nil {
			fmt.Printf("❌ INVALID: %v\n", err)
			allValid = false
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return fmt.Errorf("some stages have errors")
	}
	fmt.Println("✅ All stages are valid")
	return nil
}

// analyzeStage loads one stage and prints validation and reachability
// statistics for it.
func analyzeStage(path string) error {
	stage, err := engine.LoadStageConfig(path)
	if err != nil {
		return err
	}

	grid, err := engine.GridFromConfig(stage)
	if err != nil {
		return err
	}
	costs := engine.CostTable(stage.TerrainCosts)

	fmt.Printf("Name: %s\n", stage.Name)
	fmt.Printf("Map: %d x %d\n", stage.Width, stage.Height)
	fmt.Printf("Units: %d\n", len(stage.Units))

	passable := engine.CountPassable(grid, costs)
	fmt.Printf("Passable tiles: %d/%d\n", passable, stage.Width*stage.Height)

	// Per-unit range at deployment, with all other units as obstacles
	occupied := make(map[engine.Position]bool, len(stage.Units))
	for _, uc := range stage.Units {
		occupied[engine.Position{X: uc.X, Y: uc.Y}] = true
	}

	for _, uc := range stage.Units {
		origin := engine.Position{X: uc.X, Y: uc.Y}
		blockers := make(map[engine.Position]bool, len(occupied))
		for pos := range occupied {
			if pos != origin {
				blockers[pos] = true
			}
		}

		reach, err := engine.ComputeRange(origin, uc.Move, grid, costs, blockers)
		if err != nil {
			return fmt.Errorf("range for unit %q: %w", uc.ID, err)
		}
		fmt.Printf("Unit %q (%s) at (%d,%d), budget %d: %d reachable tiles\n",
			uc.ID, uc.Team, uc.X, uc.Y, uc.Move, len(reach))

		if len(reach) == 1 {
			fmt.Printf("⚠️  WARNING: unit %q cannot leave its starting tile\n", uc.ID)
		}
	}

	// Full-budget flood from the first unit: passable tiles outside the
	// flood are unreachable islands in the stage layout.
	if len(stage.Units) > 0 {
		first := stage.Units[0]
		origin := engine.Position{X: first.X, Y: first.Y}
		flood, err := engine.ComputeRange(origin, floodBudget(stage, costs), grid, costs, nil)
		if err != nil {
			return fmt.Errorf("flood from unit %q: %w", first.ID, err)
		}

		var islands []engine.Position
		for y := 0; y < stage.Height; y++ {
			for x := 0; x < stage.Width; x++ {
				pos := engine.Position{X: x, Y: y}
				ok, err := costs.Passable(grid.TerrainAt(pos))
				if err != nil {
					return err
				}
				if ok {
					if _, reached := flood[pos]; !reached {
						islands = append(islands, pos)
					}
				}
			}
		}

		if len(islands) > 0 {
			fmt.Printf("⚠️  WARNING: %d passable tiles are cut off from unit %q\n", len(islands), first.ID)
			for i, p := range islands {
				if i >= 5 {
					fmt.Printf("   ... and %d more\n", len(islands)-5)
					break
				}
				fmt.Printf("   Cut off: (%d,%d) %s\n", p.X, p.Y, grid.TerrainAt(p))
			}
		} else {
			fmt.Println("✅ Every passable tile is connected")
		}
	}

	return nil
}

// floodBudget returns a budget large enough to reach any connected tile:
// the most expensive passable terrain times the tile count.
func floodBudget(stage *engine.StageConfig, costs engine.CostTable) int {
	maxCost := 1
	for _, entry := range costs {
		if !entry.Impassable && entry.Cost > maxCost {
			maxCost = entry.Cost
		}
	}
	return maxCost * stage.Width * stage.Height
}

// showRange renders a unit's reachable tiles as a cost overlay on the map
func showRange(dir, stageFile, unitID string) error {
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

	var unit *engine.UnitConfig
	occupied := make(map[engine.Position]bool, len(stage.Units))
	for i := range stage.Units {
		uc := &stage.Units[i]
		if uc.ID == unitID {
			unit = uc
			continue
		}
		occupied[engine.Position{X: uc.X, Y: uc.Y}] = true
	}
	if unit == nil {
		return fmt.Errorf("unit %q not found in stage %q", unitID, stage.Name)
	}

	origin := engine.Position{X: unit.X, Y: unit.Y}
	reach, err := engine.ComputeRange(origin, unit.Move, grid, costs, occupied)
	if err != nil {
		return err
	}

	fmt.Printf("Range for %q from (%d,%d), budget %d: %d tiles\n\n",
		unitID, origin.X, origin.Y, unit.Move, len(reach))

	for y := 0; y < stage.Height; y++ {
		for x := 0; x < stage.Width; x++ {
			pos := engine.Position{X: x, Y: y}
			if cost, ok := reach[pos]; ok {
				if cost < 10 {
					fmt.Printf("%d", cost)
				} else {
					fmt.Print("+")
				}
			} else {
				fmt.Printf("%c", stage.Layout[y][x])
			}
		}
		fmt.Println()
	}
	fmt.Println("\nDigits show the minimum cost to reach each tile (0 = origin).")

	return nil
}
