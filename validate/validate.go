// Command validate provides a small CLI that validates stage definition
// JSON files in the ../configs directory. It checks:
//   - JSON structure and required fields (via the engine's stage validation)
//   - Layout/legend/cost-table totality and map dimensions
//   - Unit placement: unique IDs, free passable tiles, team size limits
//   - Connectivity: every unit can reach every other unit's side of the map
//     via passable tiles, ignoring budgets and occupancy
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateStage loads and validates a single stage JSON file. Structural
// checks run through the engine's own validation so this tool can never
// accept a file the server would reject; connectivity analysis is layered
// on top.
func validateStage(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var stage engine.StageConfig
	if err := json.Unmarshal(data, &stage); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateStageConfig(&stage); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Connectivity validation - check all units share one passable region
	connectivity := validateConnectivity(&stage)
	result.Errors = append(result.Errors, connectivity.Errors...)
	if !connectivity.Valid {
		result.Valid = false
	}

	// Add informational data
	if result.Valid {
		grid, err := engine.GridFromConfig(&stage)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		costs := engine.CostTable(stage.TerrainCosts)

		teams := map[engine.Team]int{}
		for _, uc := range stage.Units {
			teams[uc.Team]++
		}

		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", stage.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Map: %dx%d", stage.Width, stage.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Passable tiles: %d/%d",
			engine.CountPassable(grid, costs), stage.Width*stage.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Units: %d player, %d enemy, %d ally",
			teams[engine.TeamPlayer], teams[engine.TeamEnemy], teams[engine.TeamAlly]))
	}

	return result
}

// validateConnectivity ensures every unit stands in the same passable
// region. It floods from the first unit with an unbounded budget and no
// occupancy, then checks every other unit's tile was reached. A unit on a
// disconnected island can never be engaged and is almost always a layout
// bug.
func validateConnectivity(stage *engine.StageConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if len(stage.Units) < 2 {
		result.Errors = append(result.Errors, "✓ Connectivity: fewer than 2 units, nothing to connect")
		return result
	}

	grid, err := engine.GridFromConfig(stage)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot validate connectivity: %v", err))
		return result
	}
	costs := engine.CostTable(stage.TerrainCosts)

	// Budget large enough to cross the whole map on the most expensive
	// passable terrain.
	maxCost := 1
	for _, entry := range costs {
		if !entry.Impassable && entry.Cost > maxCost {
			maxCost = entry.Cost
		}
	}
	budget := maxCost * stage.Width * stage.Height

	first := stage.Units[0]
	origin := engine.Position{X: first.X, Y: first.Y}
	flood, err := engine.ComputeRange(origin, budget, grid, costs, nil)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot validate connectivity: %v", err))
		return result
	}

	var isolated []string
	for _, uc := range stage.Units[1:] {
		if _, reached := flood[engine.Position{X: uc.X, Y: uc.Y}]; !reached {
			isolated = append(isolated, fmt.Sprintf("Unit %q at (%d,%d)", uc.ID, uc.X, uc.Y))
		}
	}

	if len(isolated) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Connectivity failure: %d/%d units cut off from %q", len(isolated), len(stage.Units)-1, first.ID))
		for _, u := range isolated {
			result.Errors = append(result.Errors, fmt.Sprintf("Isolated: %s", u))
		}
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Connectivity: all %d units share one passable region", len(stage.Units)))
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	stageDir := "../configs"
	files, err := filepath.Glob(filepath.Join(stageDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding stage files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateStage(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All stages are valid!")
	} else {
		fmt.Println("❌ Some stages have errors")
		os.Exit(1)
	}
}
