package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateStageConfig validates a stage definition for correctness. Every
// failure here is a content bug that must surface before a battle starts:
// clamping or defaulting would mask broken stage data.
func ValidateStageConfig(config *StageConfig) error {
	if config.Name == "" {
		return fmt.Errorf("stage validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("stage validation: description is required")
	}

	if config.Width < MinMapSize || config.Width > MaxMapSize {
		return fmt.Errorf("stage validation: width must be between %d and %d, got %d", MinMapSize, MaxMapSize, config.Width)
	}
	if config.Height < MinMapSize || config.Height > MaxMapSize {
		return fmt.Errorf("stage validation: height must be between %d and %d, got %d", MinMapSize, MaxMapSize, config.Height)
	}
	if config.TileSize < 0 {
		return fmt.Errorf("stage validation: tile_size must be non-negative, got %d", config.TileSize)
	}

	if len(config.Layout) != config.Height {
		return fmt.Errorf("stage validation: layout must have %d rows to match height, got %d",
			config.Height, len(config.Layout))
	}
	if len(config.Legend) == 0 {
		return fmt.Errorf("stage validation: legend is required")
	}
	if err := CostTable(config.TerrainCosts).Validate(); err != nil {
		return fmt.Errorf("stage validation: %w", err)
	}

	// Every layout rune must resolve to a terrain, and every terrain the
	// layout can produce must have a cost table entry. The cost table has
	// to be total: an unmapped classification at query time is a fatal
	// data error, so it is rejected here instead.
	for i, row := range config.Layout {
		if len(row) != config.Width {
			return fmt.Errorf("stage validation: row %d must have %d characters to match width, got %d",
				i+1, config.Width, len(row))
		}
		for j, char := range row {
			terrain, ok := config.Legend[string(char)]
			if !ok {
				return fmt.Errorf("stage validation: character %q at row %d, col %d has no legend entry", char, i+1, j+1)
			}
			if _, mapped := config.TerrainCosts[terrain]; !mapped {
				return fmt.Errorf("stage validation: terrain %q (row %d, col %d) has no terrain_costs entry", terrain, i+1, j+1)
			}
		}
	}

	if len(config.Units) == 0 {
		return fmt.Errorf("stage validation: at least one unit is required")
	}

	costs := CostTable(config.TerrainCosts)
	seenIDs := make(map[string]bool)
	seenTiles := make(map[Position]string)
	teamCounts := make(map[Team]int)

	for i, uc := range config.Units {
		if uc.ID == "" {
			return fmt.Errorf("stage validation: unit %d has no id", i+1)
		}
		if seenIDs[uc.ID] {
			return fmt.Errorf("stage validation: duplicate unit id %q", uc.ID)
		}
		seenIDs[uc.ID] = true

		switch uc.Team {
		case TeamPlayer, TeamEnemy, TeamAlly:
		default:
			return fmt.Errorf("stage validation: unit %q has invalid team %q", uc.ID, uc.Team)
		}
		teamCounts[uc.Team]++
		if teamCounts[uc.Team] > MaxUnitsPerSide {
			return fmt.Errorf("stage validation: team %q exceeds %d units", uc.Team, MaxUnitsPerSide)
		}

		if uc.Move < 0 || uc.Move > MaxMoveBudget {
			return fmt.Errorf("stage validation: unit %q move must be between 0 and %d, got %d", uc.ID, MaxMoveBudget, uc.Move)
		}

		pos := Position{X: uc.X, Y: uc.Y}
		if uc.X < 0 || uc.X >= config.Width || uc.Y < 0 || uc.Y >= config.Height {
			return fmt.Errorf("stage validation: unit %q at (%d,%d) is outside the %dx%d map",
				uc.ID, uc.X, uc.Y, config.Width, config.Height)
		}
		if other, taken := seenTiles[pos]; taken {
			return fmt.Errorf("stage validation: units %q and %q share tile (%d,%d)", other, uc.ID, uc.X, uc.Y)
		}
		seenTiles[pos] = uc.ID

		terrain := config.Legend[string(config.Layout[uc.Y][uc.X])]
		passable, err := costs.Passable(terrain)
		if err != nil {
			return fmt.Errorf("stage validation: unit %q: %w", uc.ID, err)
		}
		if !passable {
			return fmt.Errorf("stage validation: unit %q starts on impassable %s at (%d,%d)", uc.ID, terrain, uc.X, uc.Y)
		}
	}

	return nil
}

// LoadStageConfig loads a stage definition from a JSON file
func LoadStageConfig(filename string) (*StageConfig, error) {
	// Support CONFIG_DIR environment variable for alternative stage directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config StageConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateStageConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadStageByName loads a stage definition by name from the configs directory
func LoadStageByName(stageName string) (*StageConfig, error) {
	if !strings.HasSuffix(stageName, ".json") {
		stageName = stageName + ".json"
	}

	configPath := filepath.Join("configs", stageName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("stage file '%s' not found", stageName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage file '%s': %v", stageName, err)
	}

	var config StageConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse stage file '%s': %v", stageName, err)
	}

	if err := ValidateStageConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid stage '%s': %v", stageName, err)
	}

	return &config, nil
}

// GridFromConfig builds the immutable tile grid a validated stage
// describes
func GridFromConfig(config *StageConfig) (*Grid, error) {
	tiles := make([][]Terrain, config.Height)
	for y := 0; y < config.Height; y++ {
		tiles[y] = make([]Terrain, config.Width)
		for x := 0; x < config.Width; x++ {
			terrain, ok := config.Legend[string(config.Layout[y][x])]
			if !ok {
				return nil, fmt.Errorf("grid from config: character %q at (%d,%d) has no legend entry",
					config.Layout[y][x], x, y)
			}
			tiles[y][x] = terrain
		}
	}
	return NewGrid(tiles, config.TileSize)
}

// InitBattleStateFromConfig creates a fresh battle state from a validated
// stage definition
func InitBattleStateFromConfig(config *StageConfig) *BattleState {
	units := make([]*Unit, 0, len(config.Units))
	for _, uc := range config.Units {
		units = append(units, &Unit{
			ID:   uc.ID,
			Name: uc.Name,
			Team: uc.Team,
			Pos:  Position{X: uc.X, Y: uc.Y},
			Move: uc.Move,
		})
	}

	return &BattleState{
		StageName:         config.Name,
		Units:             units,
		MoveHistory:       []MoveRecord{},
		TotalMoves:        0,
		Message:           fmt.Sprintf("Battle started on %s", config.Name),
		CurrentMoves:      []MoveRecord{},
		CurrentMovesCount: 0,
	}
}
