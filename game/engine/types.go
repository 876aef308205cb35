package engine

// Terrain classifies a tile for movement purposes
type Terrain string

const (
	Plain    Terrain = "plain"
	Road     Terrain = "road"
	Forest   Terrain = "forest"
	Mountain Terrain = "mountain"
	Fort     Terrain = "fort"
	Water    Terrain = "water"
	Wall     Terrain = "wall"

	// Validation constants
	MinMapSize      = 5
	MaxMapSize      = 50
	MaxMoveBudget   = 20
	MaxUnitsPerSide = 16
	DefaultTileSize = 32
)

// Position represents x,y tile coordinates. Positions are plain value
// coordinates; equality is value equality.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Team identifies which side a unit fights for
type Team string

const (
	TeamPlayer Team = "player"
	TeamEnemy  Team = "enemy"
	TeamAlly   Team = "ally"
)

// Unit is a read-only view of a deployed unit as the movement queries see
// it: an origin position and a movement budget. The engine never mutates a
// unit except when a move is explicitly committed via MoveUnit.
type Unit struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Team Team     `json:"team"`
	Pos  Position `json:"pos"`
	Move int      `json:"move"`
}

// Reachability maps each reachable position to the minimum movement cost
// to reach it. The querying unit's origin is always present with cost 0,
// and every recorded cost is at most the unit's movement budget.
type Reachability map[Position]int

// Path is an ordered tile sequence from start (inclusive) to goal
// (inclusive) where each consecutive pair is 4-adjacent. An empty path
// means no route exists within the constraints.
type Path []Position

// StageConfig represents a stage definition loaded from JSON
type StageConfig struct {
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Width        int                     `json:"width"`
	Height       int                     `json:"height"`
	TileSize     int                     `json:"tile_size,omitempty"`
	Layout       []string                `json:"layout"`
	Legend       map[string]Terrain      `json:"legend"`
	TerrainCosts map[Terrain]TerrainCost `json:"terrain_costs"`
	Units        []UnitConfig            `json:"units"`
}

// UnitConfig describes a unit's starting placement in a stage file
type UnitConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team Team   `json:"team"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Move int    `json:"move"`
}

// BattleState represents the complete mutable battle snapshot
type BattleState struct {
	StageName   string       `json:"stage_name"`
	Units       []*Unit      `json:"units"`
	MoveHistory []MoveRecord `json:"move_history"`
	TotalMoves  int          `json:"total_moves"`
	Message     string       `json:"message,omitempty"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors
	// MoveHistory entries but gets cleared on reset while MoveHistory
	// remains cumulative.
	CurrentMoves      []MoveRecord `json:"current_moves"`
	CurrentMovesCount int          `json:"current_moves_count"`
}

// MoveRecord represents a single committed (or rejected) move in the
// battle history
type MoveRecord struct {
	UnitID     string   `json:"unit_id"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Path       Path     `json:"path,omitempty"`
	Cost       int      `json:"cost"`
	Timestamp  int64    `json:"timestamp"`
	Success    bool     `json:"success"`
	MoveNumber int      `json:"move_number"`
}

// MoveOutcome describes the result of a committed move attempt
type MoveOutcome struct {
	Success bool     `json:"success"`
	UnitID  string   `json:"unit_id"`
	From    Position `json:"from"`
	To      Position `json:"to"`
	Path    Path     `json:"path,omitempty"`
	Cost    int      `json:"cost"`
	Reason  string   `json:"reason,omitempty"` // no_path|occupied_goal|out_of_budget when Success is false
}
