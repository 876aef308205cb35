package service

import (
	"time"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
)

// SessionInfo provides information about a battle session
type SessionInfo struct {
	ID             string              `json:"id"`
	StageName      string              `json:"stage_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	BattleState    *engine.BattleState `json:"battle_state"`
	StageConfig    *engine.StageConfig `json:"stage_config"`
}

// RangeTile is one reachable tile with its minimum entry cost
type RangeTile struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Cost int `json:"cost"`
}

// RangeResult contains the tiles a unit can stop on this turn
type RangeResult struct {
	UnitID    string          `json:"unit_id"`
	Origin    engine.Position `json:"origin"`
	Budget    int             `json:"budget"`
	Tiles     []RangeTile     `json:"tiles"` // row-major: Y ascending, then X
	TileCount int             `json:"tile_count"`
}

// PathResult contains the outcome of a path query. Found is false when
// the goal cannot be reached this turn; Reason then carries a
// machine-friendly code: no_path|occupied_goal
type PathResult struct {
	UnitID string          `json:"unit_id"`
	Start  engine.Position `json:"start"`
	Goal   engine.Position `json:"goal"`
	Found  bool            `json:"found"`
	Path   engine.Path     `json:"path,omitempty"`
	Cost   int             `json:"cost"`
	Reason string          `json:"reason,omitempty"`
}

// TileInfo describes a single tile on the battle map
type TileInfo struct {
	X          int            `json:"x"`
	Y          int            `json:"y"`
	Terrain    engine.Terrain `json:"terrain"`
	Cost       int            `json:"cost"`
	Impassable bool           `json:"impassable"`
	Occupied   bool           `json:"occupied"`
	UnitID     string         `json:"unit_id,omitempty"`
}

// MoveResult contains the result of a committed move
type MoveResult struct {
	Success     bool                `json:"success"`
	Outcome     *engine.MoveOutcome `json:"outcome"`
	BattleState *engine.BattleState `json:"battle_state"`
	Message     string              `json:"message"`
	Events      []BattleEvent       `json:"events,omitempty"`
}

// BattleEvent represents an event that occurred during a battle
type BattleEvent struct {
	Type      string          `json:"type"` // "range_computed", "path_computed", "unit_moved", "move_blocked", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	UnitID    string          `json:"unit_id,omitempty"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveRecord `json:"moves"`
	TotalMoves  int                 `json:"total_moves"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// StageInfo provides information about a stage definition
type StageInfo struct {
	Filename    string `json:"filename"`
	StageID     string `json:"stage_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	UnitCount   int    `json:"unit_count"`
}
