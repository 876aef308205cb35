package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
)

// battleServiceImpl implements the BattleService interface
type battleServiceImpl struct {
	sessions SessionManager
	stages   StageManager
	mu       sync.RWMutex
}

// NewBattleService creates a new battle service instance
func NewBattleService(sessions SessionManager, stages StageManager) BattleService {
	return &battleServiceImpl{
		sessions: sessions,
		stages:   stages,
	}
}

// getStageID returns the stage_id for a given stage name, used for consistent API responses
func (s *battleServiceImpl) getStageID(stageName string) string {
	availableStages, err := s.stages.ListStages()
	if err == nil {
		for _, st := range availableStages {
			if st.Name == stageName {
				return st.StageID
			}
		}
	}
	if stageName == "" {
		return "default"
	}
	return stageName
}

// CreateSession creates a new battle session
func (s *battleServiceImpl) CreateSession(ctx context.Context, stageName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stage *engine.StageConfig
	var err error
	if stageName != "" {
		stage, err = s.stages.LoadStage(stageName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "stage not found") {
				availableStages, listErr := s.stages.ListStages()
				if listErr == nil && len(availableStages) > 0 {
					var stageIDs []string
					for _, st := range availableStages {
						stageIDs = append(stageIDs, st.StageID)
					}
					return nil, fmt.Errorf("stage '%s' not found. Available stages: %v", stageName, stageIDs)
				}
				return nil, fmt.Errorf("stage '%s' not found. Use /api/stages to list available stages", stageName)
			}
			return nil, fmt.Errorf("failed to load stage %s: %w", stageName, err)
		}
	} else {
		stage = s.stages.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", stage)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	stageID := stageName
	if stageID == "" {
		stageID = s.getStageID(stage.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		StageName:      stageID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		BattleState:    session.Engine.GetState(),
		StageConfig:    session.Stage,
	}, nil
}

// GetSession retrieves session information
func (s *battleServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		StageName:      s.getStageID(session.Stage.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		BattleState:    session.Engine.GetState(),
		StageConfig:    session.Stage,
	}, nil
}

// ListSessions returns all active sessions
func (s *battleServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			StageName:      s.getStageID(sess.Stage.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			BattleState:    sess.Engine.GetState(),
			StageConfig:    sess.Stage,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *battleServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// ComputeRange returns every tile the unit can stop on this turn. The
// occupancy snapshot is taken under the service lock, so the result is
// consistent with the battle state at the moment of the call.
func (s *battleServiceImpl) ComputeRange(ctx context.Context, sessionID, unitID string) (*RangeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	unit, err := sess.Engine.GetUnit(unitID)
	if err != nil {
		return nil, err
	}

	reach, err := sess.Engine.ComputeRange(unitID)
	if err != nil {
		return nil, err
	}

	// Flatten to a row-major slice: map iteration order is random and
	// the wire format must be stable.
	tiles := make([]RangeTile, 0, len(reach))
	for pos, cost := range reach {
		tiles = append(tiles, RangeTile{X: pos.X, Y: pos.Y, Cost: cost})
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y < tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})

	return &RangeResult{
		UnitID:    unitID,
		Origin:    unit.Pos,
		Budget:    unit.Move,
		Tiles:     tiles,
		TileCount: len(tiles),
	}, nil
}

// FindPath returns the minimum-cost route for a unit to the goal tile
func (s *battleServiceImpl) FindPath(ctx context.Context, sessionID, unitID string, goal engine.Position) (*PathResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	unit, err := sess.Engine.GetUnit(unitID)
	if err != nil {
		return nil, err
	}

	path, err := sess.Engine.FindPath(unitID, goal)
	if err != nil {
		return nil, err
	}

	result := &PathResult{
		UnitID: unitID,
		Start:  unit.Pos,
		Goal:   goal,
	}

	if len(path) == 0 {
		occupied, err := sess.Engine.OccupiedBy(unitID)
		if err != nil {
			return nil, err
		}
		if occupied[goal] {
			result.Reason = "occupied_goal"
		} else {
			result.Reason = "no_path"
		}
		return result, nil
	}

	cost, err := engine.PathCost(path, sess.Engine.Grid(), sess.Engine.CostTable())
	if err != nil {
		return nil, err
	}

	result.Found = true
	result.Path = path
	result.Cost = cost
	return result, nil
}

// DescribeTile returns terrain, cost and occupancy details for one tile
func (s *battleServiceImpl) DescribeTile(ctx context.Context, sessionID string, pos engine.Position) (*TileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	grid := sess.Engine.Grid()
	if !grid.InBounds(pos) {
		return nil, fmt.Errorf("tile (%d,%d): %w", pos.X, pos.Y, engine.ErrOutOfBounds)
	}

	terrain := grid.TerrainAt(pos)
	cost, passable, err := sess.Engine.CostTable().Cost(terrain)
	if err != nil {
		return nil, err
	}

	info := &TileInfo{
		X:          pos.X,
		Y:          pos.Y,
		Terrain:    terrain,
		Cost:       cost,
		Impassable: !passable,
	}
	if unit, ok := sess.Engine.UnitAt(pos); ok {
		info.Occupied = true
		info.UnitID = unit.ID
	}
	return info, nil
}

// MoveUnit commits a move for a unit in a session
func (s *battleServiceImpl) MoveUnit(ctx context.Context, sessionID, unitID string, goal engine.Position) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	outcome, err := sess.Engine.MoveUnit(unitID, goal)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	result := &MoveResult{
		Success:     outcome.Success,
		Outcome:     outcome,
		BattleState: state,
		Message:     state.Message,
	}

	if outcome.Success {
		result.Events = append(result.Events, BattleEvent{
			Type:      "unit_moved",
			Message:   fmt.Sprintf("%s moved to (%d,%d) for %d movement", unitID, goal.X, goal.Y, outcome.Cost),
			Timestamp: time.Now(),
			UnitID:    unitID,
			Position:  goal,
		})
	} else {
		result.Events = append(result.Events, BattleEvent{
			Type:      "move_blocked",
			Message:   fmt.Sprintf("%s cannot reach (%d,%d): %s", unitID, goal.X, goal.Y, outcome.Reason),
			Timestamp: time.Now(),
			UnitID:    unitID,
			Position:  goal,
		})
	}

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after move: %v\n", sessionID, err)
	}

	return result, nil
}

// Reset restores a battle session to its initial deployment
func (s *battleServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.BattleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after reset: %v\n", sessionID, err)
	}

	return state, nil
}

// GetBattleState retrieves the current battle state
func (s *battleServiceImpl) GetBattleState(ctx context.Context, sessionID string) (*engine.BattleState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *battleServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveRecord
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else {
		if start < total {
			moves = history[start:end]
		}
	}

	if moves == nil {
		moves = []engine.MoveRecord{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListStages returns available stage definitions
func (s *battleServiceImpl) ListStages(ctx context.Context) ([]*StageInfo, error) {
	return s.stages.ListStages()
}

// LoadStage loads a specific stage definition
func (s *battleServiceImpl) LoadStage(ctx context.Context, stageName string) (*engine.StageConfig, error) {
	return s.stages.LoadStage(stageName)
}

// SaveStage saves a stage definition to disk
func (s *battleServiceImpl) SaveStage(ctx context.Context, stageName string, config *engine.StageConfig) error {
	return s.stages.SaveStage(stageName, config)
}
