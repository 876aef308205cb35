package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/service"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/transport/websocket"
)

// MockBattleService implements service.BattleService for testing
type MockBattleService struct {
	CreateSessionFunc  func(ctx context.Context, stageName string) (*service.SessionInfo, error)
	GetSessionFunc     func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc   func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc  func(ctx context.Context, sessionID string) error
	ComputeRangeFunc   func(ctx context.Context, sessionID, unitID string) (*service.RangeResult, error)
	FindPathFunc       func(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.PathResult, error)
	DescribeTileFunc   func(ctx context.Context, sessionID string, pos engine.Position) (*service.TileInfo, error)
	MoveUnitFunc       func(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.MoveResult, error)
	ResetFunc          func(ctx context.Context, sessionID string) (*engine.BattleState, error)
	GetBattleStateFunc func(ctx context.Context, sessionID string) (*engine.BattleState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	ListStagesFunc     func(ctx context.Context) ([]*service.StageInfo, error)
	LoadStageFunc      func(ctx context.Context, stageName string) (*engine.StageConfig, error)
	SaveStageFunc      func(ctx context.Context, stageName string, config *engine.StageConfig) error
}

func (m *MockBattleService) CreateSession(ctx context.Context, stageName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, stageName)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		StageName: stageName,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockBattleService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		StageName: "test-stage",
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockBattleService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockBattleService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockBattleService) ComputeRange(ctx context.Context, sessionID, unitID string) (*service.RangeResult, error) {
	if m.ComputeRangeFunc != nil {
		return m.ComputeRangeFunc(ctx, sessionID, unitID)
	}
	return &service.RangeResult{
		UnitID:    unitID,
		Tiles:     []service.RangeTile{{X: 0, Y: 0, Cost: 0}},
		TileCount: 1,
	}, nil
}

func (m *MockBattleService) FindPath(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.PathResult, error) {
	if m.FindPathFunc != nil {
		return m.FindPathFunc(ctx, sessionID, unitID, goal)
	}
	return &service.PathResult{UnitID: unitID, Goal: goal, Found: true}, nil
}

func (m *MockBattleService) DescribeTile(ctx context.Context, sessionID string, pos engine.Position) (*service.TileInfo, error) {
	if m.DescribeTileFunc != nil {
		return m.DescribeTileFunc(ctx, sessionID, pos)
	}
	return &service.TileInfo{X: pos.X, Y: pos.Y, Terrain: engine.Plain, Cost: 1}, nil
}

func (m *MockBattleService) MoveUnit(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.MoveResult, error) {
	if m.MoveUnitFunc != nil {
		return m.MoveUnitFunc(ctx, sessionID, unitID, goal)
	}
	return &service.MoveResult{
		Success:     true,
		Outcome:     &engine.MoveOutcome{Success: true, UnitID: unitID, To: goal},
		BattleState: &engine.BattleState{},
	}, nil
}

func (m *MockBattleService) Reset(ctx context.Context, sessionID string) (*engine.BattleState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.BattleState{}, nil
}

func (m *MockBattleService) GetBattleState(ctx context.Context, sessionID string) (*engine.BattleState, error) {
	if m.GetBattleStateFunc != nil {
		return m.GetBattleStateFunc(ctx, sessionID)
	}
	return &engine.BattleState{}, nil
}

func (m *MockBattleService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveRecord{},
		TotalMoves: 0,
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockBattleService) ListStages(ctx context.Context) ([]*service.StageInfo, error) {
	if m.ListStagesFunc != nil {
		return m.ListStagesFunc(ctx)
	}
	return []*service.StageInfo{}, nil
}

func (m *MockBattleService) LoadStage(ctx context.Context, stageName string) (*engine.StageConfig, error) {
	if m.LoadStageFunc != nil {
		return m.LoadStageFunc(ctx, stageName)
	}
	return &engine.StageConfig{Name: stageName, Description: "Test stage"}, nil
}

func (m *MockBattleService) SaveStage(ctx context.Context, stageName string, config *engine.StageConfig) error {
	if m.SaveStageFunc != nil {
		return m.SaveStageFunc(ctx, stageName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockBattleService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleCreateSession(t *testing.T) {
	server := setupTestServer(&MockBattleService{})

	req := makeRequest("POST", "/api/sessions", map[string]string{"stage_id": "valley_crossing"})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var info service.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if info.StageName != "valley_crossing" {
		t.Errorf("Expected stage valley_crossing, got %q", info.StageName)
	}
}

func TestHandleCreateSession_ServiceError(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		CreateSessionFunc: func(ctx context.Context, stageName string) (*service.SessionInfo, error) {
			return nil, fmt.Errorf("stage '%s' not found", stageName)
		},
	})

	req := makeRequest("POST", "/api/sessions", map[string]string{"stage_id": "missing"})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestHandleListSessions_SortAndLimit(t *testing.T) {
	now := time.Now()
	server := setupTestServer(&MockBattleService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
			}, nil
		},
	})

	req := makeRequest("GET", "/api/sessions?sort=created&order=desc&limit=2", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("Expected 2 sessions after limit, got %d", resp.Count)
	}
	if resp.Sessions[0].ID != "new" || resp.Sessions[1].ID != "mid" {
		t.Errorf("Unexpected order: %s, %s", resp.Sessions[0].ID, resp.Sessions[1].ID)
	}
}

func TestHandleGetSession_NotFound(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		},
	})

	req := makeRequest("GET", "/api/sessions/zzzz", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestHandleDeleteSession(t *testing.T) {
	deleted := ""
	server := setupTestServer(&MockBattleService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	})

	req := makeRequest("DELETE", "/api/sessions/ab12", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if deleted != "ab12" {
		t.Errorf("Expected delete of ab12, got %q", deleted)
	}
}

func TestHandleComputeRange(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		ComputeRangeFunc: func(ctx context.Context, sessionID, unitID string) (*service.RangeResult, error) {
			return &service.RangeResult{
				UnitID: unitID,
				Origin: engine.Position{X: 2, Y: 2},
				Budget: 3,
				Tiles: []service.RangeTile{
					{X: 2, Y: 1, Cost: 1},
					{X: 2, Y: 2, Cost: 0},
					{X: 3, Y: 2, Cost: 1},
				},
				TileCount: 3,
			}, nil
		},
	})

	req := makeRequest("GET", "/api/sessions/ab12/range?unit=hero", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.RangeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.TileCount != 3 || result.UnitID != "hero" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestHandleComputeRange_MissingUnit(t *testing.T) {
	server := setupTestServer(&MockBattleService{})

	req := makeRequest("GET", "/api/sessions/ab12/range", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing unit parameter, got %d", rec.Code)
	}
}

func TestHandleComputeRange_UnknownUnit(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		ComputeRangeFunc: func(ctx context.Context, sessionID, unitID string) (*service.RangeResult, error) {
			return nil, fmt.Errorf("%w: %q", engine.ErrUnitNotFound, unitID)
		},
	})

	req := makeRequest("GET", "/api/sessions/ab12/range?unit=ghost", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown unit, got %d", rec.Code)
	}
}

func TestHandleFindPath(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		FindPathFunc: func(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.PathResult, error) {
			return &service.PathResult{
				UnitID: unitID,
				Start:  engine.Position{X: 0, Y: 0},
				Goal:   goal,
				Found:  true,
				Path:   engine.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
				Cost:   2,
			}, nil
		},
	})

	req := makeRequest("GET", "/api/sessions/ab12/path?unit=hero&x=2&y=0", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.PathResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !result.Found || result.Cost != 2 || len(result.Path) != 3 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestHandleFindPath_NoPathIsOK(t *testing.T) {
	// An unreachable goal is a normal outcome, not an HTTP error.
	server := setupTestServer(&MockBattleService{
		FindPathFunc: func(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.PathResult, error) {
			return &service.PathResult{UnitID: unitID, Goal: goal, Found: false, Reason: "no_path"}, nil
		},
	})

	req := makeRequest("GET", "/api/sessions/ab12/path?unit=hero&x=9&y=9", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for unreachable goal, got %d", rec.Code)
	}

	var result service.PathResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Found || result.Reason != "no_path" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestHandleFindPath_BadCoordinates(t *testing.T) {
	server := setupTestServer(&MockBattleService{})

	tests := []string{
		"/api/sessions/ab12/path?unit=hero",             // missing x/y
		"/api/sessions/ab12/path?unit=hero&x=a&y=2",     // non-numeric
		"/api/sessions/ab12/path?unit=hero&x=1",         // missing y
		"/api/sessions/ab12/path?x=1&y=2",               // missing unit
	}

	for _, path := range tests {
		req := makeRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestHandleFindPath_OutOfBounds(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		FindPathFunc: func(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.PathResult, error) {
			return nil, fmt.Errorf("goal (%d,%d): %w", goal.X, goal.Y, engine.ErrOutOfBounds)
		},
	})

	req := makeRequest("GET", "/api/sessions/ab12/path?unit=hero&x=-1&y=0", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-bounds goal, got %d", rec.Code)
	}
}

func TestHandleDescribeTile(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		DescribeTileFunc: func(ctx context.Context, sessionID string, pos engine.Position) (*service.TileInfo, error) {
			return &service.TileInfo{X: pos.X, Y: pos.Y, Terrain: engine.Forest, Cost: 2}, nil
		},
	})

	req := makeRequest("GET", "/api/sessions/ab12/tile?x=1&y=2", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var tile service.TileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &tile); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if tile.Terrain != engine.Forest || tile.Cost != 2 {
		t.Errorf("Unexpected tile: %+v", tile)
	}
}

func TestHandleMoveUnit(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		MoveUnitFunc: func(ctx context.Context, sessionID, unitID string, goal engine.Position) (*service.MoveResult, error) {
			return &service.MoveResult{
				Success: true,
				Outcome: &engine.MoveOutcome{
					Success: true,
					UnitID:  unitID,
					From:    engine.Position{X: 0, Y: 0},
					To:      goal,
					Cost:    2,
				},
				BattleState: &engine.BattleState{TotalMoves: 1},
			}, nil
		},
	})

	req := makeRequest("POST", "/api/sessions/ab12/move",
		map[string]interface{}{"unit_id": "hero", "x": 2, "y": 0})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.MoveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !result.Success || result.Outcome.Cost != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestHandleMoveUnit_MissingUnitID(t *testing.T) {
	server := setupTestServer(&MockBattleService{})

	req := makeRequest("POST", "/api/sessions/ab12/move", map[string]interface{}{"x": 2, "y": 0})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing unit_id, got %d", rec.Code)
	}
}

func TestHandleReset(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.BattleState, error) {
			return &engine.BattleState{StageName: "reset-stage"}, nil
		},
	})

	req := makeRequest("POST", "/api/sessions/ab12/reset", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestHandleGetHistory_QueryParams(t *testing.T) {
	var captured service.HistoryOptions
	server := setupTestServer(&MockBattleService{
		GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			captured = opts
			return &service.HistoryResponse{Moves: []engine.MoveRecord{}}, nil
		},
	})

	req := makeRequest("GET", "/api/sessions/ab12/history?page=3&limit=5&order=asc", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if captured.Page != 3 || captured.Limit != 5 || captured.Order != "asc" {
		t.Errorf("Query parameters not forwarded: %+v", captured)
	}
}

func TestHandleListStages(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		ListStagesFunc: func(ctx context.Context) ([]*service.StageInfo, error) {
			return []*service.StageInfo{
				{StageID: "valley_crossing", Name: "Valley Crossing", Width: 8, Height: 8},
			}, nil
		},
	})

	req := makeRequest("GET", "/api/stages", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var stages []*service.StageInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &stages); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(stages) != 1 || stages[0].StageID != "valley_crossing" {
		t.Errorf("Unexpected stages: %+v", stages)
	}
}

func TestHandleCreateStage_RequiresName(t *testing.T) {
	server := setupTestServer(&MockBattleService{})

	req := makeRequest("POST", "/api/stages", map[string]interface{}{"description": "no name"})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unnamed stage, got %d", rec.Code)
	}
}

func TestHandleUnifiedSessions_FilterByStage(t *testing.T) {
	server := setupTestServer(&MockBattleService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a1", StageName: "valley_crossing"},
				{ID: "b2", StageName: "mountain_pass"},
				{ID: "c3", StageName: "valley_crossing"},
			}, nil
		},
	})

	req := makeRequest("GET", "/api/sessions/unified?stageName=valley_crossing", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		StageName string                   `json:"stage_name"`
		Sessions  []map[string]interface{} `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.StageName != "valley_crossing" {
		t.Errorf("Expected stage valley_crossing, got %q", resp.StageName)
	}
	if len(resp.Sessions) != 2 {
		t.Errorf("Expected 2 matching sessions, got %d", len(resp.Sessions))
	}
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(&MockBattleService{})

	req := makeRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestHandleWebSocket_RequiresSession(t *testing.T) {
	server := setupTestServer(&MockBattleService{})

	req := makeRequest("GET", "/ws", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without session parameter, got %d", rec.Code)
	}
}
