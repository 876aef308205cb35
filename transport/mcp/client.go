package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Trail of Thorns Movement Engine",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Trail of Thorns - Tactical Movement MCP Interface

This is a thin client that proxies all requests to the REST API server.

BATTLE MODEL:
Units stand on a tile grid. Each unit has a movement budget per turn.
Entering a tile costs the tile's terrain cost; water and walls are
impassable; tiles occupied by other units cannot be passed through or
stopped on.

AVAILABLE TOOLS:
- battle_state: Get current battle state with map rendering
- compute_range: Show every tile a unit can reach this turn, with costs
- find_path: Get the minimum-cost route for a unit to a goal tile
- move_unit: Commit a move (requires intent explanation)
- reset_battle: Restore initial deployment
- move_history: View past moves
- create_session: Create new battle session
- get_session: Get session details
- list_sessions: List all active sessions
- list_stages: List available stage definitions
- describe_tile: Get terrain, cost and occupancy of a specific tile
- battle_instructions: Get comprehensive movement rules

NOTE: Always compute_range or find_path BEFORE move_unit - a blocked or
out-of-budget move is rejected and still recorded in the history.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new battle session with optional stage selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"stage_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the stage to deploy (optional, defaults to the server default)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active battle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Battle queries
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "battle_state",
		Description: "Get the current battle state with a rendered map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleBattleState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "compute_range",
		Description: "Compute every tile a unit can reach and stop on this turn, with the minimum movement cost per tile. Read-only; never changes the battle.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the unit to query",
				},
			},
			Required: []string{"session_id", "unit_id"},
		},
	}, c.handleComputeRange)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Find the minimum-cost route from a unit's position to a goal tile. An unreachable goal is a normal outcome (found=false), not an error. Read-only.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the unit to route",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Goal X coordinate (column, 0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Goal Y coordinate (row, 0-based)",
				},
			},
			Required: []string{"session_id", "unit_id", "x", "y"},
		},
	}, c.handleFindPath)

	// Battle operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_unit",
		Description: "Commit a unit move to a goal tile. The move succeeds only if the goal is reachable within the unit's budget and unoccupied; failed attempts are recorded too.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the unit to move",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Goal X coordinate (column, 0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Goal Y coordinate (row, 0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "unit_id", "x", "y"},
		},
	}, c.handleMoveUnit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_battle",
		Description: "Restore the initial deployment. Cumulative move history is preserved.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_stages",
		Description: "List available stage definitions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListStages)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "battle_instructions",
		Description: "Get comprehensive movement rules and tool usage guidance",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBattleInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get detailed information about a specific tile: terrain, entry cost, passability and occupancy. Useful for verifying whether a tile blocks movement.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the tile to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the tile to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// fetchSession loads a session including its stage config, which the map
// renderers need for layout and legend.
func (c *Client) fetchSession(sessionID string) (*service.SessionInfo, error) {
	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	stageID, _ := args["stage_id"].(string)

	body := map[string]string{}
	if stageID != "" {
		body["stage_id"] = stageID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nStage: %s\n\n%s",
		session.ID, session.StageName, formatBattleMap(session.StageConfig, session.BattleState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Stage: %s, Created: %s)\n",
			s.ID, s.StageName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	session, err := c.fetchSession(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBattleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	// The session endpoint carries both the state and the stage config
	// needed to render the map.
	session, err := c.fetchSession(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatBattleState(session.StageConfig, session.BattleState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleComputeRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	unitID, _ := args["unit_id"].(string)

	var rng service.RangeResult
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/range?unit=%s", sessionID, unitID), nil, &rng)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := c.fetchSession(sessionID)
	if err != nil {
		// Map rendering is best-effort; the tile list alone is still useful
		return mcp.NewToolResultText(formatRangeList(&rng)), nil
	}

	result := formatRangeResult(&rng, session.StageConfig)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	unitID, _ := args["unit_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))

	var path service.PathResult
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/path?unit=%s&x=%d&y=%d", sessionID, unitID, x, y), nil, &path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := c.fetchSession(sessionID)
	if err != nil {
		return mcp.NewToolResultText(formatPathSummary(&path)), nil
	}

	result := formatPathResult(&path, session.StageConfig)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	unitID, _ := args["unit_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"unit_id": unitID,
		"x":       x,
		"y":       y,
	}

	var result service.MoveResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatMoveResult(&result)
	if session, err := c.fetchSession(sessionID); err == nil {
		response += "\n" + formatBattleMap(session.StageConfig, session.BattleState)
	}
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string              `json:"message"`
		State   *engine.BattleState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message
	if session, err := c.fetchSession(sessionID); err == nil {
		result += "\n\n" + formatBattleState(session.StageConfig, session.BattleState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also report the moves since the last reset from live state
	session, err := c.fetchSession(sessionID)
	if err != nil {
		result := formatHistory(&history)
		return mcp.NewToolResultText(result), nil
	}

	result := formatHistory(&history)
	result += "\n" + formatCurrentSegment(session.BattleState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListStages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stages []service.StageInfo
	err := c.apiCall("GET", "/api/stages", nil, &stages)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Stages:\n\n"
	for _, stage := range stages {
		result += fmt.Sprintf("• %s\n  %s\n  Map: %dx%d, Units: %d\n\n",
			stage.StageID, stage.Description, stage.Width, stage.Height, stage.UnitCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBattleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Trail of Thorns - Tactical Movement Rules

BATTLE MODEL:
Units stand on a rectangular tile grid. Each unit has a per-turn
movement budget. Moving into a tile costs that tile's terrain cost;
the starting tile costs nothing.

TERRAIN COSTS (typical stage values):
• plain, road - cost 1
• forest, fort - cost 2
• mountain - cost 3
• water, wall - IMPASSABLE (never enterable at any budget)

MOVEMENT RULES:
• Movement is 4-directional: up, right, down, left. No diagonals.
• A unit may stop on any tile whose total entry cost is within its
  budget. The unit's own tile always counts as reachable at cost 0.
• Tiles occupied by ANY other unit - friend or foe - cannot be passed
  through or stopped on. Units are obstacles, not targets.
• A blocked or too-expensive goal is a normal outcome, not an error.
  Only out-of-bounds coordinates and unknown unit IDs are errors.

MAP LEGEND (state rendering):
• Terrain shows as the stage's layout characters (see the stage file).
• @ - player unit    E - enemy unit    A - allied unit

RANGE OVERLAY (compute_range rendering):
• Digits 0-9 show the minimum cost to reach that tile (0 = origin).
• Costs of 10 or more render as '+'. Unreachable tiles keep their
  terrain character.

PATH OVERLAY (find_path rendering):
• @ marks the start, G the goal, * the intermediate tiles.
• The route is the cheapest one; among equally cheap routes the engine
  always returns the same one, so repeated queries are stable.

RECOMMENDED WORKFLOW:
1. battle_state - read the map and unit positions
2. compute_range - see what a unit can actually reach this turn
3. find_path - verify the route and exact cost to a candidate goal
4. move_unit - commit the move
5. describe_tile - when unsure whether a tile blocks movement

COMMON PITFALLS:
• Moving to a tile that is within straight-line distance but not
  within PATH cost - always check find_path first.
• Forgetting that another unit standing in a corridor blocks the
  whole corridor.
• Treating an empty path result as an error - it means "not reachable
  this turn", and the unit simply stays put.

SESSION MANAGEMENT:
• Multiple battle sessions can run simultaneously.
• Each session has a unique 4-character ID.
• Sessions maintain independent state and stage configuration.
• reset_battle restores the deployment but keeps cumulative history.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))

	var tile service.TileInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/tile?x=%d&y=%d", sessionID, x, y), nil, &tile)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	passable := "yes"
	if tile.Impassable {
		passable = "NO - this tile can never be entered"
	}

	occupied := "no"
	if tile.Occupied {
		occupied = fmt.Sprintf("yes - unit %q stands here (blocks traversal and stopping)", tile.UnitID)
	}

	costLine := fmt.Sprintf("%d", tile.Cost)
	if tile.Impassable {
		costLine = "n/a (impassable)"
	}

	result := fmt.Sprintf(`Tile at position (%d, %d):
Terrain: %s
Entry cost: %s
Passable: %s
Occupied: %s`,
		tile.X, tile.Y, tile.Terrain, costLine, passable, occupied)

	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nStage: %s\nCreated: %s\n\n%s",
		session.ID, session.StageName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatBattleState(session.StageConfig, session.BattleState))
}

// unitChar maps a unit's team to its map overlay character
func unitChar(team engine.Team) string {
	switch team {
	case engine.TeamPlayer:
		return "@"
	case engine.TeamEnemy:
		return "E"
	case engine.TeamAlly:
		return "A"
	default:
		return "?"
	}
}

// formatBattleMap renders the stage layout with units overlaid
func formatBattleMap(stage *engine.StageConfig, state *engine.BattleState) string {
	if stage == nil || state == nil {
		return "No battle state available"
	}

	unitAt := make(map[engine.Position]*engine.Unit, len(state.Units))
	for _, u := range state.Units {
		unitAt[u.Pos] = u
	}

	var b strings.Builder
	for y := 0; y < stage.Height && y < len(stage.Layout); y++ {
		row := stage.Layout[y]
		for x := 0; x < stage.Width && x < len(row); x++ {
			if u, ok := unitAt[engine.Position{X: x, Y: y}]; ok {
				b.WriteString(unitChar(u.Team))
			} else {
				b.WriteByte(row[x])
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatBattleState(stage *engine.StageConfig, state *engine.BattleState) string {
	if state == nil {
		return "No battle state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Stage: %s | Units: %d | Moves: %d\n\n",
		state.StageName, len(state.Units), state.TotalMoves))

	result.WriteString(formatBattleMap(stage, state))

	result.WriteString("\nUnits:\n")
	for _, u := range state.Units {
		result.WriteString(fmt.Sprintf("- %s %q (%s) at (%d,%d), move budget %d\n",
			unitChar(u.Team), u.ID, u.Team, u.Pos.X, u.Pos.Y, u.Move))
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

// costChar renders a reachable tile's cost as a single character
func costChar(cost int) string {
	if cost < 10 {
		return fmt.Sprintf("%d", cost)
	}
	return "+"
}

// formatRangeResult renders the reachable tiles as an overlay on the map
func formatRangeResult(rng *service.RangeResult, stage *engine.StageConfig) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Movement range for %q from (%d,%d), budget %d: %d tiles\n\n",
		rng.UnitID, rng.Origin.X, rng.Origin.Y, rng.Budget, rng.TileCount))

	if stage != nil {
		costAt := make(map[engine.Position]int, len(rng.Tiles))
		for _, t := range rng.Tiles {
			costAt[engine.Position{X: t.X, Y: t.Y}] = t.Cost
		}

		for y := 0; y < stage.Height && y < len(stage.Layout); y++ {
			row := stage.Layout[y]
			for x := 0; x < stage.Width && x < len(row); x++ {
				if cost, ok := costAt[engine.Position{X: x, Y: y}]; ok {
					b.WriteString(costChar(cost))
				} else {
					b.WriteByte(row[x])
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\nDigits show the minimum cost to reach each tile (0 = origin).\n")
	}

	b.WriteString(formatRangeList(rng))
	return b.String()
}

// formatRangeList renders the reachable tiles as a plain list
func formatRangeList(rng *service.RangeResult) string {
	var b strings.Builder
	b.WriteString("Reachable tiles:\n")
	for _, t := range rng.Tiles {
		b.WriteString(fmt.Sprintf("- (%d,%d) cost %d\n", t.X, t.Y, t.Cost))
	}
	return b.String()
}

// formatPathResult renders the route as an overlay on the map
func formatPathResult(path *service.PathResult, stage *engine.StageConfig) string {
	var b strings.Builder
	b.WriteString(formatPathSummary(path))

	if !path.Found || stage == nil {
		return b.String()
	}

	onPath := make(map[engine.Position]bool, len(path.Path))
	for _, p := range path.Path {
		onPath[p] = true
	}

	b.WriteString("\n")
	for y := 0; y < stage.Height && y < len(stage.Layout); y++ {
		row := stage.Layout[y]
		for x := 0; x < stage.Width && x < len(row); x++ {
			pos := engine.Position{X: x, Y: y}
			switch {
			case pos == path.Start:
				b.WriteString("@")
			case pos == path.Goal:
				b.WriteString("G")
			case onPath[pos]:
				b.WriteString("*")
			default:
				b.WriteByte(row[x])
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n@ = start, G = goal, * = route\n")
	return b.String()
}

// formatPathSummary renders the route outcome without the map
func formatPathSummary(path *service.PathResult) string {
	if !path.Found {
		reason := path.Reason
		if reason == "" {
			reason = "no_path"
		}
		return fmt.Sprintf("No route for %q to (%d,%d): %s\nThe unit stays where it is.\n",
			path.UnitID, path.Goal.X, path.Goal.Y, reason)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Route for %q: (%d,%d) -> (%d,%d), cost %d, %d tiles\n",
		path.UnitID, path.Start.X, path.Start.Y, path.Goal.X, path.Goal.Y,
		path.Cost, len(path.Path)))

	steps := make([]string, 0, len(path.Path))
	for _, p := range path.Path {
		steps = append(steps, fmt.Sprintf("(%d,%d)", p.X, p.Y))
	}
	b.WriteString("Steps: " + strings.Join(steps, " -> ") + "\n")
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	response := ""
	if result.Success {
		response = "✓ Move successful\n"
	} else {
		response = "✗ Move failed\n"
	}

	if out := result.Outcome; out != nil {
		if out.Success {
			response += fmt.Sprintf("Moved %q (%d,%d) -> (%d,%d), cost %d\n",
				out.UnitID, out.From.X, out.From.Y, out.To.X, out.To.Y, out.Cost)
		} else {
			response += fmt.Sprintf("Blocked: %q stays at (%d,%d), goal (%d,%d) rejected: %s\n",
				out.UnitID, out.From.X, out.From.Y, out.To.X, out.To.Y, out.Reason)
		}
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	if result.Message != "" {
		response += fmt.Sprintf("Message: %s\n", result.Message)
	}

	return response
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		result += fmt.Sprintf("%d. %s (%d,%d) -> (%d,%d) cost=%d %s\n",
			move.MoveNumber, move.UnitID,
			move.From.X, move.From.Y, move.To.X, move.To.Y, move.Cost, status)
	}

	return result
}

func formatCurrentSegment(state *engine.BattleState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	moves := state.CurrentMoves
	total := state.CurrentMovesCount
	header := fmt.Sprintf("Current Move Segment — Moves: %d\n\n", total)
	if len(moves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		// i is zero-based within the segment
		b.WriteString(fmt.Sprintf("%d. %s -> (%d,%d) %s [cost: %d]\n",
			i+1, move.UnitID, move.To.X, move.To.Y, status, move.Cost))
	}
	return b.String()
}
