// Package api provides HTTP REST API handlers for the tactics movement
// engine.
//
// The api package implements:
//   - RESTful endpoints for movement queries and committed moves
//   - Session management endpoints
//   - Stage listing, retrieval and creation
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (body: {"stage_id": "..."})
//   - GET /api/sessions - List all sessions (sort, order, limit)
//   - GET /api/sessions/unified - Multi-session view (sessionIds, stageName)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Movement Queries (read-only, never change battle state):
//   - GET /api/sessions/{id}/range?unit=hero - Reachable tiles with costs
//   - GET /api/sessions/{id}/path?unit=hero&x=3&y=2 - Minimum-cost route
//   - GET /api/sessions/{id}/tile?x=1&y=2 - Terrain and occupancy of a tile
//
// Battle Operations:
//   - POST /api/sessions/{id}/move - Commit a move (body: {"unit_id","x","y"})
//   - POST /api/sessions/{id}/reset - Restore initial deployment
//   - GET /api/sessions/{id}/state - Current battle state
//   - GET /api/sessions/{id}/history - Move history with pagination
//
// Stages:
//   - GET /api/stages - List available stage definitions
//   - GET /api/stages/{name} - Get a stage definition
//   - POST /api/stages - Save a stage definition
//
// Request/Response Format:
//
// All endpoints accept and return JSON. A blocked or out-of-budget move is
// a 200 response with success=false and a reason code (no_path or
// occupied_goal); only contract violations such as out-of-bounds
// coordinates or unknown units produce 4xx errors:
//
//	{
//	  "error": "error message"
//	}
//
// WebSocket:
//
// GET /ws?session={id} upgrades to a WebSocket connection that receives
// battle state updates for the session after every committed move or
// reset.
package api
