// Package mcp provides a Model Context Protocol interface for the tactics
// movement engine.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for movement queries and battle operations
//   - Session-aware command execution
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - battle_state: Get current battle state with map rendering
//   - compute_range: Reachable tiles for a unit with per-tile costs
//   - find_path: Minimum-cost route from a unit to a goal tile
//   - move_unit: Commit a move to a goal tile
//   - reset_battle: Restore the initial deployment
//   - move_history: Retrieve move history with pagination
//   - create_session: Create a new battle session with stage selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_stages: List available stage definitions
//   - describe_tile: Terrain, cost and occupancy of a single tile
//   - battle_instructions: Comprehensive movement rules
//
// Architecture:
//
// The Client is a thin proxy: every tool call translates into a REST API
// request against the HTTP server, so MCP agents and HTTP clients always
// observe identical battle state. The client holds no state of its own.
//
// Query tools (compute_range, find_path, describe_tile) are read-only and
// never change the battle. An unreachable goal reported by find_path is a
// normal outcome, not an error; only contract violations such as
// out-of-bounds coordinates or unknown unit IDs surface as tool errors.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
