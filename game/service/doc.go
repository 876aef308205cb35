// Package service provides the business logic layer for the tactics
// movement engine.
//
// The service package implements:
//   - Multi-session battle management
//   - Stage definition loading and listing
//   - Movement range and path queries
//   - Committed unit moves with history tracking
//   - Session lifecycle management
//
// Core Interfaces:
//
// BattleService is the main service interface providing high-level battle
// operations. SessionManager handles session creation, retrieval, and
// lifecycle. StageManager manages stage definition loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the battle engine, providing session isolation, stage management,
// and business logic orchestration. Each session maintains its own engine
// instance with independent state. Movement queries take their occupancy
// snapshot under the service lock, so every range or path result is
// consistent with the battle state at the moment of the call.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	stageMgr := config.NewManager("configs")
//	battleService := service.NewBattleService(sessionMgr, stageMgr)
//
//	// Create a new session
//	sessionInfo, err := battleService.CreateSession(ctx, "valley_crossing")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Query where a unit can go, then commit a move
//	reach, err := battleService.ComputeRange(ctx, sessionInfo.ID, "hero")
//	result, err := battleService.MoveUnit(ctx, sessionInfo.ID, "hero", engine.Position{X: 2, Y: 3})
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain
// independent battle state. Multiple sessions can run concurrently with
// different stages. Sessions track creation time, last access time, and
// move history for analytics and debugging.
package service
