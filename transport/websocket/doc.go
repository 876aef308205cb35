// Package websocket provides WebSocket transport for the tactics movement
// engine.
//
// The websocket package implements:
//   - Real-time battle state broadcasting
//   - Session-aware WebSocket connections
//   - Movement event notifications
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Messages are JSON-encoded. After each committed move or reset the full
// battle state is pushed with event "state_update"; finer-grained
// notifications ("unit_moved", "move_blocked", "range_computed",
// "path_computed") carry their payload in the data field. Incoming client
// messages are ignored; mutations go through the REST API.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=abc1) when establishing the connection.
// Updates are broadcast only to clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// from an HTTP handler, after validating the session
//	hub.ServeWS(w, r, sessionID)
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive updates
// simultaneously without blocking each other.
package websocket
