// Package config provides stage definition management for the tactics
// movement engine.
//
// The config package implements:
//   - Stage loading from JSON files with validation
//   - Thread-safe caching of loaded stages
//   - Stage discovery and listing
//   - Default stage selection with fallback
//   - Stage saving for editor-style workflows
//
// Stage files live in a directory (by default "configs") and are
// identified by filename without the .json extension. Every stage is
// validated on load; a stage whose layout, legend, cost table, or unit
// placement is inconsistent never reaches a battle engine.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	stage, err := manager.LoadStage("valley_crossing")
//	stages, err := manager.ListStages()
package config
