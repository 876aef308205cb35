package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
)

func writeStageFile(t *testing.T, dir, name string, stage *engine.StageConfig) {
	t.Helper()
	data, err := json.MarshalIndent(stage, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal stage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write stage file: %v", err)
	}
}

func sampleStage(name string) *engine.StageConfig {
	return &engine.StageConfig{
		Name:        name,
		Description: "Stage fixture for config tests",
		Width:       5,
		Height:      5,
		TileSize:    32,
		Layout: []string{
			"PPPPP",
			"PFFFP",
			"PPPPP",
			"PWWWP",
			"PPPPP",
		},
		Legend: map[string]engine.Terrain{
			"P": engine.Plain,
			"F": engine.Forest,
			"W": engine.Water,
		},
		TerrainCosts: map[engine.Terrain]engine.TerrainCost{
			engine.Plain:  {Cost: 1},
			engine.Forest: {Cost: 2},
			engine.Water:  {Impassable: true},
		},
		Units: []engine.UnitConfig{
			{ID: "hero", Name: "Hero", Team: engine.TeamPlayer, X: 0, Y: 0, Move: 4},
		},
	}
}

func TestNewManager_MissingDirectory(t *testing.T) {
	if _, err := NewManager("/nonexistent/stages"); err == nil {
		t.Error("Expected error for missing stage directory")
	}
}

func TestNewManager_EmptyDirectoryFallsBackToMinimal(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	def := manager.GetDefault()
	if def == nil {
		t.Fatal("Expected a fallback default stage")
	}
	if err := engine.ValidateStageConfig(def); err != nil {
		t.Errorf("Fallback default stage is invalid: %v", err)
	}
}

func TestManager_LoadStage(t *testing.T) {
	dir := t.TempDir()
	writeStageFile(t, dir, "crossing", sampleStage("Crossing"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	stage, err := manager.LoadStage("crossing")
	if err != nil {
		t.Fatalf("Failed to load stage: %v", err)
	}
	if stage.Name != "Crossing" {
		t.Errorf("Expected stage name Crossing, got %q", stage.Name)
	}

	// Second load hits the cache and returns the same instance.
	again, err := manager.LoadStage("crossing")
	if err != nil {
		t.Fatalf("Failed to load cached stage: %v", err)
	}
	if stage != again {
		t.Error("Expected the cached stage instance")
	}
}

func TestManager_LoadStage_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeStageFile(t, dir, "crossing", sampleStage("Crossing"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.LoadStage("missing"); !errors.Is(err, ErrStageNotFound) {
		t.Errorf("Expected ErrStageNotFound, got %v", err)
	}
}

func TestManager_LoadStage_InvalidRejected(t *testing.T) {
	dir := t.TempDir()
	bad := sampleStage("Broken")
	bad.Units[0].X = 99 // out of bounds
	writeStageFile(t, dir, "broken", bad)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.LoadStage("broken"); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("Expected ErrInvalidStage, got %v", err)
	}
}

func TestManager_ListStages(t *testing.T) {
	dir := t.TempDir()
	writeStageFile(t, dir, "alpha", sampleStage("Alpha"))
	writeStageFile(t, dir, "beta", sampleStage("Beta"))

	// Invalid stages are skipped, not fatal.
	broken := sampleStage("Broken")
	broken.Layout = broken.Layout[:2]
	writeStageFile(t, dir, "broken", broken)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	stages, err := manager.ListStages()
	if err != nil {
		t.Fatalf("Failed to list stages: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("Expected 2 valid stages, got %d", len(stages))
	}
	for _, info := range stages {
		if info.Width != 5 || info.Height != 5 || info.UnitCount != 1 {
			t.Errorf("Unexpected stage info: %+v", info)
		}
	}
}

func TestManager_DefaultStage(t *testing.T) {
	dir := t.TempDir()
	writeStageFile(t, dir, "valley_crossing", sampleStage("Valley Crossing"))
	writeStageFile(t, dir, "other", sampleStage("Other"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if def := manager.GetDefault(); def.Name != "Valley Crossing" {
		t.Errorf("Expected valley_crossing as default, got %q", def.Name)
	}

	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if def := manager.GetDefault(); def.Name != "Other" {
		t.Errorf("Expected Other as default, got %q", def.Name)
	}

	if err := manager.SetDefault("missing"); err == nil {
		t.Error("Expected error when defaulting to a missing stage")
	}
}

func TestManager_SaveStage(t *testing.T) {
	dir := t.TempDir()
	writeStageFile(t, dir, "crossing", sampleStage("Crossing"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	saved := sampleStage("Saved Stage")
	if err := manager.SaveStage("saved", saved); err != nil {
		t.Fatalf("Failed to save stage: %v", err)
	}

	loaded, err := manager.LoadStage("saved")
	if err != nil {
		t.Fatalf("Failed to load saved stage: %v", err)
	}
	if loaded.Name != "Saved Stage" {
		t.Errorf("Expected Saved Stage, got %q", loaded.Name)
	}

	// Invalid stages never reach disk.
	invalid := sampleStage("Nope")
	invalid.Units = nil
	if err := manager.SaveStage("nope", invalid); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("Expected ErrInvalidStage, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nope.json")); !os.IsNotExist(err) {
		t.Error("Invalid stage should not be written to disk")
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeStageFile(t, dir, "crossing", sampleStage("Crossing"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	first, err := manager.LoadStage("crossing")
	if err != nil {
		t.Fatalf("Failed to load stage: %v", err)
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}

	second, err := manager.LoadStage("crossing")
	if err != nil {
		t.Fatalf("Failed to reload stage: %v", err)
	}
	if first == second {
		t.Error("Expected a fresh instance after cache refresh")
	}
}
