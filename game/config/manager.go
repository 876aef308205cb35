package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/service"
)

var (
	ErrStageNotFound = errors.New("stage not found")
	ErrInvalidStage  = errors.New("invalid stage")
)

// Manager handles stage definition loading and caching
type Manager struct {
	stageDir     string
	defaultStage *engine.StageConfig
	stages       map[string]*engine.StageConfig
	mu           sync.RWMutex
}

// NewManager creates a new stage manager
func NewManager(stageDir string) (*Manager, error) {
	if _, err := os.Stat(stageDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("stage directory does not exist: %s", stageDir)
	}

	m := &Manager{
		stageDir: stageDir,
		stages:   make(map[string]*engine.StageConfig),
	}

	if err := m.loadDefaultStage(); err != nil {
		return nil, fmt.Errorf("failed to load default stage: %w", err)
	}

	return m, nil
}

// LoadStage loads a stage definition by name
func (m *Manager) LoadStage(name string) (*engine.StageConfig, error) {
	m.mu.RLock()
	// Check cache first
	if stage, exists := m.stages[name]; exists {
		m.mu.RUnlock()
		return stage, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if stage, exists := m.stages[name]; exists {
		return stage, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	stagePath := filepath.Join(m.stageDir, filename)

	data, err := os.ReadFile(stagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to read stage file: %w", err)
	}

	var stage engine.StageConfig
	if err := json.Unmarshal(data, &stage); err != nil {
		return nil, fmt.Errorf("failed to parse stage: %w", err)
	}

	if err := engine.ValidateStageConfig(&stage); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStage, err)
	}

	m.stages[name] = &stage
	return &stage, nil
}

// ListStages returns information about all available stage definitions
func (m *Manager) ListStages() ([]*service.StageInfo, error) {
	entries, err := os.ReadDir(m.stageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage directory: %w", err)
	}

	var stages []*service.StageInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		// Try to load the stage to get details
		stage, err := m.LoadStage(name)
		if err != nil {
			// Skip invalid stages
			continue
		}

		stages = append(stages, &service.StageInfo{
			Filename:    entry.Name(),
			StageID:     name, // This is the identifier to use for session creation
			Name:        stage.Name,
			Description: stage.Description,
			Width:       stage.Width,
			Height:      stage.Height,
			UnitCount:   len(stage.Units),
		})
	}

	return stages, nil
}

// GetDefault returns the default stage definition
func (m *Manager) GetDefault() *engine.StageConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultStage
}

// SetDefault sets the default stage by name
func (m *Manager) SetDefault(name string) error {
	stage, err := m.LoadStage(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultStage = stage
	return nil
}

// RefreshCache reloads all cached stages from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.stages = make(map[string]*engine.StageConfig)
	m.mu.Unlock()

	return m.loadDefaultStage()
}

// loadDefaultStage loads the default stage definition
func (m *Manager) loadDefaultStage() error {
	// Try valley_crossing.json as default
	stage, err := m.LoadStage("valley_crossing")
	if err != nil {
		// Try the first available stage
		stages, listErr := m.ListStages()
		if listErr != nil || len(stages) == 0 {
			m.defaultStage = m.createMinimalStage()
			return nil
		}

		stage, err = m.LoadStage(stages[0].StageID)
		if err != nil {
			m.defaultStage = m.createMinimalStage()
			return nil
		}
	}

	m.defaultStage = stage
	return nil
}

// SaveStage saves a stage definition to disk
func (m *Manager) SaveStage(name string, config *engine.StageConfig) error {
	// Validate before saving
	if err := engine.ValidateStageConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStage, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	stagePath := filepath.Join(m.stageDir, filename)

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stage: %w", err)
	}

	if err := os.WriteFile(stagePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write stage file: %w", err)
	}

	m.mu.Lock()
	m.stages[name] = config
	m.mu.Unlock()

	return nil
}

// createMinimalStage creates a minimal valid stage definition
func (m *Manager) createMinimalStage() *engine.StageConfig {
	return &engine.StageConfig{
		Name:        "default",
		Description: "Default minimal training ground",
		Width:       5,
		Height:      5,
		TileSize:    engine.DefaultTileSize,
		Layout: []string{
			"PPPPP",
			"PFPFP",
			"PPPPP",
			"PFPFP",
			"PPPPP",
		},
		Legend: map[string]engine.Terrain{
			"P": engine.Plain,
			"F": engine.Forest,
		},
		TerrainCosts: map[engine.Terrain]engine.TerrainCost{
			engine.Plain:  {Cost: 1},
			engine.Forest: {Cost: 2},
		},
		Units: []engine.UnitConfig{
			{ID: "hero", Name: "Hero", Team: engine.TeamPlayer, X: 0, Y: 0, Move: 4},
			{ID: "enemy", Name: "Enemy", Team: engine.TeamEnemy, X: 4, Y: 4, Move: 4},
		},
	}
}
