package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/service"
)

// FilePersistence implements SessionPersistence using file system storage
type FilePersistence struct {
	sessionsDir  string
	stageManager service.StageManager
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string, stageManager service.StageManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir:  sessionsDir,
		stageManager: stageManager,
	}, nil
}

// Save persists a session to a JSON file. Only the battle state is
// stored; the grid is rebuilt from the stage definition on load.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	stageID, err := fp.getStageIDFromName(session.Stage.Name)
	if err != nil {
		return fmt.Errorf("failed to get stage ID: %w", err)
	}

	data := PersistedSessionData{
		ID:             session.ID,
		StageName:      stageID, // Store stage ID, not display name
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		BattleState:    session.Engine.GetState(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	filePath := fp.getFilePath(session.ID)
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load retrieves a session from a JSON file
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath := fp.getFilePath(id)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	// Load the stage definition
	stage, err := fp.stageManager.LoadStage(data.StageName)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage '%s': %w", data.StageName, err)
	}

	battleEngine, err := engine.NewEngine(stage)
	if err != nil {
		return nil, fmt.Errorf("failed to create battle engine: %w", err)
	}

	// Restore battle state
	stateJSON, err := json.Marshal(data.BattleState)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal battle state: %w", err)
	}

	var battleState engine.BattleState
	if err := json.Unmarshal(stateJSON, &battleState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal battle state: %w", err)
	}

	if err := battleEngine.SetState(&battleState); err != nil {
		return nil, fmt.Errorf("failed to set battle state: %w", err)
	}

	session := &service.Session{
		ID:             data.ID,
		Engine:         battleEngine,
		Stage:          stage,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}

	return session, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	filePath := fp.getFilePath(id)

	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", id))
}

// getStageIDFromName returns the stage ID (filename without extension) from display name
func (fp *FilePersistence) getStageIDFromName(displayName string) (string, error) {
	stages, err := fp.stageManager.ListStages()
	if err != nil {
		return "", fmt.Errorf("failed to list stages: %w", err)
	}

	for _, stage := range stages {
		if stage.Name == displayName {
			return stage.StageID, nil
		}
	}

	// If not found, assume the displayName is already the stage ID
	return displayName, nil
}
