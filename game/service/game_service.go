package service

import (
	"context"
	"time"

	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
)

// BattleService defines all battle-related operations
type BattleService interface {
	// Session Management
	CreateSession(ctx context.Context, stageName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Movement Queries
	ComputeRange(ctx context.Context, sessionID, unitID string) (*RangeResult, error)
	FindPath(ctx context.Context, sessionID, unitID string, goal engine.Position) (*PathResult, error)
	DescribeTile(ctx context.Context, sessionID string, pos engine.Position) (*TileInfo, error)

	// Battle Operations
	MoveUnit(ctx context.Context, sessionID, unitID string, goal engine.Position) (*MoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.BattleState, error)

	// Battle State
	GetBattleState(ctx context.Context, sessionID string) (*engine.BattleState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Stages
	ListStages(ctx context.Context) ([]*StageInfo, error)
	LoadStage(ctx context.Context, stageName string) (*engine.StageConfig, error)
	SaveStage(ctx context.Context, stageName string, config *engine.StageConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, stage *engine.StageConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, stage *engine.StageConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// StageManager handles stage definition loading
type StageManager interface {
	LoadStage(name string) (*engine.StageConfig, error)
	ListStages() ([]*StageInfo, error)
	GetDefault() *engine.StageConfig
	SaveStage(name string, config *engine.StageConfig) error
}

// Session represents an active battle session
type Session struct {
	ID             string
	Engine         *engine.BattleEngine
	Stage          *engine.StageConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
