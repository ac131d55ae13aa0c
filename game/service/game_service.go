package service

import (
	"context"
	"time"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn Operations
	RollDice(ctx context.Context, sessionID string) (*TurnResult, error)
	MovePiece(ctx context.Context, sessionID, pieceID string) (*TurnResult, error)
	EndTurn(ctx context.Context, sessionID string) (*TurnResult, error)
	PlayAITurns(ctx context.Context, sessionID string, delay time.Duration, onStep func(*TurnResult)) (*AIPlayResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameView, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Save Slots
	SaveGame(ctx context.Context, sessionID string, slot int) (*SlotInfo, error)
	LoadGame(ctx context.Context, sessionID string, slot int) (*GameView, error)
	DeleteSave(ctx context.Context, slot int) (bool, error)
	ListSaves(ctx context.Context) ([]*SlotInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles roster preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// SaveStore persists engine snapshots in numbered slots.
// Load wraps engine.ErrSlotUnavailable for empty and unreadable slots.
type SaveStore interface {
	Save(ctx context.Context, slot int, snap engine.Snapshot) error
	Load(ctx context.Context, slot int) (engine.Snapshot, error)
	Delete(ctx context.Context, slot int) (bool, error)
	List(ctx context.Context) ([]SlotInfo, error)
	Close() error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
