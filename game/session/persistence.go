package session

import (
	"time"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
)

// SessionPersistence stores whole sessions, engine snapshot included.
// IDs are compared case-insensitively.
type SessionPersistence interface {
	Save(session *service.Session) error
	// Load returns ErrSessionNotFound for unknown IDs and a rebuilt engine otherwise
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the JSON document written for each session.
// Config holds the roster the game was started with, so custom rosters survive a restart.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Config         *engine.GameConfig `json:"config,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Game           engine.Snapshot    `json:"game"`
}
