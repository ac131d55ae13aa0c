package service

import (
	"time"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
)

// CreateSessionRequest selects the roster for a new game. Seats wins over ConfigID.
type CreateSessionRequest struct {
	ConfigID string        `json:"config_id,omitempty"`
	Seats    []engine.Seat `json:"seats,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameView       *GameView          `json:"game_view"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// GameView is the presentation-ready state of a game
type GameView struct {
	SessionID    string            `json:"session_id,omitempty"`
	State        engine.GameState  `json:"state"`
	Turn         int               `json:"turn"`
	CurrentColor engine.Color      `json:"current_color,omitempty"`
	CurrentKind  engine.PlayerKind `json:"current_kind,omitempty"`
	LastRoll     int               `json:"last_roll"`
	AwaitingMove bool              `json:"awaiting_move"`
	Winner       engine.Color      `json:"winner,omitempty"`
	Message      string            `json:"message,omitempty"`
	Players      []PlayerView      `json:"players"`
	Board        BoardInfo         `json:"board"`
}

// PlayerView describes one seat and its pieces
type PlayerView struct {
	Color    engine.Color      `json:"color"`
	Kind     engine.PlayerKind `json:"kind"`
	Finished int               `json:"finished"`
	Pieces   []PieceView       `json:"pieces"`
}

// PieceView describes one piece. CircuitIndex and StretchIndex are -1 when
// the piece is elsewhere.
type PieceView struct {
	ID           string            `json:"id"`
	State        engine.PieceState `json:"state"`
	Location     engine.Location   `json:"location"`
	CircuitIndex int               `json:"circuit_index"`
	StretchIndex int               `json:"stretch_index"`
	Movable      bool              `json:"movable"`
	Destination  *engine.Location  `json:"destination,omitempty"`
}

// BoardInfo carries the fixed topology a client needs to map positions to the screen
type BoardInfo struct {
	CircuitLength int                  `json:"circuit_length"`
	StretchLength int                  `json:"stretch_length"`
	EntryIndex    map[engine.Color]int `json:"entry_index"`
	PeelOffIndex  map[engine.Color]int `json:"peel_off_index"`
	StarIndices   []int                `json:"star_indices"`
}

// TurnResult contains the outcome of a roll, move or end-turn call
type TurnResult struct {
	Roll        int            `json:"roll,omitempty"`
	NoLegalMove bool           `json:"no_legal_move,omitempty"`
	Moved       string         `json:"moved,omitempty"`
	Captured    string         `json:"captured,omitempty"`
	Events      []engine.Event `json:"events"`
	Message     string         `json:"message,omitempty"`
	GameView    *GameView      `json:"game_view"`
}

// AIPlayResult summarises a run of computer turns
type AIPlayResult struct {
	Steps         []*TurnResult `json:"steps"`
	StoppedReason string        `json:"stopped_reason"` // human_turn|game_over|cancelled|step_limit
	GameView      *GameView     `json:"game_view"`
}

const (
	StopHumanTurn = "human_turn"
	StopGameOver  = "game_over"
	StopCancelled = "cancelled"
	StopStepLimit = "step_limit"
)

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated game events
type HistoryResponse struct {
	Events      []engine.Event `json:"events"`
	TotalEvents int            `json:"total_events"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// SlotInfo summarises a saved game
type SlotInfo struct {
	Slot    int              `json:"slot"`
	SavedAt time.Time        `json:"saved_at"`
	State   engine.GameState `json:"state"`
	Turn    int              `json:"turn"`
	Seats   []engine.Seat    `json:"seats"`
}

// NewSlotInfo summarises a snapshot stored in slot
func NewSlotInfo(slot int, savedAt time.Time, snap engine.Snapshot) SlotInfo {
	return SlotInfo{
		Slot:    slot,
		SavedAt: savedAt,
		State:   snap.State,
		Turn:    snap.Turn,
		Seats:   snap.Seats(),
	}
}

// ConfigInfo provides information about a roster preset
type ConfigInfo struct {
	Filename    string        `json:"filename"`
	ConfigID    string        `json:"config_id"` // The identifier to use for session creation
	Name        string        `json:"name"`      // Display name
	Description string        `json:"description"`
	Players     int           `json:"players"`
	Seats       []engine.Seat `json:"seats"`
}
