package engine

import "time"

// EventType classifies an entry in the turn history
type EventType string

const (
	EventGameStarted EventType = "game_started"
	EventRoll        EventType = "roll"
	EventMove        EventType = "move"
	EventCapture     EventType = "capture"
	EventNoLegalMove EventType = "no_legal_move"
	EventExtraTurn   EventType = "extra_turn"
	EventTurnChange  EventType = "turn_change"
	EventVictory     EventType = "victory"
	EventAIFallback  EventType = "ai_fallback"
)

// Event is one entry in the game's history
type Event struct {
	Seq       int       `json:"seq"`
	Turn      int       `json:"turn"`
	Type      EventType `json:"type"`
	Color     Color     `json:"color"`
	Roll      int       `json:"roll,omitempty"`
	PieceID   string    `json:"piece_id,omitempty"`
	From      *Location `json:"from,omitempty"`
	To        *Location `json:"to,omitempty"`
	Captured  string    `json:"captured,omitempty"`
	Rule      AIRule    `json:"rule,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

func (e *GameEngine) record(ev Event) {
	ev.Seq = len(e.history) + 1
	ev.Turn = e.turn
	ev.Timestamp = time.Now().Unix()
	e.history = append(e.history, ev)
}

// GetHistory returns a copy of every event since the game started
func (e *GameEngine) GetHistory() []Event {
	out := make([]Event, len(e.history))
	copy(out, e.history)
	return out
}

// EventsSince returns the events recorded after sequence number seq
func (e *GameEngine) EventsSince(seq int) []Event {
	if seq < 0 {
		seq = 0
	}
	if seq >= len(e.history) {
		return []Event{}
	}
	out := make([]Event, len(e.history)-seq)
	copy(out, e.history[seq:])
	return out
}

// LastSeq returns the sequence number of the newest event, 0 when empty
func (e *GameEngine) LastSeq() int {
	return len(e.history)
}

func locationPtr(loc Location) *Location {
	return &loc
}
