package engine

import "fmt"

// Color identifies a player's pieces and the board regions they own
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
	None   Color = "none"
)

// Colors lists the playable colors in circuit order
var Colors = []Color{Red, Green, Yellow, Blue}

// Valid reports whether c is one of the four playable colors
func (c Color) Valid() bool {
	switch c {
	case Red, Green, Yellow, Blue:
		return true
	}
	return false
}

// PieceState is the lifecycle state of a piece
type PieceState string

const (
	AtBase    PieceState = "at_base"
	InTransit PieceState = "in_transit"
	Finished  PieceState = "finished"
)

// GameState is the state of the engine's state machine
type GameState string

const (
	InProgress   GameState = "in_progress"
	GameFinished GameState = "finished"
)

// PlayerKind selects how a player's moves are chosen
type PlayerKind string

const (
	KindHuman PlayerKind = "human"
	KindAI    PlayerKind = "ai"
)

// Seat is one roster entry handed to StartNewGame
type Seat struct {
	Color Color      `json:"color"`
	Kind  PlayerKind `json:"kind"`
}

const (
	CircuitLength   = 56
	StretchLength   = 6
	PiecesPerPlayer = 4
	MinPlayers      = 2
	MaxPlayers      = 4
	DieFaces        = 6
	ExitRoll        = 6
)

// EntryIndex is the circuit index where each color's pieces enter the circuit
var EntryIndex = map[Color]int{
	Red:    0,
	Green:  14,
	Yellow: 28,
	Blue:   42,
}

// PeelOffIndex is the circuit index where each color leaves for its final stretch
var PeelOffIndex = map[Color]int{
	Red:    55,
	Green:  13,
	Yellow: 27,
	Blue:   41,
}

// StarIndices are the shared safe cells on the circuit
var StarIndices = []int{9, 23, 37, 51}

// ValidateRoster checks a roster for correctness before a game starts
func ValidateRoster(seats []Seat) error {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return fmt.Errorf("%w: need between %d and %d players, got %d", ErrInvalidRoster, MinPlayers, MaxPlayers, len(seats))
	}

	seen := make(map[Color]bool, len(seats))
	for i, seat := range seats {
		if !seat.Color.Valid() {
			return fmt.Errorf("%w: seat %d has invalid color %q", ErrInvalidRoster, i+1, seat.Color)
		}
		if seen[seat.Color] {
			return fmt.Errorf("%w: color %s is used by more than one seat", ErrInvalidRoster, seat.Color)
		}
		seen[seat.Color] = true

		switch seat.Kind {
		case KindHuman, KindAI:
		default:
			return fmt.Errorf("%w: seat %d has invalid kind %q", ErrInvalidRoster, i+1, seat.Kind)
		}
	}

	return nil
}
