package engine

import "errors"

var (
	// ErrIllegalMove reports a move the rules forbid. The wrapped message says why.
	ErrIllegalMove = errors.New("illegal move")

	// ErrNoLegalMove reports a roll with no eligible piece. The turn has
	// already advanced when a caller sees it.
	ErrNoLegalMove = errors.New("no legal move")

	// ErrSlotUnavailable reports a save slot that is empty or unreadable.
	ErrSlotUnavailable = errors.New("save slot unavailable")

	ErrNotInProgress   = errors.New("game is not in progress")
	ErrInvalidRoster   = errors.New("invalid roster")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrUnknownPiece    = errors.New("unknown piece")
)
