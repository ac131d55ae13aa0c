package engine

import "fmt"

// SnapshotVersion is bumped whenever the Snapshot layout changes
const SnapshotVersion = 1

// Snapshot is a plain, JSON-serializable copy of a whole game
type Snapshot struct {
	Version       int              `json:"version"`
	State         GameState        `json:"state"`
	CurrentPlayer int              `json:"current_player"`
	LastRoll      int              `json:"last_roll"`
	AwaitingMove  bool             `json:"awaiting_move"`
	Turn          int              `json:"turn"`
	Players       []PlayerSnapshot `json:"players"`
	History       []Event          `json:"history,omitempty"`
}

type PlayerSnapshot struct {
	Color  Color           `json:"color"`
	Kind   PlayerKind      `json:"kind"`
	Pieces []PieceSnapshot `json:"pieces"`
}

type PieceSnapshot struct {
	ID       string     `json:"id"`
	State    PieceState `json:"state"`
	Location Location   `json:"location"`
}

// Seats returns the roster recorded in the snapshot
func (s Snapshot) Seats() []Seat {
	seats := make([]Seat, len(s.Players))
	for i, p := range s.Players {
		seats[i] = Seat{Color: p.Color, Kind: p.Kind}
	}
	return seats
}

// Snapshot captures the engine's full state
func (e *GameEngine) Snapshot() Snapshot {
	s := Snapshot{
		Version:       SnapshotVersion,
		State:         e.state,
		CurrentPlayer: e.current,
		LastRoll:      e.lastRoll,
		AwaitingMove:  e.awaiting,
		Turn:          e.turn,
		Players:       make([]PlayerSnapshot, len(e.players)),
		History:       e.GetHistory(),
	}

	for i, player := range e.players {
		ps := PlayerSnapshot{
			Color:  player.color,
			Kind:   player.kind,
			Pieces: make([]PieceSnapshot, len(player.pieces)),
		}
		for j, piece := range player.pieces {
			ps.Pieces[j] = PieceSnapshot{
				ID:       piece.id,
				State:    piece.state,
				Location: piece.Location(),
			}
		}
		s.Players[i] = ps
	}

	return s
}

// Restore replaces the whole game with the snapshot. The snapshot is
// validated and rebuilt on a fresh board first; on error the engine is untouched.
// Pieces sharing a cell are re-added in player order.
func (e *GameEngine) Restore(s Snapshot) error {
	board, players, err := rebuild(s)
	if err != nil {
		return err
	}

	e.board = board
	e.players = players
	e.current = s.CurrentPlayer
	e.lastRoll = s.LastRoll
	e.awaiting = s.AwaitingMove
	e.turn = s.Turn
	e.state = s.State
	e.history = make([]Event, len(s.History))
	copy(e.history, s.History)
	return nil
}

func rebuild(s Snapshot) (*Board, []*Player, error) {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
	}

	if s.Version != SnapshotVersion {
		return nil, nil, invalid("unsupported version %d", s.Version)
	}
	if s.State != InProgress && s.State != GameFinished {
		return nil, nil, invalid("unknown state %q", s.State)
	}
	if len(s.Players) == 0 {
		if s.State == InProgress {
			return nil, nil, invalid("game in progress without players")
		}
		return nil, nil, nil
	}
	if err := ValidateRoster(s.Seats()); err != nil {
		return nil, nil, invalid("%v", err)
	}
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return nil, nil, invalid("current player %d out of range", s.CurrentPlayer)
	}
	if s.LastRoll < 0 || s.LastRoll > DieFaces {
		return nil, nil, invalid("last roll %d out of range", s.LastRoll)
	}
	if s.AwaitingMove && (s.State != InProgress || s.LastRoll == 0) {
		return nil, nil, invalid("pending move without an active roll")
	}
	if s.Turn < 1 {
		return nil, nil, invalid("turn %d out of range", s.Turn)
	}

	board := NewBoard()
	players := make([]*Player, len(s.Players))
	for i, ps := range s.Players {
		player := newPlayer(Seat{Color: ps.Color, Kind: ps.Kind}, board)
		if len(ps.Pieces) != PiecesPerPlayer {
			return nil, nil, invalid("%s has %d pieces", ps.Color, len(ps.Pieces))
		}
		for j, pieceSnap := range ps.Pieces {
			piece := player.pieces[j]
			if pieceSnap.ID != piece.id {
				return nil, nil, invalid("piece %d of %s has id %q, want %q", j, ps.Color, pieceSnap.ID, piece.id)
			}
			if err := place(board, piece, pieceSnap); err != nil {
				return nil, nil, invalid("%v", err)
			}
		}
		players[i] = player
	}

	for _, cell := range board.circuit {
		if cell.IsSafe() || len(cell.pieces) < 2 {
			continue
		}
		for _, p := range cell.pieces[1:] {
			if p.color != cell.pieces[0].color {
				return nil, nil, invalid("circuit cell %d holds opposing pieces", cell.index)
			}
		}
	}

	current := players[s.CurrentPlayer]
	for _, player := range players {
		if !player.HasWon() {
			continue
		}
		if s.State == InProgress {
			return nil, nil, invalid("%s has won but the game is in progress", player.color)
		}
		if player != current {
			return nil, nil, invalid("%s has won but is not the current player", player.color)
		}
	}
	if s.State == GameFinished && !current.HasWon() {
		return nil, nil, invalid("finished game without a winner")
	}
	if s.AwaitingMove && len(current.EligiblePieces(s.LastRoll, board)) == 0 {
		return nil, nil, invalid("pending move but no eligible piece")
	}

	return board, players, nil
}

// place puts a freshly built piece where the snapshot says it is
func place(board *Board, piece *Piece, ps PieceSnapshot) error {
	cell, err := board.CellAt(ps.Location)
	if err != nil {
		return fmt.Errorf("piece %s: %w", piece.id, err)
	}

	switch ps.State {
	case AtBase:
		if cell != piece.home {
			return fmt.Errorf("piece %s is at base but located at %+v", piece.id, ps.Location)
		}
		return nil
	case Finished:
		if cell != board.Terminal(piece.color) {
			return fmt.Errorf("piece %s is finished but not on its terminal cell", piece.id)
		}
	case InTransit:
		onCircuit := board.IsOnMainCircuit(cell)
		onStretch := board.IsOnFinalStretch(piece.color, cell) && cell != board.Terminal(piece.color)
		if !onCircuit && !onStretch {
			return fmt.Errorf("piece %s is in transit at invalid location %+v", piece.id, ps.Location)
		}
	default:
		return fmt.Errorf("piece %s has unknown state %q", piece.id, ps.State)
	}

	piece.home.removePiece(piece)
	cell.addPiece(piece)
	piece.cell = cell
	piece.state = ps.State
	return nil
}
