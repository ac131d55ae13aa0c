package engine

// Player owns four pieces of one color. Kind decides who picks the moves.
type Player struct {
	color  Color
	kind   PlayerKind
	pieces []*Piece
}

func newPlayer(seat Seat, board *Board) *Player {
	p := &Player{
		color:  seat.Color,
		kind:   seat.Kind,
		pieces: make([]*Piece, PiecesPerPlayer),
	}
	home := board.Base(seat.Color)
	for i := range p.pieces {
		p.pieces[i] = newPiece(seat.Color, i, home)
	}
	return p
}

func (p *Player) Color() Color     { return p.color }
func (p *Player) Kind() PlayerKind { return p.kind }
func (p *Player) IsAI() bool       { return p.kind == KindAI }

// Pieces returns the player's pieces in number order
func (p *Player) Pieces() []*Piece {
	out := make([]*Piece, len(p.pieces))
	copy(out, p.pieces)
	return out
}

// EligiblePieces returns the pieces that have an unblocked destination for roll
func (p *Player) EligiblePieces(roll int, board *Board) []*Piece {
	var eligible []*Piece
	for _, piece := range p.pieces {
		if piece.state == Finished {
			continue
		}
		dest := board.DestinationCell(piece, roll)
		if dest == nil || board.IsBlocked(dest) {
			continue
		}
		eligible = append(eligible, piece)
	}
	return eligible
}

// HasWon reports whether all four pieces are Finished
func (p *Player) HasWon() bool {
	for _, piece := range p.pieces {
		if piece.state != Finished {
			return false
		}
	}
	return true
}

// FinishedCount returns how many pieces reached the terminal cell
func (p *Player) FinishedCount() int {
	n := 0
	for _, piece := range p.pieces {
		if piece.state == Finished {
			n++
		}
	}
	return n
}
