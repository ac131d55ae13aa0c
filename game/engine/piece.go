package engine

import "fmt"

// Piece is a single token. Its color and home cell never change.
type Piece struct {
	id     string
	color  Color
	number int
	home   *Cell
	cell   *Cell
	state  PieceState
}

// PieceID builds the identifier used by transports, e.g. "red-2"
func PieceID(color Color, number int) string {
	return fmt.Sprintf("%s-%d", color, number)
}

func newPiece(color Color, number int, home *Cell) *Piece {
	p := &Piece{
		id:     PieceID(color, number),
		color:  color,
		number: number,
		home:   home,
		cell:   home,
		state:  AtBase,
	}
	home.addPiece(p)
	return p
}

func (p *Piece) ID() string         { return p.id }
func (p *Piece) Color() Color       { return p.color }
func (p *Piece) Number() int        { return p.number }
func (p *Piece) State() PieceState  { return p.state }
func (p *Piece) Cell() *Cell        { return p.cell }
func (p *Piece) Home() *Cell        { return p.home }
func (p *Piece) Location() Location { return p.cell.Location() }

// returnToBase sends a captured piece home. Only Board's capture step calls it.
func (p *Piece) returnToBase() {
	if p.cell != nil {
		p.cell.removePiece(p)
	}
	p.cell = p.home
	p.home.addPiece(p)
	p.state = AtBase
}
