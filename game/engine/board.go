package engine

import "fmt"

// Board owns every cell and is the only place where pieces change cells
type Board struct {
	circuit   []*Cell
	stretches map[Color][]*Cell
	bases     map[Color]*Cell
}

// NewBoard builds the 56-cell circuit, the four final stretches and the four bases
func NewBoard() *Board {
	b := &Board{
		circuit:   make([]*Cell, CircuitLength),
		stretches: make(map[Color][]*Cell, len(Colors)),
		bases:     make(map[Color]*Cell, len(Colors)),
	}

	for i := range b.circuit {
		b.circuit[i] = newCell(CommonCell, RegionCircuit, None, i)
	}
	for _, i := range StarIndices {
		b.circuit[i].kind = SafeCell
	}

	for _, color := range Colors {
		entry := b.circuit[EntryIndex[color]]
		entry.kind = StartCell
		entry.color = color

		stretch := make([]*Cell, StretchLength)
		for i := 0; i < StretchLength-1; i++ {
			stretch[i] = newCell(FinalStretchCell, RegionStretch, color, i)
		}
		stretch[StretchLength-1] = newCell(SafeCell, RegionStretch, color, StretchLength-1)
		b.stretches[color] = stretch

		b.bases[color] = newCell(StartCell, RegionBase, color, 0)
	}

	return b
}

// CircuitCell returns the circuit cell at index i (taken mod 56)
func (b *Board) CircuitCell(i int) *Cell {
	i %= CircuitLength
	if i < 0 {
		i += CircuitLength
	}
	return b.circuit[i]
}

// StretchCell returns a color's final stretch cell, or nil when out of range
func (b *Board) StretchCell(color Color, i int) *Cell {
	stretch, ok := b.stretches[color]
	if !ok || i < 0 || i >= len(stretch) {
		return nil
	}
	return stretch[i]
}

// Terminal returns the last cell of a color's final stretch
func (b *Board) Terminal(color Color) *Cell {
	return b.StretchCell(color, StretchLength-1)
}

// Base returns a color's off-board holding cell
func (b *Board) Base(color Color) *Cell {
	return b.bases[color]
}

// Entry returns the circuit cell where a color's pieces enter play
func (b *Board) Entry(color Color) *Cell {
	idx, ok := EntryIndex[color]
	if !ok {
		return nil
	}
	return b.circuit[idx]
}

// CellAt resolves a Location to this board's cell
func (b *Board) CellAt(loc Location) (*Cell, error) {
	switch loc.Region {
	case RegionCircuit:
		if loc.Index < 0 || loc.Index >= CircuitLength {
			return nil, fmt.Errorf("circuit index %d out of range", loc.Index)
		}
		return b.circuit[loc.Index], nil
	case RegionStretch:
		if c := b.StretchCell(loc.Color, loc.Index); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("no %s stretch cell at index %d", loc.Color, loc.Index)
	case RegionBase:
		if c := b.Base(loc.Color); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("no base for color %q", loc.Color)
	}
	return nil, fmt.Errorf("unknown region %q", loc.Region)
}

// DestinationCell resolves where a piece would land with the given roll.
// It returns nil when the move is impossible.
func (b *Board) DestinationCell(p *Piece, roll int) *Cell {
	if p == nil || roll < 1 || roll > DieFaces {
		return nil
	}

	switch p.state {
	case AtBase:
		if roll != ExitRoll {
			return nil
		}
		return b.Entry(p.color)

	case InTransit:
		if b.IsOnFinalStretch(p.color, p.cell) {
			last := StretchLength - 1
			target := p.cell.index + roll
			if target > last {
				target = last - (target - last)
			}
			if target < 0 {
				return nil
			}
			return b.stretches[p.color][target]
		}

		if !b.IsOnMainCircuit(p.cell) {
			return nil
		}

		idx := p.cell.index
		peel := PeelOffIndex[p.color]
		for moves := roll; moves > 0; moves-- {
			if idx == peel {
				return b.StretchCell(p.color, moves-1)
			}
			idx = (idx + 1) % CircuitLength
		}
		return b.circuit[idx]
	}

	return nil
}

// IsBlocked reports whether a cell holds two or more pieces outside any final stretch
func (b *Board) IsBlocked(c *Cell) bool {
	if c == nil || c.region == RegionStretch {
		return false
	}
	return len(c.pieces) > 1
}

// Captures reports whether moving p onto dest would send an opponent home
func (b *Board) Captures(p *Piece, dest *Cell) bool {
	if dest == nil || dest.IsSafe() || len(dest.pieces) != 1 {
		return false
	}
	return dest.pieces[0].color != p.color
}

// MovePiece moves p onto dest, resolving capture before the mover lands.
// It returns the captured piece, if any.
func (b *Board) MovePiece(p *Piece, dest *Cell) (*Piece, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: no piece", ErrIllegalMove)
	}
	if dest == nil {
		return nil, fmt.Errorf("%w: no destination", ErrIllegalMove)
	}
	if dest.region == RegionBase {
		return nil, fmt.Errorf("%w: pieces only return to base by capture", ErrIllegalMove)
	}
	if dest.region == RegionStretch && dest.color != p.color {
		return nil, fmt.Errorf("%w: %s stretch is reserved for %s", ErrIllegalMove, dest.color, dest.color)
	}
	if b.IsBlocked(dest) {
		return nil, fmt.Errorf("%w: cell blocked", ErrIllegalMove)
	}

	wasAtBase := p.state == AtBase
	p.cell.removePiece(p)

	var captured *Piece
	if b.Captures(p, dest) {
		captured = dest.pieces[0]
		captured.returnToBase()
	}

	dest.addPiece(p)
	p.cell = dest

	if !wasAtBase && dest == b.Terminal(p.color) {
		p.state = Finished
	} else {
		p.state = InTransit
	}

	return captured, nil
}

// IsOnMainCircuit reports whether c is one of the 56 circuit cells
func (b *Board) IsOnMainCircuit(c *Cell) bool {
	return c != nil && c.region == RegionCircuit
}

// CircuitIndexOf returns c's circuit index, or -1 when c is not on the circuit
func (b *Board) CircuitIndexOf(c *Cell) int {
	if !b.IsOnMainCircuit(c) {
		return -1
	}
	return c.index
}

// IsOnFinalStretch reports whether c belongs to color's final stretch
func (b *Board) IsOnFinalStretch(color Color, c *Cell) bool {
	return c != nil && c.region == RegionStretch && c.color == color
}

// FinalStretchIndexOf returns c's index in its final stretch, or -1
func (b *Board) FinalStretchIndexOf(c *Cell) int {
	if c == nil || c.region != RegionStretch {
		return -1
	}
	return c.index
}
