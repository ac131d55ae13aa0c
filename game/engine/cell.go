package engine

// CellKind is the closed set of cell variants
type CellKind string

const (
	CommonCell       CellKind = "common"
	SafeCell         CellKind = "safe"
	StartCell        CellKind = "start"
	FinalStretchCell CellKind = "final_stretch"
)

// Region says which part of the board a cell belongs to
type Region string

const (
	RegionCircuit Region = "circuit"
	RegionStretch Region = "stretch"
	RegionBase    Region = "base"
)

// Location addresses a cell independently of any Board instance
type Location struct {
	Region Region `json:"region"`
	Color  Color  `json:"color,omitempty"`
	Index  int    `json:"index"`
}

// Cell is a board position. Occupants are kept in arrival order; the first
// occupant is the one considered for capture.
type Cell struct {
	kind   CellKind
	region Region
	color  Color
	index  int
	pieces []*Piece
}

func newCell(kind CellKind, region Region, color Color, index int) *Cell {
	return &Cell{kind: kind, region: region, color: color, index: index}
}

// Kind returns the cell variant
func (c *Cell) Kind() CellKind { return c.kind }

// Region returns the board region the cell belongs to
func (c *Cell) Region() Region { return c.region }

// Color returns the owning color for stretch, base and entry cells, None otherwise
func (c *Cell) Color() Color { return c.color }

// Index returns the cell's position within its region
func (c *Cell) Index() int { return c.index }

// IsSafe reports whether pieces on this cell cannot be captured.
// Start cells are deliberately unsafe.
func (c *Cell) IsSafe() bool {
	return c.kind == SafeCell || c.kind == FinalStretchCell
}

// Occupants returns a copy of the pieces on the cell in arrival order
func (c *Cell) Occupants() []*Piece {
	out := make([]*Piece, len(c.pieces))
	copy(out, c.pieces)
	return out
}

// Count returns the number of occupants
func (c *Cell) Count() int { return len(c.pieces) }

// Location returns the serializable address of the cell
func (c *Cell) Location() Location {
	loc := Location{Region: c.region, Index: c.index}
	if c.region != RegionCircuit {
		loc.Color = c.color
	}
	return loc
}

func (c *Cell) addPiece(p *Piece) {
	c.pieces = append(c.pieces, p)
}

func (c *Cell) removePiece(p *Piece) {
	for i, occupant := range c.pieces {
		if occupant == p {
			c.pieces = append(c.pieces[:i], c.pieces[i+1:]...)
			return
		}
	}
}
