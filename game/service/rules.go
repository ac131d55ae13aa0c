package service

// RulesText is the player-facing summary of the rules the engine enforces
const RulesText = `LUDO RULES

Players: 2 to 4, each owning four pieces of one color (red, green, yellow, blue).
Seats play in roster order.

Board:
- A shared circuit of 56 cells. Each color enters it at its own start cell
  (red 0, green 14, yellow 28, blue 42).
- Star cells on the circuit are safe. Start cells are NOT safe.
- Each color has a private home stretch of 6 cells; the last one is home.

Turn:
1. Roll the die.
2. Pick one of your movable pieces. If none can move, the turn passes.
3. Rolling a 6 gives the same player another roll.

Moving:
- A piece leaves its base only on a 6 and lands on its start cell.
- Pieces walk the circuit clockwise. On reaching the cell before its start
  a piece turns into its home stretch.
- In the home stretch an overshoot bounces back from home. A piece that
  would overshoot home while still turning in cannot move.
- A cell on the circuit holding two or more pieces is blocked: nothing may
  land on it. Home stretch cells are never blocked.

Capturing:
- Landing on an unsafe cell held by a single opposing piece sends that
  piece back to its base.
- Pieces on safe cells cannot be captured.

Winning:
- The first player to bring all four pieces home wins.`

// DescribeBoard returns the fixed board topology
func DescribeBoard() BoardInfo {
	return boardInfo()
}
