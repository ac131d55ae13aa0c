package engine

import "math/rand"

// AIRule names the heuristic rule that picked a piece
type AIRule string

const (
	RuleOnlyChoice  AIRule = "only_choice"
	RuleLeaveBase   AIRule = "leave_base"
	RuleCapture     AIRule = "capture"
	RuleReachSafety AIRule = "reach_safety"
	RuleFlee        AIRule = "flee"
	RuleRandom      AIRule = "random"
)

type chooser interface {
	Choose(roll int, eligible []*Piece, board *Board) (*Piece, AIRule)
}

// AI chooses a piece among the eligible ones. The first matching rule wins.
type AI struct {
	rng *rand.Rand
}

// NewAI creates a chooser whose random rule is driven by seed
func NewAI(seed int64) *AI {
	return &AI{rng: rand.New(rand.NewSource(seed))}
}

// Choose picks a piece from eligible for roll. It returns nil only for an empty set.
func (a *AI) Choose(roll int, eligible []*Piece, board *Board) (*Piece, AIRule) {
	switch len(eligible) {
	case 0:
		return nil, ""
	case 1:
		return eligible[0], RuleOnlyChoice
	}

	if roll == ExitRoll {
		for _, p := range eligible {
			if p.state == AtBase {
				return p, RuleLeaveBase
			}
		}
	}

	for _, p := range eligible {
		if board.Captures(p, board.DestinationCell(p, roll)) {
			return p, RuleCapture
		}
	}

	for _, p := range eligible {
		dest := board.DestinationCell(p, roll)
		if !p.cell.IsSafe() && dest != nil && dest.IsSafe() {
			return p, RuleReachSafety
		}
	}

	for _, p := range eligible {
		if !p.cell.IsSafe() {
			return p, RuleFlee
		}
	}

	return eligible[a.rng.Intn(len(eligible))], RuleRandom
}
