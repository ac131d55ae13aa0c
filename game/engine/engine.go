package engine

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	StartNewGame(seats []Seat) error
	RollDice() (int, error)
	AttemptMove(piece *Piece) error
	EndTurn() error

	// Queries
	GetState() GameState
	GetCurrentPlayer() *Player
	GetLastRoll() int
	GetPlayers() []*Player
	GetBoard() *Board
	GetWinner() *Player
	GetEligiblePieces() []*Piece
	IsAwaitingMove() bool
	PieceByID(id string) (*Piece, error)

	// History
	GetHistory() []Event
	EventsSince(seq int) []Event
	LastSeq() int

	// Persistence
	Snapshot() Snapshot
	Restore(s Snapshot) error
}

// GameEngine implements the Engine interface
type GameEngine struct {
	board     *Board
	players   []*Player
	current   int
	lastRoll  int
	state     GameState
	awaiting  bool
	turn      int
	history   []Event
	dice      Roller
	fixedDice bool
	ai        chooser
	seeds     *rand.Rand
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRoller replaces the die. The roller survives StartNewGame.
func WithRoller(r Roller) Option {
	return func(e *GameEngine) {
		e.dice = r
		e.fixedDice = true
	}
}

// WithSeed makes dice and AI choices reproducible
func WithSeed(seed int64) Option {
	return func(e *GameEngine) {
		e.seeds = rand.New(rand.NewSource(seed))
	}
}

// NewEngine creates an engine with no active game (state Finished)
func NewEngine(opts ...Option) *GameEngine {
	e := &GameEngine{state: GameFinished}
	for _, opt := range opts {
		opt(e)
	}
	if e.seeds == nil {
		e.seeds = rand.New(rand.NewSource(NewSeed()))
	}
	e.ai = NewAI(e.seeds.Int63())
	if e.dice == nil {
		e.dice = NewDice(e.seeds.Int63())
	}
	return e
}

// StartNewGame replaces any current game with a fresh one for the given roster.
// Seat order is turn order.
func (e *GameEngine) StartNewGame(seats []Seat) error {
	if err := ValidateRoster(seats); err != nil {
		return err
	}

	board := NewBoard()
	players := make([]*Player, len(seats))
	for i, seat := range seats {
		players[i] = newPlayer(seat, board)
	}

	e.board = board
	e.players = players
	e.current = 0
	e.lastRoll = 0
	e.awaiting = false
	e.turn = 1
	e.history = nil
	e.state = InProgress
	if !e.fixedDice {
		e.dice = NewDice(e.seeds.Int63())
	}

	e.record(Event{Type: EventGameStarted, Color: players[0].color})
	return nil
}

// RollDice rolls for the current player. When no piece can move the turn
// advances and ErrNoLegalMove is returned together with the roll. A computer
// player moves before RollDice returns.
func (e *GameEngine) RollDice() (int, error) {
	if e.state != InProgress {
		return 0, ErrNotInProgress
	}
	if e.awaiting {
		return 0, fmt.Errorf("%w: move a piece before rolling again", ErrIllegalMove)
	}

	player := e.players[e.current]
	roll := e.dice.Roll()
	if roll < 1 || roll > DieFaces {
		return 0, fmt.Errorf("die produced %d, want 1..%d", roll, DieFaces)
	}
	e.lastRoll = roll
	e.record(Event{Type: EventRoll, Color: player.color, Roll: roll})

	if len(player.EligiblePieces(roll, e.board)) == 0 {
		e.record(Event{Type: EventNoLegalMove, Color: player.color, Roll: roll})
		e.endTurn()
		return roll, ErrNoLegalMove
	}

	e.awaiting = true
	e.takeTurn(player, roll)
	return roll, nil
}

func (e *GameEngine) takeTurn(player *Player, roll int) {
	switch player.kind {
	case KindAI:
		e.playAI(player, roll)
	default:
		log.WithFields(log.Fields{"color": player.color, "roll": roll}).Debug("Waiting for human move")
	}
}

// playAI lets the heuristic pick a piece, retrying on the remainder if the
// engine rejects a choice. An exhausted set ends the turn.
func (e *GameEngine) playAI(player *Player, roll int) {
	eligible := player.EligiblePieces(roll, e.board)
	for len(eligible) > 0 {
		piece, rule := e.ai.Choose(roll, eligible, e.board)
		if piece == nil {
			break
		}
		err := e.move(piece, rule)
		if err == nil {
			return
		}
		log.WithFields(log.Fields{"color": player.color, "piece": piece.id, "roll": roll}).WithError(err).Warn("AI move rejected")
		eligible = without(eligible, piece)
	}

	log.WithFields(log.Fields{"color": player.color, "roll": roll}).Error("AI found no executable move among eligible pieces, ending turn")
	e.record(Event{Type: EventAIFallback, Color: player.color, Roll: roll})
	e.endTurn()
}

// AttemptMove moves piece by the last roll on behalf of the current player
func (e *GameEngine) AttemptMove(piece *Piece) error {
	if e.state != InProgress {
		return ErrNotInProgress
	}
	return e.move(piece, "")
}

func (e *GameEngine) move(piece *Piece, rule AIRule) error {
	if piece == nil {
		return ErrUnknownPiece
	}
	if !e.awaiting {
		return fmt.Errorf("%w: roll the dice before moving", ErrIllegalMove)
	}
	if piece.state == Finished {
		return fmt.Errorf("%w: piece already finished", ErrIllegalMove)
	}

	player := e.players[e.current]
	if !player.owns(piece) {
		return fmt.Errorf("%w: not your piece", ErrIllegalMove)
	}

	dest := e.board.DestinationCell(piece, e.lastRoll)
	if dest == nil {
		if piece.state == AtBase {
			return fmt.Errorf("%w: needs a 6 to leave base", ErrIllegalMove)
		}
		return fmt.Errorf("%w: can't make that move", ErrIllegalMove)
	}
	if e.board.IsBlocked(dest) {
		return fmt.Errorf("%w: cell blocked", ErrIllegalMove)
	}

	from := piece.Location()
	captured, err := e.board.MovePiece(piece, dest)
	if err != nil {
		return err
	}
	e.awaiting = false

	e.record(Event{
		Type:    EventMove,
		Color:   player.color,
		Roll:    e.lastRoll,
		PieceID: piece.id,
		From:    locationPtr(from),
		To:      locationPtr(dest.Location()),
		Rule:    rule,
	})
	if captured != nil {
		e.record(Event{
			Type:     EventCapture,
			Color:    player.color,
			PieceID:  piece.id,
			To:       locationPtr(dest.Location()),
			Captured: captured.id,
		})
	}

	if player.HasWon() {
		e.finish(player)
		return nil
	}

	e.endTurn()
	return nil
}

// EndTurn passes the turn. A player who rolled a 6 keeps the turn.
func (e *GameEngine) EndTurn() error {
	if e.state != InProgress {
		return ErrNotInProgress
	}
	e.endTurn()
	return nil
}

func (e *GameEngine) endTurn() {
	e.awaiting = false
	player := e.players[e.current]

	if player.HasWon() {
		e.finish(player)
		return
	}

	e.turn++
	if e.lastRoll == ExitRoll {
		e.record(Event{Type: EventExtraTurn, Color: player.color})
		return
	}

	e.current = (e.current + 1) % len(e.players)
	e.record(Event{Type: EventTurnChange, Color: e.players[e.current].color})
}

func (e *GameEngine) finish(winner *Player) {
	e.state = GameFinished
	e.awaiting = false
	e.record(Event{Type: EventVictory, Color: winner.color})
}

// GetState returns InProgress or Finished
func (e *GameEngine) GetState() GameState {
	return e.state
}

// GetCurrentPlayer returns the player whose turn it is, nil before the first game
func (e *GameEngine) GetCurrentPlayer() *Player {
	if len(e.players) == 0 {
		return nil
	}
	return e.players[e.current]
}

// GetLastRoll returns the most recent roll, 0 before the first one of a game
func (e *GameEngine) GetLastRoll() int {
	return e.lastRoll
}

func (e *GameEngine) GetPlayers() []*Player {
	out := make([]*Player, len(e.players))
	copy(out, e.players)
	return out
}

func (e *GameEngine) GetBoard() *Board {
	return e.board
}

// GetWinner returns the current player once the game is Finished and that player has won
func (e *GameEngine) GetWinner() *Player {
	if e.state != GameFinished {
		return nil
	}
	player := e.GetCurrentPlayer()
	if player == nil || !player.HasWon() {
		return nil
	}
	return player
}

// GetEligiblePieces returns the current player's movable pieces while a move is pending
func (e *GameEngine) GetEligiblePieces() []*Piece {
	if e.state != InProgress || !e.awaiting {
		return nil
	}
	return e.players[e.current].EligiblePieces(e.lastRoll, e.board)
}

// IsAwaitingMove reports whether the current player rolled and still has to move
func (e *GameEngine) IsAwaitingMove() bool {
	return e.awaiting
}

// GetTurn returns the 1-based turn counter
func (e *GameEngine) GetTurn() int {
	return e.turn
}

// PieceByID looks a piece up by its "<color>-<n>" identifier
func (e *GameEngine) PieceByID(id string) (*Piece, error) {
	for _, player := range e.players {
		for _, piece := range player.pieces {
			if piece.id == id {
				return piece, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPiece, id)
}

func (p *Player) owns(piece *Piece) bool {
	for _, own := range p.pieces {
		if own == piece {
			return true
		}
	}
	return false
}

func without(pieces []*Piece, drop *Piece) []*Piece {
	out := make([]*Piece, 0, len(pieces))
	for _, p := range pieces {
		if p != drop {
			out = append(out, p)
		}
	}
	return out
}
