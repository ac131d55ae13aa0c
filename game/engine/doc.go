// Package engine provides the core rules and state for a four-color Ludo game.
//
// The engine package implements the game mechanics including:
//   - Board topology: a 56-cell circuit, four 6-cell final stretches and four bases
//   - Piece lifecycle (AtBase, InTransit, Finished) and movement resolution
//   - Capture and blocking rules
//   - Turn sequencing, the rule of six and win detection
//   - A heuristic move selector for computer-controlled players
//   - Snapshot and restore of the complete game state
//
// Core Types:
//
// Engine owns a Board, the ordered Players (2 to 4, insertion order is turn
// order), the last roll and the GameState. Board owns every Cell and is the
// only place where pieces change cells, so a Cell's occupant list and a
// Piece's current cell always agree.
//
// Usage:
//
//	eng := engine.NewEngine()
//	err := eng.StartNewGame([]engine.Seat{
//		{Color: engine.Red, Kind: engine.KindHuman},
//		{Color: engine.Blue, Kind: engine.KindAI},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roll, err := eng.RollDice()
//	if errors.Is(err, engine.ErrNoLegalMove) {
//		// the turn already passed to the next player
//	}
//
//	piece, _ := eng.PieceByID("red-0")
//	if err := eng.AttemptMove(piece); err != nil {
//		// errors.Is(err, engine.ErrIllegalMove)
//	}
//
// Concurrency:
//
// An Engine is single-threaded and every call runs to completion. Callers
// that share an Engine between goroutines must serialize access; pacing of
// computer turns is the caller's job (see service.PlayAITurns).
package engine
