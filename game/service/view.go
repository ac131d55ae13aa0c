package service

import (
	"fmt"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
)

func boardInfo() BoardInfo {
	entry := make(map[engine.Color]int, len(engine.EntryIndex))
	for c, i := range engine.EntryIndex {
		entry[c] = i
	}
	peel := make(map[engine.Color]int, len(engine.PeelOffIndex))
	for c, i := range engine.PeelOffIndex {
		peel[c] = i
	}
	return BoardInfo{
		CircuitLength: engine.CircuitLength,
		StretchLength: engine.StretchLength,
		EntryIndex:    entry,
		PeelOffIndex:  peel,
		StarIndices:   append([]int(nil), engine.StarIndices...),
	}
}

// buildView renders a session's engine for transports
func buildView(sess *Session) *GameView {
	eng := sess.Engine
	view := &GameView{
		SessionID:    sess.ID,
		State:        eng.GetState(),
		Turn:         eng.GetTurn(),
		LastRoll:     eng.GetLastRoll(),
		AwaitingMove: eng.IsAwaitingMove(),
		Players:      []PlayerView{},
		Board:        boardInfo(),
	}

	if current := eng.GetCurrentPlayer(); current != nil {
		view.CurrentColor = current.Color()
		view.CurrentKind = current.Kind()
	}
	if winner := eng.GetWinner(); winner != nil {
		view.Winner = winner.Color()
		view.Message = victoryMessage(sess.Config, winner.Color())
	}

	movable := make(map[*engine.Piece]bool)
	for _, p := range eng.GetEligiblePieces() {
		movable[p] = true
	}

	board := eng.GetBoard()
	for _, player := range eng.GetPlayers() {
		pv := PlayerView{
			Color:    player.Color(),
			Kind:     player.Kind(),
			Finished: player.FinishedCount(),
		}
		for _, piece := range player.Pieces() {
			pieceView := PieceView{
				ID:           piece.ID(),
				State:        piece.State(),
				Location:     piece.Location(),
				CircuitIndex: board.CircuitIndexOf(piece.Cell()),
				StretchIndex: board.FinalStretchIndexOf(piece.Cell()),
				Movable:      movable[piece],
			}
			if pieceView.Movable {
				if dest := board.DestinationCell(piece, eng.GetLastRoll()); dest != nil {
					loc := dest.Location()
					pieceView.Destination = &loc
				}
			}
			pv.Pieces = append(pv.Pieces, pieceView)
		}
		view.Players = append(view.Players, pv)
	}

	return view
}

func victoryMessage(config *engine.GameConfig, winner engine.Color) string {
	if config != nil && config.Messages.Victory != "" {
		return fmt.Sprintf(config.Messages.Victory, winner)
	}
	return fmt.Sprintf("%s wins the game!", winner)
}

// turnResult collects the events recorded after since into a result
func turnResult(sess *Session, since int) *TurnResult {
	events := sess.Engine.EventsSince(since)
	result := &TurnResult{Events: events}

	for _, ev := range events {
		switch ev.Type {
		case engine.EventRoll:
			result.Roll = ev.Roll
		case engine.EventMove:
			result.Moved = ev.PieceID
		case engine.EventCapture:
			result.Captured = ev.Captured
			if sess.Config != nil {
				result.Message = sess.Config.Messages.Capture
			}
		case engine.EventNoLegalMove:
			result.NoLegalMove = true
			if sess.Config != nil {
				result.Message = sess.Config.Messages.NoLegalMove
			}
		}
	}

	result.GameView = buildView(sess)
	if result.GameView.Winner != "" {
		result.Message = result.GameView.Message
	}
	return result
}
