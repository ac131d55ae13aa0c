package mcp

import (
	"fmt"
	"strings"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
)

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session created: %s\nConfig: %s\n", info.ID, info.ConfigName)
	if info.GameConfig != nil && info.GameConfig.Messages.Welcome != "" {
		fmt.Fprintf(&b, "%s\n", info.GameConfig.Messages.Welcome)
	}
	if info.GameView != nil {
		b.WriteString("\n")
		b.WriteString(formatGameView(info.GameView))
	}
	return b.String()
}

func formatSeats(seats []engine.Seat) string {
	parts := make([]string, 0, len(seats))
	for _, s := range seats {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Color, s.Kind))
	}
	return strings.Join(parts, ", ")
}

func formatStatusLine(view *service.GameView) string {
	if view.Winner != "" {
		return fmt.Sprintf("[finished, %s won]", view.Winner)
	}
	if view.State != engine.InProgress {
		return "[finished]"
	}
	return fmt.Sprintf("[turn %d, %s to play]", view.Turn, view.CurrentColor)
}

func formatLocation(loc engine.Location) string {
	switch loc.Region {
	case engine.RegionBase:
		return "base"
	case engine.RegionCircuit:
		return fmt.Sprintf("circuit %d", loc.Index)
	case engine.RegionStretch:
		if loc.Index == engine.StretchLength-1 {
			return "home"
		}
		return fmt.Sprintf("stretch %d", loc.Index)
	}
	return string(loc.Region)
}

func formatGameView(view *service.GameView) string {
	var b strings.Builder

	switch {
	case view.Winner != "":
		fmt.Fprintf(&b, "GAME OVER: %s\n", view.Message)
	case view.State != engine.InProgress:
		b.WriteString("No game in progress\n")
	default:
		fmt.Fprintf(&b, "Turn %d: %s (%s) to play\n", view.Turn, view.CurrentColor, view.CurrentKind)
		if view.LastRoll > 0 {
			fmt.Fprintf(&b, "Last roll: %d\n", view.LastRoll)
		}
		if view.AwaitingMove {
			b.WriteString("Waiting for a move\n")
		} else {
			b.WriteString("Waiting for a roll\n")
		}
	}

	var movable []string
	for _, p := range view.Players {
		fmt.Fprintf(&b, "\n%s (%s) - %d/%d home\n", strings.ToUpper(string(p.Color)), p.Kind, p.Finished, engine.PiecesPerPlayer)
		for _, piece := range p.Pieces {
			line := fmt.Sprintf("  %-9s %s", piece.ID, formatLocation(piece.Location))
			if piece.Movable {
				movable = append(movable, piece.ID)
				if piece.Destination != nil {
					line += fmt.Sprintf("  -> %s", formatLocation(*piece.Destination))
				}
			}
			b.WriteString(line + "\n")
		}
	}

	if len(movable) > 0 {
		fmt.Fprintf(&b, "\nMovable pieces: %s\n", strings.Join(movable, ", "))
	}
	return b.String()
}

func formatEvent(ev engine.Event) string {
	switch ev.Type {
	case engine.EventGameStarted:
		return "game started"
	case engine.EventRoll:
		return fmt.Sprintf("%s rolled %d", ev.Color, ev.Roll)
	case engine.EventMove:
		s := fmt.Sprintf("%s moved %s", ev.Color, ev.PieceID)
		if ev.From != nil && ev.To != nil {
			s += fmt.Sprintf(" from %s to %s", formatLocation(*ev.From), formatLocation(*ev.To))
		}
		if ev.Rule != "" {
			s += fmt.Sprintf(" (%s)", ev.Rule)
		}
		return s
	case engine.EventCapture:
		return fmt.Sprintf("%s captured %s", ev.Color, ev.Captured)
	case engine.EventNoLegalMove:
		return fmt.Sprintf("%s has no legal move", ev.Color)
	case engine.EventExtraTurn:
		return fmt.Sprintf("%s rolls again", ev.Color)
	case engine.EventTurnChange:
		return fmt.Sprintf("%s to play", ev.Color)
	case engine.EventVictory:
		return fmt.Sprintf("%s wins", ev.Color)
	case engine.EventAIFallback:
		return fmt.Sprintf("%s could not move and passed", ev.Color)
	}
	return string(ev.Type)
}

func formatTurnResult(result *service.TurnResult) string {
	var b strings.Builder
	for _, ev := range result.Events {
		fmt.Fprintf(&b, "• %s\n", formatEvent(ev))
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if result.GameView != nil {
		b.WriteString("\n")
		b.WriteString(formatGameView(result.GameView))
	}
	return b.String()
}

func formatAIPlayResult(result *service.AIPlayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Computer turns played: %d (stopped: %s)\n\n", len(result.Steps), result.StoppedReason)
	for i, step := range result.Steps {
		fmt.Fprintf(&b, "Step %d:\n", i+1)
		for _, ev := range step.Events {
			fmt.Fprintf(&b, "  • %s\n", formatEvent(ev))
		}
	}
	if result.GameView != nil {
		b.WriteString("\n")
		b.WriteString(formatGameView(result.GameView))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game History (Page %d/%d, %d events)\n\n", history.Page, history.TotalPages, history.TotalEvents)
	for _, ev := range history.Events {
		fmt.Fprintf(&b, "#%d turn %d: %s\n", ev.Seq, ev.Turn, formatEvent(ev))
	}
	if history.HasPrevious || history.HasNext {
		b.WriteString("\n")
		if history.HasPrevious {
			b.WriteString("← Previous page available\n")
		}
		if history.HasNext {
			b.WriteString("→ Next page available\n")
		}
	}
	return b.String()
}

func formatSlots(slots []service.SlotInfo) string {
	if len(slots) == 0 {
		return "No saved games."
	}
	var b strings.Builder
	b.WriteString("Saved Games:\n\n")
	for _, s := range slots {
		fmt.Fprintf(&b, "Slot %d: turn %d, %s, saved %s\n  Seats: %s\n", s.Slot, s.Turn, s.State, s.SavedAt.Format("2006-01-02 15:04:05"), formatSeats(s.Seats))
	}
	return b.String()
}
