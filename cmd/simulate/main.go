// Command simulate plays headless all-computer Ludo games and checks roster
// preset files.
//
//	simulate run --games 100 --players 4 --seed 7
//	simulate validate configs
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
)

// maxRolls bounds one game; all-computer games finish far below it
const maxRolls = 20000

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("simulate failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run computer-only Ludo games and validate presets",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Log every game"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Play games to completion and report wins per color",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "games", Value: 100, Usage: "Number of games"},
					&cli.IntFlag{Name: "players", Value: 4, Usage: "Seats per game (2-4)"},
					&cli.Int64Flag{Name: "seed", Value: 1, Usage: "Seed of the first game; game i uses seed+i"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					report, err := simulate(ctx, int(cmd.Int("games")), int(cmd.Int("players")), cmd.Int64("seed"))
					if err != nil {
						return err
					}
					printReport(cmd.Root().Writer, report)
					return nil
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate every roster preset in a directory",
				ArgsUsage: "<dir>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.Args().First()
					if dir == "" {
						return errors.New("validate needs a directory")
					}
					return validateDir(cmd.Root().Writer, dir)
				},
			},
		},
	}
}

// Report aggregates a batch of simulated games
type Report struct {
	Games      int
	Players    int
	Wins       map[engine.Color]int
	Unfinished int
	TotalTurns int
	Captures   int
}

// AverageTurns is the mean turn count of finished games
func (r *Report) AverageTurns() float64 {
	finished := r.Games - r.Unfinished
	if finished == 0 {
		return 0
	}
	return float64(r.TotalTurns) / float64(finished)
}

func computerSeats(players int) ([]engine.Seat, error) {
	if players < engine.MinPlayers || players > engine.MaxPlayers {
		return nil, fmt.Errorf("players must be between %d and %d, got %d", engine.MinPlayers, engine.MaxPlayers, players)
	}
	seats := make([]engine.Seat, players)
	for i := range seats {
		seats[i] = engine.Seat{Color: engine.Colors[i], Kind: engine.KindAI}
	}
	return seats, nil
}

func simulate(ctx context.Context, games, players int, seed int64) (*Report, error) {
	if games < 1 {
		return nil, fmt.Errorf("games must be positive, got %d", games)
	}
	seats, err := computerSeats(players)
	if err != nil {
		return nil, err
	}

	report := &Report{Games: games, Players: players, Wins: make(map[engine.Color]int)}
	for i := 0; i < games; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		eng := engine.NewEngine(engine.WithSeed(seed + int64(i)))
		if err := eng.StartNewGame(seats); err != nil {
			return nil, err
		}
		if err := playOut(eng); err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}

		for _, ev := range eng.GetHistory() {
			if ev.Type == engine.EventCapture {
				report.Captures++
			}
		}

		winner := eng.GetWinner()
		if winner == nil {
			report.Unfinished++
			log.WithFields(log.Fields{"game": i + 1, "seed": seed + int64(i)}).Warn("Game hit the roll limit")
			continue
		}
		report.Wins[winner.Color()]++
		report.TotalTurns += eng.GetTurn()
		log.WithFields(log.Fields{"game": i + 1, "winner": winner.Color(), "turns": eng.GetTurn()}).Debug("Game finished")
	}
	return report, nil
}

// playOut rolls until the game ends or maxRolls is reached
func playOut(eng *engine.GameEngine) error {
	for rolls := 0; eng.GetState() == engine.InProgress && rolls < maxRolls; rolls++ {
		if _, err := eng.RollDice(); err != nil && !errors.Is(err, engine.ErrNoLegalMove) {
			return err
		}
	}
	return nil
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Games: %d (%d players)\n", r.Games, r.Players)
	for _, color := range engine.Colors[:r.Players] {
		wins := r.Wins[color]
		fmt.Fprintf(w, "  %-7s %5d wins (%.1f%%)\n", color, wins, 100*float64(wins)/float64(r.Games))
	}
	fmt.Fprintf(w, "Average turns: %.1f\n", r.AverageTurns())
	fmt.Fprintf(w, "Captures: %d\n", r.Captures)
	if r.Unfinished > 0 {
		fmt.Fprintf(w, "Unfinished: %d\n", r.Unfinished)
	}
}

// validateDir loads every *.json preset in dir and reports the broken ones
func validateDir(w io.Writer, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no presets found in %s", dir)
	}
	sort.Strings(files)

	var failed []string
	for _, file := range files {
		config, err := engine.LoadGameConfig(file)
		if err != nil {
			failed = append(failed, filepath.Base(file))
			fmt.Fprintf(w, "FAIL %s: %v\n", filepath.Base(file), err)
			continue
		}
		fmt.Fprintf(w, "ok   %s (%s, %d seats)\n", filepath.Base(file), config.Name, len(config.Seats))
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d invalid preset(s): %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}
