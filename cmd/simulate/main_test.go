package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
)

func TestSimulate(t *testing.T) {
	report, err := simulate(context.Background(), 5, 2, 1)
	require.NoError(t, err)

	wins := 0
	for color, n := range report.Wins {
		assert.Contains(t, []engine.Color{engine.Red, engine.Green}, color)
		wins += n
	}
	assert.Equal(t, 5, wins+report.Unfinished)
	if report.Unfinished < 5 {
		assert.Greater(t, report.AverageTurns(), 0.0)
	}
}

func TestPlayOut_PassesWithoutLegalMove(t *testing.T) {
	// 1 and 2 leave every piece in base; the turn passes and play continues
	eng := engine.NewEngine(engine.WithRoller(&engine.FixedRoller{Values: []int{1, 2}}))
	require.NoError(t, eng.StartNewGame([]engine.Seat{
		{Color: engine.Red, Kind: engine.KindAI},
		{Color: engine.Green, Kind: engine.KindAI},
	}))

	require.NoError(t, playOut(eng))
	assert.Equal(t, engine.InProgress, eng.GetState())

	passes := 0
	for _, ev := range eng.GetHistory() {
		if ev.Type == engine.EventNoLegalMove {
			passes++
		}
	}
	assert.Equal(t, maxRolls, passes)
}

func TestSimulate_Reproducible(t *testing.T) {
	a, err := simulate(context.Background(), 3, 4, 42)
	require.NoError(t, err)
	b, err := simulate(context.Background(), 3, 4, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSimulate_BadArgs(t *testing.T) {
	_, err := simulate(context.Background(), 0, 4, 1)
	assert.Error(t, err)
	_, err = simulate(context.Background(), 1, 5, 1)
	assert.Error(t, err)
	_, err = simulate(context.Background(), 1, 1, 1)
	assert.Error(t, err)
}

func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := simulate(ctx, 10, 2, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &Report{
		Games:      4,
		Players:    2,
		Wins:       map[engine.Color]int{engine.Red: 3, engine.Green: 1},
		TotalTurns: 400,
		Captures:   12,
	})

	out := buf.String()
	assert.Contains(t, out, "Games: 4 (2 players)")
	assert.Contains(t, out, "red         3 wins (75.0%)")
	assert.Contains(t, out, "Average turns: 100.0")
	assert.Contains(t, out, "Captures: 12")
	assert.NotContains(t, out, "Unfinished")
}

func TestRunCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	err := app.Run(context.Background(), []string{"simulate", "run", "--games", "2", "--players", "3", "--seed", "9"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Games: 2 (3 players)")
	assert.Contains(t, buf.String(), "yellow")
}

func writePreset(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "good.json", `{
		"name": "Good",
		"description": "Two computers",
		"seats": [{"color": "red", "kind": "ai"}, {"color": "blue", "kind": "ai"}]
	}`)

	var buf bytes.Buffer
	require.NoError(t, validateDir(&buf, dir))
	assert.Contains(t, buf.String(), "ok   good.json (Good, 2 seats)")

	writePreset(t, dir, "dup.json", `{
		"name": "Dup",
		"description": "Same color twice",
		"seats": [{"color": "red", "kind": "ai"}, {"color": "red", "kind": "human"}]
	}`)
	writePreset(t, dir, "broken.json", `{not json`)

	buf.Reset()
	err := validateDir(&buf, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 invalid preset(s): broken.json, dup.json")
	assert.True(t, strings.Contains(buf.String(), "FAIL dup.json"))
}

func TestValidateDir_Empty(t *testing.T) {
	assert.Error(t, validateDir(&bytes.Buffer{}, t.TempDir()))
}

func TestValidateShippedPresets(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	require.NoError(t, app.Run(context.Background(), []string{"simulate", "validate", "../../configs"}))
	for _, name := range []string{"classic.json", "duel.json", "hotseat.json", "robots.json"} {
		assert.Contains(t, buf.String(), "ok   "+name)
	}
}
