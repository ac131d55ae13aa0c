package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const MaxAIDelayMs = 10000

// GameConfig is a named roster preset
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Seats       []Seat `json:"seats"`
	AIDelayMs   int    `json:"ai_delay_ms"`
	Messages    struct {
		Welcome     string `json:"welcome"`
		Victory     string `json:"victory"`
		NoLegalMove string `json:"no_legal_move"`
		Capture     string `json:"capture"`
	} `json:"messages"`
}

// AIDelay returns the configured pause between computer turns
func (c *GameConfig) AIDelay() time.Duration {
	return time.Duration(c.AIDelayMs) * time.Millisecond
}

// ValidateGameConfig validates a roster preset
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if err := ValidateRoster(config.Seats); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if config.AIDelayMs < 0 || config.AIDelayMs > MaxAIDelayMs {
		return fmt.Errorf("config validation: ai_delay_ms must be between 0 and %d, got %d", MaxAIDelayMs, config.AIDelayMs)
	}
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%s") {
		return fmt.Errorf("config validation: messages.victory must contain %%s for the winning color")
	}
	return nil
}

// LoadGameConfig loads and validates a preset from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig is a human (red) against a computer (blue)
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "default",
		Description: "Human red against computer blue",
		Seats: []Seat{
			{Color: Red, Kind: KindHuman},
			{Color: Blue, Kind: KindAI},
		},
		AIDelayMs: 1000,
	}
	config.Messages.Welcome = "Roll a 6 to bring a piece into play."
	config.Messages.Victory = "%s wins the game!"
	config.Messages.NoLegalMove = "No legal move, the turn passes."
	config.Messages.Capture = "Captured! The piece goes back to base."
	return config
}
