// Package config loads roster presets and server settings.
//
// A preset is a JSON file in the config directory naming the seats of a game:
//
//	{
//	  "name": "Classic",
//	  "description": "Four players, one human",
//	  "seats": [{"color": "red", "kind": "human"}, {"color": "green", "kind": "ai"}],
//	  "ai_delay_ms": 1000
//	}
//
// The file name without ".json" is the preset's ID. Manager caches parsed
// presets and picks a default: classic.json when present, otherwise the first
// valid file, otherwise a built-in human red against computer blue.
//
// ServerConfig is read from LUDO_* environment variables.
package config
