// Package service provides the business logic layer for the Ludo server.
//
// The service package implements:
//   - Multi-session game management
//   - Roster preset loading and saving
//   - Dice rolls, piece moves and turn passing
//   - Paced computer turns driven from the caller side
//   - Event history paging
//   - Numbered save slots over a pluggable store
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages roster presets.
// SaveStore persists engine snapshots in slots.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns one engine; the service serializes all
// engine access behind a single lock, so the engine itself stays single-threaded.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	store, _ := saves.Open(ctx, "file", "", "saves")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithSaveStore(store, 4))
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{ConfigID: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.RollDice(ctx, info.ID)
//	if err == nil && !result.NoLegalMove {
//		result, err = gameService.MovePiece(ctx, info.ID, "red-0")
//	}
//
//	// let computer players move, one second apart
//	gameService.PlayAITurns(ctx, info.ID, time.Second, nil)
package service
