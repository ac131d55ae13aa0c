// Package mcp exposes the Ludo REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one HTTP request
// against the REST server and the JSON answer is rendered as plain text
// for the agent.
//
// MCP Tools:
//   - create_session, list_sessions: start or find a game
//   - game_state: board, current player, last roll and movable pieces
//   - roll_dice, move_piece, end_turn: drive a human seat
//   - play_ai: let computer seats move until a human is up
//   - move_history: paged event log
//   - save_game, load_game, list_saves, delete_save: save slots
//   - list_configs: roster presets
//   - game_rules: rules text
//
// Session IDs are required on every game tool; pieces are named
// "<color>-<n>", e.g. "blue-3".
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// stdio
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP
//	http.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
//		body, _ := io.ReadAll(r.Body)
//		resp := client.GetMCPServer().HandleMessage(r.Context(), body)
//		json.NewEncoder(w).Encode(resp)
//	})
package mcp
