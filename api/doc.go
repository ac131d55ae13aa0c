// Package api provides the HTTP REST API for the Ludo server.
//
// Endpoints:
//
// Discovery:
//   - GET /api - List registered routes
//   - GET /api/rules - Rules text and board topology
//   - GET /health - Liveness check
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id"} or {"seats"})
//   - GET /api/sessions - List all sessions
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game view
//   - POST /api/sessions/{id}/roll - Roll the die
//   - POST /api/sessions/{id}/move - Move a piece ({"piece_id": "red-0"})
//   - POST /api/sessions/{id}/end-turn - Pass the turn
//   - POST /api/sessions/{id}/ai - Play computer turns ({"delay_ms": 500})
//   - GET /api/sessions/{id}/history?page=&limit=&order= - Event history
//
// Save Slots:
//   - POST /api/sessions/{id}/save/{slot} - Save into a slot
//   - POST /api/sessions/{id}/load/{slot} - Load from a slot
//   - GET /api/saves - List occupied slots
//   - DELETE /api/saves/{slot} - Empty a slot
//
// Configuration:
//   - GET /api/configs - List roster presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Store a preset
//
// Live updates are pushed on /ws?session={id}.
//
// Errors are returned as JSON with a matching status code:
//
//	{"error": "illegal move: red-2 needs a 6 to leave base"}
//
// Illegal moves map to 422, unknown sessions, pieces and empty slots to
// 404, a finished game to 409 and a disabled save store to 503.
package api
