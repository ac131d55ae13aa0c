// Package websocket pushes live game updates to browser clients.
//
// Clients connect to /ws?session=<id> and receive one JSON Message per frame:
// a state_update carrying the full game view after every roll, move, turn
// change or load, and named events such as ai_step while computer players
// move. Clients never send game commands over the socket; they use the REST
// API.
//
// The Hub goroutine (Run) owns the client registry. Broadcasts from HTTP
// handlers are queued to it over a channel, and clients that cannot keep up
// are dropped.
package websocket
