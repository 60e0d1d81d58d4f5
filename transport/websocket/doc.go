// Package websocket provides WebSocket transport for the Rush Hour solver.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Broadcasting of board updates, hints and solve results
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Only the Run goroutine touches the session map;
// broadcasts are queued on a buffered channel so HTTP handlers never block
// on slow clients. Each client connection has a read pump and a write pump.
//
// Message Protocol:
//
// Every outgoing frame is one JSON Message:
//
//	{"session_id": "a1b2c3d4", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2c3d4", "event": "solve_result", "data": {...}}
//
// Clients choose their session with the query parameter ?session=<id>.
// Incoming frames are ignored.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
