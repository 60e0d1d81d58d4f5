// Package api provides HTTP REST API handlers for the Rush Hour solver.
//
// The api package implements:
//   - Session management endpoints
//   - Interactive play (single and bulk moves, reset, history)
//   - Hints and solve requests with per-request search budgets
//   - Puzzle library listing, loading and saving
//   - Health, Prometheus metrics and WebSocket upgrade
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"puzzle_id": "classic"}, empty for the default)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Current board
//   - POST /api/sessions/{id}/move - {"vehicle": "r", "direction": "Right", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": [{"vehicle": "b", "direction": "Down"}]}
//   - POST /api/sessions/{id}/reset - Restore the initial placement
//   - GET /api/sessions/{id}/history - Paginated history (?page&limit&order)
//
// Solving:
//   - GET /api/sessions/{id}/hint - Next move of a shortest solution
//   - POST /api/sessions/{id}/solve - Solve from the current board ({"max_nodes", "timeout_ms"})
//   - POST /api/solve - Solve an ad-hoc puzzle ({"puzzle": {...}, "max_nodes", "timeout_ms"})
//
// Puzzle Library:
//   - GET /api/puzzles - List puzzles
//   - POST /api/puzzles - Save a puzzle ({"id": "...", ...puzzle fields})
//   - GET /api/puzzles/{name} - Load a puzzle
//
// Other:
//   - GET /healthz
//   - GET /metrics
//   - GET /ws?session=<id>
//
// Errors:
//
// Every error response is {"error": "..."}. Unknown sessions and puzzles map
// to 404, invalid puzzles and request bodies to 400, and internal faults
// such as an inconsistent solution path to 500. Unsolvable or over-budget
// searches are not errors; they come back as 200 with an outcome field.
//
// Usage:
//
//	server := api.NewServer(gameService, hub, logger)
//	http.ListenAndServe(":8080", server)
package api
