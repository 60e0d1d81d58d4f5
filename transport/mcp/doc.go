// Package mcp exposes the Rush Hour solver to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: each MCP tool call becomes one REST request
// against the api package, and the JSON response is rendered as plain text
// an agent can read.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - board: current board with row/column indices
//   - move: slide one vehicle one cell
//   - bulk_move: several slides written as vehicle-Direction
//   - reset_puzzle: restore the initial placement
//   - move_history: paginated history
//   - hint: next move of a shortest solution
//   - solve_session, solve_puzzle: shortest solutions with optional budgets
//   - list_puzzles: the puzzle library
//   - puzzle_instructions: rules and notation
//
// Transport Modes:
//
// The root command serves the same MCPServer two ways: over stdio for local
// agents, and as a POST /mcp endpoint next to the REST API.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
