// Package service provides the business logic layer for the Rush Hour solver.
//
// The service package implements:
//   - Multi-session interactive play
//   - Puzzle library access
//   - Bounded solving with request deduplication
//   - Hints from a session's current placement
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and stores puzzle definitions.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Each session owns its own GameEngine; a service-wide lock guards
// them. Searches run outside the lock on an immutable snapshot of the
// session's placement, so a long solve never blocks play. Concurrent solves
// of the same placement, goal and budget share one search.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("puzzles")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithSolveDefaults(1_000_000, 10*time.Second))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, engine.Move{Vehicle: "b", Direction: engine.Down}, false)
//	solution, err := gameService.SolveSession(ctx, info.ID, service.SolveOptions{})
package service
