// Package session provides session management for the Rush Hour solver.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Optional file persistence of play state
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own engine, so moves in one session never affect
// another. FilePersistence stores sessions as JSON, one file per session,
// keyed by the puzzle's library ID so a restore rebuilds the engine from the
// current puzzle file.
//
// Session Identifiers:
//
// Generated IDs are 8 hex characters. Caller-chosen IDs may use letters,
// digits, '-' and '_' and are matched case-insensitively.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence, session.WithLogger(logger))
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", "classic", puzzleConfig)
package session
