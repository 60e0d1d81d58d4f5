// Package config provides the puzzle library for the Rush Hour solver.
//
// The config package handles:
//   - Loading puzzles from JSON, YAML, HCL, CSV and layout text files
//   - Board-level validation through engine.BuildPuzzle
//   - Default puzzle selection
//   - Puzzle discovery and listing
//   - Cache invalidation when files change on disk
//
// Puzzle IDs:
//
// A puzzle's ID is its file stem: puzzles/classic.json is "classic". When
// several files share a stem the first extension in .json, .yaml, .yml,
// .hcl, .csv, .txt order wins.
//
// Default Puzzle:
//
// "classic" is the default when present, otherwise the first valid puzzle
// by ID, otherwise a small built-in puzzle.
//
// Usage:
//
//	manager, err := config.NewManager("puzzles")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := manager.LoadPuzzle("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Pick up edits without a restart
//	if err := manager.Watch(ctx, logger); err != nil {
//		log.Fatal(err)
//	}
package config
