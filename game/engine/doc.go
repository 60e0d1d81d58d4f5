// Package engine provides the core puzzle logic for the Rush Hour solver.
//
// The engine package implements:
//   - Vehicles, immutable values sliding along a fixed axis
//   - Board, an occupancy grid derived from a State
//   - State, the canonical, hashable snapshot of all vehicle placements
//   - Move generation and legality checks
//   - Breadth-first search for the shortest solution
//   - Move log formatting
//   - Puzzle configuration and validation
//   - An interactive engine for step-by-step play
//
// Core Types:
//
// A State holds vehicles sorted by name, so two states with the same
// placements are Equal and share a Key. States are never mutated; Apply
// and Successors return new states. A Solver searches from an initial
// State for the first State containing its goal Vehicle, returning a
// Result with the path, the moves and the number of expanded nodes.
//
// Usage:
//
//	puzzle, err := engine.BuildPuzzle(&engine.PuzzleConfig{
//		Name: "two-step",
//		Layout: []string{
//			"......",
//			"......",
//			"..rrb.",
//			"....b.",
//			"......",
//			"......",
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := engine.NewSolver(puzzle.Goal, engine.WithMaxNodes(1_000_000)).
//		Solve(ctx, puzzle.Initial)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if res.Outcome == engine.Solved {
//		fmt.Println(engine.MoveLog(res.Moves))
//	}
//
// Search Outcomes:
//
// Solved means Moves is a shortest solution. Unsolvable means every
// reachable state was expanded without meeting the goal. BudgetExceeded
// and Cancelled mean the search stopped early and prove nothing. None of
// these are errors; Solve returns an error only for malformed input, such
// as a goal that does not match the target vehicle.
package engine
