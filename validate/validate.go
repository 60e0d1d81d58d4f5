// Command validate checks every puzzle file in a directory. For each file it
// checks:
//   - the file decodes in its format (JSON, YAML, CSV, HCL or layout text)
//   - vehicle records are complete (name, length 2 or 3, orientation)
//   - vehicles fit on the board and do not overlap
//   - the goal lies on the target vehicle's axis
//   - optionally, the puzzle is solvable within a search budget
//
// Files sharing a stem with a higher-precedence format are reported as
// shadowed, since the puzzle library only ever loads one of them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/puzzlefile"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Info lists facts about valid files.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// SolveCheck bounds the optional solvability check. A zero MaxNodes and
// Timeout disable the check.
type SolveCheck struct {
	MaxNodes int
	Timeout  time.Duration
}

func (c SolveCheck) enabled() bool {
	return c.MaxNodes > 0 || c.Timeout > 0
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validatePuzzle loads and validates a single puzzle file
func validatePuzzle(ctx context.Context, filePath string, check SolveCheck) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	format, err := puzzlefile.FormatFor(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	cfg, err := puzzlefile.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read puzzle: %v", err)
		return result
	}

	puzzle, err := engine.BuildPuzzle(cfg)
	if err != nil {
		result.fail("Invalid puzzle: %v", err)
		return result
	}

	result.info("✓ Name: %s", puzzle.Name)
	result.info("✓ Format: %s", format)
	result.info("✓ Board: %dx%d", puzzle.Size(), puzzle.Size())
	result.info("✓ Vehicles: %d", len(puzzle.Initial.Vehicles()))
	result.info("✓ Goal: %s", puzzle.Goal)
	if blockers := engine.BlockingVehicles(puzzle.Initial, puzzle.Goal); len(blockers) > 0 {
		result.info("✓ Blocking: %s", strings.Join(blockers, ", "))
	}

	if !check.enabled() {
		return result
	}
	validateSolvable(ctx, puzzle, check, &result)
	return result
}

// validateSolvable fails puzzles proven unsolvable. Running out of budget
// is reported but does not fail the file.
func validateSolvable(ctx context.Context, puzzle *engine.Puzzle, check SolveCheck, result *ValidationResult) {
	if check.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, check.Timeout)
		defer cancel()
	}
	var opts []engine.Option
	if check.MaxNodes > 0 {
		opts = append(opts, engine.WithMaxNodes(check.MaxNodes))
	}

	res, err := engine.Solve(ctx, puzzle.Initial, puzzle.Goal, opts...)
	if err != nil {
		result.fail("Solver error: %v", err)
		return
	}

	switch res.Outcome {
	case engine.Solved:
		result.info("✓ Minimal moves: %d (%d states expanded)", res.Steps(), res.Expanded)
	case engine.Unsolvable:
		result.fail("No solution: the goal is unreachable (%d states explored)", res.Visited)
	default:
		result.info("? Solvability unknown: %s after %d states", res.Outcome, res.Expanded)
	}
}

// puzzleFiles lists supported files in dir, sorted by name
func puzzleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && puzzlefile.Supported(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// shadowed maps each file hidden by a same-stem file of higher precedence
// to the file that wins
func shadowed(files []string) map[string]string {
	winners := make(map[string]string)
	rank := func(path string) int {
		return slices.Index(puzzlefile.Precedence(), strings.ToLower(filepath.Ext(path)))
	}
	for _, f := range files {
		id := puzzlefile.PuzzleName(f)
		if w, ok := winners[id]; !ok || rank(f) < rank(w) {
			winners[id] = f
		}
	}

	hidden := make(map[string]string)
	for _, f := range files {
		if w := winners[puzzlefile.PuzzleName(f)]; w != f {
			hidden[f] = w
		}
	}
	return hidden
}

func main() {
	puzzleDir := flag.String("dir", "puzzles", "Puzzle directory")
	maxNodes := flag.Int("max-nodes", 1_000_000, "Solvability check budget in states (0 with -timeout 0 skips the check)")
	timeout := flag.Duration("timeout", 10*time.Second, "Solvability check time budget per puzzle")
	flag.Parse()

	files, err := puzzleFiles(*puzzleDir)
	if err != nil {
		fmt.Printf("Error finding puzzle files: %v\n", err)
		os.Exit(1)
	}
	hidden := shadowed(files)
	check := SolveCheck{MaxNodes: *maxNodes, Timeout: *timeout}

	allValid := true
	for _, file := range files {
		result := validatePuzzle(context.Background(), file, check)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		if winner, ok := hidden[file]; ok {
			fmt.Printf("  ⚠️  Shadowed by %s; the library loads that file instead\n", filepath.Base(winner))
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Printf("✅ All %d puzzles are valid!\n", len(files))
	} else {
		fmt.Println("❌ Some puzzles have errors")
		os.Exit(1)
	}
}
