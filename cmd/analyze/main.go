// Command analyze solves every puzzle in a library directory concurrently
// and prints a difficulty summary: minimal move count, states expanded and
// search time per puzzle, easiest first.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/rush-hour-solver/game/config"
	"github.com/wricardo/rush-hour-solver/game/engine"
)

// Options bounds one analysis run
type Options struct {
	Concurrency int
	MaxNodes    int
	Timeout     time.Duration
}

// Report is the analysis of one puzzle
type Report struct {
	ID       string
	Name     string
	Size     int
	Vehicles int
	Outcome  engine.Outcome
	Steps    int
	Expanded int
	Duration time.Duration
}

// Difficulty buckets a solved puzzle by its minimal move count
func (r Report) Difficulty() string {
	if r.Outcome != engine.Solved {
		return r.Outcome.String()
	}
	switch {
	case r.Steps <= 10:
		return "beginner"
	case r.Steps <= 25:
		return "intermediate"
	case r.Steps <= 40:
		return "advanced"
	default:
		return "expert"
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7A89"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
)

func main() {
	dir := flag.String("dir", "puzzles", "Puzzle library directory")
	concurrency := flag.Int("concurrency", runtime.NumCPU(), "Puzzles solved in parallel")
	maxNodes := flag.Int("max-nodes", 0, "Per-puzzle expansion budget (0 = unlimited)")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-puzzle time budget (0 = unlimited)")
	flag.Parse()

	lib, err := config.NewManager(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening puzzle library: %v\n", err)
		os.Exit(1)
	}

	reports, err := analyze(context.Background(), lib, Options{
		Concurrency: *concurrency,
		MaxNodes:    *maxNodes,
		Timeout:     *timeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printReports(os.Stdout, *dir, reports)
}

// analyze solves every valid puzzle in lib and returns the reports sorted
// by difficulty. Puzzles that hit a budget are reported, not failed.
func analyze(ctx context.Context, lib *config.Manager, opts Options) ([]Report, error) {
	infos, err := lib.ListConfigs()
	if err != nil {
		return nil, err
	}

	reports := make([]Report, len(infos))
	g, gCtx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, info := range infos {
		g.Go(func() error {
			puzzle, err := lib.LoadPuzzle(info.PuzzleID)
			if err != nil {
				return fmt.Errorf("%s: %w", info.PuzzleID, err)
			}

			solveCtx := gCtx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				solveCtx, cancel = context.WithTimeout(gCtx, opts.Timeout)
				defer cancel()
			}

			var solverOpts []engine.Option
			if opts.MaxNodes > 0 {
				solverOpts = append(solverOpts, engine.WithMaxNodes(opts.MaxNodes))
			}
			res, err := engine.Solve(solveCtx, puzzle.Initial, puzzle.Goal, solverOpts...)
			if err != nil {
				return fmt.Errorf("%s: %w", info.PuzzleID, err)
			}

			reports[i] = Report{
				ID:       info.PuzzleID,
				Name:     puzzle.Name,
				Size:     puzzle.Size(),
				Vehicles: len(puzzle.Initial.Vehicles()),
				Outcome:  res.Outcome,
				Steps:    res.Steps(),
				Expanded: res.Expanded,
				Duration: res.Duration,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortReports(reports)
	return reports, nil
}

// sortReports orders solved puzzles by move count, then everything else by id
func sortReports(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		aSolved, bSolved := a.Outcome == engine.Solved, b.Outcome == engine.Solved
		if aSolved != bSolved {
			return aSolved
		}
		if aSolved && a.Steps != b.Steps {
			return a.Steps < b.Steps
		}
		return a.ID < b.ID
	})
}

func printReports(w io.Writer, dir string, reports []Report) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("=== Analyzing %s (%d puzzles) ===", dir, len(reports))))
	if len(reports) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No valid puzzles found"))
		return
	}

	idWidth := len("PUZZLE")
	for _, r := range reports {
		idWidth = max(idWidth, len(r.ID))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s  %4s  %8s  %5s  %10s  %10s  %s",
		idWidth, "PUZZLE", "SIZE", "VEHICLES", "MOVES", "EXPANDED", "TIME", "DIFFICULTY")))
	for _, r := range reports {
		moves := "-"
		if r.Outcome == engine.Solved {
			moves = fmt.Sprint(r.Steps)
		}
		line := fmt.Sprintf("%-*s  %4d  %8d  %5s  %10d  %10s  %s",
			idWidth, r.ID, r.Size, r.Vehicles, moves, r.Expanded, formatDuration(r.Duration), r.Difficulty())
		if r.Outcome != engine.Solved {
			line = failStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, mutedStyle.Render(summary(reports)))
}

// summary tallies reports per difficulty in a fixed order
func summary(reports []Report) string {
	order := []string{"beginner", "intermediate", "advanced", "expert",
		engine.Unsolvable.String(), engine.BudgetExceeded.String(), engine.Cancelled.String()}
	counts := make(map[string]int)
	for _, r := range reports {
		counts[r.Difficulty()]++
	}
	var parts []string
	for _, d := range order {
		if n := counts[d]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", d, n))
		}
	}
	return strings.Join(parts, ", ")
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}
