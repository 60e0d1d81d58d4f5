// Command rushhour solves Rush Hour puzzle files from the command line.
//
//	rushhour solve puzzles/classic.csv
//	rushhour --show-boards --max-nodes 500000 solve puzzles/classic.json
//	rushhour render puzzles/classic.txt
//
// Any puzzle file format the puzzle library reads is accepted. Flags can
// also be set from RUSHHOUR_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/puzzlefile"
	"github.com/wricardo/rush-hour-solver/internal/logging"
)

const version = "1.0.0"

// Exit codes
const (
	exitError      = 1
	exitNoSolution = 2
	exitIncomplete = 3
)

// progressEvery is how many expansions pass between debug progress lines
const progressEvery = 10000

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(exitError)
	}
}

func newApp(out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "rushhour",
		Usage:     "find the shortest solution to a Rush Hour puzzle",
		Version:   version,
		Writer:    out,
		ErrWriter: errOut,
		// main decides the exit code
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "show-boards",
				Aliases: []string{"s"},
				Usage:   "print every board along the solution",
				Sources: cli.EnvVars("RUSHHOUR_SHOW_BOARDS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error; debug adds search progress",
				Sources: cli.EnvVars("RUSHHOUR_LOG_LEVEL"),
			},
			&cli.IntFlag{
				Name:    "max-nodes",
				Usage:   "stop after expanding this many states (0 = unlimited)",
				Sources: cli.EnvVars("RUSHHOUR_MAX_NODES"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "stop searching after this long (0 = unlimited)",
				Sources: cli.EnvVars("RUSHHOUR_TIMEOUT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "solve",
				Usage:     "solve a puzzle file and print the move log",
				ArgsUsage: "<puzzle-file>",
				Action:    solveAction,
			},
			{
				Name:      "render",
				Usage:     "draw a puzzle's initial board",
				ArgsUsage: "<puzzle-file>",
				Action:    renderAction,
			},
		},
	}
}

func loadPuzzle(cmd *cli.Command) (*engine.Puzzle, error) {
	if cmd.Args().Len() != 1 {
		return nil, cli.Exit(fmt.Sprintf("expected exactly one puzzle file, got %d arguments", cmd.Args().Len()), exitError)
	}
	path := cmd.Args().First()

	cfg, err := puzzlefile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.BuildPuzzle(cfg)
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	logger := logging.New(cmd.String("log-level"), "text", cmd.Root().ErrWriter)

	puzzle, err := loadPuzzle(cmd)
	if err != nil {
		return err
	}
	logger.Debug("puzzle loaded", "name", puzzle.Name, "size", puzzle.Size(),
		"vehicles", len(puzzle.Initial.Vehicles()), "goal", puzzle.Goal.String())

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := []engine.Option{
		engine.WithProgress(func(expanded, frontier int) {
			logger.Debug("searching", "expanded", expanded, "frontier", frontier)
		}, progressEvery),
	}
	if maxNodes := int(cmd.Int("max-nodes")); maxNodes > 0 {
		opts = append(opts, engine.WithMaxNodes(maxNodes))
	}

	res, err := engine.Solve(ctx, puzzle.Initial, puzzle.Goal, opts...)
	if err != nil {
		return err
	}
	logger.Debug("search finished", "outcome", res.Outcome.String(),
		"expanded", res.Expanded, "visited", res.Visited, "duration", res.Duration)

	switch res.Outcome {
	case engine.Unsolvable:
		fmt.Fprintf(out, "No solution: %s after expanding %d states\n", describeOutcome(res.Outcome), res.Expanded)
		printTiming(out, res.Duration)
		return cli.Exit("", exitNoSolution)
	case engine.BudgetExceeded, engine.Cancelled:
		fmt.Fprintf(out, "Search incomplete: %s after expanding %d states\n", describeOutcome(res.Outcome), res.Expanded)
		printTiming(out, res.Duration)
		return cli.Exit("", exitIncomplete)
	}

	fmt.Fprintf(out, "Total number of steps: %d\n", res.Steps())
	if len(res.Moves) > 0 {
		fmt.Fprintln(out, engine.MoveLog(res.Moves))
	}
	if cmd.Bool("show-boards") {
		printBoards(out, puzzle.Goal.Name, res)
	}
	printTiming(out, res.Duration)
	return nil
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	puzzle, err := loadPuzzle(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render(puzzle.Name))
	if puzzle.Description != "" {
		fmt.Fprintln(out, mutedStyle.Render(puzzle.Description))
	}
	fmt.Fprintln(out, renderBoard(puzzle.Initial.Board(), puzzle.Goal.Name))
	fmt.Fprintf(out, "Goal: %s\n", puzzle.Goal)
	if blockers := engine.BlockingVehicles(puzzle.Initial, puzzle.Goal); len(blockers) > 0 {
		fmt.Fprintf(out, "Blocking: %v\n", blockers)
	}
	return nil
}

func printBoards(out io.Writer, target string, res *engine.Result) {
	for i, s := range res.Path {
		label := "Initial board"
		if i > 0 {
			label = fmt.Sprintf("Step %d: %s", i, res.Moves[i-1])
		}
		fmt.Fprintln(out, headerStyle.Render(label))
		fmt.Fprintln(out, renderBoard(s.Board(), target))
	}
}

func printTiming(out io.Writer, d time.Duration) {
	fmt.Fprintf(out, "Finding a solution took %.2f ms\n", float64(d.Microseconds())/1000)
}

func describeOutcome(o engine.Outcome) string {
	switch o {
	case engine.Unsolvable:
		return "every reachable board was explored"
	case engine.BudgetExceeded:
		return "the node budget ran out"
	case engine.Cancelled:
		return "the time budget ran out"
	}
	return o.String()
}

