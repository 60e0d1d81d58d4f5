// Command autoplay plays a Rush Hour session on a running server until the
// target vehicle reaches its goal.
//
// Two strategies are available. "hint" asks the server for the next move
// of a shortest solution before every slide; "solve" requests one full
// solution and submits it as a single bulk move. The session ID is saved so
// the next run resumes the same session.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/internal/logging"
)

// Strategy names
const (
	StrategyHint  = "hint"
	StrategySolve = "solve"
)

var errNoSolution = errors.New("server found no solution")

// Options configures one autoplay run
type Options struct {
	Strategy string
	MaxMoves int
	MaxNodes int
	Timeout  time.Duration
	Delay    time.Duration
}

// Summary reports how a run ended
type Summary struct {
	SessionID string
	Moves     int
	Solved    bool
}

// Player drives one session with Client
type Player struct {
	client *Client
	opts   Options
	logger *slog.Logger
}

// NewPlayer creates a player for client's session
func NewPlayer(client *Client, opts Options, logger *slog.Logger) *Player {
	return &Player{client: client, opts: opts, logger: logger}
}

// Play resets the session and plays it to completion
func (p *Player) Play(ctx context.Context) (*Summary, error) {
	p.logger.Info("resetting puzzle", "session", p.client.SessionID())
	state, err := p.client.Reset(ctx)
	if err != nil {
		return nil, err
	}
	p.logState(state)

	switch p.opts.Strategy {
	case StrategySolve:
		return p.playSolve(ctx, state)
	case StrategyHint, "":
		return p.playHints(ctx, state)
	default:
		return nil, fmt.Errorf("unknown strategy %q", p.opts.Strategy)
	}
}

// playHints slides one hinted vehicle at a time
func (p *Player) playHints(ctx context.Context, state *engine.GameState) (*Summary, error) {
	summary := &Summary{SessionID: p.client.SessionID(), Solved: state.Solved}

	for !summary.Solved {
		if p.opts.MaxMoves > 0 && summary.Moves >= p.opts.MaxMoves {
			return summary, fmt.Errorf("gave up after %d moves", summary.Moves)
		}

		hint, err := p.client.Hint(ctx)
		if err != nil {
			return summary, err
		}
		if hint.Outcome != engine.Solved {
			return summary, fmt.Errorf("%w: %s", errNoSolution, hint.Outcome)
		}
		if hint.Move == nil {
			summary.Solved = true
			break
		}

		result, err := p.client.Move(ctx, *hint.Move)
		if err != nil {
			return summary, err
		}
		if !result.Success {
			return summary, fmt.Errorf("hinted move %s was rejected: %s", hint.Move, result.Message)
		}
		summary.Moves++
		summary.Solved = result.GameState.Solved
		p.logger.Debug("move", "move", hint.Move.String(), "remaining", hint.Remaining-1)

		if err := p.pause(ctx); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// playSolve submits one full solution as a bulk move
func (p *Player) playSolve(ctx context.Context, state *engine.GameState) (*Summary, error) {
	summary := &Summary{SessionID: p.client.SessionID(), Solved: state.Solved}
	if summary.Solved {
		return summary, nil
	}

	res, err := p.client.Solve(ctx, p.opts.MaxNodes, p.opts.Timeout)
	if err != nil {
		return summary, err
	}
	if res.Outcome != engine.Solved {
		return summary, fmt.Errorf("%w: %s after expanding %d states", errNoSolution, res.Outcome, res.Expanded)
	}
	p.logger.Info("solution found", "steps", res.Steps, "expanded", res.Expanded, "duration_ms", res.DurationMS)

	if p.opts.MaxMoves > 0 && res.Steps > p.opts.MaxMoves {
		return summary, fmt.Errorf("solution needs %d moves, more than the %d allowed", res.Steps, p.opts.MaxMoves)
	}

	result, err := p.client.BulkMove(ctx, res.Moves)
	if err != nil {
		return summary, err
	}
	summary.Moves = result.MovesExecuted
	summary.Solved = result.Solved
	if !result.Solved {
		return summary, fmt.Errorf("bulk move stopped on move %d: %s", result.StoppedOnMove, result.StoppedReason)
	}
	return summary, nil
}

func (p *Player) pause(ctx context.Context) error {
	if p.opts.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.opts.Delay):
		return nil
	}
}

func (p *Player) logState(state *engine.GameState) {
	if state == nil || !p.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, row := range state.Board {
		p.logger.Debug("board", "row", row)
	}
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	puzzleID := flag.String("puzzle", "", "Puzzle to play (empty = server default)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	sessionFile := flag.String("session-file", ".session", "File remembering the last session ID (empty disables)")
	strategy := flag.String("strategy", StrategyHint, "Strategy: hint or solve")
	maxMoves := flag.Int("max-moves", 500, "Maximum moves before giving up (0 = unlimited)")
	maxNodes := flag.Int("max-nodes", 0, "Expansion budget for the solve strategy (0 = server default)")
	timeout := flag.Duration("timeout", 0, "Time budget for the solve strategy (0 = server default)")
	delay := flag.Duration("delay", 0, "Delay between moves")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(*logLevel, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("connecting to game server", "url", *serverURL)
	client := NewClient(*serverURL)

	if err := openSession(ctx, client, *puzzleID, *continueSession, *sessionFile, logger); err != nil {
		logger.Error("failed to open session", "error", err)
		os.Exit(1)
	}

	player := NewPlayer(client, Options{
		Strategy: *strategy,
		MaxMoves: *maxMoves,
		MaxNodes: *maxNodes,
		Timeout:  *timeout,
		Delay:    *delay,
	}, logger)

	summary, err := player.Play(ctx)
	if err != nil {
		logger.Error("failed to solve puzzle", "session", client.SessionID(), "error", err)
		os.Exit(1)
	}
	logger.Info("puzzle solved", "session", summary.SessionID, "moves", summary.Moves)
}

// openSession resumes the requested or saved session, falling back to a
// new one, and remembers its ID in sessionFile
func openSession(ctx context.Context, client *Client, puzzleID, continueID, sessionFile string, logger *slog.Logger) error {
	savedID := continueID
	if savedID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedID = string(bytes.TrimSpace(data))
		}
	}

	if savedID != "" {
		state, err := client.Resume(ctx, savedID)
		if err == nil {
			logger.Info("session resumed", "session", savedID, "puzzle", state.PuzzleName, "moves", state.TotalMoves)
			return nil
		}
		logger.Warn("failed to resume session, creating a new one", "session", savedID, "error", err)
	}

	state, err := client.CreateSession(ctx, puzzleID)
	if err != nil {
		return err
	}
	logger.Info("session created", "session", client.SessionID(), "puzzle", state.PuzzleName,
		"vehicles", len(state.Vehicles))

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			logger.Warn("failed to save session ID", "error", err)
		}
	}
	return nil
}
