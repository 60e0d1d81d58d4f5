package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/metrics"
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSolveDefaults sets the budget used when a request leaves it unset
func WithSolveDefaults(maxNodes int, timeout time.Duration) Option {
	return func(s *gameServiceImpl) {
		if maxNodes > 0 {
			s.maxNodes = maxNodes
		}
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithProgressEvery sets how many expansions pass between debug progress
// lines during a solve
func WithProgressEvery(n int) Option {
	return func(s *gameServiceImpl) {
		if n > 0 {
			s.progressEvery = n
		}
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *slog.Logger
	maxNodes int
	timeout  time.Duration

	progressEvery int

	mu     sync.RWMutex
	solves singleflight.Group
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   slog.Default(),
		maxNodes: DefaultMaxNodes,
		timeout:  DefaultSolveTimeout,

		progressEvery: defaultProgressEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new play session for a library puzzle
func (s *gameServiceImpl) CreateSession(ctx context.Context, puzzleID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	var err error
	if puzzleID != "" {
		config, err = s.configs.LoadConfig(puzzleID)
		if err != nil {
			if errors.Is(err, ErrPuzzleNotFound) {
				return nil, s.notFound(puzzleID, err)
			}
			return nil, fmt.Errorf("failed to load puzzle %s: %w", puzzleID, err)
		}
	} else {
		config = s.configs.GetDefault()
		puzzleID = s.configs.DefaultID()
	}

	// Let the session manager generate the ID
	sess, err := s.sessions.Create("", puzzleID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created", "session", sess.ID, "puzzle", puzzleID)
	return sessionInfo(sess), nil
}

// notFound lists the available puzzles alongside a lookup failure
func (s *gameServiceImpl) notFound(puzzleID string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("puzzle '%s': %w. Use /api/puzzles to list available puzzles", puzzleID, err)
	}
	ids := make([]string, 0, len(available))
	for _, p := range available {
		ids = append(ids, p.PuzzleID)
	}
	return fmt.Errorf("puzzle '%s': %w. Available puzzles: %s", puzzleID, err, strings.Join(ids, ", "))
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.touch(sessionID)

	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// Move slides one vehicle of a session one cell
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, move engine.Move, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.touch(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	step := s.step(sess, 1, move)
	state := stateCopy(sess)
	events = append(events, stepEvents(step, state)...)

	result := &MoveResult{
		Success:       step.Success,
		GameState:     state,
		Message:       state.Message,
		Events:        events,
		Step:          &step,
		PossibleMoves: sess.Engine.GetPossibleMoves(),
	}

	s.save(sessionID, "move")
	return result, nil
}

// BulkMove executes moves in order, stopping at the first blocked move or
// once the puzzle is solved
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []engine.Move, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.touch(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	// Limit moves to prevent abuse
	if len(moves) > MaxBulkMoves {
		result.Truncated = true
		result.Limit = MaxBulkMoves
		moves = moves[:MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsSolved() {
			result.StoppedReason = "puzzle solved"
			result.StopReasonCode = "solved"
			result.StoppedOnMove = i + 1
			break
		}

		step := s.step(sess, i+1, move)
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, stepEvents(step, sess.Engine.GetState())...)

		if !step.Success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StopReasonCode = "blocked"
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++
	}

	result.GameState = stateCopy(sess)
	result.Solved = result.GameState.Solved
	result.Message = result.GameState.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	if result.Solved && result.StopReasonCode == "" {
		result.StopReasonCode = "solved"
	}

	s.save(sessionID, "bulk move")
	return result, nil
}

// step applies one move and describes it
func (s *gameServiceImpl) step(sess *Session, idx int, move engine.Move) StepInfo {
	success := sess.Engine.Move(move.Vehicle, move.Direction)
	metrics.ObserveMove(success)

	info := StepInfo{
		Idx:       idx,
		Vehicle:   move.Vehicle,
		Direction: move.Direction,
		Success:   success,
		Solved:    sess.Engine.IsSolved(),
	}
	if last := sess.Engine.GetLastMove(); last != nil {
		info.From = last.FromPosition
		info.To = last.ToPosition
	}
	return info
}

// Reset returns a session to its puzzle's initial placement
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.touch(sessionID)

	sess.Engine.Reset()
	s.save(sessionID, "reset")
	return stateCopy(sess), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.touch(sessionID)
	return stateCopy(sess), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return paginate(sess.Engine.GetMoveHistory(), opts), nil
}

// paginate slices history into one page
func paginate(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// Hint suggests the first move of a shortest solution from the session's
// current placement
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	current, goal, puzzleID, err := s.snapshot(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := s.solve(ctx, "hint", puzzleID, current, goal, SolveOptions{})
	if err != nil {
		return nil, err
	}

	hint := &HintResult{
		Outcome:  res.Outcome,
		Blocking: engine.BlockingVehicles(current, goal),
	}
	switch {
	case res.Outcome != engine.Solved:
		hint.Message = fmt.Sprintf("No hint available: search %s", res.Outcome)
	case res.Steps == 0:
		hint.Message = "Puzzle is already solved."
	default:
		first := res.Moves[0]
		hint.Move = &first
		hint.Remaining = res.Steps
		hint.Message = fmt.Sprintf("Try %s; %d moves to go.", first, res.Steps)
	}
	return hint, nil
}

// SolveSession searches from the session's current placement
func (s *gameServiceImpl) SolveSession(ctx context.Context, sessionID string, opts SolveOptions) (*SolveResult, error) {
	current, goal, puzzleID, err := s.snapshot(sessionID)
	if err != nil {
		return nil, err
	}
	return s.solve(ctx, "session", puzzleID, current, goal, opts)
}

// SolvePuzzle searches from a puzzle's initial placement
func (s *gameServiceImpl) SolvePuzzle(ctx context.Context, config *engine.PuzzleConfig, opts SolveOptions) (*SolveResult, error) {
	puzzle, err := engine.BuildPuzzle(config)
	if err != nil {
		return nil, err
	}
	return s.solve(ctx, "puzzle", puzzle.Name, puzzle.Initial, puzzle.Goal, opts)
}

// snapshot copies what a search needs out of a session so the lock is not
// held while solving
func (s *gameServiceImpl) snapshot(sessionID string) (engine.State, engine.Vehicle, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return engine.State{}, engine.Vehicle{}, "", err
	}
	s.touch(sessionID)
	return sess.Engine.Current(), sess.Engine.GetPuzzle().Goal, sess.PuzzleID, nil
}

// solve runs one bounded search. Identical concurrent requests share a
// single search.
func (s *gameServiceImpl) solve(ctx context.Context, source, name string, initial engine.State, goal engine.Vehicle, opts SolveOptions) (*SolveResult, error) {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = s.maxNodes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = s.timeout
	}

	requestID := uuid.NewString()
	ctx, span := startSolveSpan(ctx, source, name, requestID)
	defer span.End()

	if ctx.Err() != nil {
		return solveResult(requestID, name, &engine.Result{Outcome: engine.Cancelled}, false), nil
	}

	// The shared search outlives any one caller; each caller stops waiting
	// when its own context is done.
	searchCtx := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%s|%s|%d|%s", initial.Key(), goal, opts.MaxNodes, opts.Timeout)
	start := time.Now()
	ch := s.solves.DoChan(key, func() (any, error) {
		solveCtx, cancel := context.WithTimeout(searchCtx, opts.Timeout)
		defer cancel()

		logger := s.logger.With("request", requestID, "puzzle", name, "source", source)
		solver := engine.NewSolver(goal,
			engine.WithMaxNodes(opts.MaxNodes),
			engine.WithProgress(func(expanded, frontier int) {
				logger.Debug("solve progress", "expanded", expanded, "frontier", frontier)
			}, s.progressEvery),
		)
		res, err := solver.Solve(solveCtx, initial)
		if err != nil {
			return nil, err
		}
		metrics.ObserveSolve(source, res)
		logger.Info("solve finished",
			"outcome", res.Outcome.String(),
			"steps", res.Steps(),
			"expanded", res.Expanded,
			"duration", res.Duration,
		)
		return res, nil
	})

	var (
		v      any
		err    error
		shared bool
	)
	select {
	case <-ctx.Done():
		s.logger.Debug("solve caller gone", "request", requestID, "error", ctx.Err())
		res := &engine.Result{Outcome: engine.Cancelled, Duration: time.Since(start)}
		setSolveSpanResult(span, res, false)
		return solveResult(requestID, name, res, false), nil
	case r := <-ch:
		v, err, shared = r.Val, r.Err, r.Shared
	}
	if err != nil {
		setSpanError(span, err)
		return nil, err
	}

	res := v.(*engine.Result)
	setSolveSpanResult(span, res, shared)
	return solveResult(requestID, name, res, shared), nil
}

// solveResult converts an engine result for the wire
func solveResult(requestID, name string, res *engine.Result, shared bool) *SolveResult {
	moves := res.Moves
	if moves == nil {
		moves = []engine.Move{}
	}
	log := make([]string, 0, len(moves))
	for _, m := range moves {
		log = append(log, m.String())
	}
	return &SolveResult{
		RequestID:  requestID,
		Puzzle:     name,
		Outcome:    res.Outcome,
		Steps:      res.Steps(),
		Moves:      moves,
		MoveLog:    log,
		Expanded:   res.Expanded,
		Visited:    res.Visited,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
		Shared:     shared,
	}
}

// ListPuzzles returns the puzzle library
func (s *gameServiceImpl) ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error) {
	return s.configs.ListConfigs()
}

// LoadPuzzle loads one library puzzle
func (s *gameServiceImpl) LoadPuzzle(ctx context.Context, puzzleID string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(puzzleID)
}

// SavePuzzle validates and stores a puzzle in the library
func (s *gameServiceImpl) SavePuzzle(ctx context.Context, puzzleID string, config *engine.PuzzleConfig) error {
	if _, err := engine.BuildPuzzle(config); err != nil {
		return err
	}
	return s.configs.SaveConfig(puzzleID, config)
}

// touch refreshes a session's access time; a failure is not worth failing
// the request over
func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Warn("failed to update session access time", "session", sessionID, "error", err)
	}
}

// save persists a session after a mutation
func (s *gameServiceImpl) save(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "op", op, "error", err)
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		PuzzleID:       sess.PuzzleID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      stateCopy(sess),
		Puzzle:         sess.Config,
	}
}

// stateCopy detaches the returned state from later moves. The engine only
// ever replaces or appends to the slices it shares.
func stateCopy(sess *Session) *engine.GameState {
	st := *sess.Engine.GetState()
	return &st
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Puzzle reset to initial placement",
		Timestamp: time.Now(),
	}
}

// stepEvents generates events for one attempted move
func stepEvents(step StepInfo, state *engine.GameState) []GameEvent {
	now := time.Now()
	if !step.Success {
		return []GameEvent{{
			Type:      "blocked",
			Message:   state.Message,
			Timestamp: now,
			Vehicle:   step.Vehicle,
		}}
	}

	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s %s to (%d,%d)", step.Vehicle, step.Direction, step.To.Row, step.To.Col),
		Timestamp: now,
		Vehicle:   step.Vehicle,
	}}
	if step.Solved {
		events = append(events, GameEvent{
			Type:      "solved",
			Message:   state.Message,
			Timestamp: now,
			Vehicle:   step.Vehicle,
		})
	}
	return events
}
