package engine

import (
	"errors"
	"fmt"
)

// Engine provides the main interface for interactive play
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsSolved() bool
	Current() State

	// Movement operations
	Move(vehicle string, direction Direction) bool
	CanMove(vehicle string, direction Direction) bool
	GetPossibleMoves() []Move
	BulkMove(moves []Move) []bool

	// Puzzle
	GetPuzzle() *Puzzle

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	puzzle  *Puzzle
	current State
	state   *GameState
}

// NewEngine creates a new game engine for the provided puzzle configuration
func NewEngine(config *PuzzleConfig) (*GameEngine, error) {
	puzzle, err := BuildPuzzle(config)
	if err != nil {
		return nil, err
	}
	return NewEngineForPuzzle(puzzle)
}

// NewEngineForPuzzle creates a game engine from an already built puzzle
func NewEngineForPuzzle(puzzle *Puzzle) (*GameEngine, error) {
	if puzzle == nil || puzzle.Initial.IsZero() {
		return nil, fmt.Errorf("%w: puzzle is empty", ErrInvalidPuzzle)
	}
	e := &GameEngine{puzzle: puzzle}
	e.state = e.initialState()
	e.current = puzzle.Initial
	return e, nil
}

func (e *GameEngine) initialState() *GameState {
	gs := &GameState{
		PuzzleName:   e.puzzle.Name,
		Size:         e.puzzle.Size(),
		Goal:         e.puzzle.Goal,
		Message:      e.puzzle.Messages.Welcome,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	syncState(gs, e.puzzle.Initial, e.puzzle.Goal)
	return gs
}

// syncState copies the placement of s into the serialisable state
func syncState(gs *GameState, s State, goal Vehicle) {
	gs.Vehicles = s.Vehicles()
	gs.Board = NewBoard(s).Rows()
	gs.Solved = s.Contains(goal)
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState restores a previously saved game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return errors.New("state cannot be nil")
	}
	size := state.Size
	if size == 0 {
		size = e.puzzle.Size()
	}
	current, err := NewState(size, state.Vehicles)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	for _, v := range e.puzzle.Initial.vehicles {
		got, ok := current.Vehicle(v.Name)
		if !ok || got.Length != v.Length || got.Orientation != v.Orientation {
			return fmt.Errorf("restore state: %w: vehicle %q does not match puzzle %q", ErrInvalidPuzzle, v.Name, e.puzzle.Name)
		}
	}
	if len(current.vehicles) != len(e.puzzle.Initial.vehicles) {
		return fmt.Errorf("restore state: %w: vehicle count does not match puzzle %q", ErrInvalidPuzzle, e.puzzle.Name)
	}

	e.current = current
	e.state = state
	e.state.Goal = e.puzzle.Goal
	syncState(e.state, current, e.puzzle.Goal)
	return nil
}

// Reset returns the puzzle to its initial placement
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = e.initialState()
	e.current = e.puzzle.Initial

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal

	return e.state
}

// IsSolved returns whether the target vehicle has reached its goal
func (e *GameEngine) IsSolved() bool {
	return e.state.Solved
}

// Current returns the current placement as a solvable State
func (e *GameEngine) Current() State {
	return e.current
}

// GetPuzzle returns the puzzle being played
func (e *GameEngine) GetPuzzle() *Puzzle {
	return e.puzzle
}

// Move attempts to slide a vehicle one cell in the given direction
func (e *GameEngine) Move(vehicle string, direction Direction) bool {
	m := Move{Vehicle: vehicle, Direction: direction}
	prev, _ := e.current.Vehicle(vehicle)

	if e.state.Solved {
		e.state.Message = "Puzzle already solved. Reset to play again."
		e.addMoveToHistory(m, prev.Position(), prev.Position(), false)
		return false
	}

	next, err := e.current.Apply(m)
	if err != nil {
		e.state.Message = fmt.Sprintf("%s [%v]", e.puzzle.Messages.CantMove, err)
		e.addMoveToHistory(m, prev.Position(), prev.Position(), false)
		return false
	}

	moved, _ := next.Vehicle(vehicle)
	e.current = next
	syncState(e.state, next, e.puzzle.Goal)
	e.addMoveToHistory(m, prev.Position(), moved.Position(), true)

	if e.state.Solved {
		e.state.Message = e.puzzle.Messages.render(e.puzzle.Messages.Solved, m, e.successfulMoves())
	} else {
		e.state.Message = e.puzzle.Messages.render(e.puzzle.Messages.Moved, m, e.successfulMoves())
	}
	return true
}

// CanMove checks whether the vehicle can slide in the given direction
func (e *GameEngine) CanMove(vehicle string, direction Direction) bool {
	if e.state.Solved {
		return false
	}
	_, err := e.current.Apply(Move{Vehicle: vehicle, Direction: direction})
	return err == nil
}

// GetPossibleMoves returns all legal moves from the current placement
func (e *GameEngine) GetPossibleMoves() []Move {
	if e.state.Solved {
		return []Move{}
	}
	return e.current.Moves()
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []Move) []bool {
	results := make([]bool, 0, len(moves))

	for _, m := range moves {
		// Stop once solved
		if e.IsSolved() {
			break
		}

		results = append(results, e.Move(m.Vehicle, m.Direction))
	}

	return results
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// addMoveToHistory records an attempt in both the cumulative and current segment history
func (e *GameEngine) addMoveToHistory(m Move, from, to Position, success bool) {
	entry := newHistoryEntry(m, from, to, success, e.state.TotalMoves+1)

	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++

	e.state.CurrentMoves = append(e.state.CurrentMoves, entry)
	e.state.CurrentMovesCount++
}

// successfulMoves counts slides made since the last reset
func (e *GameEngine) successfulMoves() int {
	n := 0
	for _, entry := range e.state.CurrentMoves {
		if entry.Success {
			n++
		}
	}
	return n
}
