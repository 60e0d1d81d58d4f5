package service

import (
	"time"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

// SessionInfo provides information about a play session
type SessionInfo struct {
	ID             string               `json:"id"`
	PuzzleID       string               `json:"puzzle_id"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	GameState      *engine.GameState    `json:"game_state"`
	Puzzle         *engine.PuzzleConfig `json:"puzzle"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool              `json:"success"`
	GameState     *engine.GameState `json:"game_state"`
	Message       string            `json:"message"`
	Events        []GameEvent       `json:"events,omitempty"`
	Step          *StepInfo         `json:"step,omitempty"`
	PossibleMoves []engine.Move     `json:"possible_moves"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // Machine-friendly code: blocked|solved
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	Solved        bool          `json:"solved"`
	Message       string        `json:"message,omitempty"`
	PossibleMoves []engine.Move `json:"possible_moves"`
}

// StepInfo is a compact record for each attempted move
type StepInfo struct {
	Idx       int              `json:"idx"`
	Vehicle   string           `json:"vehicle"`
	Direction engine.Direction `json:"direction"`
	From      engine.Position  `json:"from"`
	To        engine.Position  `json:"to"`
	Success   bool             `json:"success"`
	Solved    bool             `json:"solved,omitempty"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string    `json:"type"` // "move", "blocked", "solved", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Vehicle   string    `json:"vehicle,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// PuzzleInfo provides information about a puzzle in the library
type PuzzleInfo struct {
	Filename    string `json:"filename"`
	PuzzleID    string `json:"puzzle_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Size        int    `json:"size"`
	Vehicles    int    `json:"vehicles"`
	Format      string `json:"format"`
}

// SolveOptions bounds a single search. Zero values fall back to the
// service defaults.
type SolveOptions struct {
	MaxNodes int           `json:"max_nodes"`
	Timeout  time.Duration `json:"timeout"`
}

// SolveResult is the outcome of a solve request
type SolveResult struct {
	RequestID  string         `json:"request_id"`
	Puzzle     string         `json:"puzzle"`
	Outcome    engine.Outcome `json:"outcome"`
	Steps      int            `json:"steps"`
	Moves      []engine.Move  `json:"moves"`
	MoveLog    []string       `json:"move_log"`
	Expanded   int            `json:"expanded"`
	Visited    int            `json:"visited"`
	DurationMS float64        `json:"duration_ms"`
	Shared     bool           `json:"shared,omitempty"` // result was shared with a concurrent identical request
}

// HintResult suggests the next move toward a shortest solution
type HintResult struct {
	Outcome   engine.Outcome `json:"outcome"`
	Move      *engine.Move   `json:"move,omitempty"`
	Remaining int            `json:"remaining"`
	Blocking  []string       `json:"blocking,omitempty"`
	Message   string         `json:"message"`
}
