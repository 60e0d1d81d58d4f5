package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

var (
	// ErrSessionNotFound is wrapped by session stores when an ID is unknown
	ErrSessionNotFound = errors.New("session not found")
	// ErrPuzzleNotFound is wrapped by puzzle libraries when a name is unknown
	ErrPuzzleNotFound = errors.New("puzzle not found")
)

const (
	// MaxBulkMoves caps the number of moves accepted by one BulkMove call
	MaxBulkMoves = 200
	// DefaultMaxNodes is the expansion budget when a request sets none
	DefaultMaxNodes = 5_000_000
	// DefaultSolveTimeout bounds a search when a request sets none
	DefaultSolveTimeout = 30 * time.Second

	defaultProgressEvery = 100_000
)

// GameService defines all puzzle-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, puzzleID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Play Operations
	Move(ctx context.Context, sessionID string, move engine.Move, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []engine.Move, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Solving
	Hint(ctx context.Context, sessionID string) (*HintResult, error)
	SolveSession(ctx context.Context, sessionID string, opts SolveOptions) (*SolveResult, error)
	SolvePuzzle(ctx context.Context, config *engine.PuzzleConfig, opts SolveOptions) (*SolveResult, error)

	// Puzzle Library
	ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error)
	LoadPuzzle(ctx context.Context, puzzleID string) (*engine.PuzzleConfig, error)
	SavePuzzle(ctx context.Context, puzzleID string, config *engine.PuzzleConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, puzzleID string, config *engine.PuzzleConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, puzzleID string, config *engine.PuzzleConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles puzzle library loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*PuzzleInfo, error)
	GetDefault() *engine.PuzzleConfig
	DefaultID() string
	SaveConfig(name string, config *engine.PuzzleConfig) error
}

// Session represents an active play session
type Session struct {
	ID             string
	PuzzleID       string
	Engine         *engine.GameEngine
	Config         *engine.PuzzleConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
