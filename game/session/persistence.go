package session

import (
	"errors"
	"time"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/service"
)

// ErrPuzzleChanged marks a stored session whose puzzle file no longer
// describes the board the session was played on.
var ErrPuzzleChanged = errors.New("puzzle changed since session was saved")

// SessionPersistence stores sessions outside the process
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error

	// ListAll returns the IDs of every stored session
	ListAll() ([]string, error)
	Exists(id string) bool
}

// storedSession is the on-disk form of a session. The puzzle itself is
// not stored: it is reloaded from the library by PuzzleID and must still
// match Fingerprint.
type storedSession struct {
	ID             string            `json:"id"`
	PuzzleID       string            `json:"puzzle_id"`
	Fingerprint    string            `json:"fingerprint"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	State          *engine.GameState `json:"state"`
}

// fingerprint identifies a puzzle by its starting board and goal
func fingerprint(p *engine.Puzzle) string {
	return p.Initial.Key() + "|" + p.Goal.String()
}
