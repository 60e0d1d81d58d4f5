package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/service"
)

const sessionExt = ".json"

// FilePersistence keeps one JSON file per session in a directory
type FilePersistence struct {
	dir     string
	library service.ConfigManager
}

// NewFilePersistence creates dir if needed. Puzzles for restored sessions
// are looked up in library.
func NewFilePersistence(dir string, library service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{dir: dir, library: library}, nil
}

// Save writes the session through a temp file, so readers never see a
// partial record.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil || session.Engine == nil {
		return errors.New("session has no engine")
	}
	if session.PuzzleID == "" {
		return fmt.Errorf("session %s has no puzzle ID", session.ID)
	}

	data, err := json.MarshalIndent(storedSession{
		ID:             session.ID,
		PuzzleID:       session.PuzzleID,
		Fingerprint:    fingerprint(session.Engine.GetPuzzle()),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		State:          session.Engine.GetState(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	path := fp.path(session.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}
	return nil
}

// Load rebuilds a session from its file and the current library puzzle.
// It fails with ErrPuzzleChanged when the puzzle file was edited after
// the session was saved.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if stored.State == nil {
		return nil, fmt.Errorf("session %s has no game state", id)
	}

	cfg, err := fp.library.LoadConfig(stored.PuzzleID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	if stored.Fingerprint != "" && stored.Fingerprint != fingerprint(eng.GetPuzzle()) {
		return nil, fmt.Errorf("%w: session %s on %q", ErrPuzzleChanged, id, stored.PuzzleID)
	}
	if err := eng.SetState(stored.State); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	return &service.Session{
		ID:             stored.ID,
		PuzzleID:       stored.PuzzleID,
		Engine:         eng,
		Config:         cfg,
		CreatedAt:      stored.CreatedAt,
		LastAccessedAt: stored.LastAccessedAt,
	}, nil
}

func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to remove session %s: %w", id, err)
	}
	return nil
}

func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if id, ok := strings.CutSuffix(e.Name(), sessionExt); ok && !e.IsDir() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	info, err := os.Stat(fp.path(id))
	return err == nil && !info.IsDir()
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.dir, id+sessionExt)
}
