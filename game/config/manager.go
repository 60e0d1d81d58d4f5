package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/puzzlefile"
	"github.com/wricardo/rush-hour-solver/game/service"
)

var (
	ErrConfigNotFound = service.ErrPuzzleNotFound
	ErrInvalidConfig  = errors.New("invalid puzzle configuration")
)

// DefaultPuzzle is loaded as the default when present in the library
const DefaultPuzzle = "classic"

// entry is one cached, validated puzzle
type entry struct {
	config   *engine.PuzzleConfig
	puzzle   *engine.Puzzle
	filename string
	format   puzzlefile.Format
}

// Manager handles puzzle library loading and caching
type Manager struct {
	puzzleDir    string
	defaultID    string
	defaultEntry *entry
	configs      map[string]*entry
	mu           sync.RWMutex
}

// NewManager creates a new puzzle library rooted at puzzleDir
func NewManager(puzzleDir string) (*Manager, error) {
	// Ensure puzzle directory exists
	if _, err := os.Stat(puzzleDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("puzzle directory does not exist: %s", puzzleDir)
	}

	m := &Manager{
		puzzleDir: puzzleDir,
		configs:   make(map[string]*entry),
	}

	m.loadDefaultConfig()
	return m, nil
}

// Dir returns the library directory
func (m *Manager) Dir() string {
	return m.puzzleDir
}

// LoadConfig loads a puzzle by ID (file stem) or by filename
func (m *Manager) LoadConfig(name string) (*engine.PuzzleConfig, error) {
	e, err := m.load(name)
	if err != nil {
		return nil, err
	}
	return e.config, nil
}

// LoadPuzzle loads and builds a puzzle by ID
func (m *Manager) LoadPuzzle(name string) (*engine.Puzzle, error) {
	e, err := m.load(name)
	if err != nil {
		return nil, err
	}
	return e.puzzle, nil
}

// load returns the cached entry for the file name resolves to, reading
// and validating it on a miss. Entries are keyed by filename so an
// explicit extension never returns a same-stem sibling.
func (m *Manager) load(name string) (*entry, error) {
	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	key := filepath.Base(path)

	m.mu.RLock()
	// Check cache first
	if e, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return e, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if e, exists := m.configs[key]; exists {
		return e, nil
	}

	config, err := puzzlefile.ReadFile(path)
	if err != nil {
		if errors.Is(err, puzzlefile.ErrUnsupportedFormat) {
			return nil, err
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	puzzle, err := engine.BuildPuzzle(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}

	format, _ := puzzlefile.FormatFor(path)
	e := &entry{config: config, puzzle: puzzle, filename: key, format: format}
	m.configs[key] = e
	return e, nil
}

// resolve finds the file backing a puzzle name
func (m *Manager) resolve(name string) (string, error) {
	if filepath.Base(name) != name || name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	if ext := filepath.Ext(name); ext != "" && puzzlefile.Supported(name) {
		path := filepath.Join(m.puzzleDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return path, nil
	}

	for _, ext := range puzzlefile.Precedence() {
		path := filepath.Join(m.puzzleDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// ListConfigs returns information about every valid puzzle in the library
func (m *Manager) ListConfigs() ([]*service.PuzzleInfo, error) {
	entries, err := os.ReadDir(m.puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle directory: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, de := range entries {
		if de.IsDir() || !puzzlefile.Supported(de.Name()) {
			continue
		}
		id := puzzlefile.PuzzleName(de.Name())
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	configs := make([]*service.PuzzleInfo, 0, len(ids))
	for _, id := range ids {
		e, err := m.load(id)
		if err != nil {
			// Skip invalid puzzles
			continue
		}
		configs = append(configs, e.info(id))
	}
	return configs, nil
}

func (e *entry) info(id string) *service.PuzzleInfo {
	return &service.PuzzleInfo{
		Filename:    e.filename,
		PuzzleID:    id,
		Name:        e.config.Name,
		Description: e.config.Description,
		Size:        e.puzzle.Size(),
		Vehicles:    len(e.puzzle.Initial.Vehicles()),
		Format:      string(e.format),
	}
}

// GetDefault returns the default puzzle
func (m *Manager) GetDefault() *engine.PuzzleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultEntry.config
}

// DefaultID returns the library ID of the default puzzle
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default puzzle by ID
func (m *Manager) SetDefault(name string) error {
	e, err := m.load(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultEntry = e
	m.defaultID = puzzlefile.PuzzleName(name)
	return nil
}

// RefreshCache drops every cached puzzle and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*entry)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// Invalidate drops every cached file sharing name's stem so the next
// load rereads from disk and re-applies extension precedence
func (m *Manager) Invalidate(name string) {
	id := puzzlefile.PuzzleName(name)

	m.mu.Lock()
	for key := range m.configs {
		if puzzlefile.PuzzleName(key) == id {
			delete(m.configs, key)
		}
	}
	isDefault := id == m.defaultID
	m.mu.Unlock()

	if isDefault {
		m.loadDefaultConfig()
	}
}

// Count returns the number of cached puzzles
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// loadDefaultConfig picks classic, else the first valid puzzle, else a
// built-in minimal puzzle
func (m *Manager) loadDefaultConfig() {
	id := DefaultPuzzle
	e, err := m.load(id)
	if err != nil {
		e = nil
		if infos, listErr := m.ListConfigs(); listErr == nil && len(infos) > 0 {
			id = infos[0].PuzzleID
			e, _ = m.load(id)
		}
	}
	if e == nil {
		id = "default"
		e = minimalEntry()
	}

	m.mu.Lock()
	m.defaultEntry = e
	m.defaultID = id
	m.mu.Unlock()
}

// SaveConfig validates a puzzle and writes it to the library. The format
// follows the name's extension, JSON when there is none.
func (m *Manager) SaveConfig(name string, config *engine.PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("%w: puzzle is nil", ErrInvalidConfig)
	}
	if filepath.Base(name) != name || puzzlefile.PuzzleName(name) == "" {
		return fmt.Errorf("%w: bad puzzle name %q", ErrInvalidConfig, name)
	}

	if err := puzzlefile.Validate(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	puzzle, err := engine.BuildPuzzle(config)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}
	format, err := puzzlefile.FormatFor(filename)
	if err != nil {
		return err
	}

	data, err := puzzlefile.Encode(format, config)
	if err != nil {
		return fmt.Errorf("failed to encode puzzle: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.puzzleDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}

	m.mu.Lock()
	m.configs[filename] = &entry{config: config, puzzle: puzzle, filename: filename, format: format}
	m.mu.Unlock()

	return nil
}

// minimalEntry is a small built-in puzzle with one blocker directly ahead
// of the target on row 2
func minimalEntry() *entry {
	config := &engine.PuzzleConfig{
		Name:        "default",
		Description: "Default minimal puzzle",
		Vehicles: []engine.VehicleConfig{
			{Name: "r", Row: 2, Col: 2, Length: 2, Orientation: "H"},
			{Name: "b", Row: 2, Col: 4, Length: 2, Orientation: "V"},
		},
	}
	puzzle, err := engine.BuildPuzzle(config)
	if err != nil {
		panic(fmt.Sprintf("built-in puzzle is invalid: %v", err))
	}
	return &entry{config: config, puzzle: puzzle, filename: "", format: puzzlefile.FormatJSON}
}

// isPuzzleFile reports whether path is a decodable file directly inside dir
func isPuzzleFile(dir, path string) bool {
	return filepath.Dir(path) == filepath.Clean(dir) && puzzlefile.Supported(path) && !strings.HasPrefix(filepath.Base(path), ".")
}
