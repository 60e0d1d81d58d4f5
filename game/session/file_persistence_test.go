package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/rush-hour-solver/game/config"
	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/service"
)

// newTestLibrary returns a puzzle library holding createTestConfig as "test"
func newTestLibrary(t *testing.T) *config.Manager {
	t.Helper()
	configManager, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	if err := configManager.SaveConfig("test", createTestConfig()); err != nil {
		t.Fatalf("Failed to save test puzzle: %v", err)
	}
	return configManager
}

func newTestSession(t *testing.T, id string, configManager *config.Manager) *service.Session {
	t.Helper()
	puzzleConfig, err := configManager.LoadConfig("test")
	if err != nil {
		t.Fatalf("Failed to load test puzzle: %v", err)
	}
	eng, err := engine.NewEngine(puzzleConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		PuzzleID:       "test",
		Engine:         eng,
		Config:         puzzleConfig,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

func TestFilePersistence(t *testing.T) {
	configManager := newTestLibrary(t)

	persistence, err := NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "test1", configManager)

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loadedSession.ID != session.ID || loadedSession.PuzzleID != "test" {
			t.Errorf("Expected %s/test, got %s/%s", session.ID, loadedSession.ID, loadedSession.PuzzleID)
		}
		if !loadedSession.Engine.Current().Equal(session.Engine.Current()) {
			t.Errorf("Expected placement %v, got %v", session.Engine.Current(), loadedSession.Engine.Current())
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		if !session.Engine.Move("a", engine.Up) {
			t.Fatalf("Expected a-Up to succeed: %s", session.Engine.GetState().Message)
		}
		session.Engine.Move("r", engine.Left) // blocked, still recorded

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}
		if !loadedSession.Engine.Current().Equal(session.Engine.Current()) {
			t.Errorf("Placement not persisted correctly: %v", loadedSession.Engine.Current())
		}
		if len(loadedSession.Engine.GetMoveHistory()) != 2 {
			t.Errorf("Expected 2 history entries, got %d", len(loadedSession.Engine.GetMoveHistory()))
		}
		// The restored engine keeps playing from the saved placement
		if !loadedSession.Engine.Move("a", engine.Down) {
			t.Errorf("Expected a-Down after restore: %s", loadedSession.Engine.GetState().Message)
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		if err := persistence.Save(newTestSession(t, "test2", configManager)); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if len(sessionIDs) != 2 || !found["test1"] || !found["test2"] {
			t.Errorf("Expected test1 and test2, got %v", sessionIDs)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}
		if _, err := persistence.Load("test2"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err == nil {
			t.Error("Should get error when loading non-existent session")
		}
		if err := persistence.Delete("nonexistent"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
	})

	t.Run("Puzzle changed under saved session", func(t *testing.T) {
		changed := createTestConfig()
		changed.Vehicles = changed.Vehicles[:2]
		if err := configManager.SaveConfig("test", changed); err != nil {
			t.Fatalf("Failed to overwrite puzzle: %v", err)
		}
		if _, err := persistence.Load("test1"); !errors.Is(err, ErrPuzzleChanged) {
			t.Errorf("Expected ErrPuzzleChanged for an edited puzzle, got %v", err)
		}
	})
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestLibrary(t)

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := persistence.Save(newTestSession(t, "file_test", configManager)); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	content := string(data)
	for _, field := range []string{`"id"`, `"puzzle_id"`, `"fingerprint"`, `"created_at"`, `"state"`, `"vehicles"`} {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain field %s", field)
		}
	}
	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file should not be left behind")
	}
}

func TestFilePersistenceWithoutFingerprint(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestLibrary(t)
	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	if err := persistence.Save(newTestSession(t, "plain", configManager)); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	path := filepath.Join(tempDir, "plain.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to decode session file: %v", err)
	}
	delete(raw, "fingerprint")
	stripped, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Failed to encode session file: %v", err)
	}
	if err := os.WriteFile(path, stripped, 0644); err != nil {
		t.Fatalf("Failed to write session file: %v", err)
	}

	if _, err := persistence.Load("plain"); err != nil {
		t.Errorf("Expected a record without fingerprint to load, got %v", err)
	}
}
