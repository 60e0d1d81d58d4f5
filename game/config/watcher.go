package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached puzzles whose files change on disk. It returns
// once the directory is being watched; watching stops when ctx is done.
func (m *Manager) Watch(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create puzzle watcher: %w", err)
	}
	if err := watcher.Add(m.puzzleDir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", m.puzzleDir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isPuzzleFile(m.puzzleDir, event.Name) {
					continue
				}
				if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
					continue
				}
				m.Invalidate(event.Name)
				logger.Info("puzzle file changed", "file", event.Name, "op", event.Op.String())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Log error but continue watching
				logger.Warn("puzzle watcher error", "error", err)
			}
		}
	}()

	return nil
}
