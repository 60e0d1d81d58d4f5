package puzzlefile

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

// decodeLayout reads a board drawn one row per line, '.' for empty cells.
// Blank lines and lines starting with '#' are skipped.
func decodeLayout(data []byte) (*engine.PuzzleConfig, error) {
	config := &engine.PuzzleConfig{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		config.Layout = append(config.Layout, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return config, nil
}

func encodeLayout(config *engine.PuzzleConfig) ([]byte, error) {
	rows := config.Layout
	if len(rows) == 0 {
		puzzle, err := engine.BuildPuzzle(config)
		if err != nil {
			return nil, err
		}
		rows = engine.Layout(puzzle.Initial)
	}
	return []byte(strings.Join(rows, "\n") + "\n"), nil
}
