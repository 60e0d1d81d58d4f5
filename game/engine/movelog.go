package engine

import (
	"fmt"
	"strings"
)

// FormatMoves turns a path of states into the slide between each
// consecutive pair. Every pair must differ by exactly one vehicle moved
// one cell along its own axis; anything else is ErrInconsistentPath.
func FormatMoves(path []State) ([]Move, error) {
	if len(path) == 0 {
		return nil, nil
	}
	moves := make([]Move, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		m, err := diffStates(path[i-1], path[i])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		moves = append(moves, m)
	}
	return moves, nil
}

func diffStates(from, to State) (Move, error) {
	if from.size != to.size || len(from.vehicles) != len(to.vehicles) {
		return Move{}, fmt.Errorf("%w: states have different boards", ErrInconsistentPath)
	}

	var (
		moved Move
		found bool
	)
	for i, a := range from.vehicles {
		b := to.vehicles[i]
		if a.Name != b.Name || a.Length != b.Length || a.Orientation != b.Orientation {
			return Move{}, fmt.Errorf("%w: vehicle %s became %s", ErrInconsistentPath, a, b)
		}
		if a == b {
			continue
		}
		if found {
			return Move{}, fmt.Errorf("%w: both %q and %q moved", ErrInconsistentPath, moved.Vehicle, a.Name)
		}
		d, ok := slideDirection(a, b)
		if !ok {
			return Move{}, fmt.Errorf("%w: %s to %s is not a single slide", ErrInconsistentPath, a, b)
		}
		moved, found = Move{Vehicle: a.Name, Direction: d}, true
	}
	if !found {
		return Move{}, fmt.Errorf("%w: no vehicle moved", ErrInconsistentPath)
	}
	return moved, nil
}

func slideDirection(a, b Vehicle) (Direction, bool) {
	dr, dc := b.Row-a.Row, b.Col-a.Col
	switch {
	case a.Orientation == Horizontal && dr == 0 && dc == 1:
		return Right, true
	case a.Orientation == Horizontal && dr == 0 && dc == -1:
		return Left, true
	case a.Orientation == Vertical && dc == 0 && dr == 1:
		return Down, true
	case a.Orientation == Vertical && dc == 0 && dr == -1:
		return Up, true
	}
	return "", false
}

// MoveLog renders moves one per line as name-Direction
func MoveLog(moves []Move) string {
	lines := make([]string, len(moves))
	for i, m := range moves {
		lines[i] = m.String()
	}
	return strings.Join(lines, "\n")
}
