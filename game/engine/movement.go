package engine

import (
	"fmt"
	"iter"
)

// slide describes one candidate move for the vehicle at index in a state
type slide struct {
	index     int
	direction Direction
}

// slides lists legal one-cell moves in canonical order: vehicles by name,
// then Right before Left for horizontal and Down before Up for vertical.
func (s State) slides(b *Board) []slide {
	var out []slide
	for i, v := range s.vehicles {
		forward, backward := Right, Left
		if v.Orientation == Vertical {
			forward, backward = Down, Up
		}
		if canSlide(b, v, forward) {
			out = append(out, slide{index: i, direction: forward})
		}
		if canSlide(b, v, backward) {
			out = append(out, slide{index: i, direction: backward})
		}
	}
	return out
}

// canSlide checks the cell just beyond the vehicle's end in direction d
func canSlide(b *Board, v Vehicle, d Direction) bool {
	if d.Axis() != v.Orientation {
		return false
	}
	next := v.Rear()
	if d.Delta() > 0 {
		next = v.Front()
	}
	if v.Orientation == Horizontal {
		next.Col += d.Delta()
	} else {
		next.Row += d.Delta()
	}
	return b.IsEmpty(next.Row, next.Col)
}

// Moves returns every legal move from s in canonical order
func (s State) Moves() []Move {
	b := NewBoard(s)
	candidates := s.slides(b)
	moves := make([]Move, len(candidates))
	for i, c := range candidates {
		moves[i] = Move{Vehicle: s.vehicles[c.index].Name, Direction: c.direction}
	}
	return moves
}

// Successors yields the state reached by each legal move, in the same
// order as Moves. The sequence is re-derived from s on every call.
func (s State) Successors() iter.Seq[State] {
	return func(yield func(State) bool) {
		b := NewBoard(s)
		for _, c := range s.slides(b) {
			v := s.vehicles[c.index]
			if !yield(s.with(c.index, v.Shift(c.direction.Delta()))) {
				return
			}
		}
	}
}

// Apply returns the state after sliding the named vehicle one cell
func (s State) Apply(m Move) (State, error) {
	i, ok := s.find(m.Vehicle)
	if !ok {
		return State{}, fmt.Errorf("%w: no vehicle named %q", ErrIllegalMove, m.Vehicle)
	}
	v := s.vehicles[i]
	switch m.Direction {
	case Up, Down, Left, Right:
	default:
		return State{}, fmt.Errorf("%w: unknown direction %q", ErrIllegalMove, m.Direction)
	}
	if m.Direction.Axis() != v.Orientation {
		return State{}, fmt.Errorf("%w: %s vehicle %q cannot move %s", ErrIllegalMove, orientationName(v.Orientation), v.Name, m.Direction)
	}
	if !canSlide(NewBoard(s), v, m.Direction) {
		return State{}, fmt.Errorf("%w: %q is blocked moving %s", ErrIllegalMove, v.Name, m.Direction)
	}
	return s.with(i, v.Shift(m.Direction.Delta())), nil
}

// Replay applies moves in order and returns every visited state,
// starting with initial
func Replay(initial State, moves []Move) ([]State, error) {
	path := make([]State, 0, len(moves)+1)
	path = append(path, initial)
	current := initial
	for i, m := range moves {
		next, err := current.Apply(m)
		if err != nil {
			return path, fmt.Errorf("move %d (%s): %w", i+1, m, err)
		}
		path = append(path, next)
		current = next
	}
	return path, nil
}

func orientationName(o Orientation) string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}
