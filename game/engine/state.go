package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidPuzzle is returned for malformed vehicle records or goals
	ErrInvalidPuzzle = errors.New("invalid puzzle")
	// ErrIllegalMove is returned when a move is applied that the board does not allow
	ErrIllegalMove = errors.New("illegal move")
	// ErrInconsistentPath is returned when consecutive path states are not one slide apart
	ErrInconsistentPath = errors.New("inconsistent solution path")
)

// State is an immutable snapshot of every vehicle on a square board.
// Vehicles are kept sorted by name so equal placements compare and hash
// the same regardless of construction order.
type State struct {
	size     int
	vehicles []Vehicle
}

// NewState validates vehicles and returns their canonical State.
// The input slice is copied and never retained.
func NewState(size int, vehicles []Vehicle) (State, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return State{}, fmt.Errorf("%w: board size must be between %d and %d, got %d",
			ErrInvalidPuzzle, MinBoardSize, MaxBoardSize, size)
	}
	if len(vehicles) == 0 {
		return State{}, fmt.Errorf("%w: at least one vehicle is required", ErrInvalidPuzzle)
	}

	sorted := slices.Clone(vehicles)
	slices.SortFunc(sorted, func(a, b Vehicle) int { return strings.Compare(a.Name, b.Name) })

	board := newBoard(size)
	for i, v := range sorted {
		if err := v.validate(size); err != nil {
			return State{}, err
		}
		if i > 0 && sorted[i-1].Name == v.Name {
			return State{}, fmt.Errorf("%w: duplicate vehicle name %q", ErrInvalidPuzzle, v.Name)
		}
		if err := board.place(v); err != nil {
			return State{}, err
		}
	}
	if board.FreeCells() == 0 {
		return State{}, fmt.Errorf("%w: board has no empty cells, no move is possible", ErrInvalidPuzzle)
	}

	return State{size: size, vehicles: sorted}, nil
}

// Size returns the board's side length
func (s State) Size() int {
	return s.size
}

// IsZero reports whether s is the zero State
func (s State) IsZero() bool {
	return s.size == 0
}

// Vehicles returns a copy of the vehicles in canonical order
func (s State) Vehicles() []Vehicle {
	return slices.Clone(s.vehicles)
}

// Vehicle looks up a vehicle by name
func (s State) Vehicle(name string) (Vehicle, bool) {
	i, ok := s.find(name)
	if !ok {
		return Vehicle{}, false
	}
	return s.vehicles[i], true
}

// Contains reports whether v appears in s with exactly the same placement
func (s State) Contains(v Vehicle) bool {
	got, ok := s.Vehicle(v.Name)
	return ok && got == v
}

// Equal reports whether two states place every vehicle identically
func (s State) Equal(other State) bool {
	return s.size == other.size && slices.Equal(s.vehicles, other.vehicles)
}

// Key returns a compact canonical encoding suitable as a map key.
// Equal states always share a key and different states never do.
func (s State) Key() string {
	var sb strings.Builder
	sb.Grow(len(s.vehicles) * 6)
	sb.WriteByte(byte(s.size))
	for _, v := range s.vehicles {
		sb.WriteString(v.Name)
		sb.WriteByte(0)
		sb.WriteByte(byte(v.Row))
		sb.WriteByte(byte(v.Col))
		sb.WriteByte(byte(v.Length))
		sb.WriteByte(byte(v.Orientation))
	}
	return sb.String()
}

// Board builds the occupancy grid for s
func (s State) Board() *Board {
	return NewBoard(s)
}

// String renders the board one row per line
func (s State) String() string {
	return NewBoard(s).String()
}

func (s State) find(name string) (int, bool) {
	return slices.BinarySearchFunc(s.vehicles, name, func(v Vehicle, n string) int {
		return strings.Compare(v.Name, n)
	})
}

// with returns a copy of s with the vehicle at index i replaced
func (s State) with(i int, v Vehicle) State {
	vehicles := slices.Clone(s.vehicles)
	vehicles[i] = v
	return State{size: s.size, vehicles: vehicles}
}
