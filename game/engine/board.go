package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Board is a read-only occupancy grid derived from a State.
// Each cell holds the occupying vehicle's name or EmptyCell.
type Board struct {
	size  int
	cells []string
}

// NewBoard builds a fresh occupancy grid for s
func NewBoard(s State) *Board {
	b := newBoard(s.size)
	for _, v := range s.vehicles {
		// States are validated on construction, so placement cannot fail here.
		_ = b.place(v)
	}
	return b
}

func newBoard(size int) *Board {
	return &Board{size: size, cells: make([]string, size*size)}
}

// place writes v's footprint, refusing cells that are off-board or taken
func (b *Board) place(v Vehicle) error {
	if !v.Fits(b.size) {
		return fmt.Errorf("%w: vehicle %s does not fit on a %dx%d board", ErrInvalidPuzzle, v, b.size, b.size)
	}
	for _, p := range v.Cells() {
		if owner := b.cells[b.index(p.Row, p.Col)]; owner != EmptyCell {
			return fmt.Errorf("%w: vehicles %q and %q overlap at (%d,%d)", ErrInvalidPuzzle, owner, v.Name, p.Row, p.Col)
		}
	}
	for _, p := range v.Cells() {
		b.cells[b.index(p.Row, p.Col)] = v.Name
	}
	return nil
}

// Size returns the board's side length
func (b *Board) Size() int {
	return b.size
}

// InBounds reports whether (row, col) is on the board
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// IsEmpty reports whether (row, col) is on the board and unoccupied
func (b *Board) IsEmpty(row, col int) bool {
	return b.InBounds(row, col) && b.cells[b.index(row, col)] == EmptyCell
}

// At returns the name of the vehicle covering (row, col), or EmptyCell
func (b *Board) At(row, col int) string {
	if !b.InBounds(row, col) {
		return EmptyCell
	}
	return b.cells[b.index(row, col)]
}

// FreeCells counts unoccupied cells
func (b *Board) FreeCells() int {
	n := 0
	for _, c := range b.cells {
		if c == EmptyCell {
			n++
		}
	}
	return n
}

// Rows renders each row as a string, '.' for empty cells and the first
// rune of the vehicle name otherwise
func (b *Board) Rows() []string {
	rows := make([]string, b.size)
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		sb.Reset()
		for c := 0; c < b.size; c++ {
			name := b.cells[b.index(r, c)]
			if name == EmptyCell {
				sb.WriteRune(EmptyRune)
				continue
			}
			ch, _ := utf8.DecodeRuneInString(name)
			sb.WriteRune(ch)
		}
		rows[r] = sb.String()
	}
	return rows
}

// String renders the board one row per line
func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}

func (b *Board) index(row, col int) int {
	return row*b.size + col
}
