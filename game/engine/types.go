package engine

import (
	"fmt"
	"strings"
	"time"
)

// Orientation is the fixed axis a vehicle slides along
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

const (
	// DefaultBoardSize is the classic 6x6 Rush Hour board
	DefaultBoardSize = 6
	MinBoardSize     = 3
	MaxBoardSize     = 16

	MinVehicleLength = 2
	MaxVehicleLength = 3

	// DefaultTarget is the conventional name of the red car
	DefaultTarget = "r"

	// EmptyCell marks an unoccupied board cell
	EmptyCell = ""

	// EmptyRune is how an empty cell is rendered in board rows and layouts
	EmptyRune = '.'
)

// String returns the single-letter code used by puzzle files
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation accepts H, V, horizontal or vertical in any case
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	default:
		return 0, fmt.Errorf("%w: unknown orientation %q", ErrInvalidPuzzle, s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Orientation) MarshalText() ([]byte, error) {
	if o != Horizontal && o != Vertical {
		return nil, fmt.Errorf("%w: unknown orientation %d", ErrInvalidPuzzle, int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Direction is one of the four single-cell slides
type Direction string

const (
	Up    Direction = "Up"
	Down  Direction = "Down"
	Left  Direction = "Left"
	Right Direction = "Right"
)

// ParseDirection accepts the direction name in any case, or its first letter
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Axis returns the orientation a vehicle needs to slide in this direction
func (d Direction) Axis() Orientation {
	if d == Up || d == Down {
		return Vertical
	}
	return Horizontal
}

// Delta returns +1 for Down/Right and -1 for Up/Left
func (d Direction) Delta() int {
	if d == Down || d == Right {
		return 1
	}
	return -1
}

// Position is a zero-indexed board cell
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Move names a vehicle and the direction it slides by one cell
type Move struct {
	Vehicle   string    `json:"vehicle"`
	Direction Direction `json:"direction"`
}

// String renders the move the same way the move log does
func (m Move) String() string {
	return fmt.Sprintf("%s-%s", m.Vehicle, m.Direction)
}

// Messages customise what the interactive engine reports back
type Messages struct {
	Welcome  string `json:"welcome,omitempty" yaml:"welcome,omitempty"`
	Moved    string `json:"moved,omitempty" yaml:"moved,omitempty"`
	CantMove string `json:"cant_move,omitempty" yaml:"cant_move,omitempty"`
	Solved   string `json:"solved,omitempty" yaml:"solved,omitempty"`
}

// GameState is the serialisable state of an interactive puzzle
type GameState struct {
	PuzzleName  string             `json:"puzzle_name"`
	Size        int                `json:"size"`
	Vehicles    []Vehicle          `json:"vehicles"`
	Goal        Vehicle            `json:"goal"`
	Board       []string           `json:"board"`
	Solved      bool               `json:"solved"`
	Message     string             `json:"message"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves holds only the moves since the last reset; MoveHistory is cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single attempted slide
type MoveHistoryEntry struct {
	Vehicle      string    `json:"vehicle"`
	Direction    Direction `json:"direction"`
	FromPosition Position  `json:"from_position"`
	ToPosition   Position  `json:"to_position"`
	Timestamp    int64     `json:"timestamp"`
	Success      bool      `json:"success"`
	MoveNumber   int       `json:"move_number"`
}

func newHistoryEntry(m Move, from, to Position, success bool, number int) MoveHistoryEntry {
	return MoveHistoryEntry{
		Vehicle:      m.Vehicle,
		Direction:    m.Direction,
		FromPosition: from,
		ToPosition:   to,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   number,
	}
}
