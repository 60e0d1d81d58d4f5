package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// PuzzleConfig is the on-disk description of a puzzle. Placement comes
// from either Vehicles or Layout, never both.
type PuzzleConfig struct {
	Name        string          `json:"name" yaml:"name" validate:"required"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Size        int             `json:"size,omitempty" yaml:"size,omitempty" validate:"omitempty,min=3,max=16"`
	Target      string          `json:"target,omitempty" yaml:"target,omitempty"`
	Goal        *Position       `json:"goal,omitempty" yaml:"goal,omitempty"`
	Vehicles    []VehicleConfig `json:"vehicles,omitempty" yaml:"vehicles,omitempty" validate:"omitempty,dive"`
	Layout      []string        `json:"layout,omitempty" yaml:"layout,omitempty"`
	Messages    Messages        `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// VehicleConfig is one vehicle record as written in puzzle files
type VehicleConfig struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Row         int    `json:"row" yaml:"row" validate:"gte=0"`
	Col         int    `json:"col" yaml:"col" validate:"gte=0"`
	Length      int    `json:"length" yaml:"length" validate:"oneof=2 3"`
	Orientation string `json:"orientation" yaml:"orientation" validate:"required"`
}

// Vehicle converts the record, parsing its orientation code
func (vc VehicleConfig) Vehicle() (Vehicle, error) {
	o, err := ParseOrientation(vc.Orientation)
	if err != nil {
		return Vehicle{}, fmt.Errorf("vehicle %q: %w", vc.Name, err)
	}
	return Vehicle{Name: vc.Name, Row: vc.Row, Col: vc.Col, Length: vc.Length, Orientation: o}, nil
}

// VehicleConfigFor is the inverse of VehicleConfig.Vehicle
func VehicleConfigFor(v Vehicle) VehicleConfig {
	return VehicleConfig{Name: v.Name, Row: v.Row, Col: v.Col, Length: v.Length, Orientation: v.Orientation.String()}
}

// Puzzle is a validated puzzle ready to solve or play
type Puzzle struct {
	Name        string
	Description string
	Initial     State
	Goal        Vehicle
	Messages    Messages
}

// Size returns the board's side length
func (p *Puzzle) Size() int {
	return p.Initial.Size()
}

// ValidatePuzzleConfig checks that config describes a well-formed puzzle
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	_, err := BuildPuzzle(config)
	return err
}

// BuildPuzzle validates config and resolves its initial state and goal
func BuildPuzzle(config *PuzzleConfig) (*Puzzle, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidPuzzle)
	}
	if strings.TrimSpace(config.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPuzzle)
	}

	var (
		size     = config.Size
		vehicles []Vehicle
	)
	switch {
	case len(config.Layout) > 0 && len(config.Vehicles) > 0:
		return nil, fmt.Errorf("%w: use either vehicles or layout, not both", ErrInvalidPuzzle)
	case len(config.Layout) > 0:
		layoutSize, parsed, err := ParseLayout(config.Layout)
		if err != nil {
			return nil, err
		}
		if size != 0 && size != layoutSize {
			return nil, fmt.Errorf("%w: size is %d but layout is %dx%d", ErrInvalidPuzzle, size, layoutSize, layoutSize)
		}
		size, vehicles = layoutSize, parsed
	case len(config.Vehicles) > 0:
		for _, vc := range config.Vehicles {
			v, err := vc.Vehicle()
			if err != nil {
				return nil, err
			}
			vehicles = append(vehicles, v)
		}
	default:
		return nil, fmt.Errorf("%w: puzzle %q has no vehicles", ErrInvalidPuzzle, config.Name)
	}
	if size == 0 {
		size = DefaultBoardSize
	}

	initial, err := NewState(size, vehicles)
	if err != nil {
		return nil, fmt.Errorf("puzzle %q: %w", config.Name, err)
	}

	goal, err := ResolveGoal(initial, config.TargetName(), config.Goal)
	if err != nil {
		return nil, fmt.Errorf("puzzle %q: %w", config.Name, err)
	}

	return &Puzzle{
		Name:        config.Name,
		Description: config.Description,
		Initial:     initial,
		Goal:        goal,
		Messages:    config.Messages.withDefaults(),
	}, nil
}

// TargetName returns the configured target or DefaultTarget
func (c *PuzzleConfig) TargetName() string {
	if c.Target == "" {
		return DefaultTarget
	}
	return c.Target
}

// ResolveGoal returns the goal placement for the target vehicle. With no
// explicit cell the target must reach the far edge along its axis.
func ResolveGoal(initial State, target string, cell *Position) (Vehicle, error) {
	v, ok := initial.Vehicle(target)
	if !ok {
		return Vehicle{}, fmt.Errorf("%w: target vehicle %q is not on the board", ErrInvalidPuzzle, target)
	}
	if cell == nil {
		return DefaultGoal(initial.Size(), v), nil
	}

	goal := v
	goal.Row, goal.Col = cell.Row, cell.Col
	if (v.Orientation == Horizontal && goal.Row != v.Row) || (v.Orientation == Vertical && goal.Col != v.Col) {
		return Vehicle{}, fmt.Errorf("%w: goal (%d,%d) is not reachable along the axis of %s",
			ErrInvalidPuzzle, cell.Row, cell.Col, v)
	}
	if !goal.Fits(initial.Size()) {
		return Vehicle{}, fmt.Errorf("%w: goal %s is off the board", ErrInvalidPuzzle, goal)
	}
	return goal, nil
}

// DefaultGoal slides target to the right edge (horizontal) or bottom edge (vertical)
func DefaultGoal(size int, target Vehicle) Vehicle {
	if target.Orientation == Horizontal {
		target.Col = size - target.Length
	} else {
		target.Row = size - target.Length
	}
	return target
}

// ParseLayout reads square rows of single-rune vehicle labels, with '.'
// for empty cells, and returns the board size and vehicles. Each label
// must cover a straight run of 2 or 3 cells.
func ParseLayout(rows []string) (int, []Vehicle, error) {
	size := len(rows)
	if size < MinBoardSize || size > MaxBoardSize {
		return 0, nil, fmt.Errorf("%w: layout must have between %d and %d rows, got %d",
			ErrInvalidPuzzle, MinBoardSize, MaxBoardSize, size)
	}

	cells := make(map[rune][]Position)
	var order []rune
	for r, row := range rows {
		if n := utf8.RuneCountInString(row); n != size {
			return 0, nil, fmt.Errorf("%w: layout row %d must have %d cells, got %d", ErrInvalidPuzzle, r+1, size, n)
		}
		c := 0
		for _, ch := range row {
			if ch != EmptyRune {
				if _, ok := cells[ch]; !ok {
					order = append(order, ch)
				}
				cells[ch] = append(cells[ch], Position{Row: r, Col: c})
			}
			c++
		}
	}

	vehicles := make([]Vehicle, 0, len(order))
	for _, ch := range order {
		v, err := vehicleFromCells(string(ch), cells[ch])
		if err != nil {
			return 0, nil, err
		}
		vehicles = append(vehicles, v)
	}
	return size, vehicles, nil
}

// vehicleFromCells accepts cells in row-major order
func vehicleFromCells(name string, cells []Position) (Vehicle, error) {
	if len(cells) < MinVehicleLength || len(cells) > MaxVehicleLength {
		return Vehicle{}, fmt.Errorf("%w: layout vehicle %q covers %d cells, want %d or %d",
			ErrInvalidPuzzle, name, len(cells), MinVehicleLength, MaxVehicleLength)
	}
	first := cells[0]
	v := Vehicle{Name: name, Row: first.Row, Col: first.Col, Length: len(cells), Orientation: Horizontal}
	if cells[1].Col == first.Col {
		v.Orientation = Vertical
	}
	if !slices.Equal(cells, v.Cells()) {
		return Vehicle{}, fmt.Errorf("%w: layout vehicle %q is not a straight contiguous run", ErrInvalidPuzzle, name)
	}
	return v, nil
}

// Layout renders s back into layout rows; vehicle names must be single runes
func Layout(s State) []string {
	return NewBoard(s).Rows()
}

// DefaultMessages are used for any message a puzzle leaves blank.
// Templates may reference {vehicle}, {direction} and {moves}.
func DefaultMessages() Messages {
	return Messages{
		Welcome:  "Slide the vehicles to clear a path for the target car.",
		Moved:    "Moved {vehicle} {direction}.",
		CantMove: "Can't move there!",
		Solved:   "Solved in {moves} moves!",
	}
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Welcome == "" {
		m.Welcome = d.Welcome
	}
	if m.Moved == "" {
		m.Moved = d.Moved
	}
	if m.CantMove == "" {
		m.CantMove = d.CantMove
	}
	if m.Solved == "" {
		m.Solved = d.Solved
	}
	return m
}

func (m Messages) render(tmpl string, mv Move, moves int) string {
	return strings.NewReplacer(
		"{vehicle}", mv.Vehicle,
		"{direction}", string(mv.Direction),
		"{moves}", strconv.Itoa(moves),
	).Replace(tmpl)
}
