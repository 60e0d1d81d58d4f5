package engine

import "fmt"

// Vehicle is one car or truck on the board. Row and Col locate its
// top-left cell; the remaining cells extend along Orientation.
// Vehicles are plain values: sliding one yields a new Vehicle.
type Vehicle struct {
	Name        string      `json:"name" yaml:"name"`
	Row         int         `json:"row" yaml:"row"`
	Col         int         `json:"col" yaml:"col"`
	Length      int         `json:"length" yaml:"length"`
	Orientation Orientation `json:"orientation" yaml:"orientation"`
}

// Position returns the vehicle's top-left cell
func (v Vehicle) Position() Position {
	return Position{Row: v.Row, Col: v.Col}
}

// Cells returns every cell the vehicle covers, top-left first
func (v Vehicle) Cells() []Position {
	cells := make([]Position, v.Length)
	for i := range cells {
		cells[i] = v.cell(i)
	}
	return cells
}

// Rear returns the top or left end cell
func (v Vehicle) Rear() Position {
	return v.cell(0)
}

// Front returns the bottom or right end cell
func (v Vehicle) Front() Position {
	return v.cell(v.Length - 1)
}

// Covers reports whether the vehicle occupies p
func (v Vehicle) Covers(p Position) bool {
	switch v.Orientation {
	case Horizontal:
		return p.Row == v.Row && p.Col >= v.Col && p.Col < v.Col+v.Length
	case Vertical:
		return p.Col == v.Col && p.Row >= v.Row && p.Row < v.Row+v.Length
	}
	return false
}

// Shift returns a copy moved delta cells along the vehicle's own axis
func (v Vehicle) Shift(delta int) Vehicle {
	if v.Orientation == Horizontal {
		v.Col += delta
	} else {
		v.Row += delta
	}
	return v
}

// Fits reports whether the whole footprint lies on a size x size board
func (v Vehicle) Fits(size int) bool {
	if v.Row < 0 || v.Col < 0 {
		return false
	}
	end := v.Front()
	return end.Row < size && end.Col < size
}

// String renders the vehicle as name(row,col,length,orientation)
func (v Vehicle) String() string {
	return fmt.Sprintf("%s(%d,%d,%d,%s)", v.Name, v.Row, v.Col, v.Length, v.Orientation)
}

func (v Vehicle) validate(size int) error {
	if v.Name == "" {
		return fmt.Errorf("%w: vehicle name is required", ErrInvalidPuzzle)
	}
	if v.Length < MinVehicleLength || v.Length > MaxVehicleLength {
		return fmt.Errorf("%w: vehicle %q length must be %d or %d, got %d",
			ErrInvalidPuzzle, v.Name, MinVehicleLength, MaxVehicleLength, v.Length)
	}
	if v.Orientation != Horizontal && v.Orientation != Vertical {
		return fmt.Errorf("%w: vehicle %q has unknown orientation %d", ErrInvalidPuzzle, v.Name, int(v.Orientation))
	}
	if !v.Fits(size) {
		return fmt.Errorf("%w: vehicle %s does not fit on a %dx%d board", ErrInvalidPuzzle, v, size, size)
	}
	return nil
}

func (v Vehicle) cell(i int) Position {
	if v.Orientation == Horizontal {
		return Position{Row: v.Row, Col: v.Col + i}
	}
	return Position{Row: v.Row + i, Col: v.Col}
}
