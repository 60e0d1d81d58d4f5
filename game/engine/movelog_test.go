package engine

import (
	"errors"
	"slices"
	"testing"
)

func TestFormatMoves(t *testing.T) {
	s0 := mustState(t, 6, hv("r", 2, 2, 2), vv("b", 2, 4, 2))
	s1 := mustState(t, 6, hv("r", 2, 2, 2), vv("b", 3, 4, 2))
	s2 := mustState(t, 6, hv("r", 2, 3, 2), vv("b", 3, 4, 2))

	moves, err := FormatMoves([]State{s0, s1, s2})
	if err != nil {
		t.Fatalf("FormatMoves failed: %v", err)
	}
	want := []Move{{"b", Down}, {"r", Right}}
	if !slices.Equal(moves, want) {
		t.Errorf("FormatMoves = %v, want %v", moves, want)
	}
	if got := MoveLog(moves); got != "b-Down\nr-Right" {
		t.Errorf("MoveLog = %q", got)
	}
}

func TestFormatMoves_Directions(t *testing.T) {
	tests := []struct {
		from, to Vehicle
		want     Direction
	}{
		{hv("r", 2, 2, 2), hv("r", 2, 3, 2), Right},
		{hv("r", 2, 2, 2), hv("r", 2, 1, 2), Left},
		{vv("a", 2, 2, 3), vv("a", 3, 2, 3), Down},
		{vv("a", 2, 2, 3), vv("a", 1, 2, 3), Up},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			moves, err := FormatMoves([]State{mustState(t, 6, tt.from), mustState(t, 6, tt.to)})
			if err != nil {
				t.Fatalf("FormatMoves failed: %v", err)
			}
			if moves[0].Direction != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, moves[0].Direction)
			}
		})
	}
}

func TestFormatMoves_Inconsistent(t *testing.T) {
	base := mustState(t, 6, hv("r", 2, 1, 2), vv("a", 0, 4, 2))

	tests := []struct {
		name string
		next State
	}{
		{"nothing moved", base},
		{"two vehicles moved", mustState(t, 6, hv("r", 2, 2, 2), vv("a", 1, 4, 2))},
		{"jump of two cells", mustState(t, 6, hv("r", 2, 3, 2), vv("a", 0, 4, 2))},
		{"different vehicle set", mustState(t, 6, hv("r", 2, 2, 2))},
		{"renamed vehicle", mustState(t, 6, hv("r", 2, 1, 2), vv("z", 0, 4, 2))},
		{"different board", mustState(t, 7, hv("r", 2, 2, 2), vv("a", 0, 4, 2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FormatMoves([]State{base, tt.next})
			if !errors.Is(err, ErrInconsistentPath) {
				t.Errorf("Expected ErrInconsistentPath, got %v", err)
			}
		})
	}
}

func TestFormatMoves_ShortPaths(t *testing.T) {
	if moves, err := FormatMoves(nil); err != nil || len(moves) != 0 {
		t.Errorf("Expected no moves for empty path, got %v, %v", moves, err)
	}
	s := mustState(t, 6, hv("r", 2, 1, 2))
	if moves, err := FormatMoves([]State{s}); err != nil || len(moves) != 0 {
		t.Errorf("Expected no moves for single state, got %v, %v", moves, err)
	}
}

func TestMoveString(t *testing.T) {
	if got := (Move{Vehicle: "r", Direction: Right}).String(); got != "r-Right" {
		t.Errorf("Expected r-Right, got %q", got)
	}
}
