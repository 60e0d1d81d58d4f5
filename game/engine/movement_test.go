package engine

import (
	"errors"
	"slices"
	"testing"
)

func TestMoves_CanonicalOrder(t *testing.T) {
	// a is vertical with room both ways, r is horizontal with room both ways
	s := mustState(t, 6, hv("r", 2, 1, 2), vv("a", 1, 4, 2))

	want := []Move{
		{Vehicle: "a", Direction: Down},
		{Vehicle: "a", Direction: Up},
		{Vehicle: "r", Direction: Right},
		{Vehicle: "r", Direction: Left},
	}
	if got := s.Moves(); !slices.Equal(got, want) {
		t.Errorf("Moves() = %v, want %v", got, want)
	}
}

func TestMoves_Blocked(t *testing.T) {
	tests := []struct {
		name     string
		vehicles []Vehicle
		want     []Move
	}{
		{
			name:     "left edge and blocker on the right",
			vehicles: []Vehicle{hv("r", 2, 0, 2), vv("a", 0, 2, 3), vv("b", 3, 2, 3)},
			want:     nil,
		},
		{
			name:     "right edge",
			vehicles: []Vehicle{hv("r", 2, 4, 2)},
			want:     []Move{{Vehicle: "r", Direction: Left}},
		},
		{
			name:     "bottom edge",
			vehicles: []Vehicle{vv("a", 3, 0, 3)},
			want:     []Move{{Vehicle: "a", Direction: Up}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustState(t, 6, tt.vehicles...)
			got := s.Moves()
			if len(got) != len(tt.want) || (len(got) > 0 && !slices.Equal(got, tt.want)) {
				t.Errorf("Moves() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuccessors_MatchMoves(t *testing.T) {
	s := mustState(t, 6, hv("r", 2, 1, 2), vv("a", 1, 4, 2), hv("b", 5, 0, 3))

	moves := s.Moves()
	i := 0
	for next := range s.Successors() {
		if i >= len(moves) {
			t.Fatalf("Successors yielded more states than Moves (%d)", len(moves))
		}
		applied, err := s.Apply(moves[i])
		if err != nil {
			t.Fatalf("Apply(%v) failed: %v", moves[i], err)
		}
		if !next.Equal(applied) {
			t.Errorf("Successor %d differs from applying %v", i, moves[i])
		}
		i++
	}
	if i != len(moves) {
		t.Errorf("Expected %d successors, got %d", len(moves), i)
	}
}

func TestSuccessors_Restartable(t *testing.T) {
	s := mustState(t, 6, hv("r", 2, 1, 2), vv("a", 1, 4, 2))
	seq := s.Successors()

	var first, second []string
	for next := range seq {
		first = append(first, next.Key())
	}
	for next := range seq {
		second = append(second, next.Key())
	}
	if !slices.Equal(first, second) {
		t.Error("Expected iterating twice to yield the same successors")
	}

	// Early break must not disturb later iterations
	for range seq {
		break
	}
	count := 0
	for range seq {
		count++
	}
	if count != len(first) {
		t.Errorf("Expected %d successors after early break, got %d", len(first), count)
	}
}

func TestSuccessors_Invariants(t *testing.T) {
	start := mustState(t, 6,
		hv("r", 2, 1, 2), vv("a", 0, 0, 3), vv("b", 1, 3, 2), hv("c", 4, 2, 3), vv("d", 3, 5, 3), hv("e", 0, 1, 2))

	// Walk a few BFS layers and check every generated successor
	frontier := []State{start}
	seen := map[string]bool{start.Key(): true}
	for depth := 0; depth < 4; depth++ {
		var next []State
		for _, s := range frontier {
			for succ := range s.Successors() {
				checkSuccessor(t, s, succ)
				if !seen[succ.Key()] {
					seen[succ.Key()] = true
					next = append(next, succ)
				}
			}
		}
		frontier = next
	}
	if len(seen) < 10 {
		t.Errorf("Expected the walk to reach a handful of states, got %d", len(seen))
	}
}

func checkSuccessor(t *testing.T, parent, child State) {
	t.Helper()

	// Rebuilding through NewState re-checks bounds and overlap
	if _, err := NewState(child.Size(), child.Vehicles()); err != nil {
		t.Fatalf("Successor is not a valid state: %v\n%s", err, child)
	}

	moves, err := FormatMoves([]State{parent, child})
	if err != nil {
		t.Fatalf("Successor is not one slide away: %v", err)
	}
	before, _ := parent.Vehicle(moves[0].Vehicle)
	after, _ := child.Vehicle(moves[0].Vehicle)
	if before.Length != after.Length || before.Orientation != after.Orientation {
		t.Errorf("Vehicle shape changed from %v to %v", before, after)
	}
}

func TestApply(t *testing.T) {
	s := mustState(t, 6, hv("r", 2, 1, 2), vv("a", 2, 3, 2))

	tests := []struct {
		name    string
		move    Move
		wantErr bool
		want    Vehicle
	}{
		{"slide left", Move{"r", Left}, false, hv("r", 2, 0, 2)},
		{"blocked right", Move{"r", Right}, true, Vehicle{}},
		{"wrong axis", Move{"r", Up}, true, Vehicle{}},
		{"unknown vehicle", Move{"z", Left}, true, Vehicle{}},
		{"unknown direction", Move{"r", Direction("Sideways")}, true, Vehicle{}},
		{"vertical down", Move{"a", Down}, false, vv("a", 3, 3, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := s.Apply(tt.move)
			if tt.wantErr {
				if !errors.Is(err, ErrIllegalMove) {
					t.Fatalf("Expected ErrIllegalMove, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !next.Contains(tt.want) {
				t.Errorf("Expected %v in resulting state, got %v", tt.want, next.Vehicles())
			}
		})
	}

	if got, _ := s.Vehicle("r"); got != hv("r", 2, 1, 2) {
		t.Errorf("Expected Apply to leave the original state untouched, got %v", got)
	}
}

func TestReplay(t *testing.T) {
	s := mustState(t, 6, hv("r", 2, 0, 2))

	path, err := Replay(s, []Move{{"r", Right}, {"r", Right}})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("Expected 3 states, got %d", len(path))
	}
	if !path[2].Contains(hv("r", 2, 2, 2)) {
		t.Errorf("Unexpected final state %v", path[2].Vehicles())
	}

	if _, err := Replay(s, []Move{{"r", Left}}); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("Expected ErrIllegalMove, got %v", err)
	}
}
