package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	e, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t)

	state := e.GetState()
	if state.PuzzleName != "Engine Test Puzzle" {
		t.Errorf("Expected puzzle name to be set, got %q", state.PuzzleName)
	}
	if state.Solved {
		t.Error("Expected puzzle not to be solved initially")
	}
	if state.Message != DefaultMessages().Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if len(state.Board) != 6 || state.Board[2] != "..rrb." {
		t.Errorf("Unexpected board %v", state.Board)
	}
	if !e.Current().Equal(e.GetPuzzle().Initial) {
		t.Error("Expected current state to equal the initial state")
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := createTestConfig()
	cfg.Vehicles = nil
	if _, err := NewEngine(cfg); err == nil {
		t.Error("Expected error for config without vehicles")
	}
	if _, err := NewEngineForPuzzle(nil); err == nil {
		t.Error("Expected error for nil puzzle")
	}
}

func TestEngine_MoveToSolve(t *testing.T) {
	e := newTestEngine(t)

	if e.Move("r", Right) {
		t.Fatal("Expected blocked move to fail")
	}
	if !strings.HasPrefix(e.GetState().Message, DefaultMessages().CantMove) {
		t.Errorf("Expected can't-move message, got %q", e.GetState().Message)
	}

	for _, m := range []Move{{"b", Down}, {"r", Right}} {
		if !e.Move(m.Vehicle, m.Direction) {
			t.Fatalf("Expected %v to succeed: %s", m, e.GetState().Message)
		}
	}
	if e.GetState().Message != "Moved r Right." {
		t.Errorf("Unexpected move message %q", e.GetState().Message)
	}
	if !e.Move("r", Right) {
		t.Fatal("Expected final slide to succeed")
	}
	if !e.IsSolved() {
		t.Fatal("Expected puzzle to be solved")
	}
	if e.GetState().Message != "Solved in 3 moves!" {
		t.Errorf("Unexpected solved message %q", e.GetState().Message)
	}

	if e.Move("r", Left) {
		t.Error("Expected moves after solving to be rejected")
	}
	if len(e.GetPossibleMoves()) != 0 || e.CanMove("r", Left) {
		t.Error("Expected no possible moves once solved")
	}
}

func TestEngine_CanMoveAndPossibleMoves(t *testing.T) {
	e := newTestEngine(t)

	if !e.CanMove("b", Down) || !e.CanMove("r", Left) {
		t.Error("Expected open moves to be allowed")
	}
	if e.CanMove("r", Right) || e.CanMove("b", Left) || e.CanMove("nope", Up) {
		t.Error("Expected blocked, wrong-axis and unknown moves to be rejected")
	}

	moves := e.GetPossibleMoves()
	if len(moves) != 3 {
		t.Errorf("Expected 3 possible moves, got %v", moves)
	}
}

func TestEngine_BulkMove(t *testing.T) {
	e := newTestEngine(t)

	results := e.BulkMove([]Move{{"b", Down}, {"r", Up}, {"r", Right}, {"r", Right}, {"b", Up}})
	want := []bool{true, false, true, true}
	if len(results) != len(want) {
		t.Fatalf("Expected bulk move to stop once solved, got %v", results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("Move %d: expected %v, got %v", i, want[i], results[i])
		}
	}
	if !e.IsSolved() {
		t.Error("Expected puzzle to be solved")
	}
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t)
	e.Move("b", Down)
	e.Move("r", Left)

	state := e.Reset()
	if !e.Current().Equal(e.GetPuzzle().Initial) {
		t.Error("Expected reset to restore the initial placement")
	}
	if state.TotalMoves != 2 || len(state.MoveHistory) != 2 {
		t.Errorf("Expected cumulative history to survive reset, got %d/%d", state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Errorf("Expected current segment to be cleared, got %d", state.CurrentMovesCount)
	}

	e.Move("b", Down)
	last := e.GetLastMove()
	if last == nil || last.MoveNumber != 3 || !last.Success {
		t.Errorf("Unexpected last move %+v", last)
	}
}

func TestEngine_History(t *testing.T) {
	e := newTestEngine(t)

	if e.GetLastMove() != nil {
		t.Error("Expected no last move initially")
	}

	e.Move("b", Down)
	e.Move("r", Right)
	e.Move("r", Up)

	history := e.GetMoveHistory()
	if len(history) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(history))
	}
	first := history[0]
	if first.Vehicle != "b" || first.FromPosition != (Position{2, 4}) || first.ToPosition != (Position{3, 4}) || !first.Success {
		t.Errorf("Unexpected first entry %+v", first)
	}
	if history[2].Success || history[2].FromPosition != history[2].ToPosition {
		t.Errorf("Expected failed entry to keep position, got %+v", history[2])
	}
	for i, entry := range history {
		if entry.MoveNumber != i+1 {
			t.Errorf("Entry %d has move number %d", i, entry.MoveNumber)
		}
	}
}

func TestEngine_SetStateRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	e.Move("b", Down)
	e.Move("r", Right)

	data, err := json.Marshal(e.GetState())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	fresh := newTestEngine(t)
	if err := fresh.SetState(&restored); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if !fresh.Current().Equal(e.Current()) {
		t.Error("Expected restored placement to match")
	}
	if fresh.GetState().TotalMoves != 2 {
		t.Errorf("Expected history to be restored, got %d", fresh.GetState().TotalMoves)
	}
	if !fresh.Move("r", Right) || !fresh.IsSolved() {
		t.Error("Expected restored engine to continue play")
	}
}

func TestEngine_SetStateRejectsMismatch(t *testing.T) {
	e := newTestEngine(t)

	if err := e.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}

	bad := &GameState{Size: 6, Vehicles: []Vehicle{hv("r", 2, 0, 2)}}
	if err := e.SetState(bad); err == nil {
		t.Error("Expected error for missing vehicle")
	}

	wrongShape := &GameState{Size: 6, Vehicles: []Vehicle{hv("r", 2, 0, 2), hv("b", 0, 0, 2)}}
	if err := e.SetState(wrongShape); err == nil {
		t.Error("Expected error for vehicle with a different orientation")
	}
}

func TestGameStateJSON(t *testing.T) {
	e := newTestEngine(t)
	data, err := json.Marshal(e.GetState())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"orientation":"H"`, `"orientation":"V"`, `"board":[`, `"solved":false`} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %s in %s", want, s)
		}
	}
}
