package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Outcome is how a search ended
type Outcome int

const (
	Solved Outcome = iota
	Unsolvable
	BudgetExceeded
	Cancelled
)

// String returns the outcome's wire name
func (o Outcome) String() string {
	switch o {
	case Solved:
		return "solved"
	case Unsolvable:
		return "unsolvable"
	case BudgetExceeded:
		return "budget_exceeded"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, c := range []Outcome{Solved, Unsolvable, BudgetExceeded, Cancelled} {
		if c.String() == string(text) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result is the outcome of one Solve call. Path and Moves are only
// populated when Outcome is Solved.
type Result struct {
	Outcome  Outcome
	Path     []State
	Moves    []Move
	Expanded int
	Visited  int
	Duration time.Duration
}

// Steps returns the length of the solution
func (r *Result) Steps() int {
	return len(r.Moves)
}

// ProgressFunc receives the expanded-node count and current frontier size
type ProgressFunc func(expanded, frontier int)

// Option configures a Solver
type Option func(*Solver)

// WithMaxNodes stops the search with BudgetExceeded after n expansions.
// Zero or negative means unlimited.
func WithMaxNodes(n int) Option {
	return func(s *Solver) {
		s.maxNodes = n
	}
}

// WithProgress calls fn every `every` expansions
func WithProgress(fn ProgressFunc, every int) Option {
	return func(s *Solver) {
		if every <= 0 {
			every = 1
		}
		s.progress = fn
		s.every = every
	}
}

// Solver runs breadth-first search from an initial State to the first
// State containing the goal vehicle. The frontier and visited set belong
// to a single Solve call; only the expansion counter is shared, so
// Expanded may be polled from another goroutine while Solve runs.
type Solver struct {
	goal     Vehicle
	maxNodes int
	progress ProgressFunc
	every    int

	expanded atomic.Int64
}

// NewSolver creates a solver that searches for goal
func NewSolver(goal Vehicle, opts ...Option) *Solver {
	s := &Solver{goal: goal}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Goal returns the placement the solver searches for
func (s *Solver) Goal() Vehicle {
	return s.goal
}

// Expanded returns how many states the current or last search expanded
func (s *Solver) Expanded() int {
	return int(s.expanded.Load())
}

// node links a state to its predecessor on the search tree
type node struct {
	state  State
	key    string
	parent *node
}

// Solve searches for the shortest sequence of slides reaching the goal.
// Unsolvable, budget and cancellation outcomes are reported in the Result
// with a nil error; errors are reserved for malformed input and internal
// consistency faults.
func (s *Solver) Solve(ctx context.Context, initial State) (*Result, error) {
	if err := s.checkGoal(initial); err != nil {
		return nil, err
	}

	start := time.Now()
	s.expanded.Store(0)

	root := &node{state: initial, key: initial.Key()}
	queue := []*node{root}
	visited := make(map[string]struct{})

	finish := func(outcome Outcome) *Result {
		return &Result{
			Outcome:  outcome,
			Expanded: s.Expanded(),
			Visited:  len(visited),
			Duration: time.Since(start),
		}
	}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			return finish(Cancelled), nil
		}

		n := queue[0]
		queue[0] = nil
		queue = queue[1:]

		if _, seen := visited[n.key]; seen {
			continue
		}
		visited[n.key] = struct{}{}

		if n.state.Contains(s.goal) {
			res := finish(Solved)
			res.Path = n.path()
			moves, err := FormatMoves(res.Path)
			if err != nil {
				return nil, err
			}
			res.Moves = moves
			return res, nil
		}

		if s.maxNodes > 0 && s.Expanded() >= s.maxNodes {
			return finish(BudgetExceeded), nil
		}

		for next := range n.state.Successors() {
			key := next.Key()
			if _, seen := visited[key]; seen {
				continue
			}
			queue = append(queue, &node{state: next, key: key, parent: n})
		}

		expanded := s.expanded.Add(1)
		if s.progress != nil && expanded%int64(s.every) == 0 {
			s.progress(int(expanded), len(queue))
		}
	}

	return finish(Unsolvable), nil
}

// checkGoal rejects goals that no state reachable from initial could contain
func (s *Solver) checkGoal(initial State) error {
	if initial.IsZero() {
		return fmt.Errorf("%w: initial state is empty", ErrInvalidPuzzle)
	}
	target, ok := initial.Vehicle(s.goal.Name)
	if !ok {
		return fmt.Errorf("%w: goal vehicle %q is not on the board", ErrInvalidPuzzle, s.goal.Name)
	}
	if target.Length != s.goal.Length || target.Orientation != s.goal.Orientation {
		return fmt.Errorf("%w: goal %s does not match vehicle %s", ErrInvalidPuzzle, s.goal, target)
	}
	if !s.goal.Fits(initial.Size()) {
		return fmt.Errorf("%w: goal %s is off the board", ErrInvalidPuzzle, s.goal)
	}
	if (target.Orientation == Horizontal && target.Row != s.goal.Row) ||
		(target.Orientation == Vertical && target.Col != s.goal.Col) {
		return fmt.Errorf("%w: goal %s is not on the axis of vehicle %s", ErrInvalidPuzzle, s.goal, target)
	}
	return nil
}

// path walks back-pointers to rebuild the initial-to-n state sequence
func (n *node) path() []State {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	path := make([]State, depth)
	for p := n; p != nil; p = p.parent {
		depth--
		path[depth] = p.state
	}
	return path
}

// Solve is a convenience wrapper for a one-off search
func Solve(ctx context.Context, initial State, goal Vehicle, opts ...Option) (*Result, error) {
	return NewSolver(goal, opts...).Solve(ctx, initial)
}
