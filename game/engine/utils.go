package engine

// DistanceToGoal counts how many cells the target still has to travel
// along its axis to reach goal
func DistanceToGoal(s State, goal Vehicle) int {
	v, ok := s.Vehicle(goal.Name)
	if !ok {
		return -1
	}
	return abs(v.Row-goal.Row) + abs(v.Col-goal.Col)
}

// BlockingVehicles returns the vehicles standing between the target and
// its goal, nearest first
func BlockingVehicles(s State, goal Vehicle) []string {
	v, ok := s.Vehicle(goal.Name)
	if !ok {
		return nil
	}
	b := NewBoard(s)

	var blockers []string
	seen := make(map[string]bool)
	step := 1
	if (v.Orientation == Horizontal && goal.Col < v.Col) || (v.Orientation == Vertical && goal.Row < v.Row) {
		step = -1
	}
	for i := 1; i <= DistanceToGoal(s, goal); i++ {
		var p Position
		if step > 0 {
			p = v.Front()
		} else {
			p = v.Rear()
		}
		if v.Orientation == Horizontal {
			p.Col += step * i
		} else {
			p.Row += step * i
		}
		if name := b.At(p.Row, p.Col); name != EmptyCell && !seen[name] {
			seen[name] = true
			blockers = append(blockers, name)
		}
	}
	return blockers
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
