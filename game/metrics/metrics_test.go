package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

func TestObserveSolve(t *testing.T) {
	solved := testutil.ToFloat64(SolvesTotal.WithLabelValues("solved", "test"))
	unsolvable := testutil.ToFloat64(SolvesTotal.WithLabelValues("unsolvable", "test"))

	ObserveSolve("test", &engine.Result{
		Outcome:  engine.Solved,
		Moves:    []engine.Move{{Vehicle: "r", Direction: engine.Right}},
		Expanded: 4,
		Duration: time.Millisecond,
	})
	ObserveSolve("test", &engine.Result{Outcome: engine.Unsolvable, Expanded: 9})
	ObserveSolve("test", nil)

	assert.Equal(t, solved+1, testutil.ToFloat64(SolvesTotal.WithLabelValues("solved", "test")))
	assert.Equal(t, unsolvable+1, testutil.ToFloat64(SolvesTotal.WithLabelValues("unsolvable", "test")))
}

func TestObserveMove(t *testing.T) {
	success := testutil.ToFloat64(MovesTotal.WithLabelValues("success"))
	blocked := testutil.ToFloat64(MovesTotal.WithLabelValues("blocked"))

	ObserveMove(true)
	ObserveMove(true)
	ObserveMove(false)

	assert.Equal(t, success+2, testutil.ToFloat64(MovesTotal.WithLabelValues("success")))
	assert.Equal(t, blocked+1, testutil.ToFloat64(MovesTotal.WithLabelValues("blocked")))
}
