// Package metrics exposes Prometheus collectors for solver and play activity.
// Collectors register with the default registry on import; serve them with
// promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

var (
	// SolvesTotal counts finished searches by outcome and by entry point
	SolvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rushhour_solves_total",
		Help: "Total searches by outcome and source",
	}, []string{"outcome", "source"})

	// SolveDuration tracks wall-clock search time
	SolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rushhour_solve_duration_seconds",
		Help:    "Search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"outcome"})

	// NodesExpanded tracks how many states each search expanded
	NodesExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rushhour_nodes_expanded",
		Help:    "States expanded per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	// SolutionLength tracks the number of moves in found solutions
	SolutionLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rushhour_solution_moves",
		Help:    "Moves in each shortest solution found",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 30, 40, 50, 60, 80},
	})

	// MovesTotal counts interactive moves by result
	MovesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rushhour_moves_total",
		Help: "Interactive moves by result",
	}, []string{"result"})

	// ActiveSessions reports the number of live play sessions
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rushhour_active_sessions",
		Help: "Number of live play sessions",
	})
)

// ObserveSolve records one finished search
func ObserveSolve(source string, res *engine.Result) {
	if res == nil {
		return
	}
	outcome := res.Outcome.String()
	SolvesTotal.WithLabelValues(outcome, source).Inc()
	SolveDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())
	NodesExpanded.Observe(float64(res.Expanded))
	if res.Outcome == engine.Solved {
		SolutionLength.Observe(float64(res.Steps()))
	}
}

// ObserveMove records one interactive move attempt
func ObserveMove(success bool) {
	if success {
		MovesTotal.WithLabelValues("success").Inc()
		return
	}
	MovesTotal.WithLabelValues("blocked").Inc()
}
