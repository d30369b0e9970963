package engine

import "mcrave/experiments/metrics"

const MaxTurns = 500

type Engine interface {
	// Run plays a game till it ends or a max number of turns is reached
	Run() (winners []int, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
