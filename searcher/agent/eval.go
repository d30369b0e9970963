package agent

import (
	"mcrave/experiments/metrics"
	"mcrave/searcher"

	"github.com/pkg/errors"
)

type Option func(a *EvaluationAgent)

// WithPersistentTable keeps one RAVE table for the agent's lifetime instead of
// a fresh one per decision. With resetEachDecision the table is reset before
// every search, otherwise only by ResetRAVE.
func WithPersistentTable(resetEachDecision bool) Option {
	return func(a *EvaluationAgent) {
		a.persistent = true
		a.resetEachDecision = resetEachDecision
	}
}

// EvaluationAgent plays the most visited action of an MC-RAVE search.
type EvaluationAgent struct {
	seat              int
	mcts              *searcher.MCTS
	table             *searcher.RaveTable
	persistent        bool
	resetEachDecision bool
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(seat int, mcts *searcher.MCTS, options ...Option) *EvaluationAgent {
	a := &EvaluationAgent{seat: seat, mcts: mcts}
	for _, option := range options {
		option(a)
	}
	if a.persistent {
		a.table = searcher.NewRaveTable(mcts.Params().Rule)
	}
	return a
}

func (a *EvaluationAgent) Seat() int {
	return a.seat
}

// ResetRAVE clears the agent's persistent table. It does nothing for agents
// that start every decision with a fresh table.
func (a *EvaluationAgent) ResetRAVE() {
	if a.table != nil {
		a.table.Reset()
	}
}

func (a *EvaluationAgent) FindMove(state searcher.State) (searcher.Action, metrics.SearchMetric, error) {
	if seat := state.CurrentSeat(); seat != a.seat {
		return nil, metrics.SearchMetric{}, errors.Errorf("agent for seat %d asked to move for seat %d", a.seat, seat)
	}
	if !a.persistent {
		return a.mcts.Search(state, a.seat)
	}
	if a.resetEachDecision {
		a.table.Reset()
	}
	return a.mcts.SearchWithTable(state, a.seat, a.table)
}
