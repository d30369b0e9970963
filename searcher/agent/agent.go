package agent

import (
	"mcrave/experiments/metrics"
	"mcrave/searcher"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type Agent interface {
	// FindMove returns the action to play and performance metrics (if collected) from the search
	FindMove(state searcher.State) (searcher.Action, metrics.SearchMetric, error)
}

type randomAgent struct {
	fm   searcher.ForwardModel
	mode searcher.ActionSpace
	rng  *rand.Rand
}

// NewRandomAgent returns a baseline agent that plays a uniformly random legal action.
func NewRandomAgent(fm searcher.ForwardModel, mode searcher.ActionSpace, seed uint64) Agent {
	return &randomAgent{fm: fm, mode: mode, rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(state searcher.State) (searcher.Action, metrics.SearchMetric, error) {
	actions := a.fm.LegalActions(state, a.mode)
	if len(actions) == 0 {
		return nil, metrics.SearchMetric{}, errors.Wrapf(searcher.ErrContractViolation, "no legal actions for seat %d", state.CurrentSeat())
	}
	return actions[a.rng.Intn(len(actions))], metrics.SearchMetric{}, nil
}
