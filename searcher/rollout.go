package searcher

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// rollout plays from the leaf's state until the rollout length or the end of
// the game and returns the evaluation for the searching seat. Every action it
// plays is recorded in rolloutActions for the RAVE update.
func (s *search) rollout(leaf *node) (float64, error) {
	s.rolloutActions = s.rolloutActions[:0]
	state := leaf.state.Copy()

	for depth := 0; depth < s.params.RolloutLength && !state.IsTerminal(); depth++ {
		actions := s.fm.LegalActions(state, s.params.ActionSpace)
		if len(actions) == 0 {
			return 0, contractViolation("rollout state at depth %d has no legal actions for seat %d",
				leaf.depth+depth, state.CurrentSeat())
		}

		var action Action
		if s.budget.iterations < s.params.DelayThreshold {
			action = actions[s.rng.Intn(len(actions))]
		} else {
			action = s.biasedAction(actions)
		}
		s.rolloutActions = append(s.rolloutActions, action)
		s.apply(state, action)
	}

	if state.IsTerminal() {
		s.metrics.AddFullPlayout()
	}

	result := s.evaluator.Evaluate(state, s.seat)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, errors.Wrapf(ErrNonFiniteEvaluation, "seat %d scored %v at depth %d", s.seat, result, leaf.depth)
	}
	return result, nil
}

// biasedAction draws an action with probability proportional to its RAVE bias.
func (s *search) biasedAction(actions []Action) Action {
	weights := make([]float64, len(actions))
	for i, a := range actions {
		weights[i] = math.Max(0, s.table.bias(a, s.params.Epsilon))
	}
	return actions[weightedIndex(weights, s.rng.Float64())]
}

// weightedIndex maps the uniform draw r in [0, 1) to an index using the
// cumulative distribution of weights. Weights that do not sum to a positive
// finite total are treated as uniform. weights is overwritten.
func weightedIndex(weights []float64, r float64) int {
	total := floats.Sum(weights)
	if !(total > 0) || math.IsInf(total, 0) {
		i := int(r * float64(len(weights)))
		if i >= len(weights) {
			i = len(weights) - 1
		}
		return i
	}

	floats.Scale(1/total, weights)
	cumulative := make([]float64, len(weights))
	floats.CumSum(cumulative, weights)
	for i, p := range cumulative {
		if r <= p {
			return i
		}
	}
	return len(weights) - 1 // Rounding left the last bucket short of 1
}

func (s *search) apply(state State, action Action) {
	if c, ok := action.(ActionCopier); ok {
		action = c.CopyAction()
	}
	s.fm.Apply(state, action)
	s.budget.addFMCall()
	s.metrics.AddFMCall()
}
