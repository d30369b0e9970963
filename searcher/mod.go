package searcher

import "math"

// Action is a move a seat can take. Implementations must be comparable:
// actions are used as keys of the RAVE table and of node children.
type Action interface {
	String() string
}

// ActionCopier is implemented by actions that carry mutable data. The search
// copies such an action before applying it so the one stored in the tree never
// changes.
type ActionCopier interface {
	CopyAction() Action
}

// State is a game state. The search never shares a state between two nodes:
// every node and every rollout works on its own Copy.
type State interface {
	Copy() State
	CurrentSeat() int
	IsTerminal() bool
}

// ActionSpace selects how a forward model enumerates actions, for games that
// offer more than one action representation.
type ActionSpace int

const ActionSpaceDefault ActionSpace = 0

// ForwardModel is the rules engine. LegalActions must be deterministic for a
// fixed state and mode; Apply mutates the given state in place.
type ForwardModel interface {
	LegalActions(state State, mode ActionSpace) []Action
	Apply(state State, action Action)
}

// Evaluator scores a terminal or cutoff state from a seat's perspective.
// Evaluate must return a finite number; Bounds reports the sentinel values
// used for normalisation elsewhere.
type Evaluator interface {
	Evaluate(state State, seat int) float64
	Bounds() (min, max float64)
}

// EvaluateFunc adapts a plain function to an unbounded Evaluator.
type EvaluateFunc func(state State, seat int) float64

func (f EvaluateFunc) Evaluate(state State, seat int) float64 {
	return f(state, seat)
}

func (f EvaluateFunc) Bounds() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

// noise perturbs value by a factor proportional to epsilon so that exact ties
// are broken by the random draw r in [0, 1).
func noise(value, epsilon, r float64) float64 {
	return (value + epsilon) * (1.0 + epsilon*(r-0.5))
}
