package searcher

import (
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Params are the tunable settings of one MCTS instance.
type Params struct {
	K              float64 // Exploration constant
	RaveWeight     float64 // Alpha, weight of the RAVE blend in [0, 1]
	Rule           UpdateRule
	Epsilon        float64
	RolloutLength  int
	MaxTreeDepth   int
	DelayThreshold int
	ActionSpace    ActionSpace
	Budget         Budget
}

func DefaultParams() Params {
	return Params{
		K:              DefaultExploration,
		RaveWeight:     DefaultRaveWeight,
		Rule:           SimpleMean,
		Epsilon:        DefaultEpsilon,
		RolloutLength:  DefaultRolloutLength,
		MaxTreeDepth:   DefaultMaxTreeDepth,
		DelayThreshold: DefaultDelayThreshold,
		ActionSpace:    ActionSpaceDefault,
		Budget:         IterationBudget(1000),
	}
}

// Validate reports every setting that would make a search misbehave.
func (p Params) Validate() error {
	var result error
	invalid := func(format string, args ...any) {
		result = multierror.Append(result, errors.Wrapf(ErrInvalidParams, format, args...))
	}

	if p.K < 0 || math.IsNaN(p.K) || math.IsInf(p.K, 0) {
		invalid("exploration constant must be finite and non-negative, got %v", p.K)
	}
	if !(p.RaveWeight >= 0 && p.RaveWeight <= 1) {
		invalid("rave weight must be in [0, 1], got %v", p.RaveWeight)
	}
	if p.Rule != SimpleMean && p.Rule != DecayedMean {
		invalid("unknown update rule %d", p.Rule)
	}
	if !(p.Epsilon > 0) || math.IsInf(p.Epsilon, 0) {
		invalid("epsilon must be finite and positive, got %v", p.Epsilon)
	}
	if p.RolloutLength < 0 {
		invalid("rollout length cannot be negative, got %d", p.RolloutLength)
	}
	if p.MaxTreeDepth < 1 {
		invalid("max tree depth must be at least 1, got %d", p.MaxTreeDepth)
	}
	if p.DelayThreshold < 0 {
		invalid("delay threshold cannot be negative, got %d", p.DelayThreshold)
	}
	switch p.Budget.Kind {
	case BudgetIterations, BudgetTime, BudgetFMCalls:
	default:
		invalid("unknown budget kind %d", p.Budget.Kind)
	}
	if p.Budget.Amount <= 0 {
		invalid("%s budget must be positive, got %d", p.Budget.Kind, p.Budget.Amount)
	}
	if p.Budget.SafetyMargin < 0 {
		invalid("safety margin cannot be negative, got %s", p.Budget.SafetyMargin)
	}
	return result
}
