package searcher

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type BudgetKind int

const (
	BudgetIterations BudgetKind = iota
	BudgetTime                  // Amount in milliseconds
	BudgetFMCalls               // Amount of forward model Apply calls
)

func (k BudgetKind) String() string {
	switch k {
	case BudgetIterations:
		return "iterations"
	case BudgetTime:
		return "time"
	case BudgetFMCalls:
		return "fm_calls"
	default:
		return "unknown"
	}
}

func ParseBudgetKind(s string) (BudgetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "iterations":
		return BudgetIterations, nil
	case "time":
		return BudgetTime, nil
	case "fm_calls", "fmcalls":
		return BudgetFMCalls, nil
	default:
		return BudgetIterations, errors.Wrapf(ErrInvalidParams, "unknown budget kind %q", s)
	}
}

// Budget bounds a single search. Exactly one kind is active.
type Budget struct {
	Kind         BudgetKind
	Amount       int
	SafetyMargin time.Duration // Time budgets only
}

const DefaultSafetyMargin = 10 * time.Millisecond

func IterationBudget(iterations int) Budget {
	return Budget{Kind: BudgetIterations, Amount: iterations, SafetyMargin: DefaultSafetyMargin}
}

func TimeBudget(d time.Duration) Budget {
	return Budget{Kind: BudgetTime, Amount: int(d.Milliseconds()), SafetyMargin: DefaultSafetyMargin}
}

func FMCallBudget(calls int) Budget {
	return Budget{Kind: BudgetFMCalls, Amount: calls, SafetyMargin: DefaultSafetyMargin}
}

type Phase int

const (
	PhaseRunning Phase = iota
	PhaseCheckBudget
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseCheckBudget:
		return "check_budget"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type StopReason int

const (
	StopNone StopReason = iota
	StopIterations
	StopTime
	StopFMCalls
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopIterations:
		return "iterations"
	case StopTime:
		return "time"
	case StopFMCalls:
		return "fm_calls"
	default:
		return "unknown"
	}
}

// Clock returns the current time. Tests substitute a fake one.
type Clock func() time.Time

type budgetTracker struct {
	budget     Budget
	now        Clock
	start      time.Time
	phase      Phase
	reason     StopReason
	iterations int
	fmCalls    int
}

func newBudgetTracker(budget Budget, now Clock) *budgetTracker {
	return &budgetTracker{
		budget: budget,
		now:    now,
		start:  now(),
		phase:  PhaseRunning,
	}
}

func (b *budgetTracker) addFMCall() {
	b.fmCalls++
}

// completeIteration records a finished iteration and runs the budget check.
// It returns the phase the search is in afterwards.
func (b *budgetTracker) completeIteration() Phase {
	if b.phase == PhaseStopped {
		return b.phase
	}
	b.iterations++
	b.phase = PhaseCheckBudget
	if reason := b.exhausted(); reason != StopNone {
		b.reason = reason
		b.phase = PhaseStopped
		return b.phase
	}
	b.phase = PhaseRunning
	return b.phase
}

func (b *budgetTracker) exhausted() StopReason {
	switch b.budget.Kind {
	case BudgetTime:
		elapsed := b.now().Sub(b.start)
		remaining := time.Duration(b.budget.Amount)*time.Millisecond - elapsed
		average := elapsed / time.Duration(b.iterations)
		if remaining <= 2*average || remaining <= b.budget.SafetyMargin {
			return StopTime
		}
	case BudgetFMCalls:
		if b.fmCalls > b.budget.Amount {
			return StopFMCalls
		}
	default:
		if b.iterations >= b.budget.Amount {
			return StopIterations
		}
	}
	return StopNone
}
