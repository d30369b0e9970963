package searcher

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// UpdateRule selects how a RAVE table folds a rollout result into an action's value.
type UpdateRule int

const (
	// SimpleMean keeps the running mean of every result credited to the action.
	SimpleMean UpdateRule = iota
	// DecayedMean discounts the AMAF value as the crediting node gathers its own visits.
	DecayedMean
)

func (r UpdateRule) String() string {
	switch r {
	case SimpleMean:
		return "simple"
	case DecayedMean:
		return "decayed"
	default:
		return "unknown"
	}
}

func ParseUpdateRule(s string) (UpdateRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "simple":
		return SimpleMean, nil
	case "decayed":
		return DecayedMean, nil
	default:
		return SimpleMean, errors.Wrapf(ErrInvalidParams, "unknown update rule %q", s)
	}
}

// RaveTable holds the all-moves-as-first statistics shared by every node of a
// search tree. The rule is fixed when the table is created.
type RaveTable struct {
	rule     UpdateRule
	values   map[Action]float64
	counts   map[Action]float64
	promoted map[Action]float64 // Count snapshot taken when selection picks the action
}

func NewRaveTable(rule UpdateRule) *RaveTable {
	t := &RaveTable{rule: rule}
	t.Reset()
	return t
}

func (t *RaveTable) Rule() UpdateRule {
	return t.rule
}

// Reset forgets every statistic. Agents that keep one table across decisions
// call it whenever earlier evidence should no longer bias the search.
func (t *RaveTable) Reset() {
	t.values = make(map[Action]float64)
	t.counts = make(map[Action]float64)
	t.promoted = make(map[Action]float64)
}

// Len returns the number of actions with at least one credit.
func (t *RaveTable) Len() int {
	return len(t.counts)
}

func (t *RaveTable) Value(action Action, fallback float64) float64 {
	if v, ok := t.values[action]; ok {
		return v
	}
	return fallback
}

func (t *RaveTable) Count(action Action, fallback float64) float64 {
	if c, ok := t.counts[action]; ok {
		return c
	}
	return fallback
}

// blend is the mean estimate used by the selection policy, 0 for unseen actions.
func (t *RaveTable) blend(action Action, epsilon float64) float64 {
	return t.Value(action, 0) / (t.Count(action, 0) + epsilon)
}

// bias is the rollout weight of an action; unseen actions weigh 1/(1+epsilon).
func (t *RaveTable) bias(action Action, epsilon float64) float64 {
	return t.Value(action, 1) / (t.Count(action, 1) + epsilon)
}

// promote snapshots the current count of an action picked by the selection
// policy. It only matters to the decayed rule and only for credited actions.
func (t *RaveTable) promote(action Action) {
	if t.rule != DecayedMean {
		return
	}
	if c, ok := t.counts[action]; ok {
		t.promoted[action] = c
	}
}

// update credits result to action during the backup of a node with nodeVisits visits.
func (t *RaveTable) update(action Action, result float64, nodeVisits int) {
	oldCount := t.counts[action]
	count := oldCount + 1
	t.counts[action] = count

	switch t.rule {
	case DecayedMean:
		effective, ok := t.promoted[action]
		if !ok || effective <= 0 {
			effective = count
		}
		old := t.Value(action, 1)
		decay := math.Max(0, (effective-float64(nodeVisits))/effective)
		t.values[action] = (old + (result-old)/effective) * decay
	default:
		old := t.values[action]
		t.values[action] = (old*oldCount + result) / count
	}
}
