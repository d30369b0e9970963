package searcher

import "golang.org/x/exp/rand"

type node struct {
	state    State
	parent   *node
	actions  []Action
	children []*node // children[i] is the node reached by actions[i], nil until expanded
	visits   int
	value    float64
	depth    int
	seat     int
}

func newNode(state State, parent *node, fm ForwardModel, mode ActionSpace) *node {
	n := &node{
		state:  state.Copy(),
		parent: parent,
	}
	n.seat = n.state.CurrentSeat()
	if parent != nil {
		n.depth = parent.depth + 1
	}
	if !n.state.IsTerminal() {
		n.actions = dedupe(fm.LegalActions(n.state, mode))
	}
	n.children = make([]*node, len(n.actions))
	return n
}

// dedupe keeps the first occurrence of every action, preserving order.
func dedupe(actions []Action) []Action {
	seen := make(map[Action]struct{}, len(actions))
	unique := make([]Action, 0, len(actions))
	for _, a := range actions {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

func (n *node) unexpanded() []int {
	var indices []int
	for i, child := range n.children {
		if child == nil {
			indices = append(indices, i)
		}
	}
	return indices
}

func (n *node) isFullyExpanded() bool {
	for _, child := range n.children {
		if child == nil {
			return false
		}
	}
	return true
}

// bestAction returns the most visited expanded child's action, breaking ties
// with noise drawn from rng.
func (n *node) bestAction(rng *rand.Rand, epsilon float64) (Action, error) {
	var best Action
	bestValue := negativeMax
	found := false
	for i, child := range n.children {
		if child == nil {
			continue
		}
		v := noise(float64(child.visits), epsilon, rng.Float64())
		if !found || v > bestValue {
			best, bestValue, found = n.actions[i], v, true
		}
	}
	if !found {
		return nil, contractViolation("root has no expanded children (%d actions)", len(n.actions))
	}
	return best, nil
}

