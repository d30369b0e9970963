package searcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type mockAction struct {
	id int
}

func (a mockAction) String() string {
	return fmt.Sprintf("action-%d", a.id)
}

type mockState struct {
	seat    int
	seats   int
	horizon int // Terminal once this many actions were played
	played  []Action
}

func (s *mockState) Copy() State {
	return &mockState{
		seat:    s.seat,
		seats:   s.seats,
		horizon: s.horizon,
		played:  append([]Action(nil), s.played...),
	}
}

func (s *mockState) CurrentSeat() int {
	return s.seat
}

func (s *mockState) IsTerminal() bool {
	return len(s.played) >= s.horizon
}

// mockRules offers the same actions at every live state and passes the turn
// to the next seat after every action.
type mockRules struct {
	actions []Action
	calls   int
}

func newMockRules(n int) *mockRules {
	actions := make([]Action, n)
	for i := range actions {
		actions[i] = mockAction{id: i}
	}
	return &mockRules{actions: actions}
}

func (r *mockRules) LegalActions(state State, mode ActionSpace) []Action {
	if state.IsTerminal() {
		return nil
	}
	return r.actions
}

func (r *mockRules) Apply(state State, action Action) {
	s := state.(*mockState)
	s.played = append(s.played, action)
	if s.seats > 0 {
		s.seat = (s.seat + 1) % s.seats
	}
	r.calls++
}

// rewardFirstAction scores 1 when the searching seat opened with action 0.
func rewardFirstAction(state State, seat int) float64 {
	s := state.(*mockState)
	if len(s.played) > 0 && s.played[0] == (mockAction{id: 0}) {
		return 1
	}
	return 0
}

func TestNewNode(t *testing.T) {
	t.Run("creating a root node from a live state", func(t *testing.T) {
		rules := newMockRules(3)
		state := &mockState{seat: 1, seats: 2, horizon: 5}

		n := newNode(state, nil, rules, ActionSpaceDefault)

		require.Equal(t, rules.actions, n.actions, "Node should list every legal action in order")
		require.Len(t, n.children, 3, "Node should reserve a slot per action")
		require.Equal(t, []int{0, 1, 2}, n.unexpanded(), "Every action should start unexpanded")
		require.Equal(t, 1, n.seat, "Node should cache the acting seat")
		require.Equal(t, 0, n.depth, "Root should be at depth 0")
		require.Zero(t, n.visits)
		require.Zero(t, n.value)
	})

	t.Run("node owns a copy of the state", func(t *testing.T) {
		state := &mockState{seats: 2, horizon: 5}

		n := newNode(state, nil, newMockRules(2), ActionSpaceDefault)
		state.played = append(state.played, mockAction{id: 9})

		require.Empty(t, n.state.(*mockState).played, "Mutating the caller's state should not leak into the node")
	})

	t.Run("duplicate legal actions are collapsed", func(t *testing.T) {
		rules := &mockRules{actions: []Action{mockAction{id: 2}, mockAction{id: 1}, mockAction{id: 2}}}

		n := newNode(&mockState{horizon: 1}, nil, rules, ActionSpaceDefault)

		require.Equal(t, []Action{mockAction{id: 2}, mockAction{id: 1}}, n.actions)
	})

	t.Run("terminal state has no actions", func(t *testing.T) {
		n := newNode(&mockState{horizon: 0}, nil, newMockRules(3), ActionSpaceDefault)

		require.Empty(t, n.actions)
		require.True(t, n.isFullyExpanded())
	})

	t.Run("child depth is one more than its parent", func(t *testing.T) {
		rules := newMockRules(2)
		parent := newNode(&mockState{horizon: 5}, nil, rules, ActionSpaceDefault)

		child := newNode(&mockState{horizon: 5}, parent, rules, ActionSpaceDefault)

		require.Equal(t, 1, child.depth)
		require.Same(t, parent, child.parent)
	})
}

func TestBestAction(t *testing.T) {
	rules := newMockRules(3)

	t.Run("picks the most visited expanded child", func(t *testing.T) {
		root := newNode(&mockState{horizon: 5}, nil, rules, ActionSpaceDefault)
		root.children[0] = &node{visits: 2}
		root.children[2] = &node{visits: 7}

		action, err := root.bestAction(rand.New(rand.NewSource(1)), DefaultEpsilon)

		require.NoError(t, err)
		require.Equal(t, mockAction{id: 2}, action)
	})

	t.Run("unexpanded actions are never chosen", func(t *testing.T) {
		root := newNode(&mockState{horizon: 5}, nil, rules, ActionSpaceDefault)
		root.children[1] = &node{visits: 0}

		action, err := root.bestAction(rand.New(rand.NewSource(1)), DefaultEpsilon)

		require.NoError(t, err)
		require.Equal(t, mockAction{id: 1}, action)
	})

	t.Run("root without expanded children violates the contract", func(t *testing.T) {
		root := newNode(&mockState{horizon: 5}, nil, rules, ActionSpaceDefault)

		_, err := root.bestAction(rand.New(rand.NewSource(1)), DefaultEpsilon)

		require.ErrorIs(t, err, ErrContractViolation)
	})

	t.Run("repeated selection on an unchanged tree is idempotent", func(t *testing.T) {
		root := newNode(&mockState{horizon: 5}, nil, rules, ActionSpaceDefault)
		root.children[0] = &node{visits: 4}
		root.children[1] = &node{visits: 4}
		root.children[2] = &node{visits: 1}

		first, err := root.bestAction(rand.New(rand.NewSource(42)), DefaultEpsilon)
		require.NoError(t, err)
		second, err := root.bestAction(rand.New(rand.NewSource(42)), DefaultEpsilon)
		require.NoError(t, err)

		require.Equal(t, first, second)
		require.NotEqual(t, mockAction{id: 2}, first, "Tie-break noise should never beat a visit gap")
	})
}
