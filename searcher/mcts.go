package searcher

import (
	"math"
	"time"

	"mcrave/experiments/metrics"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

type Option func(mcts *MCTS)

// MCTS selects actions with Monte-Carlo tree search guided by RAVE statistics.
// An MCTS owns one random generator and is not safe for concurrent use.
type MCTS struct {
	params    Params
	fm        ForwardModel
	evaluator Evaluator
	seed      uint64
	seeded    bool
	rng       *rand.Rand
	metrics   metrics.Collector
	now       Clock
	reseed    bool
}

func WithExploration(k float64) Option {
	return func(m *MCTS) {
		m.params.K = k
	}
}

func WithRaveWeight(alpha float64) Option {
	return func(m *MCTS) {
		m.params.RaveWeight = alpha
	}
}

func WithUpdateRule(rule UpdateRule) Option {
	return func(m *MCTS) {
		m.params.Rule = rule
	}
}

func WithEpsilon(epsilon float64) Option {
	return func(m *MCTS) {
		m.params.Epsilon = epsilon
	}
}

func WithRolloutLength(length int) Option {
	return func(m *MCTS) {
		m.params.RolloutLength = length
	}
}

func WithMaxTreeDepth(depth int) Option {
	return func(m *MCTS) {
		m.params.MaxTreeDepth = depth
	}
}

func WithDelayThreshold(iterations int) Option {
	return func(m *MCTS) {
		m.params.DelayThreshold = iterations
	}
}

func WithBudget(budget Budget) Option {
	return func(m *MCTS) {
		m.params.Budget = budget
	}
}

func WithActionSpace(mode ActionSpace) Option {
	return func(m *MCTS) {
		m.params.ActionSpace = mode
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
		m.seeded = true
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithClock(clock Clock) Option {
	return func(m *MCTS) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithReseededExpansion picks the action to expand from a fresh entropy source
// on every expansion instead of the search's seeded generator. Decisions are no
// longer reproducible from the seed.
func WithReseededExpansion() Option {
	return func(m *MCTS) {
		m.reseed = true
	}
}

func NewMCTS(fm ForwardModel, evaluator Evaluator, options ...Option) (*MCTS, error) {
	if fm == nil || evaluator == nil {
		return nil, errors.Wrap(ErrInvalidParams, "forward model and evaluator are required")
	}

	m := &MCTS{ // Default values
		params:    DefaultParams(),
		fm:        fm,
		evaluator: evaluator,
		metrics:   metrics.NewDummyCollector(),
		now:       time.Now,
	}
	for _, option := range options {
		option(m)
	}
	if err := m.params.Validate(); err != nil {
		return nil, err
	}
	if !m.seeded {
		m.seed = frand.Uint64n(math.MaxUint64)
	}
	m.rng = rand.New(rand.NewSource(m.seed))
	return m, nil
}

func (m *MCTS) Params() Params {
	return m.params
}

func (m *MCTS) Seed() uint64 {
	return m.seed
}

// Search runs one budgeted search from state on behalf of seat with a fresh
// RAVE table and returns the most visited root action.
func (m *MCTS) Search(state State, seat int) (Action, metrics.SearchMetric, error) {
	return m.SearchWithTable(state, seat, NewRaveTable(m.params.Rule))
}

// SearchWithTable is Search reusing a caller-owned RAVE table. The table keeps
// the statistics of this search afterwards; it is never reset here.
func (m *MCTS) SearchWithTable(state State, seat int, table *RaveTable) (Action, metrics.SearchMetric, error) {
	if table == nil {
		table = NewRaveTable(m.params.Rule)
	}
	if table.Rule() != m.params.Rule {
		return nil, metrics.SearchMetric{}, errors.Wrapf(ErrInvalidParams,
			"rave table uses the %s rule but the search uses %s", table.Rule(), m.params.Rule)
	}
	if state.IsTerminal() {
		return nil, metrics.SearchMetric{}, contractViolation("cannot search from a terminal state")
	}

	s, err := m.newSearch(state, seat, table)
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	action, err := s.run()
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	return action, m.metrics.Complete(table.Len(), s.budget.reason.String()), nil
}

func (m *MCTS) newSearch(state State, seat int, table *RaveTable) (*search, error) {
	id := uuid.NewString()
	s := &search{
		MCTS:   m,
		seat:   seat,
		table:  table,
		budget: newBudgetTracker(m.params.Budget, m.now),
		log:    log.With().Str("search", id).Int("seat", seat).Logger(),
	}
	m.metrics.Start(id)
	s.root = newNode(state, nil, m.fm, m.params.ActionSpace)
	m.metrics.AddNode(s.root.depth)
	if len(s.root.actions) == 0 {
		return nil, contractViolation("root state for seat %d has no legal actions", seat)
	}
	return s, nil
}

// search is the state of one Search invocation.
type search struct {
	*MCTS
	seat           int
	root           *node
	table          *RaveTable
	budget         *budgetTracker
	rolloutActions []Action
	log            zerolog.Logger
}

// run iterates until the budget is spent and picks the root action.
func (s *search) run() (Action, error) {
	s.log.Debug().
		Int("actions", len(s.root.actions)).
		Str("budget", s.params.Budget.Kind.String()).
		Int("amount", s.params.Budget.Amount).
		Msg("starting search")

	for phase := PhaseRunning; phase != PhaseStopped; {
		if err := s.iterate(); err != nil {
			return nil, errors.WithMessagef(err, "iteration %d", s.budget.iterations+1)
		}
		phase = s.budget.completeIteration()
	}

	action, err := s.root.bestAction(s.rng, s.params.Epsilon)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("iterations", s.budget.iterations).
		Int("fm_calls", s.budget.fmCalls).
		Str("stop_reason", s.budget.reason.String()).
		Stringer("action", action).
		Msg("completed search")
	return action, nil
}

func (s *search) iterate() error {
	leaf, err := s.treePolicy()
	if err != nil {
		return err
	}
	result, err := s.rollout(leaf)
	if err != nil {
		return err
	}
	s.backup(leaf, result)
	s.metrics.AddIteration()
	return nil
}

// treePolicy descends from the root by the RAVE-UCB policy and expands the
// first node with an unexpanded action. It stops early at terminal nodes and
// at the maximum tree depth.
func (s *search) treePolicy() (*node, error) {
	cur := s.root
	for !cur.state.IsTerminal() && cur.depth < s.params.MaxTreeDepth {
		if len(cur.actions) == 0 {
			return nil, contractViolation("live node at depth %d has no legal actions for seat %d", cur.depth, cur.seat)
		}
		if !cur.isFullyExpanded() {
			return s.expand(cur)
		}
		next, err := s.selectChild(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (s *search) selectChild(n *node) (*node, error) {
	policy := newRaveUCB(s.params.K, s.params.RaveWeight, s.params.Epsilon, n.visits)
	ownTurn := n.seat == s.seat

	best := -1
	bestValue := negativeMax
	for i, child := range n.children {
		if child == nil {
			return nil, contractViolation("missing child for action %s at depth %d", n.actions[i], n.depth)
		}
		v := policy.score(child.value, child.visits, s.table.blend(n.actions[i], s.params.Epsilon), ownTurn)
		v = noise(v, s.params.Epsilon, s.rng.Float64())
		if best < 0 || v > bestValue {
			best, bestValue = i, v
		}
	}
	if best < 0 {
		return nil, contractViolation("no child selected at depth %d", n.depth)
	}

	s.table.promote(n.actions[best])
	return n.children[best], nil
}

func (s *search) expand(n *node) (*node, error) {
	open := n.unexpanded()
	if len(open) == 0 {
		return nil, contractViolation("node at depth %d has no unexpanded action", n.depth)
	}

	var pick int
	if s.reseed {
		pick = open[frand.Intn(len(open))]
	} else {
		pick = open[s.rng.Intn(len(open))]
	}

	state := n.state.Copy()
	s.apply(state, n.actions[pick])
	child := newNode(state, n, s.fm, s.params.ActionSpace)
	n.children[pick] = child
	s.metrics.AddNode(child.depth)
	return child, nil
}

// backup walks from the leaf to the root. Every node on the way counts as one
// RAVE credit for each action of the last rollout.
func (s *search) backup(leaf *node, result float64) {
	if len(s.rolloutActions) == 0 {
		s.metrics.AddEmptyRollout()
		s.log.Debug().Int("iteration", s.budget.iterations+1).Msg("no rollout actions to credit")
	}

	for n := leaf; n != nil; n = n.parent {
		n.visits++
		n.value += result
		for _, action := range s.rolloutActions {
			s.table.update(action, result, n.visits)
		}
	}
}
