package config

import (
	"os"
	"time"

	"mcrave/game"
	"mcrave/searcher"
	"mcrave/searcher/agent"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Search     SearchConfig     `yaml:"search"`
	Match      MatchConfig      `yaml:"match"`
	Experiment ExperimentConfig `yaml:"experiment"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type BudgetConfig struct {
	Kind         string        `yaml:"kind"` // iterations | time | fm_calls
	Amount       int           `yaml:"amount"`
	SafetyMargin time.Duration `yaml:"safety_margin"`
}

type SearchConfig struct {
	Exploration    float64      `yaml:"exploration"`
	RaveWeight     float64      `yaml:"rave_weight"`
	UpdateRule     string       `yaml:"update_rule"` // simple | decayed
	Epsilon        float64      `yaml:"epsilon"`
	RolloutLength  int          `yaml:"rollout_length"`
	MaxTreeDepth   int          `yaml:"max_tree_depth"`
	DelayThreshold int          `yaml:"delay_threshold"`
	Budget         BudgetConfig `yaml:"budget"`
	Seed           uint64       `yaml:"seed"` // 0 picks a random seed
}

type MatchConfig struct {
	Seats      int    `yaml:"seats"`
	MaxTurns   int    `yaml:"max_turns"`
	Heuristic  string `yaml:"heuristic"` // score | adjusted
	HandSize   int    `yaml:"hand_size"` // 0 uses the size for the seat count
	SpareCards int    `yaml:"spare_cards"`
	Seed       uint64 `yaml:"seed"` // 0 picks a random seed
}

const (
	AgentMCRave = "mcrave"
	AgentRandom = "random"
)

// RAVE table ownership of a search agent.
const (
	RaveTableFresh      = "fresh"      // New table for every decision
	RaveTablePersistent = "persistent" // One table for the whole game
	RaveTableReset      = "reset"      // One table, reset before every decision
)

type AgentConfig struct {
	ID        int          `yaml:"id"`
	Kind      string       `yaml:"kind"` // mcrave | random
	RaveTable string       `yaml:"rave_table"`
	Search    SearchConfig `yaml:"search"`
}

// UnmarshalYAML fills the fields an agent entry leaves out with the defaults.
func (a *AgentConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain AgentConfig
	p := plain{Kind: AgentMCRave, RaveTable: RaveTableFresh, Search: DefaultSearch()}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = AgentConfig(p)
	return nil
}

// AgentOptions returns the agent options matching the RAVE table mode. An
// empty mode is a fresh table.
func (a AgentConfig) AgentOptions() ([]agent.Option, error) {
	switch a.RaveTable {
	case "", RaveTableFresh:
		return nil, nil
	case RaveTablePersistent:
		return []agent.Option{agent.WithPersistentTable(false)}, nil
	case RaveTableReset:
		return []agent.Option{agent.WithPersistentTable(true)}, nil
	}
	return nil, errors.Errorf("unknown rave_table %q", a.RaveTable)
}

type ExperimentConfig struct {
	Name      string        `yaml:"name"`
	Games     int           `yaml:"games"`    // Per matchup
	Parallel  int           `yaml:"parallel"` // Games played at the same time
	OutputDir string        `yaml:"output_dir"`
	Agents    []AgentConfig `yaml:"agents"`
	MatchUps  [][]int       `yaml:"matchups"` // Agent ids by seat; empty pits every agent against the first
}

func DefaultSearch() SearchConfig {
	p := searcher.DefaultParams()
	return SearchConfig{
		Exploration:    p.K,
		RaveWeight:     p.RaveWeight,
		UpdateRule:     p.Rule.String(),
		Epsilon:        p.Epsilon,
		RolloutLength:  p.RolloutLength,
		MaxTreeDepth:   p.MaxTreeDepth,
		DelayThreshold: p.DelayThreshold,
		Budget: BudgetConfig{
			Kind:         p.Budget.Kind.String(),
			Amount:       p.Budget.Amount,
			SafetyMargin: p.Budget.SafetyMargin,
		},
	}
}

func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: zerolog.InfoLevel.String()},
		Search: DefaultSearch(),
		Match: MatchConfig{
			Seats:      3,
			MaxTurns:   500,
			Heuristic:  "score",
			SpareCards: game.DefaultSpareCards,
		},
		Experiment: ExperimentConfig{
			Name:      "rave_weight",
			Games:     10,
			Parallel:  4,
			OutputDir: "experiments/results",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var result error

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "log.level"))
	}
	if err := c.Search.Validate(); err != nil {
		result = multierror.Append(result, errors.WithMessage(err, "search"))
	}
	if err := c.Match.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Experiment.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	for i, matchup := range c.Experiment.MatchUps {
		if len(matchup) != c.Match.Seats {
			result = multierror.Append(result, errors.Errorf("experiment.matchups[%d] seats %d agents but the match has %d seats", i, len(matchup), c.Match.Seats))
		}
	}
	return result
}

// Params converts the configuration into search parameters.
func (s SearchConfig) Params() (searcher.Params, error) {
	rule, err := searcher.ParseUpdateRule(s.UpdateRule)
	if err != nil {
		return searcher.Params{}, err
	}
	kind, err := searcher.ParseBudgetKind(s.Budget.Kind)
	if err != nil {
		return searcher.Params{}, err
	}

	p := searcher.DefaultParams()
	p.K = s.Exploration
	p.RaveWeight = s.RaveWeight
	p.Rule = rule
	p.Epsilon = s.Epsilon
	p.RolloutLength = s.RolloutLength
	p.MaxTreeDepth = s.MaxTreeDepth
	p.DelayThreshold = s.DelayThreshold
	p.Budget = searcher.Budget{Kind: kind, Amount: s.Budget.Amount, SafetyMargin: s.Budget.SafetyMargin}
	return p, nil
}

func (s SearchConfig) Validate() error {
	p, err := s.Params()
	if err != nil {
		return err
	}
	return p.Validate()
}

// Options returns the search options matching the configuration.
func (s SearchConfig) Options() ([]searcher.Option, error) {
	p, err := s.Params()
	if err != nil {
		return nil, err
	}

	options := []searcher.Option{
		searcher.WithExploration(p.K),
		searcher.WithRaveWeight(p.RaveWeight),
		searcher.WithUpdateRule(p.Rule),
		searcher.WithEpsilon(p.Epsilon),
		searcher.WithRolloutLength(p.RolloutLength),
		searcher.WithMaxTreeDepth(p.MaxTreeDepth),
		searcher.WithDelayThreshold(p.DelayThreshold),
		searcher.WithBudget(p.Budget),
	}
	if s.Seed != 0 {
		options = append(options, searcher.WithSeed(s.Seed))
	}
	return options, nil
}

func (m MatchConfig) Validate() error {
	var result error
	if m.Seats < game.MinSeats || m.Seats > game.MaxSeats {
		result = multierror.Append(result, errors.Errorf("match.seats must be between %d and %d, got %d", game.MinSeats, game.MaxSeats, m.Seats))
	}
	if m.MaxTurns <= 0 {
		result = multierror.Append(result, errors.Errorf("match.max_turns must be positive, got %d", m.MaxTurns))
	}
	if _, err := game.NewHeuristic(m.Heuristic); err != nil {
		result = multierror.Append(result, errors.WithMessage(err, "match.heuristic"))
	}
	if m.HandSize < 0 || m.SpareCards < 0 {
		result = multierror.Append(result, errors.New("match.hand_size and match.spare_cards cannot be negative"))
	}
	return result
}

// RulesOptions returns the game options matching the configuration.
func (m MatchConfig) RulesOptions() []game.RulesOption {
	return []game.RulesOption{game.WithHandSize(m.HandSize), game.WithSpareCards(m.SpareCards)}
}

func (e ExperimentConfig) Validate() error {
	var result error
	if e.Games <= 0 {
		result = multierror.Append(result, errors.Errorf("experiment.games must be positive, got %d", e.Games))
	}
	if e.Parallel <= 0 {
		result = multierror.Append(result, errors.Errorf("experiment.parallel must be positive, got %d", e.Parallel))
	}

	ids := map[int]bool{}
	for i, a := range e.Agents {
		if ids[a.ID] {
			result = multierror.Append(result, errors.Errorf("experiment.agents[%d] reuses id %d", i, a.ID))
		}
		ids[a.ID] = true
		switch a.Kind {
		case AgentMCRave:
			if err := a.Search.Validate(); err != nil {
				result = multierror.Append(result, errors.WithMessagef(err, "experiment.agents[%d].search", i))
			}
			if _, err := a.AgentOptions(); err != nil {
				result = multierror.Append(result, errors.WithMessagef(err, "experiment.agents[%d]", i))
			}
		case AgentRandom:
		default:
			result = multierror.Append(result, errors.Errorf("experiment.agents[%d] has unknown kind %q", i, a.Kind))
		}
	}
	for i, matchup := range e.MatchUps {
		for _, id := range matchup {
			if !ids[id] {
				result = multierror.Append(result, errors.Errorf("experiment.matchups[%d] names unknown agent %d", i, id))
			}
		}
	}
	return result
}
